package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/lixenwraith/vterm/terminal"
)

// Guard holds the terminal modes a session needs and restores them once
type Guard struct {
	dev terminal.Device

	alt    bool
	hidden bool
	raw    bool

	once sync.Once
	err  error
}

// Acquire switches dev to the alternate screen, hides the cursor and enables raw mode
// On failure the steps already taken are undone and the error is returned
func Acquire(dev terminal.Device) (*Guard, error) {
	g := &Guard{dev: dev}

	if err := dev.EnterAlternateScreen(); err != nil {
		return nil, fmt.Errorf("enter alternate screen: %w", err)
	}
	g.alt = true

	if err := dev.HideCursor(); err != nil {
		return nil, errors.Join(fmt.Errorf("hide cursor: %w", err), g.Release())
	}
	g.hidden = true

	if err := dev.EnableRawMode(); err != nil {
		return nil, errors.Join(fmt.Errorf("enable raw mode: %w", err), g.Release())
	}
	g.raw = true

	if err := dev.Flush(); err != nil {
		return nil, errors.Join(fmt.Errorf("flush: %w", err), g.Release())
	}
	return g, nil
}

// Release shows the cursor, leaves the alternate screen and disables raw mode
// Every step is attempted; later calls return the first result
func (g *Guard) Release() error {
	g.once.Do(func() {
		var errs []error
		if g.hidden {
			if err := g.dev.ShowCursor(); err != nil {
				errs = append(errs, fmt.Errorf("show cursor: %w", err))
			}
		}
		if g.alt {
			if err := g.dev.LeaveAlternateScreen(); err != nil {
				errs = append(errs, fmt.Errorf("leave alternate screen: %w", err))
			}
		}
		if g.raw {
			if err := g.dev.DisableRawMode(); err != nil {
				errs = append(errs, fmt.Errorf("disable raw mode: %w", err))
			}
		}
		if err := g.dev.Flush(); err != nil {
			errs = append(errs, fmt.Errorf("flush: %w", err))
		}
		g.err = errors.Join(errs...)
	})
	return g.err
}
