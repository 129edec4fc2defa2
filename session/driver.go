package session

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/lixenwraith/vterm/keycode"
	"github.com/lixenwraith/vterm/pump"
	"github.com/lixenwraith/vterm/terminal"
	"github.com/lixenwraith/vterm/vt"
)

// Reason is why a driver stopped
type Reason uint8

const (
	ReasonQuit        Reason = iota // Quit key received
	ReasonInputClosed                // Key queue closed by the pump
	ReasonDeviceError                // Frame write or flush failed
)

func (r Reason) String() string {
	switch r {
	case ReasonQuit:
		return "quit"
	case ReasonInputClosed:
		return "input_closed"
	case ReasonDeviceError:
		return "device_error"
	}
	return "unknown"
}

// Driver consumes keycodes, updates the terminal state and writes frames
type Driver struct {
	dev    terminal.Device
	logger *slog.Logger

	mu   sync.Mutex
	term vt.VirtualTerminal

	applied atomic.Uint64
	frames  atomic.Uint64
}

// DriverOption configures a Driver
type DriverOption func(*Driver)

// WithLogger sets the driver logger
func WithLogger(l *slog.Logger) DriverOption {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDriver creates a driver rendering term onto dev
func NewDriver(dev terminal.Device, term vt.VirtualTerminal, opts ...DriverOption) *Driver {
	d := &Driver{
		dev:    dev,
		term:   term,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run draws the initial frame then applies keys in arrival order until quit, input end or a device error
func (d *Driver) Run(keys <-chan keycode.Code, resizes <-chan pump.Resize) (Reason, error) {
	cols, rows := d.dev.Size()
	d.resize(clampU16(cols), clampU16(rows))
	if err := d.draw(); err != nil {
		return ReasonDeviceError, err
	}

	for {
		select {
		case c, ok := <-keys:
			if !ok {
				d.logger.Debug("key queue closed", "applied", d.applied.Load())
				return ReasonInputClosed, nil
			}
			if d.apply(c) == vt.SignalQuit {
				d.logger.Debug("quit key", "code", c.String())
				return ReasonQuit, nil
			}
			if err := d.draw(); err != nil {
				return ReasonDeviceError, err
			}

		case r := <-resizes:
			d.logger.Debug("resize", "cols", r.Cols, "rows", r.Rows)
			d.resize(r.Cols, r.Rows)
			if err := d.draw(); err != nil {
				return ReasonDeviceError, err
			}
		}
	}
}

// Applied returns the number of keycodes applied to the terminal
func (d *Driver) Applied() uint64 {
	return d.applied.Load()
}

// Frames returns the number of frames written and flushed
func (d *Driver) Frames() uint64 {
	return d.frames.Load()
}

func (d *Driver) apply(c keycode.Code) vt.Signal {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.applied.Add(1)
	return d.term.ApplyInput(c)
}

func (d *Driver) resize(cols, rows uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.term.Resize(cols, rows)
}

func (d *Driver) render() vt.Frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.term.Render()
}

// draw writes the current frame; the lock is not held during device I/O
func (d *Driver) draw() error {
	frame := d.render()
	if err := d.dev.WriteFrame(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	if err := d.dev.Flush(); err != nil {
		return fmt.Errorf("flush frame: %w", err)
	}
	d.frames.Add(1)
	return nil
}

func clampU16(v int) uint16 {
	if v < 0 {
		return 0
	}
	if v > 0xffff {
		return 0xffff
	}
	return uint16(v)
}
