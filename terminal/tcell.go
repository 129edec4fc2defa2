package terminal

import (
	"errors"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
)

// ErrDeviceClosed is returned by a device used after its screen was finalized
var ErrDeviceClosed = errors.New("terminal device closed")

// tcellDevice implements Device over a tcell.Screen
// tcell couples raw mode and the alternate screen: both are entered on Init and left on Fini
type tcellDevice struct {
	screen tcell.Screen

	mu          sync.Mutex
	initialized bool
	finalized   bool
}

// NewTcellDevice wraps screen; the screen must not be initialized yet
func NewTcellDevice(screen tcell.Screen) Device {
	return &tcellDevice{screen: screen}
}

// NewTcellScreenDevice creates a device on the default tcell screen for the controlling terminal
func NewTcellScreenDevice() (Device, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewTcellDevice(screen), nil
}

func (d *tcellDevice) ensureInit() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.finalized {
		return ErrDeviceClosed
	}
	if d.initialized {
		return nil
	}
	if err := d.screen.Init(); err != nil {
		return err
	}
	d.initialized = true
	return nil
}

func (d *tcellDevice) fini() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized || d.finalized {
		return nil
	}
	d.screen.Fini()
	d.finalized = true
	return nil
}

func (d *tcellDevice) active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initialized && !d.finalized
}

func (d *tcellDevice) EnableRawMode() error        { return d.ensureInit() }
func (d *tcellDevice) DisableRawMode() error       { return d.fini() }
func (d *tcellDevice) EnterAlternateScreen() error { return d.ensureInit() }
func (d *tcellDevice) LeaveAlternateScreen() error { return d.fini() }

func (d *tcellDevice) HideCursor() error {
	if !d.active() {
		return nil
	}
	d.screen.HideCursor()
	return nil
}

func (d *tcellDevice) ShowCursor() error {
	if !d.active() {
		return nil
	}
	d.screen.ShowCursor(0, 0)
	return nil
}

func (d *tcellDevice) PollEvent(timeout time.Duration) (bool, error) {
	if !d.active() {
		return false, ErrDeviceClosed
	}
	if d.screen.HasPendingEvent() {
		return true, nil
	}
	if timeout > 0 {
		time.Sleep(timeout)
		return d.screen.HasPendingEvent(), nil
	}
	return false, nil
}

func (d *tcellDevice) ReadEvent() (Event, error) {
	if !d.active() {
		return Event{}, ErrDeviceClosed
	}
	ev := d.screen.PollEvent()
	if ev == nil {
		// PollEvent returns nil once the screen is finalized
		return Event{Type: EventClosed}, nil
	}
	return convertTcellEvent(ev), nil
}

// WriteFrame lays the frame body out into screen cells
// Leading CSI directives are replaced by a screen clear; CR returns, LF starts a new row, long lines wrap
func (d *tcellDevice) WriteFrame(p []byte) error {
	if !d.active() {
		return ErrDeviceClosed
	}

	body := SkipCSI(p)
	d.screen.Clear()
	w, h := d.screen.Size()
	if w <= 0 || h <= 0 {
		return nil
	}

	x, y := 0, 0
	for _, b := range body {
		if y >= h {
			break
		}
		switch {
		case b == '\r':
			x = 0
			continue
		case b == '\n':
			x = 0
			y++
			continue
		case b == '\t':
			x = (x/8 + 1) * 8
		case b < 0x20 || b >= 0x7f:
			// Non-printable bytes occupy no cell
			continue
		default:
			d.screen.SetContent(x, y, rune(b), nil, tcell.StyleDefault)
			x++
		}
		if x >= w {
			x = 0
			y++
		}
	}
	return nil
}

// Flush is a no-op once the screen is finalized so restore sequences can always flush
func (d *tcellDevice) Flush() error {
	if !d.active() {
		return nil
	}
	d.screen.Show()
	return nil
}

func (d *tcellDevice) Size() (int, int) {
	if !d.active() {
		return 0, 0
	}
	return d.screen.Size()
}

// tcellKeys maps tcell named keys; Ctrl+letter keys are handled by range
var tcellKeys = map[tcell.Key]Key{
	tcell.KeyEscape:     KeyEscape,
	tcell.KeyEnter:      KeyEnter,
	tcell.KeyTab:        KeyTab,
	tcell.KeyBacktab:    KeyBacktab,
	tcell.KeyBackspace:  KeyBackspace,
	tcell.KeyBackspace2: KeyBackspace,
	tcell.KeyDelete:     KeyDelete,
	tcell.KeyInsert:     KeyInsert,
	tcell.KeyHome:       KeyHome,
	tcell.KeyEnd:        KeyEnd,
	tcell.KeyPgUp:       KeyPageUp,
	tcell.KeyPgDn:       KeyPageDown,
	tcell.KeyUp:         KeyUp,
	tcell.KeyDown:       KeyDown,
	tcell.KeyLeft:       KeyLeft,
	tcell.KeyRight:      KeyRight,
	tcell.KeyF1:         KeyF1,
	tcell.KeyF2:         KeyF2,
	tcell.KeyF3:         KeyF3,
	tcell.KeyF4:         KeyF4,
	tcell.KeyF5:         KeyF5,
	tcell.KeyF6:         KeyF6,
	tcell.KeyF7:         KeyF7,
	tcell.KeyF8:         KeyF8,
	tcell.KeyF9:         KeyF9,
	tcell.KeyF10:        KeyF10,
	tcell.KeyF11:        KeyF11,
	tcell.KeyF12:        KeyF12,
	tcell.KeyCtrlSpace:  KeyCtrlSpace,
}

// convertTcellEvent converts tcell events to terminal events
func convertTcellEvent(ev tcell.Event) Event {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return convertTcellKey(e)
	case *tcell.EventResize:
		w, h := e.Size()
		return Event{Type: EventResize, Width: w, Height: h}
	default:
		return Event{Type: EventOther}
	}
}

func convertTcellKey(e *tcell.EventKey) Event {
	mod := convertTcellMod(e.Modifiers())
	k := e.Key()

	if k == tcell.KeyRune {
		r := e.Rune()
		// Some terminals report Ctrl+letter as a rune with the Ctrl modifier
		if mod&ModCtrl != 0 {
			if r >= 'A' && r <= 'Z' {
				r += 'a' - 'A'
			}
			if r >= 'a' && r <= 'z' {
				return Event{Type: EventKey, Key: KeyCtrlA + Key(r-'a'), Modifiers: mod &^ ModCtrl}
			}
		}
		return Event{Type: EventKey, Key: KeyRune, Rune: r, Modifiers: mod}
	}

	if key, ok := tcellKeys[k]; ok {
		return Event{Type: EventKey, Key: key, Modifiers: mod}
	}
	if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		return Event{Type: EventKey, Key: KeyCtrlA + Key(k-tcell.KeyCtrlA), Modifiers: mod &^ ModCtrl}
	}
	return Event{Type: EventKey, Key: KeyNone, Modifiers: mod}
}

func convertTcellMod(m tcell.ModMask) Modifier {
	var mod Modifier
	if m&tcell.ModShift != 0 {
		mod |= ModShift
	}
	if m&tcell.ModAlt != 0 {
		mod |= ModAlt
	}
	if m&tcell.ModCtrl != 0 {
		mod |= ModCtrl
	}
	return mod
}
