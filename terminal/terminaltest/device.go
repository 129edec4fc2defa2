// Package terminaltest provides a scripted in-memory terminal.Device for tests.
package terminaltest

import (
	"bytes"
	"errors"
	"sync"
	"time"

	"github.com/lixenwraith/vterm/terminal"
)

// ErrSourceClosed is the default poll error once a device is closed
var ErrSourceClosed = errors.New("terminaltest: source closed")

// Device is a terminal.Device backed by an event queue and a frame log
type Device struct {
	mu sync.Mutex

	events  []terminal.Event
	pollErr error

	pending []byte
	frames  [][]byte
	calls   []string

	raw          bool
	alt          bool
	cursorHidden bool

	cols, rows int

	// Injected failures
	writeErr  error
	rawErr    error
	readPanic any

	polls int
	beeps int
}

// New creates a device reporting the given size
func New(cols, rows int) *Device {
	return &Device{cols: cols, rows: rows}
}

// Push queues events for PollEvent/ReadEvent
func (d *Device) Push(evs ...terminal.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, evs...)
}

// PushKeys queues one KeyRune event per rune of s
func (d *Device) PushKeys(s string) {
	evs := make([]terminal.Event, 0, len(s))
	for _, r := range s {
		evs = append(evs, Key(r))
	}
	d.Push(evs...)
}

// Key builds a printable key event
func Key(r rune) terminal.Event {
	return terminal.Event{Type: terminal.EventKey, Key: terminal.KeyRune, Rune: r}
}

// Named builds a named key event
func Named(k terminal.Key) terminal.Event {
	return terminal.Event{Type: terminal.EventKey, Key: k}
}

// Close makes PollEvent fail with err once the queue drains; nil selects ErrSourceClosed
func (d *Device) Close(err error) {
	if err == nil {
		err = ErrSourceClosed
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pollErr = err
}

// FailWrites makes WriteFrame and Flush return err
func (d *Device) FailWrites(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writeErr = err
}

// FailRawMode makes EnableRawMode return err
func (d *Device) FailRawMode(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rawErr = err
}

// PanicOnRead makes the next ReadEvent panic with v
func (d *Device) PanicOnRead(v any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.readPanic = v
}

func (d *Device) record(call string) {
	d.calls = append(d.calls, call)
}

func (d *Device) EnableRawMode() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("enable_raw")
	if d.rawErr != nil {
		return d.rawErr
	}
	d.raw = true
	return nil
}

func (d *Device) DisableRawMode() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("disable_raw")
	d.raw = false
	return nil
}

func (d *Device) EnterAlternateScreen() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("enter_alt")
	d.alt = true
	return nil
}

func (d *Device) LeaveAlternateScreen() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("leave_alt")
	d.alt = false
	return nil
}

func (d *Device) HideCursor() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("hide_cursor")
	d.cursorHidden = true
	return nil
}

func (d *Device) ShowCursor() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("show_cursor")
	d.cursorHidden = false
	return nil
}

func (d *Device) PollEvent(time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.polls++
	if len(d.events) > 0 {
		return true, nil
	}
	if d.pollErr != nil {
		return false, d.pollErr
	}
	return false, nil
}

func (d *Device) ReadEvent() (terminal.Event, error) {
	d.mu.Lock()
	if v := d.readPanic; v != nil {
		d.readPanic = nil
		d.mu.Unlock()
		panic(v)
	}
	defer d.mu.Unlock()

	if len(d.events) == 0 {
		if d.pollErr != nil {
			return terminal.Event{}, d.pollErr
		}
		return terminal.Event{Type: terminal.EventClosed}, nil
	}
	ev := d.events[0]
	d.events = d.events[1:]
	return ev, nil
}

func (d *Device) WriteFrame(p []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.writeErr != nil {
		return d.writeErr
	}
	d.pending = append(d.pending, p...)
	return nil
}

func (d *Device) Flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.writeErr != nil {
		return d.writeErr
	}
	if len(d.pending) > 0 {
		d.frames = append(d.frames, d.pending)
		d.pending = nil
	}
	return nil
}

func (d *Device) Size() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cols, d.rows
}

// SetSize changes the reported size without queueing a resize event
func (d *Device) SetSize(cols, rows int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cols, d.rows = cols, rows
}

// Frames returns copies of all flushed frames in order
func (d *Device) Frames() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([][]byte, len(d.frames))
	for i, f := range d.frames {
		out[i] = bytes.Clone(f)
	}
	return out
}

// LastFrame returns the most recent flushed frame, nil if none
func (d *Device) LastFrame() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.frames) == 0 {
		return nil
	}
	return bytes.Clone(d.frames[len(d.frames)-1])
}

// WaitFrames waits until at least n frames were flushed
func (d *Device) WaitFrames(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		d.mu.Lock()
		got := len(d.frames)
		d.mu.Unlock()
		if got >= n {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
}

// Calls returns the mode-toggle calls in order
func (d *Device) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// Restored reports whether raw mode, alternate screen and hidden cursor are all off
func (d *Device) Restored() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.raw && !d.alt && !d.cursorHidden
}

// Raw reports whether raw mode is on
func (d *Device) Raw() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.raw
}

// Alt reports whether the alternate screen is active
func (d *Device) Alt() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.alt
}

// Beep counts bell rings
func (d *Device) Beep() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.beeps++
	return nil
}

// Beeps returns the number of Beep calls so far
func (d *Device) Beeps() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.beeps
}

// Polls returns the number of PollEvent calls so far
func (d *Device) Polls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.polls
}

var (
	_ terminal.Device = (*Device)(nil)
	_ terminal.Beeper = (*Device)(nil)
)
