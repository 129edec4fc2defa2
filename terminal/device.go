package terminal

import (
	"bufio"
	"sync"
	"time"
)

// Device is the raw terminal device consumed by a session: mode toggles, event polling and frame output.
// Mode-restoring calls (DisableRawMode, LeaveAlternateScreen, ShowCursor) are safe to repeat.
type Device interface {
	EnableRawMode() error
	DisableRawMode() error

	EnterAlternateScreen() error
	LeaveAlternateScreen() error

	HideCursor() error
	ShowCursor() error

	// PollEvent reports whether an event can be read without blocking longer than timeout
	PollEvent(timeout time.Duration) (bool, error)
	// ReadEvent returns exactly one event, blocking if none is pending
	ReadEvent() (Event, error)

	WriteFrame(p []byte) error
	Flush() error

	Size() (cols, rows int)
}

// readPollInterval bounds each wait inside a blocking ReadEvent
const readPollInterval = 50 * time.Millisecond

// ansiDevice implements Device with direct ANSI sequences over a Backend
type ansiDevice struct {
	backend Backend

	// Output side, shared by the session driver and bell writers
	wmu sync.Mutex
	out *bufio.Writer

	// Mode state
	mu           sync.Mutex
	raw          bool
	alt          bool
	cursorHidden bool

	// Input side, owned by the single polling goroutine
	parser   *inputParser
	resizeCh chan ResizeEvent
}

// NewANSIDevice creates a device that writes ANSI sequences and parses raw input from b
func NewANSIDevice(b Backend) Device {
	return &ansiDevice{
		backend:  b,
		out:      bufio.NewWriterSize(backendWriter{b}, 64*1024),
		parser:   newInputParser(),
		resizeCh: make(chan ResizeEvent, 1),
	}
}

// backendWriter adapts Backend.Write to io.Writer for bufio
type backendWriter struct {
	b Backend
}

func (w backendWriter) Write(p []byte) (int, error) {
	if err := w.b.Write(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (d *ansiDevice) EnableRawMode() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.raw {
		return nil
	}
	if err := d.backend.Init(); err != nil {
		return err
	}

	d.backend.SetResizeHandler(func(w, h int) {
		// Non-blocking send to avoid backend blocking
		select {
		case d.resizeCh <- ResizeEvent{Width: w, Height: h}:
		default:
			// Drain and replace to ensure latest size is pending
			select {
			case <-d.resizeCh:
			default:
			}
			select {
			case d.resizeCh <- ResizeEvent{Width: w, Height: h}:
			default:
			}
		}
	})

	d.raw = true
	return nil
}

func (d *ansiDevice) DisableRawMode() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.raw {
		return nil
	}
	d.backend.Fini()
	d.raw = false
	return nil
}

func (d *ansiDevice) EnterAlternateScreen() error {
	return d.toggle(&d.alt, true, csiAltScreenEnter)
}

func (d *ansiDevice) LeaveAlternateScreen() error {
	return d.toggle(&d.alt, false, csiAltScreenExit, csiSGR0)
}

func (d *ansiDevice) HideCursor() error {
	return d.toggle(&d.cursorHidden, true, csiCursorHide)
}

func (d *ansiDevice) ShowCursor() error {
	return d.toggle(&d.cursorHidden, false, csiCursorShow)
}

// toggle writes seqs and flushes when flag changes to want
func (d *ansiDevice) toggle(flag *bool, want bool, seqs ...[]byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if *flag == want {
		return nil
	}

	d.wmu.Lock()
	defer d.wmu.Unlock()

	for _, seq := range seqs {
		if _, err := d.out.Write(seq); err != nil {
			return err
		}
	}
	if err := d.out.Flush(); err != nil {
		return err
	}
	*flag = want
	return nil
}

func (d *ansiDevice) PollEvent(timeout time.Duration) (bool, error) {
	if d.parser.hasPending() {
		return true, nil
	}

	select {
	case re := <-d.resizeCh:
		d.parser.emit(Event{Type: EventResize, Width: re.Width, Height: re.Height})
		return true, nil
	default:
	}

	ready, err := d.backend.Poll(timeout)
	if err != nil {
		return false, err
	}
	if !ready {
		d.parser.idle()
		return d.parser.hasPending(), nil
	}

	data, err := d.backend.Read()
	if err != nil {
		return false, err
	}
	d.parser.feed(data)
	return d.parser.hasPending(), nil
}

func (d *ansiDevice) ReadEvent() (Event, error) {
	for {
		if ev, ok := d.parser.next(); ok {
			return ev, nil
		}
		if _, err := d.PollEvent(readPollInterval); err != nil {
			return Event{}, err
		}
	}
}

func (d *ansiDevice) WriteFrame(p []byte) error {
	d.wmu.Lock()
	defer d.wmu.Unlock()

	_, err := d.out.Write(p)
	return err
}

func (d *ansiDevice) Flush() error {
	d.wmu.Lock()
	defer d.wmu.Unlock()

	return d.out.Flush()
}

func (d *ansiDevice) Size() (int, int) {
	return d.backend.Size()
}
