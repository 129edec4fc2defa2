// Package vt holds the virtual terminal session state and renders it to frames.
package vt

import (
	"bytes"

	"github.com/lixenwraith/vterm/keycode"
)

// FramePrefix starts every frame: cursor to row 1 column 1, then clear the whole screen
var FramePrefix = []byte("\x1b[1;1H\x1b[2J")

// Frame is one full-screen update
type Frame []byte

// Body returns the frame content after the fixed prefix
func (f Frame) Body() []byte {
	return bytes.TrimPrefix(f, FramePrefix)
}

// Signal is the outcome of applying one keycode
type Signal uint8

const (
	SignalNone Signal = iota // Input consumed, session continues
	SignalQuit               // Quit key received, session should end
)

func (s Signal) String() string {
	if s == SignalQuit {
		return "quit"
	}
	return "none"
}

// VirtualTerminal is the state machine a session driver feeds
type VirtualTerminal interface {
	ApplyInput(c keycode.Code) Signal
	Resize(cols, rows uint16)
	Render() Frame
}

// DefaultQuitKey ends the session
const DefaultQuitKey = keycode.CtrlQ

// Terminal buffers ASCII input and tracks the viewport size
// Not safe for concurrent use; callers serialize access
type Terminal struct {
	input   []byte
	cols    uint16
	rows    uint16
	quitKey keycode.Code
}

// Option configures a Terminal
type Option func(*Terminal)

// WithQuitKey reserves c as the session-end key instead of DefaultQuitKey
func WithQuitKey(c keycode.Code) Option {
	return func(t *Terminal) {
		t.quitKey = c
	}
}

// New creates a terminal with an empty buffer and zero size
func New(opts ...Option) *Terminal {
	t := &Terminal{quitKey: DefaultQuitKey}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ApplyInput appends ASCII codes to the buffer; other codes are ignored
// The quit key is never buffered and yields SignalQuit
func (t *Terminal) ApplyInput(c keycode.Code) Signal {
	if c == t.quitKey {
		return SignalQuit
	}
	if c.IsASCII() {
		t.input = append(t.input, byte(c))
	}
	return SignalNone
}

// Resize overwrites the dimensions; any value including zero is accepted
func (t *Terminal) Resize(cols, rows uint16) {
	t.cols = cols
	t.rows = rows
}

// Render returns the prefix followed by a copy of the buffer
func (t *Terminal) Render() Frame {
	out := make([]byte, 0, len(FramePrefix)+len(t.input))
	out = append(out, FramePrefix...)
	out = append(out, t.input...)
	return out
}

// Size returns the current dimensions
func (t *Terminal) Size() (cols, rows uint16) {
	return t.cols, t.rows
}

// Len returns the buffered byte count
func (t *Terminal) Len() int {
	return len(t.input)
}

// QuitKey returns the reserved session-end key
func (t *Terminal) QuitKey() keycode.Code {
	return t.quitKey
}

var _ VirtualTerminal = (*Terminal)(nil)
