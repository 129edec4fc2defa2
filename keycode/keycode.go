// Package keycode translates terminal key events into single-byte canonical codes.
//
// Printable ASCII maps to itself. Tab, Enter and Ctrl+letter map to their C0
// control bytes. Editing and navigation keys occupy a private block starting
// at 0x80 so they can never be mistaken for buffered ASCII.
package keycode

import (
	"fmt"

	"github.com/lixenwraith/vterm/terminal"
)

// Code is a canonical single-byte keycode
type Code byte

// Control codes
const (
	Tab   Code = 0x09
	Enter Code = 0x0D

	CtrlA Code = 0x01
	CtrlC Code = 0x03
	CtrlD Code = 0x04
	CtrlQ Code = 0x11
	CtrlZ Code = 0x1A

	Backspace Code = 0x80
	Delete    Code = 0x81
	Insert    Code = 0x82
	Left      Code = 0x83
	Right     Code = 0x84
	Up        Code = 0x85
	Down      Code = 0x86
	Home      Code = 0x87
	End       Code = 0x88
	PageUp    Code = 0x89
	PageDown  Code = 0x8A
)

// controlKeys is the closed set of named keys with a fixed code
var controlKeys = map[terminal.Key]Code{
	terminal.KeyBackspace: Backspace,
	terminal.KeyEnter:     Enter,
	terminal.KeyLeft:      Left,
	terminal.KeyRight:     Right,
	terminal.KeyUp:        Up,
	terminal.KeyDown:      Down,
	terminal.KeyHome:      Home,
	terminal.KeyEnd:       End,
	terminal.KeyPageUp:    PageUp,
	terminal.KeyPageDown:  PageDown,
	terminal.KeyTab:       Tab,
	terminal.KeyDelete:    Delete,
	terminal.KeyInsert:    Insert,
}

// codeNames is the reverse of controlKeys for logs
var codeNames = make(map[Code]string, len(controlKeys))

func init() {
	for k, c := range controlKeys {
		codeNames[c] = terminal.KeyName(k)
	}
}

// ControlKeys returns the named keys with a fixed code
func ControlKeys() []terminal.Key {
	keys := make([]terminal.Key, 0, len(controlKeys))
	for k := range controlKeys {
		keys = append(keys, k)
	}
	return keys
}

// IsASCII reports whether c lies in the 7-bit range
func (c Code) IsASCII() bool {
	return c < 0x80
}

// IsPrintable reports whether c is a printable ASCII character
func (c Code) IsPrintable() bool {
	return c >= 0x20 && c <= 0x7e
}

// IsControl reports whether c is a named control code or a Ctrl+letter
func (c Code) IsControl() bool {
	if _, ok := codeNames[c]; ok {
		return true
	}
	return c >= CtrlA && c <= CtrlZ
}

// IsControl is the function form of Code.IsControl
func IsControl(c Code) bool {
	return c.IsControl()
}

// Name returns the log name of c
func Name(c Code) string {
	return c.String()
}

// String returns a readable name: the key name for named codes, ctrl_x for Ctrl+letter, the quoted character otherwise
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	if c >= CtrlA && c <= CtrlZ {
		return "ctrl_" + string(rune('a'+c-CtrlA))
	}
	if c.IsPrintable() {
		return fmt.Sprintf("%q", rune(c))
	}
	return fmt.Sprintf("0x%02x", byte(c))
}
