package keycode

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lixenwraith/vterm/terminal"
)

// ErrEncoding is matched by every translation failure
var ErrEncoding = errors.New("key not representable as a single byte")

// Reason classifies why a key event could not be encoded
type Reason uint8

const (
	ReasonUnsupportedKey Reason = iota // Named key outside the supported set
	ReasonMultiByte                    // Rune needs more than one byte
	ReasonNotPrintable                 // Single-byte rune outside the printable range
)

func (r Reason) String() string {
	switch r {
	case ReasonUnsupportedKey:
		return "unsupported key"
	case ReasonMultiByte:
		return "multi-byte character"
	case ReasonNotPrintable:
		return "non-printable character"
	}
	return "unknown"
}

// EncodingError describes a key event the translator rejected
type EncodingError struct {
	Key    terminal.Key
	Rune   rune
	Reason Reason
}

func (e *EncodingError) Error() string {
	if e.Key == terminal.KeyRune {
		return fmt.Sprintf("encode %q (U+%04X): %s", e.Rune, e.Rune, e.Reason)
	}
	return fmt.Sprintf("encode key %s: %s", e.Key, e.Reason)
}

// Unwrap lets errors.Is match ErrEncoding
func (e *EncodingError) Unwrap() error {
	return ErrEncoding
}

// ctrlAliases folds Ctrl+letters whose byte is also a named key onto that key,
// matching how the raw input parser decodes 0x08, 0x09, 0x0A and 0x0D
var ctrlAliases = map[terminal.Key]terminal.Key{
	terminal.KeyCtrlH: terminal.KeyBackspace,
	terminal.KeyCtrlI: terminal.KeyTab,
	terminal.KeyCtrlJ: terminal.KeyEnter,
	terminal.KeyCtrlM: terminal.KeyEnter,
}

// Translate maps a key event to its canonical code
// Alt combinations are rejected; Shift and Ctrl on named keys are dropped
// Failures are returned as *EncodingError and never panic
func Translate(ev terminal.Event) (Code, error) {
	if ev.Type != terminal.EventKey {
		return 0, &EncodingError{Key: ev.Key, Reason: ReasonUnsupportedKey}
	}

	// Alt has no single-byte encoding
	if ev.Modifiers&terminal.ModAlt != 0 {
		return 0, &EncodingError{Key: ev.Key, Rune: ev.Rune, Reason: ReasonUnsupportedKey}
	}

	k := ev.Key
	if alias, ok := ctrlAliases[k]; ok {
		k = alias
	}

	if c, ok := controlKeys[k]; ok {
		return c, nil
	}

	if k.IsCtrlLetter() {
		return CtrlA + Code(k-terminal.KeyCtrlA), nil
	}

	if ev.Key != terminal.KeyRune {
		return 0, &EncodingError{Key: ev.Key, Reason: ReasonUnsupportedKey}
	}

	r := ev.Rune
	if utf8.RuneLen(r) != 1 {
		return 0, &EncodingError{Key: ev.Key, Rune: r, Reason: ReasonMultiByte}
	}
	if r < 0x20 || r > 0x7e {
		return 0, &EncodingError{Key: ev.Key, Rune: r, Reason: ReasonNotPrintable}
	}
	return Code(r), nil
}

// Parse resolves a key name as used in config files to its code
// Accepts canonical key names ("enter", "ctrl_q"), "ctrl+q" spelling and single printable characters
func Parse(name string) (Code, error) {
	if utf8.RuneCountInString(name) == 1 {
		r, _ := utf8.DecodeRuneInString(name)
		return Translate(terminal.Event{Type: terminal.EventKey, Key: terminal.KeyRune, Rune: r})
	}

	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.ReplaceAll(normalized, "+", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	k, ok := terminal.KeyByName(normalized)
	if !ok {
		return 0, fmt.Errorf("unknown key name %q: %w", name, ErrEncoding)
	}
	return Translate(terminal.Event{Type: terminal.EventKey, Key: k})
}
