package terminal

import "unicode/utf8"

// inputParser turns raw stdin bytes into key events
// Not safe for concurrent use, owned by the device poll path
type inputParser struct {
	// Persistent buffer for stream assembly, holds incomplete escape or UTF-8 sequences across reads
	buf []byte
	// Parsed events not yet handed out
	pending []Event
}

func newInputParser() *inputParser {
	return &inputParser{
		buf:     make([]byte, 0, 256),
		pending: make([]Event, 0, 16),
	}
}

// feed appends data and parses as much as possible
func (p *inputParser) feed(data []byte) {
	p.buf = append(p.buf, data...)

	consumed := p.parse(p.buf)

	// Compact buffer
	if consumed > 0 {
		if consumed >= len(p.buf) {
			p.buf = p.buf[:0]
		} else {
			n := copy(p.buf, p.buf[consumed:])
			p.buf = p.buf[:n]
		}
	}
}

// idle is called when a poll found no new bytes
// A buffered lone ESC is then a standalone Escape key, not a sequence start
func (p *inputParser) idle() {
	if len(p.buf) == 1 && p.buf[0] == 0x1b {
		p.emit(Event{Type: EventKey, Key: KeyEscape})
		p.buf = p.buf[:0]
	}
}

// next pops the oldest pending event
func (p *inputParser) next() (Event, bool) {
	if len(p.pending) == 0 {
		return Event{}, false
	}
	ev := p.pending[0]
	n := copy(p.pending, p.pending[1:])
	p.pending = p.pending[:n]
	return ev, true
}

func (p *inputParser) hasPending() bool {
	return len(p.pending) > 0
}

func (p *inputParser) emit(ev Event) {
	p.pending = append(p.pending, ev)
}

// parse parses raw bytes into events and returns bytes consumed (stop on incomplete sequence)
func (p *inputParser) parse(data []byte) int {
	i := 0
	n := len(data)

	for i < n {
		b := data[i]

		// Fast path: printable ASCII
		if b >= 0x20 && b < 0x7f {
			p.emit(Event{Type: EventKey, Key: KeyRune, Rune: rune(b)})
			i++
			continue
		}

		// Escape sequence
		if b == 0x1b {
			// Need at least 2 bytes to determine sequence type
			if i+1 >= n {
				return i // Wait for more data or idle()
			}

			consumed, ev := p.parseEscape(data[i:])
			if consumed == 0 {
				// Incomplete sequence, wait for more data
				return i
			}

			// Only emit if not a swallowed unknown sequence
			if ev.Key != KeyNone {
				p.emit(ev)
			}
			i += consumed
			continue
		}

		// Control characters
		if b < 0x20 {
			p.emit(parseControl(b))
			i++
			continue
		}

		// DEL
		if b == 0x7f {
			p.emit(Event{Type: EventKey, Key: KeyBackspace})
			i++
			continue
		}

		// UTF-8 multibyte, passed through as a rune for the translator to judge
		if !utf8.FullRune(data[i:]) {
			// Incomplete UTF-8, wait for more data
			return i
		}
		r, size := utf8.DecodeRune(data[i:])
		p.emit(Event{Type: EventKey, Key: KeyRune, Rune: r})
		i += size
	}
	return i
}

// parseEscape attempts to parse an escape sequence, returns 0 on incomplete
func (p *inputParser) parseEscape(data []byte) (int, Event) {
	if len(data) < 2 {
		return 0, Event{} // Incomplete, wait for more
	}

	// ESC ESC -> Alt+Escape
	if data[1] == 0x1b {
		return 2, Event{Type: EventKey, Key: KeyEscape, Modifiers: ModAlt}
	}

	if data[1] == '[' {
		return parseCSI(data)
	}
	if data[1] == 'O' {
		return parseSS3(data)
	}

	// Alt+Control character (ESC + 0x00-0x1F)
	if data[1] < 0x20 {
		ev := parseControl(data[1])
		ev.Modifiers |= ModAlt
		return 2, ev
	}

	// Alt+printable
	if data[1] >= 0x20 && data[1] < 0x7f {
		return 2, Event{Type: EventKey, Key: KeyRune, Rune: rune(data[1]), Modifiers: ModAlt}
	}

	// ESC followed by DEL or a non-ASCII byte: standalone Escape, leave the rest for the main loop
	return 1, Event{Type: EventKey, Key: KeyEscape}
}

// parseCSI parses CSI sequence without allocation
func parseCSI(data []byte) (int, Event) {
	if len(data) < 3 {
		return 0, Event{}
	}

	end := 2
	maxScan := len(data)
	if maxScan > 16 {
		maxScan = 16
	}

	terminated := false
	for end < maxScan {
		b := data[end]
		end++
		if (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b == '~' {
			terminated = true
			break
		}
		if b < 0x20 || b > 0x7e {
			// Malformed, swallow the introducer only
			return 2, Event{Type: EventKey, Key: KeyNone}
		}
	}

	if !terminated {
		if len(data) >= 16 {
			// Overlong garbage, drop the introducer to resynchronise
			return 2, Event{Type: EventKey, Key: KeyNone}
		}
		return 0, Event{} // Incomplete
	}

	if key, mod, ok := lookupCSI(data[2:end]); ok {
		return end, Event{Type: EventKey, Key: key, Modifiers: mod}
	}

	// Unknown but valid CSI syntax - consume and return KeyNone
	return end, Event{Type: EventKey, Key: KeyNone}
}

// parseSS3 parses SS3 sequence without allocation, returns length even for unknown sequences
func parseSS3(data []byte) (int, Event) {
	if len(data) < 3 {
		return 0, Event{}
	}
	if key, mod, ok := lookupSS3(data[2:3]); ok {
		return 3, Event{Type: EventKey, Key: key, Modifiers: mod}
	}
	// Unknown SS3 - consume to prevent garbage
	return 3, Event{Type: EventKey, Key: KeyNone}
}

// parseControl maps control characters to keys
func parseControl(b byte) Event {
	switch b {
	case 0x00: // Ctrl+Space or Ctrl+@
		return Event{Type: EventKey, Key: KeyCtrlSpace}
	case 0x08: // Ctrl+H or Backspace
		return Event{Type: EventKey, Key: KeyBackspace}
	case 0x09: // Tab
		return Event{Type: EventKey, Key: KeyTab}
	case 0x0a, 0x0d: // LF, CR (Enter)
		return Event{Type: EventKey, Key: KeyEnter}
	case 0x1b: // ESC (shouldn't reach here normally)
		return Event{Type: EventKey, Key: KeyEscape}
	case 0x1c:
		return Event{Type: EventKey, Key: KeyCtrlBackslash}
	case 0x1d:
		return Event{Type: EventKey, Key: KeyCtrlBracketRight}
	case 0x1e:
		return Event{Type: EventKey, Key: KeyCtrlCaret}
	case 0x1f:
		return Event{Type: EventKey, Key: KeyCtrlUnderscore}
	}
	if b >= 0x01 && b <= 0x1a {
		return Event{Type: EventKey, Key: KeyCtrlA + Key(b-0x01)}
	}
	return Event{Type: EventKey, Key: KeyNone}
}
