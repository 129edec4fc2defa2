// @focus: #terminal { ansi }
package terminal

// Pre-allocated ANSI sequence fragments
var (
	csiSGR0 = []byte("\x1b[0m")

	// Cursor control
	csiCursorHide = []byte("\x1b[?25l")
	csiCursorShow = []byte("\x1b[?25h")

	// Screen modes
	csiAltScreenEnter = []byte("\x1b[?1049h")
	csiAltScreenExit  = []byte("\x1b[?1049l")
	// DECAWM: Auto-Wrap Mode, restored on exit in case a previous program left it off
	csiAutoWrapOn = []byte("\x1b[?7h")

	// Mouse tracking off, sent during emergency reset only
	csiMouseOff = []byte("\x1b[?1003l\x1b[?1002l\x1b[?1000l\x1b[?1006l")
)

// bel is the terminal bell control byte
const bel = 0x07

// Bell is the BEL control byte as a writable sequence
var Bell = []byte{bel}

// SkipCSI returns p without its leading CSI sequences (ESC [ params final)
// Used by backends that lay out frame content themselves instead of writing raw bytes
func SkipCSI(p []byte) []byte {
	for len(p) >= 3 && p[0] == 0x1b && p[1] == '[' {
		end := 2
		for end < len(p) && (p[end] < 0x40 || p[end] > 0x7e) {
			end++
		}
		if end >= len(p) {
			// Unterminated sequence, nothing printable follows
			return p[len(p):]
		}
		p = p[end+1:]
	}
	return p
}
