package terminal

import (
	"io"
	"os"
)

// EmergencyReset attempts to restore terminal to sane state
// Call this from panic recovery if the session guard cannot be released normally
func EmergencyReset(w io.Writer) {
	// Disable mouse tracking in case a previous program left it on
	w.Write(csiMouseOff)

	// Write sequences to provided writer
	w.Write(csiCursorShow)
	w.Write(csiAltScreenExit)
	w.Write(csiSGR0)
	w.Write(csiAutoWrapOn)

	// Flush if it's a file
	if f, ok := w.(*os.File); ok {
		f.Sync()
	}

	// Attempt raw mode reset via termios - escape sequences alone don't restore it
	// This is best-effort; ignore errors in crash context
	resetTerminalMode()
}
