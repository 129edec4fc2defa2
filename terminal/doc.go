// @focus: #sys { term }
// Package terminal is the raw device layer of a virtual terminal session.
//
// Features:
//   - Raw mode via termios (golang.org/x/term) with guaranteed restore
//   - Alternate screen and cursor visibility toggles
//   - Zero-timeout input polling and raw stdin parsing with escape sequence handling
//   - SIGWINCH resize detection delivered as events
//   - A tcell-backed Device for terminals where direct ANSI output is unwanted
//   - Emergency restoration for crash handlers
//
// The ANSI device bypasses terminfo/termcap entirely, emitting direct ANSI sequences.
// Target environments: Linux, macOS, BSDs with xterm-compatible terminals.
package terminal
