// Command keytest shows how each key press is decoded and which canonical keycode it becomes.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lixenwraith/vterm/core"
	"github.com/lixenwraith/vterm/keycode"
	"github.com/lixenwraith/vterm/session"
	"github.com/lixenwraith/vterm/terminal"
	"github.com/lixenwraith/vterm/vt"
)

var backendFlag = flag.String("backend", "ansi", "Terminal backend: ansi, tcell")

func main() {
	defer core.Recover()
	flag.Parse()

	var (
		dev terminal.Device
		err error
	)
	switch *backendFlag {
	case "tcell":
		dev, err = terminal.NewTcellScreenDevice()
	default:
		dev = terminal.NewANSIDevice(terminal.NewStdBackend())
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "init failed: %v\n", err)
		os.Exit(1)
	}

	guard, err := session.Acquire(dev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init failed: %v\n", err)
		os.Exit(1)
	}
	core.SetCleanup(guard.Release)
	defer guard.Release()

	// Event log (last N events)
	const maxLog = 16
	eventLog := make([]string, 0, maxLog)

	addLog := func(s string) {
		if len(eventLog) >= maxLog {
			copy(eventLog, eventLog[1:])
			eventLog = eventLog[:maxLog-1]
		}
		eventLog = append(eventLog, s)
	}

	render := func() {
		w, h := dev.Size()
		var sb strings.Builder
		sb.Write(vt.FramePrefix)
		sb.WriteString("Key Test - press keys, Ctrl+Q to quit\r\n")
		sb.WriteString(strings.Repeat("-", max(w-1, 0)))
		sb.WriteString("\r\n")
		for i, entry := range eventLog {
			if i+3 >= h {
				break
			}
			sb.WriteString(entry)
			sb.WriteString("\r\n")
		}
		dev.WriteFrame([]byte(sb.String()))
		dev.Flush()
	}

	render()

	for {
		ready, err := dev.PollEvent(50 * time.Millisecond)
		if err != nil {
			return
		}
		if !ready {
			continue
		}
		ev, err := dev.ReadEvent()
		if err != nil {
			return
		}

		switch ev.Type {
		case terminal.EventKey:
			code, err := keycode.Translate(ev)
			if err == nil && code == keycode.CtrlQ {
				return
			}
			addLog(formatKeyEvent(ev, code, err))

		case terminal.EventResize:
			addLog(fmt.Sprintf("RESIZE: %dx%d", ev.Width, ev.Height))

		case terminal.EventError:
			addLog(fmt.Sprintf("ERROR: %v", ev.Err))

		case terminal.EventClosed:
			return
		}

		render()
	}
}

func formatKeyEvent(ev terminal.Event, code keycode.Code, err error) string {
	var mods string
	if ev.Modifiers&terminal.ModShift != 0 {
		mods += "Shift+"
	}
	if ev.Modifiers&terminal.ModAlt != 0 {
		mods += "Alt+"
	}
	if ev.Modifiers&terminal.ModCtrl != 0 {
		mods += "Ctrl+"
	}

	keyName := ev.Key.String()
	if ev.Key == terminal.KeyRune {
		if ev.Rune >= 0x20 && ev.Rune < 0x7f {
			keyName = fmt.Sprintf("'%c'", ev.Rune)
		} else {
			keyName = fmt.Sprintf("U+%04X", ev.Rune)
		}
	}

	if err != nil {
		return fmt.Sprintf("KEY: %s%-12s REJECTED (%v)", mods, keyName, err)
	}
	return fmt.Sprintf("KEY: %s%-12s -> 0x%02X %s", mods, keyName, byte(code), code)
}
