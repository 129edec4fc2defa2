package terminal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(p *inputParser) []Event {
	var out []Event
	for {
		ev, ok := p.next()
		if !ok {
			return out
		}
		out = append(out, ev)
	}
}

func TestInputParser(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Event
	}{
		{"printable", "hi", []Event{
			{Type: EventKey, Key: KeyRune, Rune: 'h'},
			{Type: EventKey, Key: KeyRune, Rune: 'i'},
		}},
		{"enter_cr", "\r", []Event{{Type: EventKey, Key: KeyEnter}}},
		{"tab", "\t", []Event{{Type: EventKey, Key: KeyTab}}},
		{"del_is_backspace", "\x7f", []Event{{Type: EventKey, Key: KeyBackspace}}},
		{"ctrl_q", "\x11", []Event{{Type: EventKey, Key: KeyCtrlQ}}},
		{"ctrl_a", "\x01", []Event{{Type: EventKey, Key: KeyCtrlA}}},
		{"csi_up", "\x1b[A", []Event{{Type: EventKey, Key: KeyUp}}},
		{"csi_delete", "\x1b[3~", []Event{{Type: EventKey, Key: KeyDelete}}},
		{"csi_ctrl_left", "\x1b[1;5D", []Event{{Type: EventKey, Key: KeyLeft, Modifiers: ModCtrl}}},
		{"csi_shift_home", "\x1b[1;2H", []Event{{Type: EventKey, Key: KeyHome, Modifiers: ModShift}}},
		{"csi_ctrl_delete", "\x1b[3;5~", []Event{{Type: EventKey, Key: KeyDelete, Modifiers: ModCtrl}}},
		{"csi_backtab", "\x1b[Z", []Event{{Type: EventKey, Key: KeyBacktab, Modifiers: ModShift}}},
		{"ss3_home", "\x1bOH", []Event{{Type: EventKey, Key: KeyHome}}},
		{"alt_x", "\x1bx", []Event{{Type: EventKey, Key: KeyRune, Rune: 'x', Modifiers: ModAlt}}},
		{"utf8_multibyte", "é世", []Event{
			{Type: EventKey, Key: KeyRune, Rune: 'é'},
			{Type: EventKey, Key: KeyRune, Rune: '世'},
		}},
		{"unknown_csi_swallowed", "\x1b[99zq", []Event{{Type: EventKey, Key: KeyRune, Rune: 'q'}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newInputParser()
			p.feed([]byte(tt.input))
			assert.Equal(t, tt.want, drain(p))
		})
	}
}

func TestInputParser_SplitSequences(t *testing.T) {
	p := newInputParser()

	// CSI split across reads
	p.feed([]byte("\x1b["))
	assert.False(t, p.hasPending())
	p.feed([]byte("B"))
	assert.Equal(t, []Event{{Type: EventKey, Key: KeyDown}}, drain(p))

	// UTF-8 split across reads
	b := []byte("世")
	p.feed(b[:1])
	assert.False(t, p.hasPending())
	p.feed(b[1:])
	assert.Equal(t, []Event{{Type: EventKey, Key: KeyRune, Rune: '世'}}, drain(p))
}

func TestInputParser_LoneEscapeOnIdle(t *testing.T) {
	p := newInputParser()
	p.feed([]byte{0x1b})
	require.False(t, p.hasPending())

	p.idle()
	assert.Equal(t, []Event{{Type: EventKey, Key: KeyEscape}}, drain(p))

	// Idle with nothing buffered emits nothing
	p.idle()
	assert.False(t, p.hasPending())
}

func TestKeyNames(t *testing.T) {
	k, ok := KeyByName("ctrl_q")
	require.True(t, ok)
	assert.Equal(t, KeyCtrlQ, k)
	assert.Equal(t, "ctrl_q", KeyName(KeyCtrlQ))

	k, ok = KeyByName("pgdn")
	require.True(t, ok)
	assert.Equal(t, KeyPageDown, k)

	_, ok = KeyByName("ctrl_1")
	assert.False(t, ok)

	assert.Equal(t, "rune", KeyRune.String())
	assert.Equal(t, byte('z'), KeyCtrlZ.CtrlLetter())
	assert.Zero(t, KeyEnter.CtrlLetter())
}

func TestSkipCSI(t *testing.T) {
	assert.Equal(t, []byte("hi"), SkipCSI([]byte("\x1b[1;1H\x1b[2Jhi")))
	assert.Equal(t, []byte("plain"), SkipCSI([]byte("plain")))
	assert.Empty(t, SkipCSI([]byte("\x1b[2")))
	assert.Equal(t, []byte("x\x1b[2J"), SkipCSI([]byte("x\x1b[2J")))
}

func TestEventString(t *testing.T) {
	assert.Equal(t, "resize 80x24", Event{Type: EventResize, Width: 80, Height: 24}.String())
	assert.Equal(t, `key 'a' mod=0`, Event{Type: EventKey, Key: KeyRune, Rune: 'a'}.String())
	assert.Equal(t, "key enter mod=0", Event{Type: EventKey, Key: KeyEnter}.String())
	assert.Equal(t, "closed", Event{Type: EventClosed}.String())
}
