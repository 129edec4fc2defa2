package keycode

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/vterm/terminal"
)

func key(r rune) terminal.Event {
	return terminal.Event{Type: terminal.EventKey, Key: terminal.KeyRune, Rune: r}
}

func named(k terminal.Key) terminal.Event {
	return terminal.Event{Type: terminal.EventKey, Key: k}
}

func TestTranslate_ControlTable(t *testing.T) {
	tests := []struct {
		key  terminal.Key
		want Code
	}{
		{terminal.KeyTab, 0x09},
		{terminal.KeyEnter, 0x0D},
		{terminal.KeyBackspace, 0x80},
		{terminal.KeyDelete, 0x81},
		{terminal.KeyInsert, 0x82},
		{terminal.KeyLeft, 0x83},
		{terminal.KeyRight, 0x84},
		{terminal.KeyUp, 0x85},
		{terminal.KeyDown, 0x86},
		{terminal.KeyHome, 0x87},
		{terminal.KeyEnd, 0x88},
		{terminal.KeyPageUp, 0x89},
		{terminal.KeyPageDown, 0x8A},
	}

	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			got, err := Translate(named(tt.key))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranslate_ControlCodesDistinctAndNotPrintable(t *testing.T) {
	seen := make(map[Code]terminal.Key)
	check := func(k terminal.Key) {
		c, err := Translate(named(k))
		require.NoError(t, err, k.String())

		if prev, dup := seen[c]; dup {
			t.Fatalf("%s and %s both map to %s", prev, k, c)
		}
		seen[c] = k

		assert.False(t, c.IsPrintable(), "%s maps into printable range", k)
		assert.True(t, IsControl(c), k.String())
	}

	for _, k := range ControlKeys() {
		check(k)
	}
	for k := terminal.KeyCtrlA; k <= terminal.KeyCtrlZ; k++ {
		if _, folded := ctrlAliases[k]; folded {
			continue
		}
		check(k)
	}
	assert.Len(t, seen, 13+26-len(ctrlAliases))
}

func TestTranslate_CtrlAliasesFoldOntoNamedKeys(t *testing.T) {
	tests := []struct {
		ctrl terminal.Key
		want Code
	}{
		{terminal.KeyCtrlH, Backspace},
		{terminal.KeyCtrlI, Tab},
		{terminal.KeyCtrlJ, Enter},
		{terminal.KeyCtrlM, Enter},
	}
	for _, tt := range tests {
		t.Run(tt.ctrl.String(), func(t *testing.T) {
			got, err := Translate(named(tt.ctrl))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranslate_PrintableIdentity(t *testing.T) {
	for r := rune(0x20); r <= 0x7e; r++ {
		got, err := Translate(key(r))
		require.NoError(t, err)
		assert.Equal(t, Code(r), got)
		assert.True(t, got.IsPrintable())
	}
}

func TestTranslate_CtrlLetters(t *testing.T) {
	for k := terminal.KeyCtrlA; k <= terminal.KeyCtrlZ; k++ {
		if _, folded := ctrlAliases[k]; folded {
			continue
		}
		got, err := Translate(named(k))
		require.NoError(t, err)
		assert.Equal(t, Code(k.CtrlLetter()&0x1f), got, k.String())
	}

	got, err := Translate(named(terminal.KeyCtrlQ))
	require.NoError(t, err)
	assert.Equal(t, CtrlQ, got)
	assert.Equal(t, "ctrl_q", got.String())
}

func TestTranslate_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		ev     terminal.Event
		reason Reason
	}{
		{"multi_byte_e_acute", key('é'), ReasonMultiByte},
		{"multi_byte_cjk", key('世'), ReasonMultiByte},
		{"multi_byte_emoji", key('😀'), ReasonMultiByte},
		{"nul", key(0x00), ReasonNotPrintable},
		{"del", key(0x7f), ReasonNotPrintable},
		{"escape", named(terminal.KeyEscape), ReasonUnsupportedKey},
		{"f1", named(terminal.KeyF1), ReasonUnsupportedKey},
		{"backtab", named(terminal.KeyBacktab), ReasonUnsupportedKey},
		{"none", named(terminal.KeyNone), ReasonUnsupportedKey},
		{"alt_rune", terminal.Event{Type: terminal.EventKey, Key: terminal.KeyRune, Rune: 'a', Modifiers: terminal.ModAlt}, ReasonUnsupportedKey},
		{"alt_ctrl_q", terminal.Event{Type: terminal.EventKey, Key: terminal.KeyCtrlQ, Modifiers: terminal.ModAlt}, ReasonUnsupportedKey},
		{"alt_enter", terminal.Event{Type: terminal.EventKey, Key: terminal.KeyEnter, Modifiers: terminal.ModAlt}, ReasonUnsupportedKey},
		{"resize", terminal.Event{Type: terminal.EventResize, Width: 80, Height: 24}, ReasonUnsupportedKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Translate(tt.ev)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrEncoding))

			var encErr *EncodingError
			require.ErrorAs(t, err, &encErr)
			assert.Equal(t, tt.reason, encErr.Reason)
		})
	}
}

func TestTranslate_ShiftAndCtrlOnNamedKeysDropped(t *testing.T) {
	got, err := Translate(terminal.Event{Type: terminal.EventKey, Key: terminal.KeyLeft, Modifiers: terminal.ModShift})
	require.NoError(t, err)
	assert.Equal(t, Left, got)

	got, err = Translate(terminal.Event{Type: terminal.EventKey, Key: terminal.KeyDelete, Modifiers: terminal.ModCtrl})
	require.NoError(t, err)
	assert.Equal(t, Delete, got)
}

func TestCode_String(t *testing.T) {
	assert.Equal(t, "enter", Enter.String())
	assert.Equal(t, "backspace", Backspace.String())
	assert.Equal(t, "ctrl_a", CtrlA.String())
	assert.Equal(t, "'a'", Code('a').String())
	assert.Equal(t, "0x9f", Code(0x9f).String())
	assert.Equal(t, Name(Tab), Tab.String())
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Code
	}{
		{"ctrl_q", CtrlQ},
		{"ctrl+q", CtrlQ},
		{"Ctrl-Q", CtrlQ},
		{"enter", Enter},
		{"return", Enter},
		{"page_down", PageDown},
		{"x", 'x'},
		{" ", ' '},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "hyper_q", "f1", "é"} {
		_, err := Parse(bad)
		assert.ErrorIs(t, err, ErrEncoding, bad)
	}
}
