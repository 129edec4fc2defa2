package terminal

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimDevice(t *testing.T, w, h int) (Device, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	d := NewTcellDevice(screen)
	require.NoError(t, d.EnterAlternateScreen())
	require.NoError(t, d.EnableRawMode())
	screen.SetSize(w, h)
	t.Cleanup(func() { d.LeaveAlternateScreen() })
	return d, screen
}

// nextKey skips non-key events such as the initial resize
func nextKey(t *testing.T, d Device) Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		ready, err := d.PollEvent(10 * time.Millisecond)
		require.NoError(t, err)
		if !ready {
			continue
		}
		ev, err := d.ReadEvent()
		require.NoError(t, err)
		if ev.Type == EventKey {
			return ev
		}
	}
	t.Fatal("no key event")
	return Event{}
}

func cell(screen tcell.SimulationScreen, x, y int) rune {
	r, _, _, _ := screen.GetContent(x, y)
	return r
}

func TestTcellDevice_KeyConversion(t *testing.T) {
	d, screen := newSimDevice(t, 20, 5)

	screen.InjectKey(tcell.KeyRune, 'a', tcell.ModNone)
	screen.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)
	screen.InjectKey(tcell.KeyLeft, 0, tcell.ModNone)
	screen.InjectKey(tcell.KeyCtrlQ, 0, tcell.ModCtrl)
	screen.InjectKey(tcell.KeyF3, 0, tcell.ModNone)

	assert.Equal(t, Event{Type: EventKey, Key: KeyRune, Rune: 'a'}, nextKey(t, d))
	assert.Equal(t, KeyEnter, nextKey(t, d).Key)
	assert.Equal(t, KeyLeft, nextKey(t, d).Key)
	assert.Equal(t, KeyCtrlQ, nextKey(t, d).Key)
	assert.Equal(t, KeyF3, nextKey(t, d).Key)
}

func TestTcellDevice_WriteFrameLayout(t *testing.T) {
	d, screen := newSimDevice(t, 4, 3)

	require.NoError(t, d.WriteFrame([]byte("\x1b[1;1H\x1b[2Jab\r\ncdefgh")))
	require.NoError(t, d.Flush())

	assert.Equal(t, 'a', cell(screen, 0, 0))
	assert.Equal(t, 'b', cell(screen, 1, 0))
	assert.Equal(t, 'c', cell(screen, 0, 1))
	assert.Equal(t, 'f', cell(screen, 3, 1))
	// Wrapped at width 4
	assert.Equal(t, 'g', cell(screen, 0, 2))
	assert.Equal(t, 'h', cell(screen, 1, 2))

	// Next frame replaces the previous content
	require.NoError(t, d.WriteFrame([]byte("\x1b[1;1H\x1b[2Jz")))
	require.NoError(t, d.Flush())
	assert.Equal(t, 'z', cell(screen, 0, 0))
	assert.NotEqual(t, 'b', cell(screen, 1, 0))
}

func TestTcellDevice_ClosedAfterFini(t *testing.T) {
	d, _ := newSimDevice(t, 10, 2)

	require.NoError(t, d.ShowCursor())
	require.NoError(t, d.LeaveAlternateScreen())
	require.NoError(t, d.DisableRawMode())
	require.NoError(t, d.Flush())

	_, err := d.PollEvent(0)
	assert.ErrorIs(t, err, ErrDeviceClosed)
	assert.ErrorIs(t, d.WriteFrame([]byte("x")), ErrDeviceClosed)
	assert.ErrorIs(t, d.EnableRawMode(), ErrDeviceClosed)
}
