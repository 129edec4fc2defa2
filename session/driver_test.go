package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/vterm/keycode"
	"github.com/lixenwraith/vterm/pump"
	"github.com/lixenwraith/vterm/terminal/terminaltest"
	"github.com/lixenwraith/vterm/vt"
)

func frame(body string) []byte {
	return append(append([]byte(nil), vt.FramePrefix...), body...)
}

func feed(codes ...keycode.Code) <-chan keycode.Code {
	ch := make(chan keycode.Code, len(codes))
	for _, c := range codes {
		ch <- c
	}
	close(ch)
	return ch
}

func TestDriver_AppliesInOrder(t *testing.T) {
	dev := terminaltest.New(80, 24)
	d := NewDriver(dev, vt.New())

	reason, err := d.Run(feed('a', 'b', 'c'), nil)
	require.NoError(t, err)
	assert.Equal(t, ReasonInputClosed, reason)
	assert.Equal(t, uint64(3), d.Applied())

	frames := dev.Frames()
	require.Len(t, frames, 4)
	assert.Equal(t, frame(""), frames[0])
	assert.Equal(t, frame("a"), frames[1])
	assert.Equal(t, frame("ab"), frames[2])
	assert.Equal(t, frame("abc"), frames[3])
}

func TestDriver_QuitStopsBeforeLaterKeys(t *testing.T) {
	dev := terminaltest.New(80, 24)
	term := vt.New()
	d := NewDriver(dev, term)

	reason, err := d.Run(feed('a', keycode.CtrlQ, 'b'), nil)
	require.NoError(t, err)
	assert.Equal(t, ReasonQuit, reason)
	assert.Equal(t, 1, term.Len())
	assert.Equal(t, frame("a"), dev.LastFrame())
}

func TestDriver_InitialSizeAndResize(t *testing.T) {
	dev := terminaltest.New(120, 40)
	term := vt.New()
	d := NewDriver(dev, term)

	keys := make(chan keycode.Code)
	resizes := make(chan pump.Resize)

	type result struct {
		reason Reason
		err    error
	}
	done := make(chan result, 1)
	go func() {
		r, err := d.Run(keys, resizes)
		done <- result{r, err}
	}()

	require.True(t, dev.WaitFrames(1, time.Second))
	resizes <- pump.Resize{Cols: 10, Rows: 3}
	keys <- 'z'
	close(keys)

	select {
	case res := <-done:
		require.NoError(t, res.err)
		assert.Equal(t, ReasonInputClosed, res.reason)
	case <-time.After(2 * time.Second):
		t.Fatal("driver did not return")
	}

	cols, rows := term.Size()
	assert.Equal(t, uint16(10), cols)
	assert.Equal(t, uint16(3), rows)
	assert.Equal(t, frame("z"), dev.LastFrame())
	assert.Len(t, dev.Frames(), 3)
}

func TestDriver_WriteErrorEndsRun(t *testing.T) {
	errWrite := errors.New("broken pipe")
	dev := terminaltest.New(80, 24)
	dev.FailWrites(errWrite)

	d := NewDriver(dev, vt.New())
	reason, err := d.Run(feed('a'), nil)
	assert.Equal(t, ReasonDeviceError, reason)
	assert.ErrorIs(t, err, errWrite)
	assert.Zero(t, d.Applied())
}

func TestReason_String(t *testing.T) {
	assert.Equal(t, "quit", ReasonQuit.String())
	assert.Equal(t, "input_closed", ReasonInputClosed.String())
	assert.Equal(t, "device_error", ReasonDeviceError.String())
}
