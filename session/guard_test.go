package session

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/vterm/terminal/terminaltest"
)

func TestGuard_AcquireAndRelease(t *testing.T) {
	dev := terminaltest.New(80, 24)

	g, err := Acquire(dev)
	require.NoError(t, err)
	assert.True(t, dev.Raw())
	assert.True(t, dev.Alt())
	assert.Equal(t, []string{"enter_alt", "hide_cursor", "enable_raw"}, dev.Calls())

	require.NoError(t, g.Release())
	assert.True(t, dev.Restored())
	assert.Equal(t, []string{
		"enter_alt", "hide_cursor", "enable_raw",
		"show_cursor", "leave_alt", "disable_raw",
	}, dev.Calls())
}

func TestGuard_ReleaseRunsOnce(t *testing.T) {
	dev := terminaltest.New(80, 24)
	g, err := Acquire(dev)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Release()
		}()
	}
	wg.Wait()
	g.Release()

	assert.Len(t, dev.Calls(), 6)
	assert.True(t, dev.Restored())
}

func TestGuard_PartialAcquireIsUndone(t *testing.T) {
	errRaw := errors.New("not a tty")
	dev := terminaltest.New(80, 24)
	dev.FailRawMode(errRaw)

	g, err := Acquire(dev)
	assert.Nil(t, g)
	assert.ErrorIs(t, err, errRaw)
	assert.True(t, dev.Restored())
	assert.Equal(t, []string{
		"enter_alt", "hide_cursor", "enable_raw",
		"show_cursor", "leave_alt",
	}, dev.Calls())
}
