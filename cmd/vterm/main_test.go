package main

import (
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/vterm/config"
	"github.com/lixenwraith/vterm/keycode"
)

func TestLoadConfig_FlagsOverrideDefaults(t *testing.T) {
	require.NoError(t, flag.Set("backend", "tcell"))
	require.NoError(t, flag.Set("bell", "terminal"))
	require.NoError(t, flag.Set("debug", "true"))
	t.Cleanup(func() {
		flag.Set("backend", "")
		flag.Set("bell", "")
		flag.Set("debug", "false")
	})

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, config.BackendTcell, cfg.Backend)
	assert.Equal(t, "terminal", cfg.Bell.Mode)
	assert.True(t, cfg.Log.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestIdleBackoff(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, time.Millisecond, idleBackoff(cfg))

	cfg.IdleBackoff.Duration = 0
	assert.Negative(t, idleBackoff(cfg))
}

func TestSessionOptions(t *testing.T) {
	cfg := config.Default()
	opts, err := sessionOptions(cfg)
	require.NoError(t, err)
	assert.Equal(t, keycode.CtrlQ, opts.QuitKey)
	assert.Equal(t, time.Millisecond, opts.IdleBackoff)

	cfg.QuitKey = "ctrl_d"
	opts, err = sessionOptions(cfg)
	require.NoError(t, err)
	assert.Equal(t, keycode.CtrlD, opts.QuitKey)
}

func TestSessionOptions_BadQuitKey(t *testing.T) {
	for _, name := range []string{"f1", "q", "left"} {
		cfg := config.Default()
		cfg.QuitKey = name
		_, err := sessionOptions(cfg)
		assert.Error(t, err, name)
	}
}

func TestOpenDevice_UnknownBackend(t *testing.T) {
	_, err := openDevice("sdl")
	assert.Error(t, err)
}
