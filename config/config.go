// Package config loads vterm settings from TOML or YAML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/vterm/bell"
	"github.com/lixenwraith/vterm/keycode"
	"github.com/lixenwraith/vterm/logging"
)

var (
	ErrUnknownFormat = errors.New("unknown config format")
	ErrInvalid       = errors.New("invalid config")
)

// Backends
const (
	BackendANSI  = "ansi"
	BackendTcell = "tcell"
)

// Duration is a time.Duration written as "250ms" or "1s" in config files
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the full set of runtime settings
type Config struct {
	Backend     string     `toml:"backend" yaml:"backend"`
	QuitKey     string     `toml:"quit_key" yaml:"quit_key"`
	PollTimeout Duration   `toml:"poll_timeout" yaml:"poll_timeout"`
	IdleBackoff Duration   `toml:"idle_backoff" yaml:"idle_backoff"`
	Log         LogConfig  `toml:"log" yaml:"log"`
	Bell        BellConfig `toml:"bell" yaml:"bell"`
}

type LogConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Dir     string `toml:"dir" yaml:"dir"`
	File    string `toml:"file" yaml:"file"`
	Level   string `toml:"level" yaml:"level"`
	Format  string `toml:"format" yaml:"format"`
	MaxSize int64  `toml:"max_size" yaml:"max_size"`
}

type BellConfig struct {
	Mode      string   `toml:"mode" yaml:"mode"`
	Frequency float64  `toml:"frequency" yaml:"frequency"`
	Volume    float64  `toml:"volume" yaml:"volume"`
	Duration  Duration `toml:"duration" yaml:"duration"`
}

// Default returns the settings used when no file is given
func Default() *Config {
	audio := bell.DefaultAudioOptions()
	return &Config{
		Backend:     BackendANSI,
		QuitKey:     "ctrl_q",
		PollTimeout: Duration{0},
		IdleBackoff: Duration{time.Millisecond},
		Log: LogConfig{
			Dir:     logging.DefaultDir,
			File:    logging.DefaultFile,
			Level:   "info",
			Format:  "text",
			MaxSize: logging.DefaultMaxSize,
		},
		Bell: BellConfig{
			Mode:      bell.ModeOff,
			Frequency: audio.Frequency,
			Volume:    audio.Volume,
			Duration:  Duration{audio.Duration},
		},
	}
}

// Load reads path over the defaults and validates the result; an empty path returns the defaults
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field and reports all problems at once
func (c *Config) Validate() error {
	var errs []error

	switch c.Backend {
	case BackendANSI, BackendTcell:
	default:
		errs = append(errs, fmt.Errorf("backend %q: want %s or %s", c.Backend, BackendANSI, BackendTcell))
	}

	if _, err := c.QuitCode(); err != nil {
		errs = append(errs, err)
	}

	if c.PollTimeout.Duration < 0 {
		errs = append(errs, fmt.Errorf("poll_timeout %s is negative", c.PollTimeout))
	}
	if c.IdleBackoff.Duration < 0 {
		errs = append(errs, fmt.Errorf("idle_backoff %s is negative", c.IdleBackoff))
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	switch c.Bell.Mode {
	case "", bell.ModeOff, bell.ModeTerminal, bell.ModeAudio:
	default:
		errs = append(errs, fmt.Errorf("bell.mode %q: want off, terminal or audio", c.Bell.Mode))
	}
	if c.Bell.Volume < 0 || c.Bell.Volume > 1 {
		errs = append(errs, fmt.Errorf("bell.volume %g outside [0, 1]", c.Bell.Volume))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// QuitCode resolves the quit key; only C0 control codes are accepted so the key can never be typed as text
func (c *Config) QuitCode() (keycode.Code, error) {
	code, err := keycode.Parse(c.QuitKey)
	if err != nil {
		return 0, fmt.Errorf("quit_key: %w", err)
	}
	if code >= 0x20 {
		return 0, fmt.Errorf("quit_key %q is not a control key", c.QuitKey)
	}
	return code, nil
}

// LoggingOptions maps the log section to logging.Options
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{
		Enabled: c.Log.Enabled,
		Dir:     c.Log.Dir,
		File:    c.Log.File,
		Level:   c.Log.Level,
		Format:  c.Log.Format,
		MaxSize: c.Log.MaxSize,
	}
}

// AudioOptions maps the bell section to bell.AudioOptions
func (c *Config) AudioOptions() bell.AudioOptions {
	opts := bell.DefaultAudioOptions()
	if c.Bell.Frequency > 0 {
		opts.Frequency = c.Bell.Frequency
	}
	if c.Bell.Duration.Duration > 0 {
		opts.Duration = c.Bell.Duration.Duration
	}
	opts.Volume = c.Bell.Volume
	return opts
}
