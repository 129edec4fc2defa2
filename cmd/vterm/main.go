package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/lixenwraith/vterm/bell"
	"github.com/lixenwraith/vterm/bell/audio"
	"github.com/lixenwraith/vterm/config"
	"github.com/lixenwraith/vterm/core"
	"github.com/lixenwraith/vterm/logging"
	"github.com/lixenwraith/vterm/session"
	"github.com/lixenwraith/vterm/status"
	"github.com/lixenwraith/vterm/terminal"
)

// Exit codes
const (
	exitOK     = 0
	exitDevice = 1
	exitUsage  = 2
)

var (
	configFlag   = flag.String("config", "", "Config file (.toml, .yaml, .yml)")
	backendFlag  = flag.String("backend", "", "Terminal backend: ansi, tcell")
	debugFlag    = flag.Bool("debug", false, "Enable file logging at debug level")
	logLevelFlag = flag.String("log-level", "", "Log level: debug, info, warn, error")
	bellFlag     = flag.String("bell", "", "Rejected key feedback: off, terminal, audio")
)

func main() {
	// Terminal is restored by the registered cleanup even if the session panics
	defer core.Recover()

	flag.Parse()
	os.Exit(run())
}

func run() int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "vterm: %v\n", err)
		return exitUsage
	}
	opts, err := sessionOptions(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vterm: %v\n", err)
		return exitUsage
	}

	logger, err := logging.Setup(cfg.LoggingOptions())
	if err != nil {
		fmt.Fprintf(os.Stderr, "vterm: logging: %v\n", err)
		return exitUsage
	}
	defer logger.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	core.TrapSignals(ctx)

	if *configFlag != "" {
		w, err := config.NewWatcher(*configFlag, func(c *config.Config) {
			if err := logger.SetLevel(c.Log.Level); err != nil {
				logger.Warn("log level not applied", "error", err)
			}
		}, config.WithWatchLogger(logger.Logger))
		if err != nil {
			logger.Warn("config watch disabled", "error", err)
		} else {
			core.Go(func() { w.Run(ctx) })
		}
	}

	dev, err := openDevice(cfg.Backend)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vterm: %v\n", err)
		return exitDevice
	}

	ringer, err := bell.New(cfg.Bell.Mode, terminal.BellWriter(dev), audio.Factory(cfg.AudioOptions()))
	if err != nil {
		logger.Warn("bell disabled", "mode", cfg.Bell.Mode, "error", err)
		ringer = bell.Off
	}

	stats := status.NewRegistry()
	opts.Logger = logger.Logger
	opts.Bell = ringer
	opts.Status = stats
	reason, err := session.Run(dev, opts)
	logger.Debug("session stats", stats.Snapshot()...)
	if err != nil {
		logger.Error("session failed", "reason", reason.String(), "error", err)
		fmt.Fprintf(os.Stderr, "vterm: %v\n", err)
		return exitDevice
	}
	return exitOK
}

// loadConfig reads the config file then applies flags given on the command line
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configFlag)
	if err != nil {
		return nil, err
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			cfg.Backend = *backendFlag
		case "debug":
			if *debugFlag {
				cfg.Log.Enabled = true
				cfg.Log.Level = "debug"
			}
		case "log-level":
			cfg.Log.Enabled = true
			cfg.Log.Level = *logLevelFlag
		case "bell":
			cfg.Bell.Mode = *bellFlag
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// sessionOptions maps the config fields a session needs; logger, bell and status are filled in by run
func sessionOptions(cfg *config.Config) (session.Options, error) {
	quit, err := cfg.QuitCode()
	if err != nil {
		return session.Options{}, err
	}
	return session.Options{
		QuitKey:     quit,
		PollTimeout: cfg.PollTimeout.Duration,
		IdleBackoff: idleBackoff(cfg),
	}, nil
}

func openDevice(backend string) (terminal.Device, error) {
	switch backend {
	case config.BackendTcell:
		return terminal.NewTcellScreenDevice()
	case config.BackendANSI, "":
		return terminal.NewANSIDevice(terminal.NewStdBackend()), nil
	}
	return nil, fmt.Errorf("unknown backend %q", backend)
}

// idleBackoff maps a configured zero to "no sleep" since session treats zero as the default
func idleBackoff(cfg *config.Config) time.Duration {
	if cfg.IdleBackoff.Duration == 0 {
		return -1
	}
	return cfg.IdleBackoff.Duration
}
