// Package logging sets up the process logger. The terminal owns stdout, so records go to a file.
package logging

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultDir     = "logs"
	DefaultFile    = "vterm.log"
	DefaultMaxSize = 10 * 1024 * 1024 // 10MB
)

// Options controls where and how records are written
type Options struct {
	Enabled bool
	Dir     string
	File    string
	Level   string
	Format  string // "text" or "json"
	MaxSize int64
}

// Logger is an slog.Logger whose level can change at runtime
type Logger struct {
	*slog.Logger
	level *slog.LevelVar
	file  *os.File
}

// Setup opens the log file, rotating it first if it grew past MaxSize
// When disabled all records are discarded
func Setup(opts Options) (*Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	lv := new(slog.LevelVar)
	lv.Set(level)

	if !opts.Enabled {
		log.SetOutput(io.Discard)
		return &Logger{Logger: newLogger(io.Discard, opts.Format, lv), level: lv}, nil
	}

	dir := opts.Dir
	if dir == "" {
		dir = DefaultDir
	}
	name := opts.File
	if name == "" {
		name = DefaultFile
	}
	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := rotate(path, maxSize); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	// Stray standard library log calls must not reach the terminal either
	log.SetOutput(f)

	return &Logger{Logger: newLogger(f, opts.Format, lv), level: lv, file: f}, nil
}

// rotate renames path to <name>.<timestamp>.log when it exceeds maxSize
func rotate(path string, maxSize int64) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat log file: %w", err)
	}
	if info.Size() <= maxSize {
		return nil
	}

	base := strings.TrimSuffix(path, filepath.Ext(path))
	rotated := fmt.Sprintf("%s.%s.log", base, time.Now().Format("20060102-150405.000"))
	if err := os.Rename(path, rotated); err != nil {
		return fmt.Errorf("rotate log file: %w", err)
	}
	return nil
}

func newLogger(w io.Writer, format string, lv *slog.LevelVar) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: lv}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

// SetLevel changes the minimum level of every logger derived from l
func (l *Logger) SetLevel(s string) error {
	level, err := ParseLevel(s)
	if err != nil {
		return err
	}
	l.level.Set(level)
	return nil
}

// Level returns the current minimum level
func (l *Logger) Level() slog.Level {
	return l.level.Level()
}

// Path returns the log file path, empty when logging is disabled
func (l *Logger) Path() string {
	if l.file == nil {
		return ""
	}
	return l.file.Name()
}

// Close closes the log file
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	log.SetOutput(io.Discard)
	return l.file.Close()
}

// ParseLevel accepts debug, info, warn(ing) and error; empty means info
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}
