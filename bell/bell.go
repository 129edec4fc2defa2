// Package bell gives feedback when a key is rejected.
package bell

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// Ringer signals a rejected key to the user
type Ringer interface {
	Ring()
}

// Modes accepted by New
const (
	ModeOff      = "off"
	ModeTerminal = "terminal"
	ModeAudio    = "audio"
)

// ErrNoAudio is returned by New for audio mode without an AudioFactory
var ErrNoAudio = errors.New("bell: audio output not available")

// DefaultInterval is the minimum gap between two rings
const DefaultInterval = 100 * time.Millisecond

// Off never rings
var Off Ringer = off{}

type off struct{}

func (off) Ring() {}

// Limiter drops rings closer together than its interval
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

// NewLimiter creates a limiter; a non-positive interval selects DefaultInterval
func NewLimiter(interval time.Duration) *Limiter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Limiter{interval: interval, now: time.Now}
}

// Allow reports whether a ring may happen now and records it if so
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	t := l.now()
	if !l.last.IsZero() && t.Sub(l.last) < l.interval {
		return false
	}
	l.last = t
	return true
}

// Terminal rings by writing BEL to the terminal
type Terminal struct {
	mu  sync.Mutex
	w   io.Writer
	lim *Limiter
}

// NewTerminal creates a ringer writing BEL to w
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w, lim: NewLimiter(DefaultInterval)}
}

// Ring writes a single BEL byte; write errors are ignored
func (t *Terminal) Ring() {
	if !t.lim.Allow() {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.w.Write([]byte{0x07})
	if f, ok := t.w.(interface{ Flush() error }); ok {
		f.Flush()
	}
}

// AudioFactory opens the audible ringer; it lives in bell/audio so only callers that want sound link the audio stack
type AudioFactory func() (Ringer, error)

// New builds the ringer for mode; w is used by terminal mode, audio by audio mode
func New(mode string, w io.Writer, audio AudioFactory) (Ringer, error) {
	switch mode {
	case "", ModeOff:
		return Off, nil
	case ModeTerminal:
		return NewTerminal(w), nil
	case ModeAudio:
		if audio == nil {
			return nil, ErrNoAudio
		}
		return audio()
	}
	return nil, fmt.Errorf("unknown bell mode %q", mode)
}
