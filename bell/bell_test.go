package bell

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestTerminal_RateLimited(t *testing.T) {
	var buf bytes.Buffer
	r := NewTerminal(&buf)

	now := time.Unix(0, 0)
	r.lim.now = func() time.Time { return now }

	r.Ring()
	r.Ring()
	if buf.String() != "\a" {
		t.Errorf("Expected one BEL, got %q", buf.String())
	}

	now = now.Add(DefaultInterval)
	r.Ring()
	if buf.String() != "\a\a" {
		t.Errorf("Expected two BELs, got %q", buf.String())
	}
}

type ringCount int

func (c *ringCount) Ring() { *c++ }

func TestNew(t *testing.T) {
	r, err := New("", nil, nil)
	if err != nil || r != Off {
		t.Errorf("Expected Off for empty mode, got %v, %v", r, err)
	}

	var buf bytes.Buffer
	r, err = New(ModeTerminal, &buf, nil)
	if err != nil {
		t.Fatalf("New terminal failed: %v", err)
	}
	r.Ring()
	if buf.Len() != 1 {
		t.Errorf("Expected BEL written, got %q", buf.String())
	}

	if _, err := New("siren", nil, nil); err == nil {
		t.Error("Expected error for unknown mode")
	}

	if _, err := New(ModeAudio, nil, nil); !errors.Is(err, ErrNoAudio) {
		t.Errorf("Expected ErrNoAudio without a factory, got %v", err)
	}

	var rings ringCount
	r, err = New(ModeAudio, nil, func() (Ringer, error) { return &rings, nil })
	if err != nil {
		t.Fatalf("New audio failed: %v", err)
	}
	r.Ring()
	if rings != 1 {
		t.Errorf("Expected factory ringer to ring once, got %d", rings)
	}

	// Off is safe to ring
	Off.Ring()
}

func TestAudioOptions_WithDefaults(t *testing.T) {
	got := AudioOptions{Volume: 0.2, Attack: -time.Second}.WithDefaults()
	want := DefaultAudioOptions()
	if got.SampleRate != want.SampleRate || got.Frequency != want.Frequency || got.Duration != want.Duration {
		t.Errorf("Expected defaults filled, got %+v", got)
	}
	if got.Attack != 0 {
		t.Errorf("Expected negative attack clamped to 0, got %v", got.Attack)
	}
	if got.Volume != 0.2 {
		t.Errorf("Expected volume kept, got %v", got.Volume)
	}
}

func TestNewLimiter_DefaultInterval(t *testing.T) {
	l := NewLimiter(0)
	now := time.Unix(0, 0)
	l.now = func() time.Time { return now }
	if !l.Allow() || l.Allow() {
		t.Fatal("Expected first ring allowed and immediate second dropped")
	}
	now = now.Add(DefaultInterval)
	if !l.Allow() {
		t.Error("Expected ring allowed after DefaultInterval")
	}
}
