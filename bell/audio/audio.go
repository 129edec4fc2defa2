// Package audio plays the bell as a synthesized tone through the system speaker.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/vterm/bell"
)

var (
	speakerOnce sync.Once
	speakerErr  error
)

// Player rings with a synthesized tone on the default output device
type Player struct {
	opts bell.AudioOptions
	lim  *bell.Limiter
}

// New initializes the speaker once per process
func New(opts bell.AudioOptions) (*Player, error) {
	opts = opts.WithDefaults()
	rate := beep.SampleRate(opts.SampleRate)
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(rate, rate.N(100*time.Millisecond))
	})
	if speakerErr != nil {
		return nil, speakerErr
	}
	return &Player{opts: opts, lim: bell.NewLimiter(opts.Interval)}, nil
}

// Ring queues one tone; it does not wait for playback
func (p *Player) Ring() {
	if !p.lim.Allow() {
		return
	}
	speaker.Play(Tone(p.opts))
}

// Tone builds the bell: fundamental plus an octave overtone with a faster release
func Tone(opts bell.AudioOptions) beep.Streamer {
	opts = opts.WithDefaults()
	rate := beep.SampleRate(opts.SampleRate)

	fund := newSine(opts.Frequency, opts.Duration, rate)
	fundShaped := newEnvelope(fund, opts.Duration, opts.Attack, opts.Release, rate)

	over := newSine(opts.Frequency*2, opts.Duration, rate)
	overShaped := newEnvelope(over, opts.Duration, opts.Attack, opts.Release/2, rate)

	mixed := beep.Mix(
		newVolume(fundShaped, 0.7),
		newVolume(overShaped, 0.3),
	)
	return beep.Take(rate.N(opts.Duration), newVolume(mixed, opts.Volume))
}

// sine is a fixed-length sine oscillator
type sine struct {
	freq     float64
	phase    float64
	length   int
	position int
	rate     beep.SampleRate
}

func newSine(freq float64, d time.Duration, rate beep.SampleRate) beep.Streamer {
	return &sine{freq: freq, length: rate.N(d), rate: rate}
}

func (s *sine) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if s.position >= s.length {
			return i, i > 0
		}
		val := math.Sin(2 * math.Pi * s.phase)
		samples[i][0] = val
		samples[i][1] = val

		s.phase += s.freq / float64(s.rate)
		s.phase -= math.Floor(s.phase)
		s.position++
	}
	return len(samples), true
}

func (s *sine) Err() error { return nil }

// envelope ramps volume up over attack and down over release
type envelope struct {
	streamer     beep.Streamer
	position     int
	attack       int
	release      int
	releaseStart int
	total        int
}

func newEnvelope(s beep.Streamer, d, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(d)
	att := min(rate.N(attack), total)
	rel := min(rate.N(release), total-att)
	return &envelope{
		streamer:     s,
		attack:       att,
		release:      rel,
		releaseStart: total - rel,
		total:        total,
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		if e.position >= e.total {
			return i, i > 0
		}

		vol := 1.0
		if e.position < e.attack {
			vol = float64(e.position) / float64(e.attack)
		}
		if e.release > 0 && e.position >= e.releaseStart {
			vol = float64(e.total-e.position) / float64(e.release)
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// Factory adapts New for bell.New
func Factory(opts bell.AudioOptions) bell.AudioFactory {
	return func() (bell.Ringer, error) {
		p, err := New(opts)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

// newVolume scales linearly; zero or less is silent
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}
