package bell

import "time"

// AudioOptions shapes the bell tone
type AudioOptions struct {
	SampleRate int
	Frequency  float64
	Duration   time.Duration
	Attack     time.Duration
	Release    time.Duration
	Volume     float64
	Interval   time.Duration
}

// DefaultAudioOptions is a short A5 ding
func DefaultAudioOptions() AudioOptions {
	return AudioOptions{
		SampleRate: 44100,
		Frequency:  880,
		Duration:   120 * time.Millisecond,
		Attack:     5 * time.Millisecond,
		Release:    90 * time.Millisecond,
		Volume:     0.5,
		Interval:   DefaultInterval,
	}
}

// WithDefaults fills unset or invalid fields from DefaultAudioOptions
func (o AudioOptions) WithDefaults() AudioOptions {
	d := DefaultAudioOptions()
	if o.SampleRate <= 0 {
		o.SampleRate = d.SampleRate
	}
	if o.Frequency <= 0 {
		o.Frequency = d.Frequency
	}
	if o.Duration <= 0 {
		o.Duration = d.Duration
	}
	if o.Attack < 0 {
		o.Attack = 0
	}
	if o.Release < 0 {
		o.Release = 0
	}
	if o.Interval <= 0 {
		o.Interval = d.Interval
	}
	return o
}
