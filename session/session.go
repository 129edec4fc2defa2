// Package session runs one virtual terminal session: it owns the terminal modes,
// starts the input pump and drives the state machine until the session ends.
package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lixenwraith/vterm/bell"
	"github.com/lixenwraith/vterm/core"
	"github.com/lixenwraith/vterm/keycode"
	"github.com/lixenwraith/vterm/pump"
	"github.com/lixenwraith/vterm/status"
	"github.com/lixenwraith/vterm/terminal"
	"github.com/lixenwraith/vterm/vt"
)

// DefaultStopTimeout bounds the wait for the pump after the driver returns
const DefaultStopTimeout = 500 * time.Millisecond

// Options configures a session; the zero value is usable
type Options struct {
	QuitKey     keycode.Code // Zero selects vt.DefaultQuitKey
	PollTimeout time.Duration
	IdleBackoff time.Duration // Zero selects 1ms; negative disables the sleep
	StopTimeout time.Duration
	Logger      *slog.Logger
	Bell        bell.Ringer
	Observer    pump.Observer // Receives rejected keys in addition to the bell
	Status      *status.Registry
}

// Metric keys published to Options.Status
const (
	MetricID        = "session.id"
	MetricReason    = "session.reason"
	MetricForwarded = "pump.forwarded"
	MetricRejected  = "pump.rejected"
	MetricApplied   = "driver.applied"
	MetricFrames    = "driver.frames"
	MetricBuffered  = "vt.buffered"
)

func (o Options) withDefaults() Options {
	if o.QuitKey == 0 {
		o.QuitKey = vt.DefaultQuitKey
	}
	if o.IdleBackoff == 0 {
		o.IdleBackoff = time.Millisecond
	} else if o.IdleBackoff < 0 {
		o.IdleBackoff = 0
	}
	if o.StopTimeout <= 0 {
		o.StopTimeout = DefaultStopTimeout
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.Bell == nil {
		o.Bell = bell.Off
	}
	if o.Status == nil {
		o.Status = status.NewRegistry()
	}
	return o
}

// Run takes over dev until the quit key, end of input or a device error
// Terminal modes are restored exactly once on every return path; on a panic the crash handler restores them
func Run(dev terminal.Device, opts Options) (reason Reason, err error) {
	opts = opts.withDefaults()
	id := uuid.NewString()
	logger := opts.Logger.With("session", id)
	opts.Status.Label(MetricID).Set(id)

	guard, err := Acquire(dev)
	if err != nil {
		return ReasonDeviceError, fmt.Errorf("acquire terminal: %w", err)
	}
	core.SetCleanup(guard.Release)
	logger.Info("session started", "quit_key", opts.QuitKey.String())

	term := vt.New(vt.WithQuitKey(opts.QuitKey))
	p := pump.New(dev,
		pump.WithPollTimeout(opts.PollTimeout),
		pump.WithIdleBackoff(opts.IdleBackoff),
		pump.WithLogger(logger),
		pump.WithObserver(rejectObserver(opts.Bell, opts.Status.Counter(MetricRejected), opts.Observer)),
	)
	driver := NewDriver(dev, term, WithLogger(logger))

	defer func() {
		p.Stop()
		select {
		case <-p.Done():
		case <-time.After(opts.StopTimeout):
			logger.Warn("pump did not stop in time", "timeout", opts.StopTimeout)
		}

		core.SetCleanup(nil)
		if rerr := guard.Release(); rerr != nil {
			err = errors.Join(err, fmt.Errorf("restore terminal: %w", rerr))
		}

		publish(opts.Status, reason, p, driver, term)
		cols, rows := term.Size()
		logger.Info("session ended",
			"reason", reason.String(),
			"applied", driver.Applied(),
			"rejected", p.Rejected(),
			"buffered", term.Len(),
			"cols", cols, "rows", rows,
			"error", err,
		)
	}()

	core.Go(p.Run)

	reason, err = driver.Run(p.Keys(), p.Resizes())
	if reason == ReasonInputClosed {
		<-p.Done()
		if perr := p.Err(); perr != nil {
			logger.Info("input closed", "cause", perr)
		}
	}
	return reason, err
}

// publish writes final counters; the pump may still be running if it missed the stop timeout
func publish(reg *status.Registry, reason Reason, p *pump.Pump, d *Driver, term *vt.Terminal) {
	reg.Label(MetricReason).Set(reason.String())
	reg.Counter(MetricForwarded).Set(int64(p.Forwarded()))
	reg.Counter(MetricApplied).Set(int64(d.Applied()))
	reg.Counter(MetricFrames).Set(int64(d.Frames()))
	reg.Counter(MetricBuffered).Set(int64(term.Len()))
}

// rejectObserver counts, rings the bell and forwards to next
func rejectObserver(r bell.Ringer, count *status.Counter, next pump.Observer) pump.Observer {
	return pump.ObserverFunc(func(ev terminal.Event, err error) {
		count.Add(1)
		r.Ring()
		if next != nil {
			next.Rejected(ev, err)
		}
	})
}
