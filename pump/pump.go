// Package pump captures key events from a terminal device and forwards their canonical codes through a bounded queue.
package pump

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/vterm/keycode"
	"github.com/lixenwraith/vterm/terminal"
)

// Capacity is the key queue size between pump and driver
const Capacity = 16

// ErrSourceClosed is reported when the device signals end of input
var ErrSourceClosed = errors.New("input source closed")

// Source is the polling side of a terminal device
type Source interface {
	PollEvent(timeout time.Duration) (bool, error)
	ReadEvent() (terminal.Event, error)
}

// Observer receives events dropped because they could not be translated
type Observer interface {
	Rejected(ev terminal.Event, err error)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(ev terminal.Event, err error)

func (f ObserverFunc) Rejected(ev terminal.Event, err error) { f(ev, err) }

// Resize is a terminal size change in cells
type Resize struct {
	Cols uint16
	Rows uint16
}

// Pump polls a Source and forwards translated keycodes
type Pump struct {
	src         Source
	translate   func(terminal.Event) (keycode.Code, error)
	observer    Observer
	logger      *slog.Logger
	pollTimeout time.Duration
	idleBackoff time.Duration

	keys    chan keycode.Code
	resizes chan Resize

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	// Termination cause, written once before doneCh closes
	err error

	forwarded atomic.Uint64
	rejected  atomic.Uint64
}

// Option configures a Pump
type Option func(*Pump)

// WithPollTimeout sets the timeout passed to every poll; zero keeps polling non-blocking
func WithPollTimeout(d time.Duration) Option {
	return func(p *Pump) {
		if d >= 0 {
			p.pollTimeout = d
		}
	}
}

// WithIdleBackoff sets how long to wait after an empty poll; the yield happens regardless
func WithIdleBackoff(d time.Duration) Option {
	return func(p *Pump) {
		if d >= 0 {
			p.idleBackoff = d
		}
	}
}

// WithObserver sets the sink for rejected events
func WithObserver(o Observer) Option {
	return func(p *Pump) {
		p.observer = o
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(p *Pump) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithTranslator replaces keycode.Translate
func WithTranslator(fn func(terminal.Event) (keycode.Code, error)) Option {
	return func(p *Pump) {
		if fn != nil {
			p.translate = fn
		}
	}
}

// New creates a pump reading from src
func New(src Source, opts ...Option) *Pump {
	p := &Pump{
		src:         src,
		translate:   keycode.Translate,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		idleBackoff: time.Millisecond,
		keys:        make(chan keycode.Code, Capacity),
		resizes:     make(chan Resize, 1),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Keys returns the key queue; it is closed when Run returns
func (p *Pump) Keys() <-chan keycode.Code {
	return p.keys
}

// Resizes returns the resize queue; only the newest pending size is kept
func (p *Pump) Resizes() <-chan Resize {
	return p.resizes
}

// Done is closed when Run has returned
func (p *Pump) Done() <-chan struct{} {
	return p.doneCh
}

// Err returns why Run ended: nil after Stop, the source error otherwise
// Only meaningful after Done is closed
func (p *Pump) Err() error {
	return p.err
}

// Forwarded returns the number of keycodes queued so far
func (p *Pump) Forwarded() uint64 {
	return p.forwarded.Load()
}

// Rejected returns the number of events dropped by translation
func (p *Pump) Rejected() uint64 {
	return p.rejected.Load()
}

// Stop is called by the receiving side when it no longer consumes keys
// A send blocked on a full queue is released and Run returns. Safe to call repeatedly
func (p *Pump) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})
}

// Run polls until the source fails or Stop is called, then closes Keys
// Must be called once; later calls return immediately
// A panic propagates with Keys and Done left open, so the driver keeps waiting while the crash handler restores the terminal
func (p *Pump) Run() {
	if !p.running.CompareAndSwap(false, true) {
		return
	}
	p.loop()
	close(p.keys)
	close(p.doneCh)
}

func (p *Pump) loop() {
	idle := time.NewTimer(time.Hour)
	idle.Stop()
	defer idle.Stop()

	for {
		select {
		case <-p.stopCh:
			p.logger.Debug("pump stopped")
			return
		default:
		}

		ready, err := p.src.PollEvent(p.pollTimeout)
		if err != nil {
			p.finish(fmt.Errorf("poll: %w", err))
			return
		}

		if !ready {
			// Cooperative yield after every empty poll, then optional backoff
			runtime.Gosched()
			if p.idleBackoff > 0 {
				idle.Reset(p.idleBackoff)
				select {
				case <-idle.C:
				case <-p.stopCh:
					p.logger.Debug("pump stopped")
					return
				}
			}
			continue
		}

		ev, err := p.src.ReadEvent()
		if err != nil {
			p.finish(fmt.Errorf("read: %w", err))
			return
		}

		if !p.dispatch(ev) {
			return
		}
		runtime.Gosched()
	}
}

// dispatch handles one event, returns false when the loop must end
func (p *Pump) dispatch(ev terminal.Event) bool {
	switch ev.Type {
	case terminal.EventKey:
		code, err := p.translate(ev)
		if err != nil {
			p.rejected.Add(1)
			p.logger.Warn("key rejected", "event", ev.String(), "error", err)
			if p.observer != nil {
				p.observer.Rejected(ev, err)
			}
			return true
		}

		// Blocks while the queue is full; only Stop releases it
		select {
		case p.keys <- code:
			p.forwarded.Add(1)
			return true
		case <-p.stopCh:
			p.logger.Debug("pump stopped with key pending", "code", code.String())
			return false
		}

	case terminal.EventResize:
		p.offerResize(Resize{Cols: clampU16(ev.Width), Rows: clampU16(ev.Height)})
		return true

	case terminal.EventClosed:
		p.finish(ErrSourceClosed)
		return false

	case terminal.EventError:
		err := ev.Err
		if err == nil {
			err = ErrSourceClosed
		}
		p.finish(fmt.Errorf("event: %w", err))
		return false
	}
	return true
}

// offerResize keeps only the newest size pending
func (p *Pump) offerResize(r Resize) {
	select {
	case p.resizes <- r:
		return
	default:
	}
	select {
	case <-p.resizes:
	default:
	}
	select {
	case p.resizes <- r:
	default:
	}
}

func (p *Pump) finish(err error) {
	p.err = err
	p.logger.Info("input ended", "error", err, "forwarded", p.forwarded.Load(), "rejected", p.rejected.Load())
}

func clampU16(v int) uint16 {
	if v < 0 {
		return 0
	}
	if v > 0xffff {
		return 0xffff
	}
	return uint16(v)
}
