// Package lifecycle implements the sampling lifecycle state machine: it owns
// start/stop semantics, subscribes to the power-state notifier, and
// guarantees at most one active sampling loop and at most one mounted overlay
// at any time.
package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/opd-ai/go-fpsmeter/internal/overlay"
	"github.com/opd-ai/go-fpsmeter/internal/power"
	"github.com/opd-ai/go-fpsmeter/internal/sampler"
)

// State is the sampling lifecycle state.
type State int

const (
	// StateIdle means no sampling loop is running and the overlay is
	// unmounted.
	StateIdle State = iota
	// StateActive means the loop is running and the overlay is mounted.
	StateActive
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

// Logger is the subset of the embedding logger the controller needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...any) {}
func (nopLogger) Info(msg string, args ...any)  {}

// TransitionHook is invoked after the sampling state changes, outside the
// controller's lock. active reports the new state; powerDriven distinguishes
// sleep/wake transitions from explicit start/stop requests. Must not block.
type TransitionHook func(active, powerDriven bool)

// Config wires a Controller to its collaborators.
type Config struct {
	// Source is the counter resource adapter. Owned by the controller once
	// passed in; released on Shutdown.
	Source sampler.Source
	// Sink receives each sampled value.
	Sink sampler.TextSink
	// Host places the overlay on screen. Invoked via UI only.
	Host overlay.SurfaceHost
	// Notifier delivers sleep/wake events while subscribed.
	Notifier power.Notifier
	// UI is the single-threaded dispatcher all host calls are marshalled to.
	UI *overlay.Dispatcher
	// Period is the sampling interval; zero means sampler.DefaultPeriod.
	Period time.Duration
	// Descriptor is the initial overlay layout. Its OffsetY is refreshed
	// from Host.TopInset on each mount and on inset changes.
	Descriptor overlay.Descriptor
	// Logger may be nil.
	Logger Logger
	// Observer, if set, is attached to every sampling loop.
	Observer sampler.SampleObserver
	// OnTransition, if set, fires after each state change.
	OnTransition TransitionHook
}

// Controller is the lifecycle state machine. All entry points are safe to
// call from arbitrary goroutines; the internal begin/end procedures are
// idempotent, so racing start/stop calls and power events degrade to no-ops
// rather than duplicated loops or overlays.
type Controller struct {
	source       sampler.Source
	sink         sampler.TextSink
	host         overlay.SurfaceHost
	notifier     power.Notifier
	ui           *overlay.Dispatcher
	period       time.Duration
	logger       Logger
	observer     sampler.SampleObserver
	onTransition TransitionHook

	mu         sync.Mutex
	state      State
	subscribed bool
	mounted    bool
	desc       overlay.Descriptor
	cancelLoop context.CancelFunc
	loopDone   chan struct{}
	closed     bool
}

// Controller subscribes itself to the power notifier.
var _ power.SleepWaker = (*Controller)(nil)

// New creates an idle controller. It does not subscribe or mount anything.
func New(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	return &Controller{
		source:       cfg.Source,
		sink:         cfg.Sink,
		host:         cfg.Host,
		notifier:     cfg.Notifier,
		ui:           cfg.UI,
		period:       cfg.Period,
		logger:       logger,
		observer:     cfg.Observer,
		onTransition: cfg.OnTransition,
		desc:         cfg.Descriptor,
	}
}

// StartReading registers the power subscription if needed and begins
// sampling. Idempotent: when already active it only ensures the subscription
// is registered.
func (c *Controller) StartReading() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if !c.subscribed {
		c.notifier.Subscribe(c)
		c.subscribed = true
		c.logger.Debug("power subscription registered")
	}
	changed := c.beginSampling()
	c.mu.Unlock()

	if changed {
		c.notifyTransition(true, false)
	}
}

// StopReading ends sampling and unregisters the power subscription.
// Idempotent when already idle.
func (c *Controller) StopReading() {
	c.mu.Lock()
	changed := c.endSampling()
	if c.subscribed {
		c.notifier.Unsubscribe(c)
		c.subscribed = false
		c.logger.Debug("power subscription unregistered")
	}
	c.mu.Unlock()

	if changed {
		c.notifyTransition(false, false)
	}
}

// OnGoingToSleep ends sampling but keeps the subscription registered so a
// later wake resumes automatically. Implements power.SleepWaker.
func (c *Controller) OnGoingToSleep() {
	c.mu.Lock()
	changed := c.endSampling()
	c.mu.Unlock()

	if changed {
		c.logger.Info("display sleeping, sampling suspended")
		c.notifyTransition(false, true)
	}
}

// OnFinishedWakingUp resumes sampling without touching the subscription.
// Implements power.SleepWaker.
func (c *Controller) OnFinishedWakingUp() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	changed := c.beginSampling()
	c.mu.Unlock()

	if changed {
		c.logger.Info("display awake, sampling resumed")
		c.notifyTransition(true, true)
	}
}

// InsetsChanged records a new top inset and, if the overlay is mounted,
// requests exactly one layout update from the surface host. No state
// transition occurs.
func (c *Controller) InsetsChanged(topInset int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.desc.OffsetY == topInset {
		return
	}
	c.desc.OffsetY = topInset
	if !c.mounted {
		return
	}

	d := c.desc
	c.ui.Dispatch(func() {
		c.host.Update(d)
	})
	c.logger.Debug("overlay repositioned", "top_inset", topInset)
}

// IsReading reports whether sampling is active.
func (c *Controller) IsReading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateActive
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribed reports whether the power subscription is registered.
func (c *Controller) Subscribed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subscribed
}

// Shutdown runs a full stop, then releases the counter resource and the UI
// dispatcher. The controller accepts no further start requests afterwards.
// Safe to call multiple times.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.StopReading()

	if err := c.source.Close(); err != nil {
		c.logger.Debug("closing counter source", "error", err)
	}
	c.ui.Close()
}

// beginSampling mounts the overlay and launches the sampling loop. Idempotent:
// an already-active loop returns immediately. Caller holds c.mu. Reports
// whether the state changed.
func (c *Controller) beginSampling() bool {
	if c.cancelLoop != nil {
		return false
	}

	if !c.mounted {
		c.mounted = true
		if inset := c.host.TopInset(); inset > 0 {
			c.desc.OffsetY = inset
		}
		d := c.desc
		c.ui.Dispatch(func() {
			c.host.Mount(d)
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	loop := sampler.NewLoop(c.source, c.sink, c.period, loggerOrNil(c.logger))
	if c.observer != nil {
		loop.SetObserver(c.observer)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		loop.Run(ctx)
	}()

	c.cancelLoop = cancel
	c.loopDone = done
	c.state = StateActive
	return true
}

// endSampling cancels the loop, waits for the in-flight iteration to finish,
// and unmounts the overlay. Idempotent: no active loop returns immediately.
// Caller holds c.mu. Reports whether the state changed.
func (c *Controller) endSampling() bool {
	if c.cancelLoop == nil {
		return false
	}

	c.cancelLoop()
	<-c.loopDone
	c.cancelLoop = nil
	c.loopDone = nil

	if c.mounted {
		c.mounted = false
		c.ui.Dispatch(func() {
			c.host.Unmount()
		})
	}

	c.state = StateIdle
	return true
}

// notifyTransition fires the transition hook outside the lock.
func (c *Controller) notifyTransition(active, powerDriven bool) {
	if c.onTransition != nil {
		c.onTransition(active, powerDriven)
	}
}

// loggerOrNil adapts the controller logger to the sampler's logger interface.
func loggerOrNil(l Logger) sampler.Logger {
	if l == nil {
		return nil
	}
	return samplerLogger{l}
}

// samplerLogger maps the sampler's Error level onto Info: probe failures are
// recoverable by contract and never escalate.
type samplerLogger struct {
	l Logger
}

func (s samplerLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s samplerLogger) Error(msg string, args ...any) { s.l.Info(msg, args...) }
