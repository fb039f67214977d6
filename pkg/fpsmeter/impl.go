package fpsmeter

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-fpsmeter/internal/config"
	"github.com/opd-ai/go-fpsmeter/internal/lifecycle"
	"github.com/opd-ai/go-fpsmeter/internal/overlay"
	"github.com/opd-ai/go-fpsmeter/internal/power"
	"github.com/opd-ai/go-fpsmeter/internal/sampler"
)

// defaultWindowTitle names the overlay window when no override is given.
const defaultWindowTitle = "fpsmeter"

// meterImpl is the private implementation of the Meter interface.
type meterImpl struct {
	cfg          *config.Config
	opts         Options
	configSource string
	configLoader func() (*config.Config, error)

	logger  Logger
	metrics *Metrics

	source     sampler.Source
	dispatcher *overlay.Dispatcher
	surface    *overlay.EbitenSurface // nil in headless mode
	sink       *overlay.Sink
	notifier   power.Notifier
	dpms       *power.DPMSNotifier // owned notifier to stop on Close, if any
	controller *lifecycle.Controller

	watcher *configWatcher

	closed      atomic.Bool
	startTime   atomic.Value // time.Time
	sampleCount atomic.Uint64
	lastValue   atomic.Int64
	lastError   atomic.Value // error

	mu           sync.RWMutex
	errorHandler ErrorHandler
	eventHandler EventHandler
}

// Verify interface implementation at compile time.
var _ Meter = (*meterImpl)(nil)

// newMeter wires all collaborators. The counter resource is opened here, so a
// missing counter fails construction and no sampling ever occurs.
func newMeter(cfg *config.Config, opts *Options, configSource string, loader func() (*config.Config, error)) (Meter, error) {
	if opts == nil {
		defaultOpts := DefaultOptions()
		opts = &defaultOpts
	}

	// Option overrides before validation.
	if opts.CounterPath != "" {
		cfg.CounterPath = opts.CounterPath
		cfg.Remote = config.RemoteConfig{}
	}
	if opts.UpdateInterval > 0 {
		cfg.UpdateInterval = opts.UpdateInterval
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = NopLogger()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = DefaultMetrics()
	}

	m := &meterImpl{
		cfg:          cfg,
		opts:         *opts,
		configSource: configSource,
		configLoader: loader,
		logger:       logger,
		metrics:      metrics,
	}

	// Sample source: fatal if unavailable (no retry).
	var err error
	if cfg.Remote.Enabled() {
		m.source, err = sampler.DialSSHSource(sampler.SSHSourceConfig{
			Host:        cfg.Remote.Host,
			User:        cfg.Remote.User,
			KeyFile:     cfg.Remote.KeyFile,
			CounterPath: cfg.Remote.CounterPath,
		})
	} else {
		m.source, err = sampler.OpenFileSource(cfg.CounterPath)
	}
	if err != nil {
		return nil, err
	}

	m.dispatcher = overlay.NewDispatcher()

	var renderer overlay.Renderer
	var host overlay.SurfaceHost
	if opts.Headless {
		nop := overlay.NopHost{}
		host, renderer = nop, nop
	} else {
		title := opts.WindowTitle
		if title == "" {
			title = defaultWindowTitle
		}
		m.surface = overlay.NewEbitenSurface(title)
		m.surface.SetRunErrorHandler(func(err error) {
			m.notifyError(fmt.Errorf("overlay window: %w", err))
		})
		host, renderer = m.surface, m.surface
	}

	m.sink = overlay.NewSink(m.dispatcher, renderer, cfg.TextTemplate)
	m.sink.SetUpdateHook(metrics.IncrementSinkUpdates)

	m.notifier = opts.Notifier
	if m.notifier == nil {
		if dpms, derr := power.NewDPMSNotifier(0); derr == nil {
			dpms.Start()
			m.dpms = dpms
			m.notifier = dpms
		} else {
			logger.Warn("no power-state source available, sleep/wake handling disabled", "error", derr)
			m.notifier = power.NewManualNotifier()
		}
	}

	m.controller = lifecycle.New(lifecycle.Config{
		Source:   m.source,
		Sink:     m.sink,
		Host:     host,
		Notifier: m.notifier,
		UI:       m.dispatcher,
		Period:   cfg.UpdateInterval,
		Descriptor: overlay.Descriptor{
			Floating:     cfg.Floating,
			ClickThrough: cfg.ClickThrough,
			Translucent:  cfg.Translucent,
			FontSize:     cfg.FontSize,
			TextColor:    cfg.TextColor,
		},
		Logger:       logger,
		Observer:     m.observeSample,
		OnTransition: m.onTransition,
	})

	return m, nil
}

// StartReading begins sampling. Idempotent.
func (m *meterImpl) StartReading() error {
	if m.closed.Load() {
		return fmt.Errorf("meter is closed")
	}

	if err := m.ensureWatcher(); err != nil {
		// Hot reload is a convenience; its failure does not block reading.
		m.notifyError(fmt.Errorf("config watch: %w", err))
	}

	m.controller.StartReading()
	return nil
}

// StopReading stops sampling and unsubscribes. Idempotent.
func (m *meterImpl) StopReading() error {
	m.controller.StopReading()
	return nil
}

// IsReading reports whether sampling is currently active.
func (m *meterImpl) IsReading() bool {
	return m.controller.IsReading()
}

// UpdateInsets repositions a mounted overlay to the new top inset.
func (m *meterImpl) UpdateInsets(topInset int) {
	m.controller.InsetsChanged(topInset)
}

// ReloadConfig re-reads the configuration source and applies the text
// template in place. Sampling continues uninterrupted. Source and interval
// changes require a new Meter and are ignored here.
func (m *meterImpl) ReloadConfig() error {
	if m.configLoader == nil {
		return fmt.Errorf("no config loader available")
	}

	newCfg, err := m.configLoader()
	if err != nil {
		wrapped := fmt.Errorf("config reload failed: %w", err)
		m.notifyError(wrapped)
		return wrapped
	}
	if err := newCfg.Validate(); err != nil {
		wrapped := fmt.Errorf("config reload failed: %w", err)
		m.notifyError(wrapped)
		return wrapped
	}

	m.mu.Lock()
	m.cfg.TextTemplate = newCfg.TextTemplate
	m.mu.Unlock()

	m.sink.SetTemplate(newCfg.TextTemplate)

	m.metrics.IncrementConfigReloads()
	m.emitEvent(EventConfigReloaded, "configuration reloaded")
	return nil
}

// Status returns detailed state information.
func (m *meterImpl) Status() Status {
	var startTime time.Time
	if v := m.startTime.Load(); v != nil {
		startTime = v.(time.Time)
	}

	return Status{
		Reading:      m.controller.IsReading(),
		Subscribed:   m.controller.Subscribed(),
		StartTime:    startTime,
		SampleCount:  m.sampleCount.Load(),
		LastValue:    int(m.lastValue.Load()),
		LastError:    m.getError(),
		ConfigSource: m.configSource,
	}
}

// SetErrorHandler registers a callback for runtime errors.
func (m *meterImpl) SetErrorHandler(handler ErrorHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorHandler = handler
}

// SetEventHandler registers a callback for lifecycle events.
func (m *meterImpl) SetEventHandler(handler EventHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventHandler = handler
}

// Metrics returns the metrics collector for this instance.
func (m *meterImpl) Metrics() *Metrics {
	return m.metrics
}

// Close stops reading and releases all resources. Safe to call multiple
// times.
func (m *meterImpl) Close() error {
	if m.closed.Swap(true) {
		return nil
	}

	m.mu.Lock()
	watcher := m.watcher
	m.watcher = nil
	m.mu.Unlock()
	if watcher != nil {
		watcher.Stop()
	}

	// Shutdown stops the loop, closes the counter source, and drains the UI
	// dispatcher.
	m.controller.Shutdown()

	if m.dpms != nil {
		m.dpms.Stop()
	}
	if m.surface != nil {
		m.surface.Close()
		overlay.CloseHints()
	}

	m.logger.Info("meter closed")
	return nil
}

// ensureWatcher lazily starts the config hot-reload watcher when enabled.
func (m *meterImpl) ensureWatcher() error {
	if !m.opts.WatchConfig || m.configSource == "reader" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.watcher != nil {
		return nil
	}

	watcher, err := newConfigWatcher(
		m.configSource,
		m.opts.WatchDebounce,
		m.ReloadConfig,
		m.notifyError,
	)
	if err != nil {
		return err
	}
	watcher.Start()
	m.watcher = watcher
	return nil
}

// observeSample records per-sample bookkeeping. Runs on the sampling
// goroutine; must not block.
func (m *meterImpl) observeSample(value int, probeDuration time.Duration, probeErr error) {
	m.sampleCount.Add(1)
	m.lastValue.Store(int64(value))

	m.metrics.IncrementSamples()
	m.metrics.RecordProbeLatency(probeDuration)
	if probeErr != nil {
		// Recoverable by contract: counted and remembered, never escalated.
		m.metrics.IncrementProbeErrors()
		m.lastError.Store(probeErr)
	}
}

// onTransition maps controller state changes to events and metrics.
func (m *meterImpl) onTransition(active, powerDriven bool) {
	m.metrics.SetReading(active)

	switch {
	case active && powerDriven:
		m.metrics.IncrementResumes()
		m.emitEvent(EventResumed, "sampling resumed after display wake")
	case active:
		m.startTime.Store(time.Now())
		m.metrics.IncrementStarts()
		m.emitEvent(EventStarted, "reading started")
	case powerDriven:
		m.metrics.IncrementSuspends()
		m.emitEvent(EventSuspended, "sampling suspended for display sleep")
	default:
		m.metrics.IncrementStops()
		m.emitEvent(EventStopped, "reading stopped")
	}
}

// getError retrieves the last recorded error.
func (m *meterImpl) getError() error {
	if v := m.lastError.Load(); v != nil {
		if err, ok := v.(error); ok {
			return err
		}
	}
	return nil
}

// notifyError stores an error and invokes the error handler if registered.
func (m *meterImpl) notifyError(err error) {
	m.lastError.Store(err)

	m.mu.RLock()
	handler := m.errorHandler
	logger := m.logger
	m.mu.RUnlock()

	if handler != nil {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("error handler panicked", "panic", r, "original_error", err)
				}
			}()
			handler(err)
		}()
	}

	m.emitEvent(EventError, err.Error())
}

// emitEvent sends an event to the event handler if configured.
func (m *meterImpl) emitEvent(eventType EventType, message string) {
	m.mu.RLock()
	handler := m.eventHandler
	logger := m.logger
	m.mu.RUnlock()

	if handler == nil {
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("event handler panicked", "panic", r, "event", eventType.String())
			}
		}()
		handler(Event{
			Type:      eventType,
			Timestamp: time.Now(),
			Message:   message,
		})
	}()
}
