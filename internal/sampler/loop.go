package sampler

import (
	"context"
	"time"
)

// DefaultPeriod is the sampling interval used when none is configured.
const DefaultPeriod = time.Second

// TextSink receives each parsed sample value for display.
// Implementations must be safe to call from the sampling goroutine.
type TextSink interface {
	SetText(value int)
}

// Logger is the subset of the embedding logger the sampling loop needs.
type Logger interface {
	Debug(msg string, args ...any)
	Error(msg string, args ...any)
}

// nopLogger discards all messages. Used when no logger is injected.
type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...any) {}
func (nopLogger) Error(msg string, args ...any) {}

// SampleObserver is an optional hook invoked after every sample, carrying the
// published value, the probe duration, and the probe error if any. Used by the
// embedding layer for metrics. Must not block.
type SampleObserver func(value int, probeDuration time.Duration, probeErr error)

// Loop is the periodic sampling driver: on each tick it probes the Source,
// parses the result, and publishes the value to the TextSink. A failed probe
// or unparsable content publishes SentinelValue and the loop continues; the
// loop terminates only via context cancellation, observed at each iteration
// boundary.
type Loop struct {
	source   Source
	sink     TextSink
	period   time.Duration
	logger   Logger
	observer SampleObserver
}

// NewLoop creates a sampling loop over source publishing to sink.
// A non-positive period falls back to DefaultPeriod; a nil logger disables
// logging.
func NewLoop(source Source, sink TextSink, period time.Duration, logger Logger) *Loop {
	if period <= 0 {
		period = DefaultPeriod
	}
	if logger == nil {
		logger = nopLogger{}
	}
	return &Loop{
		source: source,
		sink:   sink,
		period: period,
		logger: logger,
	}
}

// SetObserver installs a per-sample hook. Must be called before Run.
func (l *Loop) SetObserver(obs SampleObserver) {
	l.observer = obs
}

// Period returns the configured sampling interval.
func (l *Loop) Period() time.Duration {
	return l.period
}

// Run executes the loop until ctx is cancelled. The first sample is taken
// immediately so the overlay shows a value without waiting a full period.
// Run blocks; callers run it in its own goroutine.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.period)
	defer ticker.Stop()

	l.sampleOnce()

	for {
		select {
		case <-ticker.C:
			l.sampleOnce()
		case <-ctx.Done():
			return
		}
	}
}

// sampleOnce performs one probe-parse-publish cycle. Probe and parse failures
// are recoverable: they publish the sentinel and never escalate.
func (l *Loop) sampleOnce() {
	start := time.Now()
	value := SentinelValue

	raw, err := l.source.Probe()
	if err != nil {
		l.logger.Debug("probe failed, publishing sentinel", "error", err)
	} else {
		value = ParseValue(raw)
	}

	l.sink.SetText(value)

	if l.observer != nil {
		l.observer(value, time.Since(start), err)
	}
}
