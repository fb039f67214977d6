package fpsmeter

import (
	"expvar"
	"sync/atomic"
	"time"
)

// Metrics provides application-level metrics for a Meter, exposed through
// Go's expvar package (the /debug/vars HTTP endpoint when an HTTP server is
// running). Thread-safe for concurrent use.
type Metrics struct {
	// Counters
	starts        atomic.Int64
	stops         atomic.Int64
	suspends      atomic.Int64
	resumes       atomic.Int64
	samples       atomic.Int64
	probeErrors   atomic.Int64
	configReloads atomic.Int64
	sinkUpdates   atomic.Int64

	// Probe latency (nanoseconds)
	probeLatencyNs    atomic.Int64
	probeLatencyCount atomic.Int64

	// Gauges
	reading atomic.Int32

	registered atomic.Bool
}

// NewMetrics creates a new Metrics instance. Call RegisterExpvar to expose it
// via /debug/vars.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RegisterExpvar registers all metrics with the expvar package. Safe to call
// multiple times; subsequent calls are no-ops.
func (m *Metrics) RegisterExpvar() {
	if m.registered.Swap(true) {
		return
	}

	expvar.Publish("fpsmeter_starts_total", expvar.Func(func() any { return m.starts.Load() }))
	expvar.Publish("fpsmeter_stops_total", expvar.Func(func() any { return m.stops.Load() }))
	expvar.Publish("fpsmeter_suspends_total", expvar.Func(func() any { return m.suspends.Load() }))
	expvar.Publish("fpsmeter_resumes_total", expvar.Func(func() any { return m.resumes.Load() }))
	expvar.Publish("fpsmeter_samples_total", expvar.Func(func() any { return m.samples.Load() }))
	expvar.Publish("fpsmeter_probe_errors_total", expvar.Func(func() any { return m.probeErrors.Load() }))
	expvar.Publish("fpsmeter_config_reloads_total", expvar.Func(func() any { return m.configReloads.Load() }))
	expvar.Publish("fpsmeter_sink_updates_total", expvar.Func(func() any { return m.sinkUpdates.Load() }))

	expvar.Publish("fpsmeter_reading", expvar.Func(func() any { return m.reading.Load() }))

	expvar.Publish("fpsmeter_probe_latency_avg_ms", expvar.Func(func() any {
		count := m.probeLatencyCount.Load()
		if count == 0 {
			return float64(0)
		}
		return float64(m.probeLatencyNs.Load()) / float64(count) / 1e6
	}))
}

// Snapshot returns a point-in-time copy of all metrics.
type MetricsSnapshot struct {
	Starts        int64
	Stops         int64
	Suspends      int64
	Resumes       int64
	Samples       int64
	ProbeErrors   int64
	ConfigReloads int64
	SinkUpdates   int64

	Reading bool

	ProbeLatencyAvg time.Duration
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	count := m.probeLatencyCount.Load()
	var avg time.Duration
	if count > 0 {
		avg = time.Duration(m.probeLatencyNs.Load() / count)
	}

	return MetricsSnapshot{
		Starts:        m.starts.Load(),
		Stops:         m.stops.Load(),
		Suspends:      m.suspends.Load(),
		Resumes:       m.resumes.Load(),
		Samples:       m.samples.Load(),
		ProbeErrors:   m.probeErrors.Load(),
		ConfigReloads: m.configReloads.Load(),
		SinkUpdates:   m.sinkUpdates.Load(),

		Reading: m.reading.Load() > 0,

		ProbeLatencyAvg: avg,
	}
}

// IncrementStarts records an explicit start.
func (m *Metrics) IncrementStarts() { m.starts.Add(1) }

// IncrementStops records an explicit stop.
func (m *Metrics) IncrementStops() { m.stops.Add(1) }

// IncrementSuspends records a sleep-driven suspension.
func (m *Metrics) IncrementSuspends() { m.suspends.Add(1) }

// IncrementResumes records a wake-driven resumption.
func (m *Metrics) IncrementResumes() { m.resumes.Add(1) }

// IncrementSamples records a published sample.
func (m *Metrics) IncrementSamples() { m.samples.Add(1) }

// IncrementProbeErrors records a failed probe.
func (m *Metrics) IncrementProbeErrors() { m.probeErrors.Add(1) }

// IncrementConfigReloads records a configuration reload.
func (m *Metrics) IncrementConfigReloads() { m.configReloads.Add(1) }

// IncrementSinkUpdates records a rendered display mutation.
func (m *Metrics) IncrementSinkUpdates() { m.sinkUpdates.Add(1) }

// SetReading updates the reading gauge.
func (m *Metrics) SetReading(reading bool) {
	if reading {
		m.reading.Store(1)
	} else {
		m.reading.Store(0)
	}
}

// RecordProbeLatency records the duration of one probe cycle.
func (m *Metrics) RecordProbeLatency(d time.Duration) {
	m.probeLatencyNs.Add(d.Nanoseconds())
	m.probeLatencyCount.Add(1)
}

// Reset clears all metrics. Useful for testing.
func (m *Metrics) Reset() {
	m.starts.Store(0)
	m.stops.Store(0)
	m.suspends.Store(0)
	m.resumes.Store(0)
	m.samples.Store(0)
	m.probeErrors.Store(0)
	m.configReloads.Store(0)
	m.sinkUpdates.Store(0)
	m.probeLatencyNs.Store(0)
	m.probeLatencyCount.Store(0)
	m.reading.Store(0)
}

// defaultMetrics is a global metrics instance for convenience.
var defaultMetrics = NewMetrics()

// DefaultMetrics returns the global default Metrics instance.
func DefaultMetrics() *Metrics {
	return defaultMetrics
}
