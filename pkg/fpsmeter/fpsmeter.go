package fpsmeter

import (
	"bytes"
	"fmt"
	"io"

	"github.com/opd-ai/go-fpsmeter/internal/config"
)

// Meter is an embedded fpsmeter instance with full lifecycle control.
// It is safe for concurrent use from multiple goroutines.
type Meter interface {
	// StartReading registers for power-state notifications and begins
	// sampling. Idempotent: calling it while already reading only ensures
	// the subscription is in place.
	StartReading() error

	// StopReading stops sampling, unmounts the overlay, and unregisters the
	// power-state subscription. Idempotent.
	StopReading() error

	// IsReading reports whether sampling is currently active. Sampling may
	// be temporarily suspended by display sleep even while reading is
	// enabled; IsReading reflects the actual sampling state.
	IsReading() bool

	// UpdateInsets informs the meter of a screen layout change. A mounted
	// overlay is repositioned to the new top inset.
	UpdateInsets(topInset int)

	// ReloadConfig reloads the text template and theme from the original
	// configuration source without interrupting sampling.
	ReloadConfig() error

	// Status returns detailed state information.
	Status() Status

	// SetErrorHandler registers a callback for runtime errors. The handler
	// is invoked asynchronously; implementations recover from panics in the
	// handler.
	SetErrorHandler(handler ErrorHandler)

	// SetEventHandler registers a callback for lifecycle events.
	SetEventHandler(handler EventHandler)

	// Metrics returns the metrics collector for this instance.
	Metrics() *Metrics

	// Close stops reading and releases all held resources: the counter
	// handle, the power notifier, and the UI context. The meter cannot be
	// restarted afterwards. Safe to call multiple times.
	Close() error
}

// New creates a Meter from a Lua configuration file on disk. The counter
// resource is opened immediately; if it cannot be opened the returned error
// wraps sampler.ErrResourceUnavailable and no Meter is created.
//
// The instance is created but not reading; call StartReading to begin.
func New(configPath string, opts *Options) (Meter, error) {
	parser, err := config.NewParser()
	if err != nil {
		return nil, fmt.Errorf("parser init: %w", err)
	}
	defer parser.Close()

	cfg, err := parser.ParseFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	loader := func() (*config.Config, error) {
		p, err := config.NewParser()
		if err != nil {
			return nil, err
		}
		defer p.Close()
		return p.ParseFile(configPath)
	}

	return newMeter(cfg, opts, configPath, loader)
}

// NewFromReader creates a Meter from Lua configuration content provided as an
// io.Reader. Useful for dynamically generated configurations.
func NewFromReader(r io.Reader, opts *Options) (Meter, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	parser, err := config.NewParser()
	if err != nil {
		return nil, fmt.Errorf("parser init: %w", err)
	}
	defer parser.Close()

	cfg, err := parser.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	loader := func() (*config.Config, error) {
		p, err := config.NewParser()
		if err != nil {
			return nil, err
		}
		defer p.Close()
		return p.Parse(bytes.Clone(content))
	}

	return newMeter(cfg, opts, "reader", loader)
}
