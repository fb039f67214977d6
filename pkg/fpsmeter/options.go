package fpsmeter

import (
	"time"

	"github.com/opd-ai/go-fpsmeter/internal/power"
)

// Options configures a Meter's behavior.
type Options struct {
	// UpdateInterval overrides the configuration file's update_interval.
	// Zero means use the configuration file's value.
	UpdateInterval time.Duration

	// CounterPath overrides the configuration file's counter_path.
	CounterPath string

	// WindowTitle overrides the overlay window title.
	WindowTitle string

	// Headless runs without creating an on-screen surface. Sampling and all
	// lifecycle behavior are unchanged; rendered values go nowhere.
	Headless bool

	// Logger sets a custom logger for debug/info messages.
	// If nil, no logging is performed.
	Logger Logger

	// Metrics sets a custom metrics collector.
	// If nil, DefaultMetrics() is used.
	Metrics *Metrics

	// Notifier sets the power-state notifier. If nil, the X11 DPMS notifier
	// is used where available, falling back to a manual notifier that never
	// fires. Use cmd/fpsmeter or internal/power to construct one.
	Notifier power.Notifier

	// WatchConfig enables hot-reloading of the text template and theme when
	// the configuration file changes on disk.
	WatchConfig bool

	// WatchDebounce sets the debounce interval for file change events.
	// Zero means the default (500ms).
	WatchDebounce time.Duration
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{}
}

// Logger is the interface for custom logging. It follows the slog-style
// signature for compatibility with Go's structured logging.
type Logger interface {
	// Debug logs a debug-level message with optional key-value pairs.
	Debug(msg string, args ...any)
	// Info logs an info-level message with optional key-value pairs.
	Info(msg string, args ...any)
	// Warn logs a warning-level message with optional key-value pairs.
	Warn(msg string, args ...any)
	// Error logs an error-level message with optional key-value pairs.
	Error(msg string, args ...any)
}
