package fpsmeter

import "time"

// Status represents the current state of a Meter.
type Status struct {
	// Reading indicates whether sampling is currently active.
	Reading bool
	// Subscribed indicates whether the power-state subscription is held.
	Subscribed bool
	// StartTime is when reading last became active (zero if never).
	StartTime time.Time
	// SampleCount is the number of samples published since creation.
	SampleCount uint64
	// LastValue is the most recently published sample value.
	LastValue int
	// LastError is the most recent error encountered (nil if none).
	LastError error
	// ConfigSource describes the configuration source (file path or
	// "reader").
	ConfigSource string
}

// ErrorHandler is a callback for runtime errors. It is called asynchronously;
// do not block in the handler.
type ErrorHandler func(err error)

// EventHandler is a callback for lifecycle events. It is called
// asynchronously; do not block in the handler.
type EventHandler func(event Event)

// Event represents a lifecycle event.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Message   string
}

// EventType enumerates lifecycle event types. The integer values are
// implementation details; compare against the constant names.
type EventType int

const (
	// EventStarted is emitted when reading starts by explicit request.
	EventStarted EventType = iota
	// EventStopped is emitted when reading stops by explicit request.
	EventStopped
	// EventSuspended is emitted when sampling pauses for display sleep.
	EventSuspended
	// EventResumed is emitted when sampling resumes after display wake.
	EventResumed
	// EventConfigReloaded is emitted when configuration is reloaded.
	EventConfigReloaded
	// EventError is emitted when a recoverable error occurs.
	EventError
)

// String returns a human-readable representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventStarted:
		return "started"
	case EventStopped:
		return "stopped"
	case EventSuspended:
		return "suspended"
	case EventResumed:
		return "resumed"
	case EventConfigReloaded:
		return "config_reloaded"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}
