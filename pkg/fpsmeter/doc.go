// Package fpsmeter provides the public API for embedding the fpsmeter
// telemetry overlay. It samples a frames-per-second value from an external
// counter resource and renders it in a small always-on-top overlay, starting
// and stopping automatically around device sleep/wake transitions.
//
// # Basic Usage
//
//	m, err := fpsmeter.New("/etc/fpsmeter.lua", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer m.Close()
//
//	if err := m.StartReading(); err != nil {
//		log.Fatal(err)
//	}
//
// New opens the counter resource eagerly: a missing or inaccessible counter
// is fatal and reported from New, and no sampling ever occurs.
//
// # Lifecycle
//
//   - [Meter.StartReading] subscribes to power-state notifications and begins
//     sampling. Idempotent.
//   - [Meter.StopReading] stops sampling and unsubscribes. Idempotent.
//   - Sleep/wake transitions suspend and resume sampling automatically while
//     reading is enabled; the overlay is never rendered with the display off.
//   - [Meter.Close] stops everything and releases the counter handle.
//
// All methods are safe to call from any goroutine.
//
// # Headless Mode
//
// With Options.Headless the meter samples without an on-screen surface,
// which is useful for smoke tests and data-only embedding:
//
//	m, _ := fpsmeter.New(path, &fpsmeter.Options{Headless: true})
package fpsmeter
