//go:build !linux

package power

import (
	"errors"
	"time"
)

// ErrDPMSUnsupported indicates the platform has no DPMS power signal.
var ErrDPMSUnsupported = errors.New("dpms notifier not supported on this platform")

// DPMSNotifier is unavailable off Linux/X11; hosts should supply a
// ManualNotifier fed from their own power events.
type DPMSNotifier struct {
	ManualNotifier
}

// NewDPMSNotifier always fails on this platform.
func NewDPMSNotifier(interval time.Duration) (*DPMSNotifier, error) {
	return nil, ErrDPMSUnsupported
}

// Start is a no-op.
func (n *DPMSNotifier) Start() {}

// Stop is a no-op.
func (n *DPMSNotifier) Stop() {}
