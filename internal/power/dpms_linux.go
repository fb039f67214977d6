//go:build linux

package power

import (
	"fmt"
	"sync"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/dpms"
)

// DefaultPollInterval is the DPMS polling period. The X server exposes no
// power-level event stream over the core protocol, so the notifier polls.
const DefaultPollInterval = 2 * time.Second

// DPMSNotifier derives sleep/wake transitions from the X11 DPMS power level.
// A transition away from DPMSModeOn delivers OnGoingToSleep; a transition
// back delivers OnFinishedWakingUp. Events are delivered serially from the
// polling goroutine, preserving order.
type DPMSNotifier struct {
	ManualNotifier // subscriber bookkeeping and delivery

	conn     *xgb.Conn
	interval time.Duration

	mu        sync.Mutex
	running   bool
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// NewDPMSNotifier connects to the X server and verifies the DPMS extension.
// interval <= 0 means DefaultPollInterval.
func NewDPMSNotifier(interval time.Duration) (*DPMSNotifier, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connecting to X server: %w", err)
	}
	if err := dpms.Init(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing DPMS extension: %w", err)
	}

	return &DPMSNotifier{
		conn:     conn,
		interval: interval,
	}, nil
}

// Start begins polling. Safe to call once; subsequent calls are no-ops.
func (n *DPMSNotifier) Start() {
	n.mu.Lock()
	if n.running {
		n.mu.Unlock()
		return
	}
	n.running = true
	n.stopCh = make(chan struct{})
	n.stoppedCh = make(chan struct{})
	n.mu.Unlock()

	go n.pollLoop()
}

// Stop halts polling and waits for the polling goroutine, then closes the X
// connection. Safe to call multiple times.
func (n *DPMSNotifier) Stop() {
	n.mu.Lock()
	if !n.running {
		n.mu.Unlock()
		return
	}
	n.running = false
	close(n.stopCh)
	n.mu.Unlock()

	<-n.stoppedCh
	n.conn.Close()
}

// pollLoop samples the DPMS power level and emits transitions.
func (n *DPMSNotifier) pollLoop() {
	defer close(n.stoppedCh)

	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	displayOn := true
	if on, err := n.displayOn(); err == nil {
		displayOn = on
	}

	for {
		select {
		case <-n.stopCh:
			return
		case <-ticker.C:
			on, err := n.displayOn()
			if err != nil {
				continue // transient X error; keep last known state
			}
			switch {
			case displayOn && !on:
				displayOn = false
				n.Sleep()
			case !displayOn && on:
				displayOn = true
				n.Wake()
			}
		}
	}
}

// displayOn reports whether the display power level is DPMSModeOn.
func (n *DPMSNotifier) displayOn() (bool, error) {
	info, err := dpms.Info(n.conn).Reply()
	if err != nil {
		return false, err
	}
	if !info.State {
		// DPMS disabled: the display never sleeps via DPMS.
		return true, nil
	}
	return info.PowerLevel == dpms.DPMSModeOn, nil
}
