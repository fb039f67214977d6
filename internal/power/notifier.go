// Package power delivers device sleep/wake transitions to the sampling
// lifecycle. The notifier abstraction keeps registration explicit: a
// subscriber is registered at most once and unregistered exactly when it asks
// to be, with no hidden global listener lists.
package power

import "sync"

// SleepWaker receives power-state transitions. Callbacks are delivered in the
// order the transitions occur and each is handled to completion before the
// next is dispatched. Callbacks may arrive on an arbitrary goroutine.
type SleepWaker interface {
	// OnGoingToSleep fires when the display is about to turn off.
	OnGoingToSleep()
	// OnFinishedWakingUp fires when the display has turned back on.
	OnFinishedWakingUp()
}

// Notifier registers subscribers for sleep/wake events.
type Notifier interface {
	// Subscribe registers s. Subscribing an already-registered subscriber is
	// a no-op.
	Subscribe(s SleepWaker)
	// Unsubscribe removes s. Unsubscribing an unknown subscriber is a no-op.
	Unsubscribe(s SleepWaker)
}

// ManualNotifier is a Notifier driven by explicit Sleep and Wake calls. Host
// applications that receive power events through their own channels feed them
// in here; it also serves as the test double.
type ManualNotifier struct {
	mu   sync.Mutex
	subs []SleepWaker
}

// NewManualNotifier creates an empty manual notifier.
func NewManualNotifier() *ManualNotifier {
	return &ManualNotifier{}
}

// Subscribe registers s. Duplicate registrations are ignored.
func (n *ManualNotifier) Subscribe(s SleepWaker) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, existing := range n.subs {
		if existing == s {
			return
		}
	}
	n.subs = append(n.subs, s)
}

// Unsubscribe removes s if registered.
func (n *ManualNotifier) Unsubscribe(s SleepWaker) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, existing := range n.subs {
		if existing == s {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			return
		}
	}
}

// Sleep delivers OnGoingToSleep to all subscribers, each to completion.
func (n *ManualNotifier) Sleep() {
	for _, s := range n.snapshot() {
		s.OnGoingToSleep()
	}
}

// Wake delivers OnFinishedWakingUp to all subscribers, each to completion.
func (n *ManualNotifier) Wake() {
	for _, s := range n.snapshot() {
		s.OnFinishedWakingUp()
	}
}

// SubscriberCount reports the number of registered subscribers.
func (n *ManualNotifier) SubscriberCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

// snapshot copies the subscriber list so delivery happens outside the lock;
// a callback may subscribe or unsubscribe without deadlocking.
func (n *ManualNotifier) snapshot() []SleepWaker {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]SleepWaker, len(n.subs))
	copy(out, n.subs)
	return out
}
