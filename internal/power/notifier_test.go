package power

import "testing"

// countingWaker records delivered transitions in order.
type countingWaker struct {
	events []string
}

func (c *countingWaker) OnGoingToSleep()     { c.events = append(c.events, "sleep") }
func (c *countingWaker) OnFinishedWakingUp() { c.events = append(c.events, "wake") }

func TestManualNotifierSubscribeDeduplicates(t *testing.T) {
	n := NewManualNotifier()
	w := &countingWaker{}

	n.Subscribe(w)
	n.Subscribe(w)

	if got := n.SubscriberCount(); got != 1 {
		t.Fatalf("SubscriberCount() = %d, want 1", got)
	}

	n.Sleep()
	if len(w.events) != 1 {
		t.Errorf("duplicate subscription delivered %d events, want 1", len(w.events))
	}
}

func TestManualNotifierUnsubscribe(t *testing.T) {
	n := NewManualNotifier()
	w := &countingWaker{}

	n.Subscribe(w)
	n.Unsubscribe(w)

	if got := n.SubscriberCount(); got != 0 {
		t.Fatalf("SubscriberCount() = %d, want 0", got)
	}

	n.Sleep()
	n.Wake()
	if len(w.events) != 0 {
		t.Errorf("unsubscribed waker received %d events", len(w.events))
	}
}

func TestManualNotifierUnsubscribeUnknownIsNoOp(t *testing.T) {
	n := NewManualNotifier()
	n.Unsubscribe(&countingWaker{})

	if got := n.SubscriberCount(); got != 0 {
		t.Errorf("SubscriberCount() = %d, want 0", got)
	}
}

func TestManualNotifierDeliveryOrder(t *testing.T) {
	n := NewManualNotifier()
	w := &countingWaker{}
	n.Subscribe(w)

	n.Sleep()
	n.Wake()
	n.Sleep()

	want := []string{"sleep", "wake", "sleep"}
	if len(w.events) != len(want) {
		t.Fatalf("events = %v, want %v", w.events, want)
	}
	for i := range want {
		if w.events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, w.events[i], want[i])
		}
	}
}

// unsubscribingWaker removes itself from the notifier during delivery.
type unsubscribingWaker struct {
	n     *ManualNotifier
	slept int
}

func (u *unsubscribingWaker) OnGoingToSleep() {
	u.slept++
	u.n.Unsubscribe(u)
}

func (u *unsubscribingWaker) OnFinishedWakingUp() {}

func TestManualNotifierUnsubscribeDuringDelivery(t *testing.T) {
	n := NewManualNotifier()
	w := &unsubscribingWaker{n: n}
	n.Subscribe(w)

	// Must not deadlock: delivery happens outside the lock.
	n.Sleep()
	n.Sleep()

	if w.slept != 1 {
		t.Errorf("waker slept %d times, want 1", w.slept)
	}
	if got := n.SubscriberCount(); got != 0 {
		t.Errorf("SubscriberCount() = %d, want 0", got)
	}
}
