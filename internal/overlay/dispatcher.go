package overlay

import "sync"

// dispatchQueueDepth bounds pending UI work. Sink updates arrive at the
// sampling rate, so the queue never grows past a handful of entries in
// practice.
const dispatchQueueDepth = 64

// Dispatcher serializes all overlay mutations onto a single UI-owning
// goroutine. Every display sink mutation and every surface host call goes
// through Dispatch, regardless of which goroutine produced it.
type Dispatcher struct {
	mu        sync.Mutex
	queue     chan func()
	closed    bool
	stoppedCh chan struct{}
}

// NewDispatcher creates a dispatcher and starts its UI goroutine.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{
		queue:     make(chan func(), dispatchQueueDepth),
		stoppedCh: make(chan struct{}),
	}
	go d.run()
	return d
}

// run drains the queue until Close. It is the designated UI context: work
// runs strictly in submission order, one function at a time.
func (d *Dispatcher) run() {
	defer close(d.stoppedCh)
	for fn := range d.queue {
		fn()
	}
}

// Dispatch enqueues fn for execution on the UI goroutine. It reports false if
// the dispatcher is already closed, in which case fn is dropped.
func (d *Dispatcher) Dispatch(fn func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return false
	}
	d.queue <- fn
	return true
}

// Sync blocks until all work dispatched before the call has executed.
func (d *Dispatcher) Sync() {
	done := make(chan struct{})
	if !d.Dispatch(func() { close(done) }) {
		return
	}
	<-done
}

// Close stops accepting work, waits for pending work to finish, and stops the
// UI goroutine. Safe to call multiple times.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.stoppedCh
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	<-d.stoppedCh
}
