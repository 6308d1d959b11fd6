package rendez

import "sync"

// Scheduler decides how a matched continuation is dispatched.
//
// Schedule arranges for fn(v) to be invoked exactly once. It must not
// panic and must not invoke fn more than once. It may invoke fn before
// returning - the Immediate policy does exactly that, and the pairing
// pass relies on it for throughput. Every callback handed to a Scheduler
// by this package is a one-shot continuation driven by an iterative
// loop, so synchronous dispatch cannot grow the stack unboundedly.
type Scheduler interface {
	Schedule(fn func(v any), v any)
}

// Immediate invokes continuations synchronously on the goroutine that
// triggered the pairing pass. Maximum throughput, no interleaving.
type Immediate struct{}

// Schedule implements Scheduler.
func (Immediate) Schedule(fn func(v any), v any) {
	fn(v)
}

// Deferred dispatches continuations on a single background goroutine,
// draining an unbounded FIFO run queue. Dispatch order is exactly the
// order Schedule was called in, so swapping Deferred for Immediate
// changes latency and interleaving but never delivery order.
//
// Stop shuts the dispatcher down after draining everything already
// queued. Calls to Schedule after Stop are silently dropped; the
// contract only demands at-most-once invocation.
type Deferred struct {
	q *runQueue
}

// NewDeferred creates a Deferred scheduler and starts its dispatcher.
func NewDeferred() *Deferred {
	d := &Deferred{q: newRunQueue()}
	go d.run()
	return d
}

// Schedule implements Scheduler.
func (d *Deferred) Schedule(fn func(v any), v any) {
	d.q.push(task{fn: fn, v: v})
}

// Stop closes the run queue. Tasks already queued are still dispatched;
// the dispatcher goroutine exits once the queue is empty.
func (d *Deferred) Stop() {
	d.q.close()
}

func (d *Deferred) run() {
	for {
		if t, ok := d.q.pop(); ok {
			t.fn(t.v)
			continue
		}
		if d.q.drained() {
			return
		}
		<-d.q.wait()
	}
}

type task struct {
	fn func(any)
	v  any
}

// runQueue is an unbounded FIFO of pending dispatches.
//
// Producers push from any goroutine; the single dispatcher pops. The
// buffered signal channel coalesces wakeups, and close() closes it so a
// parked dispatcher observes shutdown.
type runQueue struct {
	mu     sync.Mutex
	tasks  []task
	closed bool
	signal chan struct{} // buffered, size 1
}

func newRunQueue() *runQueue {
	return &runQueue{
		tasks:  make([]task, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

func (q *runQueue) push(t task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.tasks = append(q.tasks, t)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

func (q *runQueue) pop() (task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tasks) == 0 {
		return task{}, false
	}

	t := q.tasks[0]
	// Nil out the slot so the closure is collectable while the backing
	// array lives on.
	q.tasks[0] = task{}
	if len(q.tasks) == 1 {
		q.tasks = q.tasks[:0]
	} else {
		q.tasks = q.tasks[1:]
	}
	return t, true
}

func (q *runQueue) wait() <-chan struct{} {
	return q.signal
}

func (q *runQueue) drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.tasks) == 0
}

func (q *runQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
