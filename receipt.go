package rendez

import (
	"context"
	"sync"
)

// Receipt is the awaitable returned by Post, resolved with the posted
// value at the moment that value is delivered to a reader, or rejected
// with the terminal error if the value is dropped by the latch.
//
// The writer record for a posting exists from post time - a writer that
// never awaits its receipt still has its value queued and deliverable.
// Awaiting is how a producer opts into flow control: resolution marks
// the exact delivery moment, so pacing to one in-flight value is a loop
// of Post then Wait.
//
// A receipt is promise-shaped: Continue may be called before or after
// settlement, any number of times, and each registered pair fires once.
type Receipt struct {
	mu      sync.Mutex
	ch      *Channel
	sched   Scheduler
	settled bool
	value   any
	err     error
	conts   []pair
}

// Resolved returns a free-standing receipt already resolved with v.
// Together with Rejected it is the promise-like value for feeding
// pre-computed results through a channel's implicit resolution.
func Resolved(v any) *Receipt {
	return &Receipt{sched: Immediate{}, settled: true, value: v}
}

// Rejected returns a free-standing receipt already rejected with err.
func Rejected(err error) *Receipt {
	return &Receipt{sched: Immediate{}, settled: true, err: err}
}

// Continue implements Awaitable. Registering on an unsettled receipt
// triggers a pairing pass on the owning channel, which is what lets a
// suspended writer be matched; on a settled receipt the outcome is
// dispatched straight away via the scheduler.
func (r *Receipt) Continue(onValue func(any), onError func(error)) {
	p := pair{onValue: onValue, onError: onError}

	r.mu.Lock()
	if r.settled {
		v, err := r.value, r.err
		r.mu.Unlock()
		r.dispatch(p, v, err)
		return
	}
	r.conts = append(r.conts, p)
	r.mu.Unlock()

	if r.ch != nil {
		r.ch.pump()
	}
}

// Forget triggers a pairing pass while discarding all interest in the
// outcome: the fire-and-don't-wait form of awaiting, for producers that
// post without suspending.
func (r *Receipt) Forget() {
	if r.ch != nil {
		r.ch.pump()
	}
}

// Wait blocks until the receipt settles or ctx is done. Cancellation
// abandons the wait without withdrawing anything; see Await.
func (r *Receipt) Wait(ctx context.Context) (any, error) {
	return Await(ctx, r)
}

// Settled reports whether the receipt has resolved or rejected.
func (r *Receipt) Settled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settled
}

// settle is called by the pairing pass, once. Later calls are ignored,
// keeping the at-most-once handler guarantee even if a drain races a
// match.
func (r *Receipt) settle(v any, err error) {
	r.mu.Lock()
	if r.settled {
		r.mu.Unlock()
		return
	}
	r.settled = true
	r.value, r.err = v, err
	conts := r.conts
	r.conts = nil
	r.mu.Unlock()

	for _, p := range conts {
		r.dispatch(p, v, err)
	}
}

func (r *Receipt) dispatch(p pair, v any, err error) {
	s := r.sched
	if s == nil {
		s = Immediate{}
	}
	if err != nil {
		s.Schedule(func(x any) { p.fail(x.(error)) }, err)
		return
	}
	s.Schedule(p.value, v)
}
