package rendez

import (
	"context"
	"sync"
)

// pair is a one-shot continuation pair registered by a suspension point.
// Consumed by exactly one pairing pass, never reused. Absent handlers
// default to no-ops.
type pair struct {
	onValue func(any)
	onError func(error)
}

func (p pair) value(v any) {
	if p.onValue != nil {
		p.onValue(v)
	}
}

func (p pair) fail(err error) {
	if p.onError != nil {
		p.onError(err)
	}
}

// Channel is an unbuffered rendezvous channel.
//
// Thread-safety model:
//   - Post, Fail, Continue, Next: safe from any goroutine
//   - queue state is mutated only under mu, inside the pairing pass and
//     the registration paths that trigger it
//   - continuations are dispatched outside mu via the Scheduler, so a
//     continuation may safely re-enter the channel
//
// INVARIANTS:
//   - writers holds exactly one receipt per entry in values, enqueued
//     together at post time (so the triple-match in the pump reduces to
//     "a value and a reader exist")
//   - failure, once set, is never cleared or overwritten
//   - failure set implies values is empty
type Channel struct {
	mu      sync.Mutex
	id      string
	gen     IDGenerator
	sched   Scheduler
	clock   *Clock
	hooks   []Hook
	values  []any
	readers []pair
	writers []*Receipt
	failure error
}

// Option configures a Channel at construction time.
type Option func(*Channel)

// WithScheduler selects the dispatch policy. Default: Immediate.
func WithScheduler(s Scheduler) Option {
	return func(c *Channel) { c.sched = s }
}

// WithID fixes the channel identity, bypassing the ID generator.
// The test-facing alternative is WithIDGenerator with a fixed generator,
// which additionally fails fast when more channels appear than expected.
func WithID(id string) Option {
	return func(c *Channel) { c.id = id }
}

// WithIDGenerator selects the identity generator. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(c *Channel) { c.gen = g }
}

// WithClock supplies a shared logical clock, e.g. so several channels
// feed one totally ordered trace. Default: a fresh clock per channel.
func WithClock(clk *Clock) Option {
	return func(c *Channel) { c.clock = clk }
}

// WithHook registers a trace observer. May be given multiple times;
// hooks fire in registration order.
func WithHook(h Hook) Option {
	return func(c *Channel) { c.hooks = append(c.hooks, h) }
}

// New creates an empty channel.
func New(opts ...Option) *Channel {
	c := &Channel{sched: Immediate{}}
	for _, opt := range opts {
		opt(c)
	}
	if c.clock == nil {
		c.clock = NewClock()
	}
	if c.id == "" {
		if c.gen == nil {
			c.gen = UUIDv7Generator{}
		}
		c.id = c.gen.Generate()
	}
	return c
}

// ID returns the channel identity used in trace events.
func (c *Channel) ID() string {
	return c.id
}

// Err returns the latched terminal error, or nil while the channel is
// still live.
func (c *Channel) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failure
}

// Post appends v to the pending queue and returns the receipt for this
// specific posting. Values are accepted with zero readers present;
// backpressure is opt-in by awaiting the receipt.
//
// If the terminal error has already latched the value is not queued and
// the returned receipt is already rejected with it.
//
// A value satisfying the error interface is the terminal marker: when it
// reaches the head of the queue it latches the channel instead of being
// delivered. Use Wrap to post an error as data.
func (c *Channel) Post(v any) *Receipt {
	c.mu.Lock()
	if c.failure != nil {
		err := c.failure
		c.mu.Unlock()
		return &Receipt{ch: c, sched: c.sched, settled: true, err: err}
	}

	r := &Receipt{ch: c, sched: c.sched}
	c.values = append(c.values, v)
	c.writers = append(c.writers, r)
	ev := c.eventLocked(EventPost, v)
	c.mu.Unlock()

	c.fire(ev)
	c.pump()
	return r
}

// Fail posts err as the terminal value. It never fails for its own
// caller: the receipt of the error posting is discarded, so the producer
// shutting the channel down is exempt from the shutdown it causes. Every
// other waiter, past and future, fails with err once it is recognised.
func (c *Channel) Fail(err error) {
	c.Post(err).Forget()
}

// Continue implements Awaitable: it registers a reader continuation pair
// for the next delivered value and triggers a pairing pass.
func (c *Channel) Continue(onValue func(any), onError func(error)) {
	c.mu.Lock()
	c.readers = append(c.readers, pair{onValue: onValue, onError: onError})
	c.mu.Unlock()
	c.pump()
}

// Next blocks until the next value is delivered to this caller, the
// terminal error latches, or ctx is done. See Await for the abandonment
// semantics on cancellation: the registered reader is not withdrawn and
// will still consume a later value.
func (c *Channel) Next(ctx context.Context) (any, error) {
	return Await(ctx, c)
}

// delivery is one matched triple popped by a pairing pass, dispatched
// after the channel mutex is released.
type delivery struct {
	reader  pair
	receipt *Receipt
	value   any
}

// pump runs pairing passes to a fixed point.
//
// Each locked pass either drains all waiters with the latched error
// (snapshotting and clearing both queues first, so a re-entrant pass
// cannot double-deliver) or matches queue heads in FIFO order until one
// queue is empty. Dispatch happens after unlock; re-entrant mutations
// from synchronously dispatched continuations trigger their own passes.
func (c *Channel) pump() {
	for {
		c.mu.Lock()

		if c.failure != nil {
			err := c.failure
			readers := c.readers
			writers := c.writers
			c.readers, c.writers = nil, nil
			c.mu.Unlock()

			for _, p := range readers {
				c.dispatchErr(p, err)
			}
			for _, r := range writers {
				r.settle(nil, err)
			}
			return
		}

		var (
			dels    []delivery
			evs     []Event
			latched bool
		)
		for len(c.values) > 0 && len(c.readers) > 0 && len(c.writers) > 0 {
			v := c.values[0]
			if err, ok := v.(error); ok {
				c.failure = err
				evs = append(evs, c.errorEventLocked(err))
				for _, dropped := range c.values[1:] {
					evs = append(evs, c.eventLocked(EventDrop, dropped))
				}
				c.values = nil
				latched = true
				break
			}

			c.values = c.values[1:]
			p := c.readers[0]
			c.readers = c.readers[1:]
			w := c.writers[0]
			c.writers = c.writers[1:]

			evs = append(evs, c.eventLocked(EventDeliver, v))
			evs = append(evs, c.eventLocked(EventAck, v))
			dels = append(dels, delivery{reader: p, receipt: w, value: v})
		}
		c.mu.Unlock()

		for _, ev := range evs {
			c.fire(ev)
		}
		for _, d := range dels {
			c.resolve(d.reader, d.value)
			d.receipt.settle(d.value, nil)
		}

		if !latched {
			return
		}
		// Loop back into the drain branch so waiters queued at the
		// moment the marker was reached fail rather than hang.
	}
}

// resolve dispatches a delivered value to a reader, chasing awaitable
// values to their eventual result first. The chaining lives here, in the
// dispatch path, not in the pump: the pump only ever moves raw queue
// entries. A failure of the inner awaitable goes to the reader's failure
// handler without latching the channel.
func (c *Channel) resolve(p pair, v any) {
	if aw, ok := v.(Awaitable); ok {
		aw.Continue(
			func(inner any) { c.resolve(p, inner) },
			func(err error) { c.dispatchErr(p, err) },
		)
		return
	}
	c.sched.Schedule(p.value, v)
}

func (c *Channel) dispatchErr(p pair, err error) {
	c.sched.Schedule(func(v any) { p.fail(v.(error)) }, err)
}

// eventLocked stamps a trace event; callers hold mu. An error payload is
// recorded as text so traces stay serialisable.
func (c *Channel) eventLocked(kind EventKind, v any) Event {
	ev := Event{Seq: c.clock.Next(), Channel: c.id, Kind: kind}
	if err, ok := v.(error); ok {
		ev.Err = err.Error()
	} else {
		ev.Value = v
	}
	return ev
}

func (c *Channel) errorEventLocked(err error) Event {
	return Event{
		Seq:     c.clock.Next(),
		Channel: c.id,
		Kind:    EventError,
		Err:     err.Error(),
	}
}

// fire runs hooks outside mu so a hook may call back into the channel.
func (c *Channel) fire(ev Event) {
	for _, h := range c.hooks {
		h(ev)
	}
}
