package rendez

import "sync/atomic"

// Clock is a monotonic logical clock stamping trace events.
//
// Every event observed on a channel carries a strictly increasing seq
// from its clock, never a wall-clock timestamp, so recorded traces are
// deterministic and replayable. Channels sharing a Clock (via WithClock)
// share one event ordering.
//
// Thread-safety: safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0; the first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock resuming from a specific sequence number,
// e.g. when appending to a previously recorded trace.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and advances the clock.
// Calls are linearizable - each returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without advancing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
