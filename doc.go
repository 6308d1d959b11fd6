// Package rendez implements an unbuffered rendezvous channel for
// continuation-passing code, in the CSP style.
//
// A Channel carries opaque values from writers to readers. There is no
// buffer capacity in the usual sense: a posted value is held in a pending
// queue until a reader registers interest, and the writer that posted it
// can observe the exact moment of delivery through its Receipt. Pacing to
// one in-flight value is therefore opt-in - a producer that awaits each
// receipt before posting again gets strict rendezvous behaviour, while a
// producer that posts and forgets floods the queue.
//
// ARCHITECTURE:
//
// Pairing pass (pump):
// All shared state - the pending value, reader and writer queues and the
// terminal error latch - is mutated only inside the pairing pass, a plain
// iterative loop guarded by the channel mutex. Each pass matches the heads
// of the three queues in FIFO order and hands both sides' continuations to
// the configured Scheduler. Registration is what triggers a pass; there is
// no background goroutine and no timer.
//
// INVARIANTS:
//   - Delivery is FIFO on both sides: the Nth reader receives the Nth
//     surviving value, the Nth writer is acknowledged for it.
//   - Once the terminal error latches it is never cleared or overwritten,
//     the pending value queue is discarded, and every past and future
//     waiter fails with the same error value.
//   - A continuation pair is consumed by exactly one pass and each handler
//     runs at most once.
//
// Termination is always an error value. Any posted value satisfying the
// error interface is recognised as the terminal marker when it reaches the
// head of the queue; use Wrap to pass an error through as ordinary data.
//
// Values that themselves implement Awaitable (another Channel, a Receipt,
// or anything adapted with AwaitableFunc) are resolved before delivery:
// a reader never observes an awaitable as its final value unless the
// producer boxed it with Wrap.
//
// The scheduling policy is injected at construction time. Immediate
// dispatches continuations synchronously for throughput; Deferred hands
// them to a serialized run queue so other work can interleave. Swapping
// one for the other changes latency, never order.
package rendez
