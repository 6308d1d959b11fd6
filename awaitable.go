package rendez

import "context"

// Awaitable is the suspension contract shared by everything in this
// package that can be waited on: the Channel itself, the Receipt returned
// by Post, and foreign promise-like values adapted with AwaitableFunc.
//
// Continue registers a one-shot continuation pair. Exactly one of the two
// handlers is invoked, at most once, eventually - or never, which is a
// valid non-terminating wait. Either handler may be nil, in which case
// that outcome is discarded. Registration cannot be withdrawn.
type Awaitable interface {
	Continue(onValue func(any), onError func(error))
}

// AwaitableFunc adapts a bare registration function to the Awaitable
// contract. It is the escape hatch for feeding external promise-shaped
// values through a channel so they participate in implicit resolution.
type AwaitableFunc func(onValue func(any), onError func(error))

// Continue implements Awaitable.
func (f AwaitableFunc) Continue(onValue func(any), onError func(error)) {
	f(onValue, onError)
}

// Await blocks until a settles or ctx is done.
//
// Cancellation abandons the wait but does not withdraw the registered
// continuation - the contract has no withdrawal operation. If the
// awaitable settles later the abandoned handlers fire into a buffered
// drop box and are garbage collected with it. Callers building timeouts
// race Await against their timer exactly as described here.
func Await(ctx context.Context, a Awaitable) (any, error) {
	type outcome struct {
		value any
		err   error
	}

	// Buffer of 1 so the continuation never blocks after abandonment.
	done := make(chan outcome, 1)
	a.Continue(
		func(v any) { done <- outcome{value: v} },
		func(err error) { done <- outcome{err: err} },
	)

	select {
	case o := <-done:
		return o.value, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
