package rendez

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceipt_AwaitAfterDelivery(t *testing.T) {
	ch := New()
	ctx := testCtx(t)

	r := ch.Post("v")
	got, err := ch.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, "v", got)

	// The receipt is promise-shaped: awaiting after delivery still
	// observes the settled outcome.
	require.True(t, r.Settled())
	ackd, err := r.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v", ackd)

	// And again - each registered pair fires once.
	ackd, err = r.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v", ackd)
}

func TestReceipt_Forget_ValueStillDeliverable(t *testing.T) {
	ch := New()
	ctx := testCtx(t)

	ch.Post("fire-and-forget").Forget()

	got, err := ch.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fire-and-forget", got)
}

func TestReceipt_UnsettledUntilDelivery(t *testing.T) {
	ch := New()

	r := ch.Post("pending")
	assert.False(t, r.Settled())

	short, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := r.Wait(short)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, r.Settled())
}

func TestReceipt_ContinueBeforeDelivery(t *testing.T) {
	ch := New()
	ctx := testCtx(t)

	r := ch.Post(7)
	acked := make(chan any, 1)
	r.Continue(func(v any) { acked <- v }, nil)

	got, err := ch.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, 7, got)
	assert.Equal(t, 7, <-acked)
}

func TestReceipt_NilHandlersAreNoOps(t *testing.T) {
	ch := New()
	ctx := testCtx(t)

	r := ch.Post("x")
	r.Continue(nil, nil) // must not panic on settlement

	got, err := ch.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "x", got)
}

func TestResolved_SettlesImmediately(t *testing.T) {
	r := Resolved(123)
	require.True(t, r.Settled())

	got, err := r.Wait(testCtx(t))
	require.NoError(t, err)
	assert.Equal(t, 123, got)
}

func TestRejected_SettlesImmediately(t *testing.T) {
	boom := errors.New("boom")
	r := Rejected(boom)
	require.True(t, r.Settled())

	_, err := r.Wait(testCtx(t))
	assert.Same(t, boom, err)
}

func TestReceipt_Forget_OnFreestandingReceipt(t *testing.T) {
	// No owning channel: Forget is a no-op, not a panic.
	Resolved("v").Forget()
}
