package rendez

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwaitableFunc_AdaptsForeignValues(t *testing.T) {
	ch := New()
	ctx := testCtx(t)

	// A foreign promise-shaped value participates in implicit
	// resolution once adapted.
	foreign := AwaitableFunc(func(onValue func(any), onError func(error)) {
		onValue("adapted")
	})
	ch.Post(foreign)

	got, err := ch.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "adapted", got)
}

func TestAwait_ContextCancellation(t *testing.T) {
	// An awaitable that never settles: Await returns with the context
	// error and the registration stays behind as a no-op.
	never := AwaitableFunc(func(func(any), func(error)) {})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := Await(ctx, never)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAwait_ErrorOutcome(t *testing.T) {
	boom := errors.New("boom")
	_, err := Await(testCtx(t), Rejected(boom))
	assert.Same(t, boom, err)
}
