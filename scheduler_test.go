package rendez

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImmediate_InvokesSynchronously(t *testing.T) {
	var ran bool
	Immediate{}.Schedule(func(v any) {
		ran = true
		assert.Equal(t, "v", v)
	}, "v")
	assert.True(t, ran, "immediate policy invokes before Schedule returns")
}

func TestDeferred_PreservesFIFOOrder(t *testing.T) {
	d := NewDeferred()
	const n = 100

	var (
		mu    sync.Mutex
		order []int
	)
	done := make(chan struct{})
	for i := 0; i < n; i++ {
		d.Schedule(func(v any) {
			mu.Lock()
			order = append(order, v.(int))
			if len(order) == n {
				close(done)
			}
			mu.Unlock()
		}, i)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("deferred dispatcher did not drain")
	}
	d.Stop()

	mu.Lock()
	defer mu.Unlock()
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestDeferred_StopDrainsQueuedTasks(t *testing.T) {
	d := NewDeferred()

	var (
		mu    sync.Mutex
		count int
	)
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		d.Schedule(func(any) {
			mu.Lock()
			count++
			if count == 10 {
				close(done)
			}
			mu.Unlock()
		}, nil)
	}
	d.Stop()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("queued tasks were not drained after Stop")
	}

	// Scheduling after Stop is silently dropped.
	d.Schedule(func(any) { t.Error("task ran after Stop") }, nil)
	time.Sleep(20 * time.Millisecond)
}

func TestDeferred_ChannelDeliveryOrderUnchanged(t *testing.T) {
	d := NewDeferred()
	defer d.Stop()
	ch := New(WithScheduler(d))
	ctx := testCtx(t)

	for i := 1; i <= 20; i++ {
		ch.Post(i)
	}
	for i := 1; i <= 20; i++ {
		got, err := ch.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, i, got, "swapping policies must not change delivery order")
	}
}

// countingScheduler wraps another policy to verify custom strategies are
// accepted at construction time.
type countingScheduler struct {
	mu    sync.Mutex
	calls int
	inner Scheduler
}

func (s *countingScheduler) Schedule(fn func(any), v any) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	s.inner.Schedule(fn, v)
}

func TestChannel_CustomScheduler(t *testing.T) {
	s := &countingScheduler{inner: Immediate{}}
	ch := New(WithScheduler(s))
	ctx := testCtx(t)

	ch.Post(1)
	got, err := ch.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, got)

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Positive(t, s.calls)
}

func TestRunQueue_PushPopFIFO(t *testing.T) {
	q := newRunQueue()

	for i := 0; i < 3; i++ {
		ok := q.push(task{fn: func(any) {}, v: i})
		require.True(t, ok)
	}
	for i := 0; i < 3; i++ {
		got, ok := q.pop()
		require.True(t, ok)
		assert.Equal(t, i, got.v)
	}
	_, ok := q.pop()
	assert.False(t, ok)
}

func TestRunQueue_PushAfterCloseRejected(t *testing.T) {
	q := newRunQueue()
	q.close()
	assert.False(t, q.push(task{fn: func(any) {}}))
	assert.True(t, q.drained())
}
