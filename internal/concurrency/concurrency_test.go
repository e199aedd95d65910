package concurrency

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/momentics/hioload-channels/api"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestAffinityErrorMatchesNotSupported(t *testing.T) {
	assert.ErrorIs(t, ErrAffinityNotSupported, api.ErrNotSupported)
	assert.ErrorIs(t, ErrExecutorClosed, api.ErrExecutorClosed)
}

func TestExecutor_RunsAllTasks(t *testing.T) {
	e := NewExecutor(4, 1024, false)
	defer e.Close()

	var wg sync.WaitGroup
	var sum atomic.Int64
	for i := 1; i <= 1000; i++ {
		wg.Add(1)
		v := int64(i)
		require.NoError(t, e.Submit(func() {
			defer wg.Done()
			sum.Add(v)
		}))
	}
	wg.Wait()
	assert.Equal(t, int64(500500), sum.Load())
	assert.Equal(t, int64(1000), e.Stats()["total_tasks"])
}

func TestExecutor_RecoversPanics(t *testing.T) {
	e := NewExecutor(1, 4, false)
	defer e.Close()

	done := make(chan struct{})
	require.NoError(t, e.Submit(func() { panic("boom") }))
	require.NoError(t, e.Submit(func() { close(done) }))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive panic")
	}
	assert.Eventually(t, func() bool { return e.Stats()["panics"] == 1 }, time.Second, time.Millisecond)
}

func TestExecutor_ResizeAndClose(t *testing.T) {
	e := NewExecutor(2, 4, false)
	e.Resize(5)
	assert.Equal(t, 5, e.NumWorkers())
	e.Resize(1)
	assert.Equal(t, 1, e.NumWorkers())

	e.Close()
	e.Close()
	assert.ErrorIs(t, e.Submit(func() {}), ErrExecutorClosed)
	assert.Equal(t, 0, e.NumWorkers())
}

func TestExecutor_SaturatedQueue(t *testing.T) {
	e := NewExecutor(1, 1, false)
	defer e.Close()

	block := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, e.Submit(func() { close(started); <-block }))
	<-started
	require.NoError(t, e.Submit(func() {}))
	assert.ErrorIs(t, e.Submit(func() {}), ErrExecutorSaturated)
	close(block)
}

func TestEventLoop_RunsInPostOrderOnOneGoroutine(t *testing.T) {
	el := NewEventLoop(4, -1)
	el.Start()
	defer el.Stop()

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		v := i
		require.True(t, el.Post(func() {
			defer wg.Done()
			mu.Lock()
			order = append(order, v)
			mu.Unlock()
		}))
	}
	wg.Wait()
	for i, v := range order {
		assert.Equal(t, i, v)
	}
	assert.Equal(t, int64(50), el.Processed())
}

func TestEventLoop_PostAfterStop(t *testing.T) {
	el := NewEventLoop(0, -1)
	el.Start()
	el.Stop()
	assert.False(t, el.Post(func() {}))
	assert.Equal(t, 0, el.Pending())
}

func TestEventLoop_SurvivesPanic(t *testing.T) {
	el := NewEventLoop(1, -1)
	el.Start()
	defer el.Stop()

	done := make(chan struct{})
	el.Post(func() { panic("boom") })
	el.Post(func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop died after panic")
	}
}
