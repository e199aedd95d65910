package future

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/momentics/hioload-channels/internal/concurrency"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("github.com/momentics/hioload-channels/internal/concurrency.(*worker).run"))
}

func TestFuture_ResultThenAwait(t *testing.T) {
	f := New[int](false)
	task := f.Task()
	assert.False(t, task.IsCompleted())
	assert.Equal(t, Pending, task.Status())

	require.True(t, f.TrySetResult(7))
	assert.False(t, f.TrySetResult(8), "second completion must be dropped")
	assert.False(t, f.TrySetError(errors.New("late")))

	assert.Equal(t, Succeeded, task.Status())
	v, err := task.Await()
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestFuture_AwaitParksUntilCompletion(t *testing.T) {
	f := New[string](true)
	task := f.Task()
	go func() {
		time.Sleep(10 * time.Millisecond)
		f.TrySetError(errors.New("boom"))
	}()
	_, err := task.Await()
	assert.EqualError(t, err, "boom")
}

func TestFuture_SecondContinuationRejected(t *testing.T) {
	f := New[int](false)
	tok := f.Token()
	require.NoError(t, f.OnCompleted(func(any) {}, nil, tok, Inline()))
	assert.ErrorIs(t, f.OnCompleted(func(any) {}, nil, tok, Inline()), ErrContinuationAlreadySet)
	f.TrySetResult(1)
}

func TestFuture_ContinuationAfterCompletionStillRuns(t *testing.T) {
	f := New[int](false)
	f.TrySetResult(1)
	done := make(chan struct{})
	require.NoError(t, f.OnCompleted(func(any) { close(done) }, nil, f.Token(), Target{}))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("continuation not dispatched")
	}
}

func TestFuture_PooledReuseAdvancesToken(t *testing.T) {
	f := NewPooled[int](false)
	assert.False(t, f.IsCompleted())
	require.True(t, f.TryOwnAndReset())
	assert.False(t, f.TryOwnAndReset(), "owned future cannot be claimed twice")

	first := f.Task()
	f.TrySetResult(1)
	v, err := first.Result()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = first.Result()
	assert.ErrorIs(t, err, ErrStaleToken)

	require.True(t, f.TryOwnAndReset())
	second := f.Task()
	assert.NotEqual(t, first.token, second.token)
	assert.ErrorIs(t, f.OnCompleted(func(any) {}, nil, first.token, Inline()), ErrStaleToken)
	f.TrySetResult(2)
	v, err = second.Await()
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestFuture_GetResultBeforeCompletion(t *testing.T) {
	f := New[int](false)
	_, err := f.GetResult(f.Token())
	assert.ErrorIs(t, err, ErrNotCompleted)
}

func TestFuture_CancellationCompletesCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := NewCancelable[int](ctx, false)
	task := f.Task()
	cancel()

	_, err := task.Await()
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, IsCanceled(err))
	assert.False(t, f.TrySetResult(1))
}

func TestFuture_AlreadyCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := NewCancelable[int](ctx, false)
	assert.Equal(t, Canceled, f.Task().Status())
}

func TestFuture_UnregisterBeatsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := NewCancelable[int](ctx, false)
	task := f.Task()
	require.True(t, f.UnregisterCancellation())
	cancel()
	f.SetResult(5)

	v, err := task.Await()
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}

func TestFuture_CancellationRaceHasOneWinner(t *testing.T) {
	for i := 0; i < 500; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		f := NewCancelable[int](ctx, false)
		task := f.Task()

		var wins atomic.Int32
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			cancel()
		}()
		go func() {
			defer wg.Done()
			if f.TrySetResult(1) {
				wins.Add(1)
			}
		}()
		wg.Wait()

		v, err := task.Await()
		if wins.Load() == 1 {
			require.NoError(t, err)
			assert.Equal(t, 1, v)
		} else {
			assert.ErrorIs(t, err, context.Canceled)
		}
	}
}

func TestTask_SynchronousOutcomes(t *testing.T) {
	v, err := FromResult(3).Await()
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	_, err = FromError[int](errors.New("x")).Await()
	assert.EqualError(t, err, "x")

	canceled := FromCanceled[int](nil)
	assert.Equal(t, Canceled, canceled.Status())
	_, err = canceled.Result()
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTarget_ExecutorAndAffinity(t *testing.T) {
	exec := concurrency.NewExecutor(1, 8, false)
	defer exec.Close()
	loop := concurrency.NewEventLoop(4, -1)
	loop.Start()
	defer loop.Stop()

	for _, target := range []Target{ThreadPool(), OnExecutor(exec), OnAffinity(loop)} {
		f := New[int](false)
		task := f.Task()
		ran := make(chan struct{})
		require.NoError(t, task.OnCompleted(func() {
			v, err := task.Result()
			assert.NoError(t, err)
			assert.Equal(t, 9, v)
			close(ran)
		}, target))
		f.TrySetResult(9)
		select {
		case <-ran:
		case <-time.After(2 * time.Second):
			t.Fatalf("continuation on target kind %d did not run", target.Kind())
		}
	}
	assert.Eventually(t, func() bool { return loop.Processed() == 1 }, time.Second, time.Millisecond)
}

func TestTarget_StoppedLoopFallsBack(t *testing.T) {
	loop := concurrency.NewEventLoop(1, -1)
	loop.Stop()

	f := New[int](false)
	ran := make(chan struct{})
	require.NoError(t, f.Task().OnCompleted(func() { close(ran) }, OnAffinity(loop)))
	f.TrySetResult(1)
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("fallback goroutine did not run")
	}
}

func TestTarget_NoneRunsInlineWhenSyncAllowed(t *testing.T) {
	f := New[int](false)
	var ran bool
	require.NoError(t, f.OnCompleted(func(any) { ran = true }, nil, f.Token(), Target{}))
	f.TrySetResult(1)
	assert.True(t, ran)
}

// foreignCtx is a context the context package cannot hook into directly, so
// AfterFunc watches it from a goroutine until the registration is stopped.
type foreignCtx struct {
	context.Context
	done chan struct{}
}

func (c foreignCtx) Done() <-chan struct{} { return c.done }

func TestFuture_TrySetCanceledReleasesContextRegistration(t *testing.T) {
	before := goleak.IgnoreCurrent()
	ctx := foreignCtx{Context: context.Background(), done: make(chan struct{})}
	defer close(ctx.done)

	replaced := errors.New("replaced")
	f := NewCancelable[int](ctx, false)
	require.True(t, f.TrySetCanceled(replaced))
	_, err := f.Task().Await()
	assert.ErrorIs(t, err, replaced)

	goleak.VerifyNone(t, before,
		goleak.IgnoreAnyFunction("github.com/momentics/hioload-channels/internal/concurrency.(*worker).run"))
}

func TestFuture_StaleTaskNeverSeesNextOutcome(t *testing.T) {
	f := NewPooled[int](false)
	var wrong atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 1000; i++ {
		require.True(t, f.TryOwnAndReset())
		task := f.Task()
		want := Succeeded
		if i%2 == 0 {
			f.TrySetResult(i)
		} else {
			want = Faulted
			f.TrySetError(errors.New("odd"))
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if s := task.Status(); s != Pending && s != want {
					wrong.Add(1)
				}
			}
		}()
		_, _ = task.Result()
	}
	wg.Wait()
	assert.Zero(t, wrong.Load(), "a consumed task must not report a later generation's outcome")
}
