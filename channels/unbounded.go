// File: channels/unbounded.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Multi-producer, multi-consumer channel with unlimited buffering.

package channels

import (
	"context"
	"sync"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-channels/api"
	"github.com/momentics/hioload-channels/future"
)

type unbounded[T any] struct {
	mu                 sync.Mutex
	items              *queue.Queue // T
	blockedReaders     *queue.Queue // *future.Future[T], FIFO
	waitingReadersTail *future.Future[bool]
	doneWriting        error
	completion         *completion
	runAsync           bool

	readerSingleton *future.Future[T]
	waiterSingleton *future.Future[bool]
}

func newUnbounded[T any](runAsync bool) *unbounded[T] {
	return &unbounded[T]{
		items:           queue.New(),
		blockedReaders:  queue.New(),
		completion:      newCompletion(),
		runAsync:        runAsync,
		readerSingleton: future.NewPooled[T](runAsync),
		waiterSingleton: future.NewPooled[bool](runAsync),
	}
}

// TryWrite implements Writer.
func (u *unbounded[T]) TryWrite(item T) bool {
	var reader *future.Future[T]
	var waiters *future.Future[bool]

	u.mu.Lock()
	if u.doneWriting != nil {
		u.mu.Unlock()
		return false
	}
	for u.blockedReaders.Length() > 0 {
		r := u.blockedReaders.Remove().(*future.Future[T])
		if r.UnregisterCancellation() {
			reader = r
			break
		}
	}
	if reader == nil {
		u.items.Add(item)
		waiters = u.waitingReadersTail
		u.waitingReadersTail = nil
	}
	u.mu.Unlock()

	if reader != nil {
		reader.SetResult(item)
	} else {
		wakeUpWaiters(waiters, true, nil)
	}
	return true
}

// Write implements Writer; an unbounded write never parks.
func (u *unbounded[T]) Write(ctx context.Context, item T) future.Task[struct{}] {
	if err := ctx.Err(); err != nil {
		return future.FromCanceled[struct{}](err)
	}
	if u.TryWrite(item) {
		return future.FromResult(struct{}{})
	}
	u.mu.Lock()
	done := u.doneWriting
	u.mu.Unlock()
	return future.FromError[struct{}](closedError(done))
}

// WaitToWrite implements Writer.
func (u *unbounded[T]) WaitToWrite(ctx context.Context) future.Task[bool] {
	if err := ctx.Err(); err != nil {
		return future.FromCanceled[bool](err)
	}
	u.mu.Lock()
	done := u.doneWriting
	u.mu.Unlock()
	if done == nil {
		return future.FromResult(true)
	}
	return waitOutcome(done)
}

// Complete implements Writer.
func (u *unbounded[T]) Complete(err error) bool {
	u.mu.Lock()
	if u.doneWriting != nil {
		u.mu.Unlock()
		return false
	}
	if err != nil {
		u.doneWriting = err
	} else {
		u.doneWriting = errDoneWriting
	}
	drained := u.items.Length() == 0
	readers := make([]*future.Future[T], 0, u.blockedReaders.Length())
	for u.blockedReaders.Length() > 0 {
		readers = append(readers, u.blockedReaders.Remove().(*future.Future[T]))
	}
	waiters := u.waitingReadersTail
	u.waitingReadersTail = nil
	u.mu.Unlock()

	if drained {
		u.completion.complete(err)
	}
	failOperations(readers, closedError(err))
	wakeUpWaiters(waiters, false, err)
	return true
}

// TryRead implements Reader.
func (u *unbounded[T]) TryRead() (T, bool) {
	u.mu.Lock()
	if u.items.Length() == 0 {
		u.mu.Unlock()
		var zero T
		return zero, false
	}
	return u.dequeueAndUnlock(), true
}

// dequeueAndUnlock takes the head item with mu held and releases mu,
// signalling completion when it took the last item of a completed channel.
func (u *unbounded[T]) dequeueAndUnlock() T {
	item := itemOf[T](u.items.Remove())
	drained := u.doneWriting != nil && u.items.Length() == 0
	done := u.doneWriting
	u.mu.Unlock()
	if drained {
		u.completion.complete(causeOf(done))
	}
	return item
}

// TryPeek implements Reader.
func (u *unbounded[T]) TryPeek() (T, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.items.Length() == 0 {
		var zero T
		return zero, false
	}
	return itemOf[T](u.items.Peek()), true
}

// Read implements Reader.
func (u *unbounded[T]) Read(ctx context.Context) future.Task[T] {
	if err := ctx.Err(); err != nil {
		return future.FromCanceled[T](err)
	}
	u.mu.Lock()
	if u.items.Length() > 0 {
		return future.FromResult(u.dequeueAndUnlock())
	}
	if u.doneWriting != nil {
		done := u.doneWriting
		u.mu.Unlock()
		return future.FromError[T](closedError(done))
	}
	var r *future.Future[T]
	if ctx.Done() == nil && u.readerSingleton.TryOwnAndReset() {
		r = u.readerSingleton
	} else {
		r = future.NewCancelable[T](ctx, u.runAsync)
	}
	u.blockedReaders.Add(r)
	task := r.Task()
	u.mu.Unlock()
	return task
}

// WaitToRead implements Reader.
func (u *unbounded[T]) WaitToRead(ctx context.Context) future.Task[bool] {
	if err := ctx.Err(); err != nil {
		return future.FromCanceled[bool](err)
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.items.Length() > 0 {
		return future.FromResult(true)
	}
	if u.doneWriting != nil {
		return waitOutcome(u.doneWriting)
	}
	var w *future.Future[bool]
	if ctx.Done() == nil && u.waiterSingleton.TryOwnAndReset() {
		w = u.waiterSingleton
	} else {
		w = future.NewCancelable[bool](ctx, u.runAsync)
	}
	queueWaiter(&u.waitingReadersTail, w)
	return w.Task()
}

func (u *unbounded[T]) Completion() <-chan struct{} { return u.completion.Done() }
func (u *unbounded[T]) Err() error                  { return u.completion.Err() }
func (u *unbounded[T]) CanCount() bool              { return true }
func (u *unbounded[T]) CanPeek() bool               { return true }

// Len implements Reader.
func (u *unbounded[T]) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.items.Length()
}

// Stats implements api.StatsSource.
func (u *unbounded[T]) Stats() api.ChannelStats {
	u.mu.Lock()
	defer u.mu.Unlock()
	return api.ChannelStats{
		Buffered:       u.items.Length(),
		Capacity:       -1,
		BlockedReaders: u.blockedReaders.Length(),
		WaitingReaders: countWaiters(u.waitingReadersTail),
		Closed:         u.doneWriting != nil,
	}
}

// itemOf converts a queue element back to T; nil interface items come back
// as the zero value.
func itemOf[T any](v any) T {
	item, _ := v.(T)
	return item
}
