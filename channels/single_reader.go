// File: channels/single_reader.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Unbounded channel for a single logical consumer. Producers may be
// concurrent. There is one parked-reader slot and one parked-waiter slot:
// parking a new Read or WaitToRead cancels whatever occupied the slot with
// api.ErrSuperseded, so the latest read wins.

package channels

import (
	"context"
	"sync"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-channels/api"
	"github.com/momentics/hioload-channels/future"
)

type singleReader[T any] struct {
	mu            sync.Mutex
	items         *queue.Queue
	blockedReader *future.Future[T]
	waitingReader *future.Future[bool]
	doneWriting   error
	completion    *completion
	runAsync      bool

	readerSingleton *future.Future[T]
	waiterSingleton *future.Future[bool]
}

func newSingleReader[T any](runAsync bool) *singleReader[T] {
	return &singleReader[T]{
		items:           queue.New(),
		completion:      newCompletion(),
		runAsync:        runAsync,
		readerSingleton: future.NewPooled[T](runAsync),
		waiterSingleton: future.NewPooled[bool](runAsync),
	}
}

// TryWrite implements Writer.
func (s *singleReader[T]) TryWrite(item T) bool {
	var reader *future.Future[T]
	var waiter *future.Future[bool]

	s.mu.Lock()
	if s.doneWriting != nil {
		s.mu.Unlock()
		return false
	}
	if r := s.blockedReader; r != nil {
		s.blockedReader = nil
		if r.UnregisterCancellation() {
			reader = r
		}
	}
	if reader == nil {
		s.items.Add(item)
		waiter = s.waitingReader
		s.waitingReader = nil
	}
	s.mu.Unlock()

	if reader != nil {
		reader.SetResult(item)
	} else if waiter != nil {
		waiter.TrySetResult(true)
	}
	return true
}

// Write implements Writer.
func (s *singleReader[T]) Write(ctx context.Context, item T) future.Task[struct{}] {
	if err := ctx.Err(); err != nil {
		return future.FromCanceled[struct{}](err)
	}
	if s.TryWrite(item) {
		return future.FromResult(struct{}{})
	}
	s.mu.Lock()
	done := s.doneWriting
	s.mu.Unlock()
	return future.FromError[struct{}](closedError(done))
}

// WaitToWrite implements Writer.
func (s *singleReader[T]) WaitToWrite(ctx context.Context) future.Task[bool] {
	if err := ctx.Err(); err != nil {
		return future.FromCanceled[bool](err)
	}
	s.mu.Lock()
	done := s.doneWriting
	s.mu.Unlock()
	if done == nil {
		return future.FromResult(true)
	}
	return waitOutcome(done)
}

// Complete implements Writer.
func (s *singleReader[T]) Complete(err error) bool {
	s.mu.Lock()
	if s.doneWriting != nil {
		s.mu.Unlock()
		return false
	}
	if err != nil {
		s.doneWriting = err
	} else {
		s.doneWriting = errDoneWriting
	}
	drained := s.items.Length() == 0
	reader := s.blockedReader
	s.blockedReader = nil
	waiter := s.waitingReader
	s.waitingReader = nil
	s.mu.Unlock()

	if drained {
		s.completion.complete(err)
	}
	if reader != nil {
		reader.TrySetError(closedError(err))
	}
	if waiter != nil {
		if err != nil {
			waiter.TrySetError(err)
		} else {
			waiter.TrySetResult(false)
		}
	}
	return true
}

// TryRead implements Reader.
func (s *singleReader[T]) TryRead() (T, bool) {
	s.mu.Lock()
	if s.items.Length() == 0 {
		s.mu.Unlock()
		var zero T
		return zero, false
	}
	return s.dequeueAndUnlock(), true
}

func (s *singleReader[T]) dequeueAndUnlock() T {
	item := itemOf[T](s.items.Remove())
	drained := s.doneWriting != nil && s.items.Length() == 0
	done := s.doneWriting
	s.mu.Unlock()
	if drained {
		s.completion.complete(causeOf(done))
	}
	return item
}

// TryPeek implements Reader.
func (s *singleReader[T]) TryPeek() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.items.Length() == 0 {
		var zero T
		return zero, false
	}
	return itemOf[T](s.items.Peek()), true
}

// Read implements Reader. A Read that parks supersedes any Read still parked.
func (s *singleReader[T]) Read(ctx context.Context) future.Task[T] {
	if err := ctx.Err(); err != nil {
		return future.FromCanceled[T](err)
	}
	s.mu.Lock()
	if s.items.Length() > 0 {
		return future.FromResult(s.dequeueAndUnlock())
	}
	if s.doneWriting != nil {
		done := s.doneWriting
		s.mu.Unlock()
		return future.FromError[T](closedError(done))
	}
	old := s.blockedReader
	s.blockedReader = nil
	var r *future.Future[T]
	if ctx.Done() == nil && s.readerSingleton.TryOwnAndReset() {
		r = s.readerSingleton
	} else {
		r = future.NewCancelable[T](ctx, s.runAsync)
	}
	s.blockedReader = r
	task := r.Task()
	s.mu.Unlock()

	if old != nil {
		old.TrySetCanceled(api.ErrSuperseded)
	}
	return task
}

// WaitToRead implements Reader. A parked wait supersedes the previous one.
func (s *singleReader[T]) WaitToRead(ctx context.Context) future.Task[bool] {
	if err := ctx.Err(); err != nil {
		return future.FromCanceled[bool](err)
	}
	s.mu.Lock()
	if s.items.Length() > 0 {
		s.mu.Unlock()
		return future.FromResult(true)
	}
	if s.doneWriting != nil {
		done := s.doneWriting
		s.mu.Unlock()
		return waitOutcome(done)
	}
	old := s.waitingReader
	s.waitingReader = nil
	var w *future.Future[bool]
	if ctx.Done() == nil && s.waiterSingleton.TryOwnAndReset() {
		w = s.waiterSingleton
	} else {
		w = future.NewCancelable[bool](ctx, s.runAsync)
	}
	s.waitingReader = w
	task := w.Task()
	s.mu.Unlock()

	if old != nil {
		old.TrySetCanceled(api.ErrSuperseded)
	}
	return task
}

func (s *singleReader[T]) Completion() <-chan struct{} { return s.completion.Done() }
func (s *singleReader[T]) Err() error                  { return s.completion.Err() }
func (s *singleReader[T]) CanCount() bool              { return true }
func (s *singleReader[T]) CanPeek() bool               { return true }

// Len implements Reader.
func (s *singleReader[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Length()
}

// Stats implements api.StatsSource.
func (s *singleReader[T]) Stats() api.ChannelStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := api.ChannelStats{
		Buffered: s.items.Length(),
		Capacity: -1,
		Closed:   s.doneWriting != nil,
	}
	if s.blockedReader != nil && !s.blockedReader.IsCompleted() {
		st.BlockedReaders = 1
	}
	if s.waitingReader != nil && !s.waitingReader.IsCompleted() {
		st.WaitingReaders = 1
	}
	return st
}
