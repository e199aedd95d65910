// File: channels/bounded.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Capacity-limited channel with an overflow policy and parked writers.

package channels

import (
	"context"
	"sync"

	"github.com/gammazero/deque"

	"github.com/momentics/hioload-channels/api"
	"github.com/momentics/hioload-channels/future"
)

// FullMode selects what a write does when a bounded channel is full.
type FullMode int

const (
	// FullModeWait parks Write until space appears; TryWrite fails.
	FullModeWait FullMode = iota
	// FullModeDropNewest evicts the most recently buffered item.
	FullModeDropNewest
	// FullModeDropOldest evicts the least recently buffered item.
	FullModeDropOldest
	// FullModeDropWrite discards the incoming item and reports success.
	FullModeDropWrite
)

func (m FullMode) String() string {
	switch m {
	case FullModeWait:
		return "wait"
	case FullModeDropNewest:
		return "drop-newest"
	case FullModeDropOldest:
		return "drop-oldest"
	case FullModeDropWrite:
		return "drop-write"
	}
	return "unknown"
}

// BoundedOptions configures NewBounded.
type BoundedOptions struct {
	// Capacity is the maximum number of buffered items; must be >= 1.
	Capacity int
	// FullMode is fixed for the lifetime of the channel.
	FullMode FullMode
	// AllowSynchronousContinuations lets continuations registered without a
	// target run on the goroutine that completes the operation.
	AllowSynchronousContinuations bool
}

// NewBounded creates a capacity-limited channel. onItemDropped, if non-nil,
// receives every item discarded by a drop policy, outside the channel lock
// and exactly once per item.
func NewBounded[T any](opts BoundedOptions, onItemDropped func(T)) (*Channel[T], error) {
	if opts.Capacity < 1 {
		return nil, api.WrapError(api.ErrCodeInvalidArgument, api.ErrInvalidArgument,
			"bounded channel capacity must be positive").WithContext("capacity", opts.Capacity)
	}
	if opts.FullMode < FullModeWait || opts.FullMode > FullModeDropWrite {
		return nil, api.WrapError(api.ErrCodeInvalidArgument, api.ErrInvalidArgument,
			"unknown full mode").WithContext("mode", int(opts.FullMode))
	}
	return newChannel[T](newBounded(opts, onItemDropped)), nil
}

type blockedWriter[T any] struct {
	op   *future.Future[struct{}]
	item T
}

type bounded[T any] struct {
	mu                 sync.Mutex
	items              deque.Deque[T]
	capacity           int
	mode               FullMode
	onItemDropped      func(T)
	blockedReaders     deque.Deque[*future.Future[T]]
	blockedWriters     deque.Deque[blockedWriter[T]]
	waitingReadersTail *future.Future[bool]
	waitingWritersTail *future.Future[bool]
	doneWriting        error
	completion         *completion
	runAsync           bool
	dropped            uint64

	readerSingleton      *future.Future[T]
	writerSingleton      *future.Future[struct{}]
	readWaiterSingleton  *future.Future[bool]
	writeWaiterSingleton *future.Future[bool]
}

func newBounded[T any](opts BoundedOptions, onItemDropped func(T)) *bounded[T] {
	runAsync := !opts.AllowSynchronousContinuations
	return &bounded[T]{
		capacity:             opts.Capacity,
		mode:                 opts.FullMode,
		onItemDropped:        onItemDropped,
		completion:           newCompletion(),
		runAsync:             runAsync,
		readerSingleton:      future.NewPooled[T](runAsync),
		writerSingleton:      future.NewPooled[struct{}](runAsync),
		readWaiterSingleton:  future.NewPooled[bool](runAsync),
		writeWaiterSingleton: future.NewPooled[bool](runAsync),
	}
}

func (b *bounded[T]) full() bool {
	return b.items.Len() >= b.capacity
}

// writeAndUnlock stores item with mu held on an open channel that is not
// full in FullModeWait, then releases mu and completes whatever the write
// unblocked.
func (b *bounded[T]) writeAndUnlock(item T) {
	switch {
	case b.items.Len() == 0:
		for b.blockedReaders.Len() > 0 {
			r := b.blockedReaders.PopFront()
			if r.UnregisterCancellation() {
				b.mu.Unlock()
				r.SetResult(item)
				return
			}
		}
		b.items.PushBack(item)
		waiters := b.waitingReadersTail
		b.waitingReadersTail = nil
		b.mu.Unlock()
		wakeUpWaiters(waiters, true, nil)

	case !b.full():
		b.items.PushBack(item)
		b.mu.Unlock()

	case b.mode == FullModeDropWrite:
		b.dropped++
		b.mu.Unlock()
		b.itemDropped(item)

	default:
		var evicted T
		if b.mode == FullModeDropNewest {
			evicted = b.items.PopBack()
		} else {
			evicted = b.items.PopFront()
		}
		b.items.PushBack(item)
		b.dropped++
		b.mu.Unlock()
		b.itemDropped(evicted)
	}
}

func (b *bounded[T]) itemDropped(item T) {
	if b.onItemDropped != nil {
		b.onItemDropped(item)
	}
}

// dequeueAndUnlock takes the head item with mu held. If a writer is parked,
// its item moves into the freed slot before mu is released so the buffer
// never exceeds capacity.
func (b *bounded[T]) dequeueAndUnlock() T {
	item := b.items.PopFront()
	if b.doneWriting != nil {
		drained := b.items.Len() == 0
		done := b.doneWriting
		b.mu.Unlock()
		if drained {
			b.completion.complete(causeOf(done))
		}
		return item
	}
	for b.blockedWriters.Len() > 0 {
		w := b.blockedWriters.PopFront()
		if w.op.UnregisterCancellation() {
			b.items.PushBack(w.item)
			b.mu.Unlock()
			w.op.SetResult(struct{}{})
			return item
		}
	}
	waiters := b.waitingWritersTail
	b.waitingWritersTail = nil
	b.mu.Unlock()
	wakeUpWaiters(waiters, true, nil)
	return item
}

// TryWrite implements Writer.
func (b *bounded[T]) TryWrite(item T) bool {
	b.mu.Lock()
	if b.doneWriting != nil || (b.mode == FullModeWait && b.full()) {
		b.mu.Unlock()
		return false
	}
	b.writeAndUnlock(item)
	return true
}

// Write implements Writer.
func (b *bounded[T]) Write(ctx context.Context, item T) future.Task[struct{}] {
	if err := ctx.Err(); err != nil {
		return future.FromCanceled[struct{}](err)
	}
	b.mu.Lock()
	if b.doneWriting != nil {
		done := b.doneWriting
		b.mu.Unlock()
		return future.FromError[struct{}](closedError(done))
	}
	if b.mode == FullModeWait && b.full() {
		var w *future.Future[struct{}]
		if ctx.Done() == nil && b.writerSingleton.TryOwnAndReset() {
			w = b.writerSingleton
		} else {
			w = future.NewCancelable[struct{}](ctx, b.runAsync)
		}
		b.blockedWriters.PushBack(blockedWriter[T]{op: w, item: item})
		task := w.Task()
		b.mu.Unlock()
		return task
	}
	b.writeAndUnlock(item)
	return future.FromResult(struct{}{})
}

// WaitToWrite implements Writer.
func (b *bounded[T]) WaitToWrite(ctx context.Context) future.Task[bool] {
	if err := ctx.Err(); err != nil {
		return future.FromCanceled[bool](err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.doneWriting != nil {
		return waitOutcome(b.doneWriting)
	}
	if !b.full() || b.mode != FullModeWait {
		return future.FromResult(true)
	}
	var w *future.Future[bool]
	if ctx.Done() == nil && b.writeWaiterSingleton.TryOwnAndReset() {
		w = b.writeWaiterSingleton
	} else {
		w = future.NewCancelable[bool](ctx, b.runAsync)
	}
	queueWaiter(&b.waitingWritersTail, w)
	return w.Task()
}

// Complete implements Writer.
func (b *bounded[T]) Complete(err error) bool {
	b.mu.Lock()
	if b.doneWriting != nil {
		b.mu.Unlock()
		return false
	}
	if err != nil {
		b.doneWriting = err
	} else {
		b.doneWriting = errDoneWriting
	}
	drained := b.items.Len() == 0
	readers := drainQueue(&b.blockedReaders)
	parked := drainQueue(&b.blockedWriters)
	readWaiters := b.waitingReadersTail
	writeWaiters := b.waitingWritersTail
	b.waitingReadersTail = nil
	b.waitingWritersTail = nil
	b.mu.Unlock()

	if drained {
		b.completion.complete(err)
	}
	cerr := closedError(err)
	failOperations(readers, cerr)
	writers := make([]*future.Future[struct{}], len(parked))
	for i, w := range parked {
		writers[i] = w.op
	}
	failOperations(writers, cerr)
	wakeUpWaiters(readWaiters, false, err)
	wakeUpWaiters(writeWaiters, false, err)
	return true
}

// TryRead implements Reader.
func (b *bounded[T]) TryRead() (T, bool) {
	b.mu.Lock()
	if b.items.Len() == 0 {
		b.mu.Unlock()
		var zero T
		return zero, false
	}
	return b.dequeueAndUnlock(), true
}

// TryPeek implements Reader.
func (b *bounded[T]) TryPeek() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.items.Len() == 0 {
		var zero T
		return zero, false
	}
	return b.items.Front(), true
}

// Read implements Reader.
func (b *bounded[T]) Read(ctx context.Context) future.Task[T] {
	if err := ctx.Err(); err != nil {
		return future.FromCanceled[T](err)
	}
	b.mu.Lock()
	if b.items.Len() > 0 {
		return future.FromResult(b.dequeueAndUnlock())
	}
	if b.doneWriting != nil {
		done := b.doneWriting
		b.mu.Unlock()
		return future.FromError[T](closedError(done))
	}
	var r *future.Future[T]
	if ctx.Done() == nil && b.readerSingleton.TryOwnAndReset() {
		r = b.readerSingleton
	} else {
		r = future.NewCancelable[T](ctx, b.runAsync)
	}
	b.blockedReaders.PushBack(r)
	task := r.Task()
	b.mu.Unlock()
	return task
}

// WaitToRead implements Reader.
func (b *bounded[T]) WaitToRead(ctx context.Context) future.Task[bool] {
	if err := ctx.Err(); err != nil {
		return future.FromCanceled[bool](err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.items.Len() > 0 {
		return future.FromResult(true)
	}
	if b.doneWriting != nil {
		return waitOutcome(b.doneWriting)
	}
	var w *future.Future[bool]
	if ctx.Done() == nil && b.readWaiterSingleton.TryOwnAndReset() {
		w = b.readWaiterSingleton
	} else {
		w = future.NewCancelable[bool](ctx, b.runAsync)
	}
	queueWaiter(&b.waitingReadersTail, w)
	return w.Task()
}

func (b *bounded[T]) Completion() <-chan struct{} { return b.completion.Done() }
func (b *bounded[T]) Err() error                  { return b.completion.Err() }
func (b *bounded[T]) CanCount() bool              { return true }
func (b *bounded[T]) CanPeek() bool               { return true }

// Len implements Reader.
func (b *bounded[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.items.Len()
}

// Stats implements api.StatsSource.
func (b *bounded[T]) Stats() api.ChannelStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return api.ChannelStats{
		Buffered:       b.items.Len(),
		Capacity:       b.capacity,
		BlockedReaders: b.blockedReaders.Len(),
		BlockedWriters: b.blockedWriters.Len(),
		WaitingReaders: countWaiters(b.waitingReadersTail),
		WaitingWriters: countWaiters(b.waitingWritersTail),
		Dropped:        b.dropped,
		Closed:         b.doneWriting != nil,
	}
}

// drainQueue empties q, oldest first.
func drainQueue[E any](q *deque.Deque[E]) []E {
	out := make([]E, 0, q.Len())
	for q.Len() > 0 {
		out = append(out, q.PopFront())
	}
	return out
}
