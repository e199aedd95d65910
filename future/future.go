// File: future/future.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package future

import (
	"context"
	"sync/atomic"
)

// Status is the resolution state of a future.
type Status int32

const (
	Pending Status = iota
	Succeeded
	Faulted
	Canceled
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Faulted:
		return "faulted"
	case Canceled:
		return "canceled"
	}
	return "unknown"
}

type continuation struct {
	fn     func(any)
	state  any
	target Target
}

// Sentinel values of the continuation slot.
var (
	completedSentinel = &continuation{}
	availableSentinel = &continuation{}
)

// Future is a reusable single-assignment result slot.
//
// The continuation slot encodes the lifecycle: nil while pending without a
// continuation, a registered continuation, completedSentinel once resolved,
// and availableSentinel while a pooled future sits idle.
type Future[T any] struct {
	continuation atomic.Pointer[continuation]
	reserved     atomic.Bool
	generation   atomic.Uint32

	value  T
	err    error
	status atomic.Int32

	stop     func() bool // cancellation registration
	pooled   bool
	runAsync bool

	next *Future[T]
}

// New returns a pending, unpooled future. With runAsync set, continuations
// registered without a target are never run on the completing goroutine.
func New[T any](runAsync bool) *Future[T] {
	return &Future[T]{runAsync: runAsync}
}

// NewPooled returns an idle pooled future; claim it with TryOwnAndReset.
func NewPooled[T any](runAsync bool) *Future[T] {
	f := &Future[T]{runAsync: runAsync, pooled: true}
	f.continuation.Store(availableSentinel)
	return f
}

// NewCancelable returns a pending future that completes as canceled when ctx
// is done. A ctx that is already done yields a future canceled up front.
func NewCancelable[T any](ctx context.Context, runAsync bool) *Future[T] {
	f := New[T](runAsync)
	if ctx.Done() == nil {
		return f
	}
	if err := ctx.Err(); err != nil {
		f.TrySetCanceled(err)
		return f
	}
	// The callback may run before f.stop is assigned, so it must not touch it.
	f.stop = context.AfterFunc(ctx, func() {
		if f.TryReserveCompletion() {
			f.setCanceled(ctx.Err())
		}
	})
	return f
}

// Pooled reports whether the future returns to "available" after consumption.
func (f *Future[T]) Pooled() bool { return f.pooled }

// Token returns the current generation.
func (f *Future[T]) Token() uint32 { return f.generation.Load() }

// Task wraps the future with its current token.
func (f *Future[T]) Task() Task[T] {
	return Task[T]{f: f, token: f.Token()}
}

// Next and SetNext link futures into intrusive waiter lists.
func (f *Future[T]) Next() *Future[T]     { return f.next }
func (f *Future[T]) SetNext(n *Future[T]) { f.next = n }

// TryOwnAndReset claims an idle pooled future and clears its previous use.
func (f *Future[T]) TryOwnAndReset() bool {
	if !f.continuation.CompareAndSwap(availableSentinel, nil) {
		return false
	}
	var zero T
	f.value = zero
	f.err = nil
	f.status.Store(int32(Pending))
	f.next = nil
	f.reserved.Store(false)
	return true
}

// IsCompleted reports whether a result is available.
func (f *Future[T]) IsCompleted() bool {
	return f.continuation.Load() == completedSentinel
}

// Status returns the outcome for token, or Pending if the future is still
// pending or the token is stale.
func (f *Future[T]) Status(token uint32) Status {
	if token != f.Token() || !f.IsCompleted() {
		return Pending
	}
	s := Status(f.status.Load())
	// A consumer may have recycled the future between the checks and the load.
	if token != f.Token() {
		return Pending
	}
	return s
}

// OnCompleted registers fn to run once the future resolves. If it already
// has, fn is dispatched right away; in that case a zero Target is treated as
// the thread pool so the caller's stack never runs it.
func (f *Future[T]) OnCompleted(fn func(any), state any, token uint32, target Target) error {
	if token != f.Token() {
		return ErrStaleToken
	}
	c := &continuation{fn: fn, state: state, target: target}
	if f.continuation.CompareAndSwap(nil, c) {
		return nil
	}
	if f.continuation.Load() == completedSentinel {
		dispatch(target, true, fn, state)
		return nil
	}
	return ErrContinuationAlreadySet
}

// TryReserveCompletion claims the right to complete the future. Exactly one
// caller ever succeeds per use.
func (f *Future[T]) TryReserveCompletion() bool {
	return f.reserved.CompareAndSwap(false, true)
}

// UnregisterCancellation reserves completion and detaches the cancellation
// callback. A false result means the future was already claimed, usually by
// cancellation, and must be skipped.
func (f *Future[T]) UnregisterCancellation() bool {
	if !f.TryReserveCompletion() {
		return false
	}
	if f.stop != nil {
		f.stop()
	}
	return true
}

// TrySetResult completes the future with v unless it was already claimed.
func (f *Future[T]) TrySetResult(v T) bool {
	if !f.UnregisterCancellation() {
		return false
	}
	f.SetResult(v)
	return true
}

// TrySetError completes the future with err unless it was already claimed.
func (f *Future[T]) TrySetError(err error) bool {
	if !f.UnregisterCancellation() {
		return false
	}
	f.SetError(err)
	return true
}

// TrySetCanceled completes the future as canceled and detaches its context
// registration. A nil err becomes context.Canceled.
func (f *Future[T]) TrySetCanceled(err error) bool {
	if !f.UnregisterCancellation() {
		return false
	}
	f.setCanceled(err)
	return true
}

func (f *Future[T]) setCanceled(err error) {
	if err == nil {
		err = context.Canceled
	}
	f.err = err
	f.status.Store(int32(Canceled))
	f.signalCompletion()
}

// SetResult completes a future whose completion the caller already reserved.
func (f *Future[T]) SetResult(v T) {
	f.value = v
	f.status.Store(int32(Succeeded))
	f.signalCompletion()
}

// SetError completes a future whose completion the caller already reserved.
func (f *Future[T]) SetError(err error) {
	f.err = err
	f.status.Store(int32(Faulted))
	f.signalCompletion()
}

func (f *Future[T]) signalCompletion() {
	if f.continuation.CompareAndSwap(nil, completedSentinel) {
		return
	}
	c := f.continuation.Swap(completedSentinel)
	dispatch(c.target, f.runAsync, c.fn, c.state)
}

// GetResult consumes the result for token. Consumption advances the
// generation; a pooled future becomes available for reuse.
func (f *Future[T]) GetResult(token uint32) (T, error) {
	var zero T
	if token != f.Token() {
		return zero, ErrStaleToken
	}
	if !f.IsCompleted() {
		return zero, ErrNotCompleted
	}
	v, err := f.value, f.err
	f.generation.Add(1)
	if f.pooled {
		f.value = zero
		f.err = nil
		f.continuation.Store(availableSentinel)
	}
	return v, err
}
