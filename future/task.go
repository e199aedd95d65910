// File: future/task.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package future

import (
	"context"
	"errors"

	"github.com/momentics/hioload-channels/pool"
)

// Task is the handle returned by asynchronous operations. It either carries a
// synchronously available outcome or refers to a Future at a fixed token.
// A Task backed by a future must be consumed exactly once.
type Task[T any] struct {
	f      *Future[T]
	token  uint32
	value  T
	err    error
	status Status
}

// FromResult returns a completed task holding v.
func FromResult[T any](v T) Task[T] {
	return Task[T]{value: v, status: Succeeded}
}

// FromError returns a faulted task.
func FromError[T any](err error) Task[T] {
	return Task[T]{err: err, status: Faulted}
}

// FromCanceled returns a canceled task. A nil err becomes context.Canceled.
func FromCanceled[T any](err error) Task[T] {
	if err == nil {
		err = context.Canceled
	}
	return Task[T]{err: err, status: Canceled}
}

// IsCompleted reports whether Await would return without parking.
func (t Task[T]) IsCompleted() bool {
	if t.f == nil {
		return true
	}
	return t.token == t.f.Token() && t.f.IsCompleted()
}

// Status returns the task outcome, Pending while unresolved.
func (t Task[T]) Status() Status {
	if t.f == nil {
		return t.status
	}
	return t.f.Status(t.token)
}

// OnCompleted schedules fn on target once the task resolves. fn should call
// Result to consume the outcome.
func (t Task[T]) OnCompleted(fn func(), target Target) error {
	if t.f == nil {
		dispatch(target, true, func(any) { fn() }, nil)
		return nil
	}
	return t.f.OnCompleted(func(any) { fn() }, nil, t.token, target)
}

// Result consumes a completed task without parking.
func (t Task[T]) Result() (T, error) {
	if t.f == nil {
		return t.value, t.err
	}
	return t.f.GetResult(t.token)
}

// Await parks the calling goroutine until the task resolves and consumes it.
func (t Task[T]) Await() (T, error) {
	if t.IsCompleted() {
		return t.Result()
	}
	done := pool.Signals.Get()
	err := t.f.OnCompleted(func(s any) {
		s.(chan struct{}) <- struct{}{}
	}, done, t.token, Inline())
	if err != nil {
		pool.Signals.Put(done)
		var zero T
		return zero, err
	}
	<-done
	pool.Signals.Put(done)
	return t.f.GetResult(t.token)
}

// IsCanceled reports whether err is a cancellation outcome.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
