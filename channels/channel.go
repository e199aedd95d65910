// File: channels/channel.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package channels

import (
	"context"
	"sync"

	"github.com/momentics/hioload-channels/api"
	"github.com/momentics/hioload-channels/future"
)

// Reader is the consuming half of a channel.
type Reader[T any] interface {
	// TryRead takes an item if one is buffered.
	TryRead() (T, bool)
	// TryPeek returns the next item without taking it.
	TryPeek() (T, bool)
	// Read takes an item, parking until one is written or the channel closes.
	Read(ctx context.Context) future.Task[T]
	// WaitToRead resolves true once an item is available, false once the
	// channel completed gracefully and drained, or the close cause.
	WaitToRead(ctx context.Context) future.Task[bool]
	// Completion is closed once the channel is completed and drained.
	Completion() <-chan struct{}
	// Err returns the close cause after Completion is closed.
	Err() error
	// Len returns the number of buffered items.
	Len() int
	CanCount() bool
	CanPeek() bool
}

// Writer is the producing half of a channel.
type Writer[T any] interface {
	// TryWrite writes without parking; false when full or completed.
	TryWrite(item T) bool
	// Write writes, parking while a bounded channel in FullModeWait is full.
	Write(ctx context.Context, item T) future.Task[struct{}]
	// WaitToWrite resolves true once space is available, false once the
	// channel completed gracefully, or the close cause.
	WaitToWrite(ctx context.Context) future.Task[bool]
	// Complete marks the channel as done; err, if non-nil, is surfaced to
	// readers. Returns false if the channel was already completed.
	Complete(err error) bool
}

// Channel pairs the two halves of one channel.
type Channel[T any] struct {
	Reader Reader[T]
	Writer Writer[T]
	stats  api.StatsSource
}

var _ api.StatsSource = (*Channel[int])(nil)

// Stats reports queue depths for diagnostics.
func (c *Channel[T]) Stats() api.ChannelStats {
	return c.stats.Stats()
}

type impl[T any] interface {
	Reader[T]
	Writer[T]
	api.StatsSource
}

func newChannel[T any](c impl[T]) *Channel[T] {
	return &Channel[T]{Reader: c, Writer: c, stats: c}
}

// UnboundedOptions configures NewUnbounded.
type UnboundedOptions struct {
	// SingleReader selects the single-consumer variant.
	SingleReader bool
	// AllowSynchronousContinuations lets continuations registered without a
	// target run on the goroutine that completes the operation.
	AllowSynchronousContinuations bool
}

// NewUnbounded creates a channel with unlimited buffering.
func NewUnbounded[T any](opts UnboundedOptions) *Channel[T] {
	runAsync := !opts.AllowSynchronousContinuations
	if opts.SingleReader {
		return newChannel[T](newSingleReader[T](runAsync))
	}
	return newChannel[T](newUnbounded[T](runAsync))
}

// completion is the channel-level done signal.
type completion struct {
	done chan struct{}
	once sync.Once
	err  error
}

func newCompletion() *completion {
	return &completion{done: make(chan struct{})}
}

func (c *completion) complete(err error) {
	c.once.Do(func() {
		c.err = err
		close(c.done)
	})
}

func (c *completion) Done() <-chan struct{} { return c.done }

func (c *completion) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// ReadAll drains r into fn until the channel completes. It returns nil after
// a graceful completion, the close cause after a faulted one, ctx's error on
// cancellation, or the first error returned by fn.
func ReadAll[T any](ctx context.Context, r Reader[T], fn func(T) error) error {
	for {
		ok, err := r.WaitToRead(ctx).Await()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		for {
			item, ok := r.TryRead()
			if !ok {
				break
			}
			if err := fn(item); err != nil {
				return err
			}
		}
	}
}
