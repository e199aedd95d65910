// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Intrusive circular waiter lists addressed by their tail only. tail.Next()
// is the oldest waiter, so walking from there wakes in registration order.

package channels

import "github.com/momentics/hioload-channels/future"

// queueWaiter appends w after the current tail; a lone node links to itself.
func queueWaiter[T any](tail **future.Future[T], w *future.Future[T]) {
	c := *tail
	if c == nil {
		w.SetNext(w)
	} else {
		w.SetNext(c.Next())
		c.SetNext(w)
	}
	*tail = w
}

// countWaiters walks the list; callers hold the channel lock.
func countWaiters[T any](tail *future.Future[T]) int {
	if tail == nil {
		return 0
	}
	n := 1
	for c := tail.Next(); c != tail; c = c.Next() {
		n++
	}
	return n
}

// wakeUpWaiters completes every waiter of a detached list, oldest first,
// with err if non-nil and result otherwise.
func wakeUpWaiters(tail *future.Future[bool], result bool, err error) {
	if tail == nil {
		return
	}
	head := tail.Next()
	c := head
	for {
		next := c.Next()
		c.SetNext(nil)
		if err != nil {
			c.TrySetError(err)
		} else {
			c.TrySetResult(result)
		}
		if next == head {
			return
		}
		c = next
	}
}

// failOperations completes every parked operation with err. Entries already
// claimed by cancellation are skipped.
func failOperations[T any](ops []*future.Future[T], err error) {
	for _, op := range ops {
		op.TrySetError(err)
	}
}
