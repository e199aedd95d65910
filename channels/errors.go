// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package channels

import (
	"errors"

	"github.com/momentics/hioload-channels/api"
	"github.com/momentics/hioload-channels/future"
)

// errDoneWriting marks a channel completed without a cause.
var errDoneWriting = errors.New("channels: done writing")

// closedError builds the error reported by reads and writes on a closed
// channel. Cancellation causes are passed through untouched.
func closedError(inner error) error {
	if inner == nil || inner == errDoneWriting {
		return api.ErrChannelClosed
	}
	if future.IsCanceled(inner) {
		return inner
	}
	return &api.ClosedError{Cause: inner}
}

// causeOf maps the done-writing slot to the caller-visible cause.
func causeOf(doneWriting error) error {
	if doneWriting == errDoneWriting {
		return nil
	}
	return doneWriting
}

// waitOutcome is what WaitToRead/WaitToWrite report on a closed channel.
func waitOutcome(doneWriting error) future.Task[bool] {
	if doneWriting == errDoneWriting {
		return future.FromResult(false)
	}
	return future.FromError[bool](doneWriting)
}
