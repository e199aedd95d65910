// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package future

import "errors"

var (
	// ErrContinuationAlreadySet is returned when a second continuation is
	// registered without an intervening reset.
	ErrContinuationAlreadySet = errors.New("future already has a continuation")

	// ErrStaleToken is returned when a token from an earlier use is presented.
	ErrStaleToken = errors.New("future token does not match current generation")

	// ErrNotCompleted is returned by GetResult on a pending future.
	ErrNotCompleted = errors.New("future is not completed")
)
