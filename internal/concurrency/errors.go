// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Error definitions for concurrency module.

package concurrency

import (
	"errors"
	"fmt"

	"github.com/momentics/hioload-channels/api"
)

var (
	// ErrExecutorClosed indicates the executor has been shut down
	ErrExecutorClosed = api.ErrExecutorClosed

	// ErrExecutorSaturated indicates the task queue is full
	ErrExecutorSaturated = errors.New("executor queue is full")

	// ErrAffinityNotSupported indicates CPU affinity is not supported on this platform
	ErrAffinityNotSupported = fmt.Errorf("CPU affinity: %w", api.ErrNotSupported)
)
