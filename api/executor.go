// Package api
// Author: momentics
//
// Executor contract used as a resumption target for future continuations.

package api

// Executor abstracts parallel task dispatch.
type Executor interface {
	// Submit schedules task for execution.
	Submit(task func()) error

	// NumWorkers returns current number of active worker routines.
	NumWorkers() int

	// Resize adjusts the concurrency at runtime.
	Resize(newCount int)
}

// Poster runs closures on a single goroutine with fixed affinity.
type Poster interface {
	// Post enqueues fn; returns false if the loop no longer accepts work.
	Post(fn func()) bool
}
