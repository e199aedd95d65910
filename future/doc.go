// Package future
// Author: momentics <momentics@gmail.com>
//
// Single-resolution futures backing every asynchronous channel operation.
//
// A Future is resolved at most once, may be pooled and reused, and guards
// against stale consumers with a generation token that advances every time a
// result is consumed. Callers receive a Task, which pairs a Future with the
// token that was current when the Task was created, or carries a result that
// was available synchronously.
//
// Continuations are dispatched according to the Target captured when they
// were registered: inline, the shared thread pool, an explicit api.Executor,
// or an api.Poster with fixed goroutine affinity. Completing a future never
// blocks; awaiting one parks only the awaiting goroutine.
package future
