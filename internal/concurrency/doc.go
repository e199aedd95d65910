// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Execution substrate for future continuations: a worker-pool Executor used as
// the thread-pool resumption target, a single-goroutine EventLoop used as the
// affinity target, and optional CPU pinning of both.
package concurrency
