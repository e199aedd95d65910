// Package channels
// Author: momentics <momentics@gmail.com>
//
// Asynchronous producer/consumer channels built on package future.
//
// Three variants share one contract:
//   - NewUnbounded: multi-producer, multi-consumer, unlimited buffering.
//   - NewUnbounded with SingleReader: at most one parked reader and one parked
//     waiter. A new blocking Read cancels the previous one with
//     api.ErrSuperseded ("latest read wins"); callers that read from several
//     goroutines at once must use the general variant.
//   - NewBounded: fixed capacity with a FullMode overflow policy.
//
// Every channel guards its state with one mutex and completes futures only
// after releasing it. Items are handed directly to a parked reader when one
// exists. Completing the writer side lets buffered items drain before reads
// start failing with api.ErrChannelClosed.
package channels
