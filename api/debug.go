// Package api
// Author: momentics
//
// Live debug support for production workloads.

package api

// Debug exposes runtime introspection.
type Debug interface {
	// DumpState emits a snapshot of system state for diagnostics.
	DumpState() map[string]any

	// RegisterProbe dynamically registers new debug probes.
	RegisterProbe(name string, fn func() any)
}

// StatsSource is implemented by every channel.
type StatsSource interface {
	Stats() ChannelStats
}

// ChannelStats is a point-in-time view of a channel's internal queues.
type ChannelStats struct {
	Buffered       int
	Capacity       int // -1 for unbounded channels
	BlockedReaders int
	BlockedWriters int
	WaitingReaders int
	WaitingWriters int
	Dropped        uint64
	Closed         bool
}
