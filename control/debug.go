// control/debug.go
// Author: momentics <momentics@gmail.com>
//
// Runtime debug probes for internal inspection.

package control

import (
	"sort"
	"sync"

	"github.com/momentics/hioload-channels/api"
)

var _ api.Debug = (*DebugProbes)(nil)

// DebugProbes holds registered probe functions.
type DebugProbes struct {
	mu     sync.RWMutex
	probes map[string]func() any
	stats  map[string]api.StatsSource
}

// NewDebugProbes creates a probe registry.
func NewDebugProbes() *DebugProbes {
	return &DebugProbes{
		probes: make(map[string]func() any),
		stats:  make(map[string]api.StatsSource),
	}
}

// RegisterProbe inserts a named debug hook.
func (dp *DebugProbes) RegisterProbe(name string, fn func() any) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.probes[name] = fn
}

// RegisterChannel exposes a channel's Stats under name. Registered channels
// are also what Collector exports.
func (dp *DebugProbes) RegisterChannel(name string, src api.StatsSource) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.stats[name] = src
	dp.probes[name] = func() any { return src.Stats() }
}

// Unregister drops a probe or channel.
func (dp *DebugProbes) Unregister(name string) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	delete(dp.probes, name)
	delete(dp.stats, name)
}

// DumpState returns output of all probes.
func (dp *DebugProbes) DumpState() map[string]any {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	out := make(map[string]any, len(dp.probes))
	for k, fn := range dp.probes {
		out[k] = fn()
	}
	return out
}

// channelStats snapshots every registered channel, sorted by name.
func (dp *DebugProbes) channelStats() ([]string, []api.ChannelStats) {
	dp.mu.RLock()
	names := make([]string, 0, len(dp.stats))
	for name := range dp.stats {
		names = append(names, name)
	}
	srcs := make(map[string]api.StatsSource, len(dp.stats))
	for k, v := range dp.stats {
		srcs[k] = v
	}
	dp.mu.RUnlock()

	sort.Strings(names)
	out := make([]api.ChannelStats, len(names))
	for i, name := range names {
		out[i] = srcs[name].Stats()
	}
	return names, out
}
