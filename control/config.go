// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Thread-safe configuration store with dynamic update and hot-reload propagation.

package control

import (
	"runtime"
	"sync"

	"github.com/momentics/hioload-channels/internal/log"
)

// Config holds the process-wide knobs of the continuation runtime.
type Config struct {
	// PoolWorkers is the size of the default continuation pool; <= 0 means NumCPU.
	PoolWorkers int
	// PoolQueueDepth bounds pending continuations per worker.
	PoolQueueDepth int
	// PinWorkers pins pool workers to CPUs round-robin (Linux only).
	PinWorkers bool
	// LogLevel is applied to internal/log on every update.
	LogLevel string
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		PoolWorkers:    runtime.NumCPU(),
		PoolQueueDepth: 256,
		LogLevel:       "info",
	}
}

// ConfigStore keeps a Config snapshot with listener support.
type ConfigStore struct {
	mu        sync.RWMutex
	config    Config
	listeners []func(Config)
}

// NewConfigStore initializes a store with cfg.
func NewConfigStore(cfg Config) *ConfigStore {
	return &ConfigStore{config: normalize(cfg)}
}

// Snapshot returns a copy of the current configuration.
func (cs *ConfigStore) Snapshot() Config {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.config
}

// Update applies fn to a copy of the configuration, stores it and notifies
// listeners with the new snapshot. Listeners run on the caller's goroutine.
func (cs *ConfigStore) Update(fn func(*Config)) Config {
	cs.mu.Lock()
	cfg := cs.config
	fn(&cfg)
	cfg = normalize(cfg)
	cs.config = cfg
	listeners := append([]func(Config){}, cs.listeners...)
	cs.mu.Unlock()

	for _, l := range listeners {
		l(cfg)
	}
	return cfg
}

// OnReload registers a listener hook called on config changes.
func (cs *ConfigStore) OnReload(fn func(Config)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}

func normalize(cfg Config) Config {
	if cfg.PoolWorkers <= 0 {
		cfg.PoolWorkers = runtime.NumCPU()
	}
	if cfg.PoolQueueDepth <= 0 {
		cfg.PoolQueueDepth = 256
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg
}

var (
	defaultStore     *ConfigStore
	defaultStoreOnce sync.Once
)

// Default returns the process-wide store. The log level follows it.
func Default() *ConfigStore {
	defaultStoreOnce.Do(func() {
		defaultStore = NewConfigStore(DefaultConfig())
		log.SetLevel(defaultStore.Snapshot().LogLevel)
		defaultStore.OnReload(func(cfg Config) {
			log.SetLevel(cfg.LogLevel)
		})
	})
	return defaultStore
}
