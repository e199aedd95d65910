// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ThreadPool is the process-wide Executor behind the thread-pool resumption
// target. It is sized from control.Default() and follows its reloads.

package concurrency

import (
	"sync"

	"github.com/momentics/hioload-channels/control"
)

type ThreadPool struct {
	executor *Executor
}

func NewThreadPool(size, queueDepth int, pin bool) *ThreadPool {
	return &ThreadPool{
		executor: NewExecutor(size, queueDepth, pin),
	}
}

func (tp *ThreadPool) Submit(f func()) error {
	return tp.executor.Submit(f)
}

func (tp *ThreadPool) NumWorkers() int {
	return tp.executor.NumWorkers()
}

func (tp *ThreadPool) Resize(n int) {
	tp.executor.Resize(n)
}

func (tp *ThreadPool) Stats() map[string]int64 {
	return tp.executor.Stats()
}

func (tp *ThreadPool) Close() {
	tp.executor.Close()
}

var (
	defaultPool     *ThreadPool
	defaultPoolOnce sync.Once
)

// DefaultPool returns the shared pool, creating it on first use.
func DefaultPool() *ThreadPool {
	defaultPoolOnce.Do(func() {
		store := control.Default()
		cfg := store.Snapshot()
		defaultPool = NewThreadPool(cfg.PoolWorkers, cfg.PoolQueueDepth, cfg.PinWorkers)
		store.OnReload(func(cfg control.Config) {
			defaultPool.Resize(cfg.PoolWorkers)
		})
	})
	return defaultPool
}
