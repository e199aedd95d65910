// File: internal/concurrency/executor.go
// Package concurrency implements a resizable worker-pool task executor.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Executor dispatches tasks across worker goroutines fed by one shared queue.
// Submit never blocks: a full queue is reported so callers can fall back.

package concurrency

import (
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/momentics/hioload-channels/api"
	"github.com/momentics/hioload-channels/internal/log"
)

var _ api.Executor = (*Executor)(nil)

// TaskFunc is a unit of work to execute.
type TaskFunc func()

// Executor manages a pool of worker goroutines.
type Executor struct {
	tasks   chan TaskFunc // shared queue
	workers []*worker     // live workers, guarded by mu
	closeCh chan struct{} // signals executor shutdown
	closed  atomic.Bool
	pin     bool
	mu      sync.Mutex // protects resizing operations
	nextID  int
	logger  log.Logger

	numWorkers atomic.Int32

	// statistics, padded apart: submitters and workers write different counters
	_              cpu.CacheLinePad
	totalTasks     atomic.Int64
	_              cpu.CacheLinePad
	completedTasks atomic.Int64
	panics         atomic.Int64
}

// NewExecutor creates a new Executor with the given number of workers.
// If numWorkers <= 0, defaults to runtime.NumCPU(). queueDepth is per worker.
// With pin set, workers bind themselves to CPUs round-robin.
func NewExecutor(numWorkers, queueDepth int, pin bool) *Executor {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if queueDepth <= 0 {
		queueDepth = 256
	}
	e := &Executor{
		tasks:   make(chan TaskFunc, numWorkers*queueDepth),
		closeCh: make(chan struct{}),
		pin:     pin,
		logger:  log.For("executor"),
	}
	e.mu.Lock()
	e.spawn(numWorkers)
	e.mu.Unlock()
	return e
}

// spawn starts n workers; caller holds mu.
func (e *Executor) spawn(n int) {
	for i := 0; i < n; i++ {
		w := &worker{
			id:       e.nextID,
			executor: e,
			stopCh:   make(chan struct{}),
		}
		e.nextID++
		e.workers = append(e.workers, w)
		go w.run()
	}
	e.numWorkers.Store(int32(len(e.workers)))
}

// Submit enqueues a task, returning ErrExecutorClosed if executor is closed
// and ErrExecutorSaturated if the queue is full.
func (e *Executor) Submit(task func()) error {
	if e.closed.Load() {
		return ErrExecutorClosed
	}
	e.totalTasks.Add(1)
	select {
	case e.tasks <- task:
		return nil
	case <-e.closeCh:
		e.totalTasks.Add(-1)
		return ErrExecutorClosed
	default:
		e.totalTasks.Add(-1)
		return ErrExecutorSaturated
	}
}

// NumWorkers returns the current number of active workers.
func (e *Executor) NumWorkers() int {
	return int(e.numWorkers.Load())
}

// Resize grows or shrinks the worker set. Removed workers finish their
// current task first.
func (e *Executor) Resize(newCount int) {
	if newCount <= 0 {
		newCount = runtime.NumCPU()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed.Load() {
		return
	}
	cur := len(e.workers)
	switch {
	case newCount > cur:
		e.spawn(newCount - cur)
	case newCount < cur:
		for _, w := range e.workers[newCount:] {
			close(w.stopCh)
		}
		e.workers = e.workers[:newCount]
		e.numWorkers.Store(int32(newCount))
	}
	e.logger.Debug("resized from %d to %d workers", cur, newCount)
}

// Close shuts down the executor. Queued tasks that were not started are dropped.
func (e *Executor) Close() {
	if e.closed.CompareAndSwap(false, true) {
		close(e.closeCh)
		e.mu.Lock()
		defer e.mu.Unlock()
		for _, w := range e.workers {
			close(w.stopCh)
		}
		e.workers = nil
		e.numWorkers.Store(0)
	}
}

// Stats returns basic executor metrics.
func (e *Executor) Stats() map[string]int64 {
	total := e.totalTasks.Load()
	done := e.completedTasks.Load()
	return map[string]int64{
		"total_tasks":     total,
		"completed_tasks": done,
		"pending_tasks":   total - done,
		"panics":          e.panics.Load(),
		"num_workers":     int64(e.NumWorkers()),
	}
}

// worker represents a single executor goroutine.
type worker struct {
	id       int
	executor *Executor
	stopCh   chan struct{}
}

func (w *worker) run() {
	if w.executor.pin {
		if err := PinCurrentThread(w.id); err != nil {
			w.executor.logger.With("worker", w.id).Debug("pinning skipped: %v", err)
		} else {
			defer UnpinCurrentThread()
		}
	}
	for {
		select {
		case <-w.stopCh:
			return
		case <-w.executor.closeCh:
			return
		case task := <-w.executor.tasks:
			w.executeTask(task)
		}
	}
}

// executeTask runs the task and updates statistics, recovering from panics.
func (w *worker) executeTask(task TaskFunc) {
	defer func() {
		if r := recover(); r != nil {
			w.executor.panics.Add(1)
			w.executor.logger.With("worker", w.id).Error("task panicked: %v", r)
		}
		w.executor.completedTasks.Add(1)
	}()
	task()
}
