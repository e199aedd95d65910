// File: internal/concurrency/eventloop.go
// Package concurrency implements a single-goroutine event loop.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// EventLoop runs posted closures one at a time on one goroutine locked to its
// OS thread, optionally pinned to a CPU. It is the affinity resumption target:
// every continuation posted to the same loop observes the same thread.

package concurrency

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/gammazero/deque"

	"github.com/momentics/hioload-channels/api"
	"github.com/momentics/hioload-channels/internal/log"
)

var _ api.Poster = (*EventLoop)(nil)

type EventLoop struct {
	mu        sync.Mutex
	queue     deque.Deque[func()]
	notify    chan struct{}
	stopCh    chan struct{}
	doneCh    chan struct{}
	batchSize int
	cpuID     int
	running   atomic.Bool
	stopped   atomic.Bool
	stopOnce  sync.Once
	processed atomic.Int64
	logger    log.Logger
}

// NewEventLoop creates a loop. cpuID < 0 disables pinning.
func NewEventLoop(batchSize, cpuID int) *EventLoop {
	if batchSize <= 0 {
		batchSize = 16
	}
	return &EventLoop{
		notify:    make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
		batchSize: batchSize,
		cpuID:     cpuID,
		logger:    log.For("eventloop"),
	}
}

// Pending returns the number of queued closures.
func (el *EventLoop) Pending() int {
	el.mu.Lock()
	defer el.mu.Unlock()
	return el.queue.Len()
}

// Processed returns the number of closures executed so far.
func (el *EventLoop) Processed() int64 {
	return el.processed.Load()
}

// Post enqueues fn. Returns false once the loop is stopped.
func (el *EventLoop) Post(fn func()) bool {
	if el.stopped.Load() {
		return false
	}
	el.mu.Lock()
	el.queue.PushBack(fn)
	el.mu.Unlock()
	select {
	case el.notify <- struct{}{}:
	default:
	}
	return true
}

// Start runs the loop on a new goroutine.
func (el *EventLoop) Start() {
	go el.Run()
}

// Run processes closures until Stop. Only the first call runs the loop.
func (el *EventLoop) Run() {
	if !el.running.CompareAndSwap(false, true) {
		return
	}
	defer close(el.doneCh)
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	if el.cpuID >= 0 {
		if err := PinCurrentThread(el.cpuID); err != nil {
			el.logger.Debug("pinning skipped: %v", err)
		}
	}

	batch := make([]func(), 0, el.batchSize)
	for {
		batch = el.nextBatch(batch[:0])
		if len(batch) > 0 {
			el.runBatch(batch)
			continue
		}
		select {
		case <-el.notify:
		case <-el.stopCh:
			return
		}
	}
}

// Stop halts the loop and waits for the running batch to finish. Closures
// still queued are discarded.
func (el *EventLoop) Stop() {
	el.stopOnce.Do(func() {
		el.stopped.Store(true)
		close(el.stopCh)
		if el.running.Load() {
			<-el.doneCh
		}
		el.mu.Lock()
		dropped := el.queue.Len()
		el.queue.Clear()
		el.mu.Unlock()
		if dropped > 0 {
			el.logger.Warn("stopped with %d queued closures", dropped)
		}
	})
}

func (el *EventLoop) nextBatch(batch []func()) []func() {
	el.mu.Lock()
	defer el.mu.Unlock()
	for len(batch) < el.batchSize && el.queue.Len() > 0 {
		batch = append(batch, el.queue.PopFront())
	}
	return batch
}

func (el *EventLoop) runBatch(batch []func()) {
	for i, fn := range batch {
		el.runOne(fn)
		batch[i] = nil
	}
}

func (el *EventLoop) runOne(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			el.logger.Error("closure panicked: %v", r)
		}
		el.processed.Add(1)
	}()
	fn()
}
