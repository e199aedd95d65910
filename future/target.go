// File: future/target.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Resumption targets: where a continuation runs once its future resolves.

package future

import (
	"github.com/momentics/hioload-channels/api"
	"github.com/momentics/hioload-channels/internal/concurrency"
	"github.com/momentics/hioload-channels/internal/log"
)

// TargetKind tags a Target.
type TargetKind uint8

const (
	// TargetNone defers to the future: inline unless it requires async runs.
	TargetNone TargetKind = iota
	// TargetThreadPool runs on the shared worker pool.
	TargetThreadPool
	// TargetExecutor runs on a caller-supplied executor.
	TargetExecutor
	// TargetAffinity posts to a loop with fixed goroutine affinity.
	TargetAffinity
	// targetInline always runs on the completing goroutine.
	targetInline
)

// Target is captured at suspension time and decides where the continuation
// is resumed. The zero value is TargetNone.
type Target struct {
	kind     TargetKind
	executor api.Executor
	poster   api.Poster
}

// ThreadPool targets the shared worker pool.
func ThreadPool() Target { return Target{kind: TargetThreadPool} }

// OnExecutor targets an explicit scheduler.
func OnExecutor(e api.Executor) Target { return Target{kind: TargetExecutor, executor: e} }

// OnAffinity targets a single-goroutine loop.
func OnAffinity(p api.Poster) Target { return Target{kind: TargetAffinity, poster: p} }

// Inline runs continuations on the completing goroutine regardless of the
// future's async preference.
func Inline() Target { return Target{kind: targetInline} }

// Kind returns the target tag.
func (t Target) Kind() TargetKind { return t.kind }

var logger = log.For("future")

func dispatch(t Target, runAsync bool, fn func(any), state any) {
	switch t.kind {
	case TargetNone:
		if runAsync {
			submitToPool(fn, state)
			return
		}
		fn(state)
	case targetInline:
		fn(state)
	case TargetThreadPool:
		submitToPool(fn, state)
	case TargetExecutor:
		if err := t.executor.Submit(func() { fn(state) }); err != nil {
			logger.Warn("executor refused continuation, running on new goroutine: %v", err)
			go fn(state)
		}
	case TargetAffinity:
		if !t.poster.Post(func() { fn(state) }) {
			logger.Warn("affinity loop refused continuation, running on new goroutine")
			go fn(state)
		}
	}
}

func submitToPool(fn func(any), state any) {
	if err := concurrency.DefaultPool().Submit(func() { fn(state) }); err != nil {
		logger.Debug("thread pool refused continuation, running on new goroutine: %v", err)
		go fn(state)
	}
}
