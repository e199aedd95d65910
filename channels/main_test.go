package channels

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("github.com/momentics/hioload-channels/internal/concurrency.(*worker).run"))
}

// awaitTimeout fails the test if task does not resolve within d.
func awaitTimeout[T any](t *testing.T, d time.Duration, await func() (T, error)) (T, error) {
	t.Helper()
	type res struct {
		v   T
		err error
	}
	ch := make(chan res, 1)
	go func() {
		v, err := await()
		ch <- res{v, err}
	}()
	select {
	case r := <-ch:
		return r.v, r.err
	case <-time.After(d):
		t.Fatalf("operation did not complete within %s", d)
		var zero T
		return zero, nil
	}
}

// foreignCtx is a context the context package cannot hook into directly, so
// every cancellation registration on it holds a watcher goroutine.
type foreignCtx struct {
	context.Context
	done chan struct{}
}

func newForeignCtx() foreignCtx {
	return foreignCtx{Context: context.Background(), done: make(chan struct{})}
}

func (c foreignCtx) Done() <-chan struct{} { return c.done }
