package channels

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/momentics/hioload-channels/api"
)

func TestSingleReader_LatestReadWins(t *testing.T) {
	ch := NewUnbounded[int](UnboundedOptions{SingleReader: true})
	first := ch.Reader.Read(bg)
	second := ch.Reader.Read(bg)

	_, err := awaitTimeout(t, 2*time.Second, first.Await)
	assert.ErrorIs(t, err, api.ErrSuperseded)
	assert.ErrorIs(t, err, context.Canceled)

	require.True(t, ch.Writer.TryWrite(7))
	v, err := awaitTimeout(t, 2*time.Second, second.Await)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 0, ch.Reader.Len())
}

func TestSingleReader_PooledReaderReusedAfterSupersede(t *testing.T) {
	ch := NewUnbounded[int](UnboundedOptions{SingleReader: true})
	for i := 0; i < 10; i++ {
		stale := ch.Reader.Read(bg)
		live := ch.Reader.Read(bg)
		_, err := stale.Await()
		require.ErrorIs(t, err, api.ErrSuperseded)
		ch.Writer.TryWrite(i)
		v, err := awaitTimeout(t, 2*time.Second, live.Await)
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
}

func TestSingleReader_SupersededReadReleasesContext(t *testing.T) {
	before := goleak.IgnoreCurrent()
	ctx := newForeignCtx()
	defer close(ctx.done)

	ch := NewUnbounded[int](UnboundedOptions{SingleReader: true})
	for i := 0; i < 5; i++ {
		stale := ch.Reader.Read(ctx)
		live := ch.Reader.Read(ctx)
		_, err := awaitTimeout(t, 2*time.Second, stale.Await)
		require.ErrorIs(t, err, api.ErrSuperseded)
		require.True(t, ch.Writer.TryWrite(i))
		v, err := awaitTimeout(t, 2*time.Second, live.Await)
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}

	goleak.VerifyNone(t, before,
		goleak.IgnoreAnyFunction("github.com/momentics/hioload-channels/internal/concurrency.(*worker).run"))
}

func TestSingleReader_LatestWaitWins(t *testing.T) {
	ch := NewUnbounded[int](UnboundedOptions{SingleReader: true})
	first := ch.Reader.WaitToRead(bg)
	second := ch.Reader.WaitToRead(bg)
	assert.Equal(t, 1, ch.Stats().WaitingReaders)

	_, err := awaitTimeout(t, 2*time.Second, first.Await)
	assert.ErrorIs(t, err, api.ErrSuperseded)

	ch.Writer.TryWrite(1)
	ok, err := awaitTimeout(t, 2*time.Second, second.Await)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSingleReader_CanceledReaderSkipped(t *testing.T) {
	ch := NewUnbounded[int](UnboundedOptions{SingleReader: true})
	ctx, cancel := context.WithCancel(bg)
	task := ch.Reader.Read(ctx)
	cancel()
	_, err := awaitTimeout(t, 2*time.Second, task.Await)
	assert.ErrorIs(t, err, context.Canceled)

	require.True(t, ch.Writer.TryWrite(3))
	assert.Equal(t, 1, ch.Reader.Len(), "item buffered instead of lost to a canceled reader")
	v, ok := ch.Reader.TryRead()
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestSingleReader_ConcurrentProducers(t *testing.T) {
	ch := NewUnbounded[int](UnboundedOptions{SingleReader: true})
	const producers, per = 8, 250
	for p := 0; p < producers; p++ {
		go func(base int) {
			for i := 0; i < per; i++ {
				ch.Writer.TryWrite(base + i)
			}
		}(p * per)
	}

	seen := make(map[int]bool)
	for len(seen) < producers*per {
		v, err := awaitTimeout(t, 5*time.Second, ch.Reader.Read(bg).Await)
		require.NoError(t, err)
		require.False(t, seen[v], "duplicate %d", v)
		seen[v] = true
	}
	ch.Writer.Complete(nil)
	<-ch.Reader.Completion()
}
