package loader

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestEnsureLoadedRunsInitializerOnce(t *testing.T) {
	var calls atomic.Int32
	l := New(func(ctx context.Context) error {
		calls.Add(1)
		time.Sleep(10 * time.Millisecond)
		return nil
	})

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error { return l.EnsureLoaded(context.Background()) })
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(1), calls.Load())

	// Later calls are a no-op as well.
	require.NoError(t, l.EnsureLoaded(context.Background()))
	assert.Equal(t, int32(1), calls.Load())
}

func TestEnsureLoadedDeliversSameErrorToAllCallers(t *testing.T) {
	boom := errors.New("load failed")
	var calls atomic.Int32
	l := New(func(ctx context.Context) error {
		calls.Add(1)
		return boom
	})

	errs := make([]error, 4)
	var g errgroup.Group
	for i := 0; i < 4; i++ {
		i := i
		g.Go(func() error {
			errs[i] = l.EnsureLoaded(context.Background())
			return nil
		})
	}
	require.NoError(t, g.Wait())
	for _, err := range errs {
		assert.ErrorIs(t, err, boom)
	}

	// Future callers keep seeing the same failure; the initializer is not
	// re-run.
	assert.ErrorIs(t, l.EnsureLoaded(context.Background()), boom)
	assert.Equal(t, int32(1), calls.Load())
}

func TestEnsureLoadedCancelledWaiterDoesNotCancelLoad(t *testing.T) {
	release := make(chan struct{})
	var loadCtxErr error
	l := New(func(ctx context.Context) error {
		<-release
		loadCtxErr = ctx.Err()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := l.EnsureLoaded(ctx)
	require.ErrorIs(t, err, context.Canceled)

	// The load is still in flight and completes unharmed.
	close(release)
	require.NoError(t, l.EnsureLoaded(context.Background()))
	assert.NoError(t, loadCtxErr)
}

func TestLoaded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	l := New(func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	})
	assert.False(t, l.Loaded())

	go l.EnsureLoaded(context.Background())
	<-started
	assert.False(t, l.Loaded())

	close(release)
	require.NoError(t, l.EnsureLoaded(context.Background()))
	assert.True(t, l.Loaded())
}
