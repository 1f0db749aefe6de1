package collection

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheLoadCollapsesConcurrentCalls(t *testing.T) {
	c := NewCache(time.Minute, time.Minute)

	var calls atomic.Int32
	release := make(chan struct{})
	fn := func(ctx context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "page", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Load(context.Background(), "brands|page=1", fn)
			assert.NoError(t, err)
			assert.Equal(t, "page", v)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())

	v, ok := c.Get("brands|page=1")
	require.True(t, ok)
	assert.Equal(t, "page", v)
}

func TestCacheInvalidateKind(t *testing.T) {
	c := NewCache(time.Minute, time.Minute)
	c.Set("brands|page=1", 1)
	c.Set("brands|page=2", 2)
	c.Set("categories|page=1", 3)

	assert.Equal(t, 2, c.InvalidateKind("brands"))

	_, ok := c.Get("brands|page=1")
	assert.False(t, ok)
	_, ok = c.Get("categories|page=1")
	assert.True(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestCacheDoesNotStoreResultInvalidatedMidFlight(t *testing.T) {
	c := NewCache(time.Minute, time.Minute)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Load(context.Background(), "brands|page=1", func(ctx context.Context) (any, error) {
			close(started)
			<-release
			return "stale", nil
		})
	}()

	<-started
	c.InvalidateKind("brands")
	close(release)
	<-done

	_, ok := c.Get("brands|page=1")
	assert.False(t, ok)
}

func TestCacheLoadHonoursContext(t *testing.T) {
	c := NewCache(time.Minute, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	block := make(chan struct{})
	defer close(block)
	_, err := c.Load(ctx, "brands|x", func(context.Context) (any, error) {
		<-block
		return nil, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCacheLoadSurvivesFirstCallerCancelling(t *testing.T) {
	c := NewCache(time.Minute, time.Minute)

	started := make(chan struct{})
	release := make(chan struct{})
	fn := func(ctx context.Context) (any, error) {
		close(started)
		select {
		case <-release:
			return "page", nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := c.Load(ctxA, "patients|page=1", fn)
		errA <- err
	}()
	<-started

	type result struct {
		v   any
		err error
	}
	resB := make(chan result, 1)
	go func() {
		v, err := c.Load(context.Background(), "patients|page=1", fn)
		resB <- result{v, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(release)
	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, "page", b.v)

	v, ok := c.Get("patients|page=1")
	require.True(t, ok)
	assert.Equal(t, "page", v)
}
