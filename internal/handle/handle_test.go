package handle

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestHandle_SingleFlight(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	h := New("test", func(ctx context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "client", nil
	})

	const n = 50
	futures := make([]*Future[string], n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			futures[i] = h.Get()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, StateResolving, h.State())
	_, ready := h.GetIfReady()
	assert.False(t, ready)

	close(release)
	for _, f := range futures {
		assert.Same(t, futures[0], f)
		value, ok := f.Wait(waitCtx(t))
		assert.True(t, ok)
		assert.Equal(t, "client", value)
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, StateReady, h.State())

	value, ready := h.GetIfReady()
	assert.True(t, ready)
	assert.Equal(t, "client", value)
}

func TestHandle_FailureIsMemoizedAndNotRetried(t *testing.T) {
	var calls atomic.Int32
	h := New("test", func(ctx context.Context) (*int, error) {
		calls.Add(1)
		return nil, errors.New("cluster unreachable")
	})

	value, ok := h.Get().Wait(waitCtx(t))
	assert.False(t, ok)
	assert.Nil(t, value)
	assert.Equal(t, StateUnavailable, h.State())

	_, ok = h.Get().Wait(waitCtx(t))
	assert.False(t, ok)
	assert.Equal(t, int32(1), calls.Load())

	h.Invalidate()
	assert.Equal(t, StateUninitialized, h.State())
	h.Get().Wait(waitCtx(t))
	assert.Equal(t, int32(2), calls.Load())
}

func TestHandle_GetIfReadyNeverRequested(t *testing.T) {
	h := New("test", func(ctx context.Context) (int, error) {
		t.Fatal("GetIfReady must not start a construction")
		return 0, nil
	})
	_, ok := h.GetIfReady()
	assert.False(t, ok)
	assert.Equal(t, StateUninitialized, h.State())
}

func TestHandle_OnReadyOncePerCreation(t *testing.T) {
	var created atomic.Int32
	h := New("test", func(ctx context.Context) (int32, error) {
		return created.Add(1), nil
	})

	readyCh := make(chan int32, 10)
	h.OnReady(func(v int32) { readyCh <- v })

	h.Get()
	h.Get()
	assert.Equal(t, int32(1), <-readyCh)

	h.Invalidate()
	h.Get()
	assert.Equal(t, int32(2), <-readyCh)

	select {
	case v := <-readyCh:
		t.Fatalf("unexpected extra OnReady call with %d", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHandle_InvalidateDiscardsInFlight(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{}, 2)
	h := New("test", func(ctx context.Context) (int32, error) {
		n := calls.Add(1)
		started <- struct{}{}
		if n == 1 {
			<-ctx.Done()
			return 0, ctx.Err()
		}
		return n, nil
	})

	readyCh := make(chan int32, 10)
	h.OnReady(func(v int32) { readyCh <- v })

	stale := h.Get()
	<-started
	h.Invalidate()

	_, ok := stale.Wait(waitCtx(t))
	assert.False(t, ok, "cancelled construction resolves unavailable")

	fresh := h.Get()
	assert.NotSame(t, stale, fresh)
	value, ok := fresh.Wait(waitCtx(t))
	require.True(t, ok)
	assert.Equal(t, int32(2), value)
	assert.Equal(t, int32(2), <-readyCh)

	select {
	case v := <-readyCh:
		t.Fatalf("stale construction fired OnReady with %d", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHandle_StaleSuccessDoesNotFireOnReady(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	h := New("test", func(ctx context.Context) (int32, error) {
		n := calls.Add(1)
		if n == 1 {
			<-release
		}
		return n, nil
	})
	readyCh := make(chan int32, 10)
	h.OnReady(func(v int32) { readyCh <- v })

	stale := h.Get()
	h.Invalidate()
	fresh := h.Get()
	close(release)

	v, ok := stale.Wait(waitCtx(t))
	assert.True(t, ok)
	assert.Equal(t, int32(1), v)
	_, ok = fresh.Wait(waitCtx(t))
	assert.True(t, ok)

	assert.Equal(t, int32(2), <-readyCh)
	select {
	case v := <-readyCh:
		t.Fatalf("stale construction fired OnReady with %d", v)
	case <-time.After(50 * time.Millisecond):
	}

	current, ready := h.GetIfReady()
	assert.True(t, ready)
	assert.Equal(t, int32(2), current)
}

func TestHandle_Close(t *testing.T) {
	var calls atomic.Int32
	h := New("test", func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 1, nil
	})
	h.Get().Wait(waitCtx(t))
	h.Close()

	assert.Equal(t, StateUninitialized, h.State())
	_, ok := h.Get().Wait(waitCtx(t))
	assert.False(t, ok)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFuture_WaitHonorsContext(t *testing.T) {
	f := newFuture[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok := f.Wait(ctx)
	assert.False(t, ok)

	_, _, resolved := f.Value()
	assert.False(t, resolved)

	f.complete(7, true)
	f.complete(8, true)
	v, ok, resolved := f.Value()
	assert.Equal(t, 7, v)
	assert.True(t, ok)
	assert.True(t, resolved)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "Uninitialized", StateUninitialized.String())
	assert.Equal(t, "Resolving", StateResolving.String())
	assert.Equal(t, "Ready", StateReady.String())
	assert.Equal(t, "Unavailable", StateUnavailable.String())
	assert.Equal(t, "Unknown", State(42).String())
}
