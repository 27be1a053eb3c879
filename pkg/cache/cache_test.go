package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func newTestCache(opts Options, hooks MetricsHooks) (*Cache[int], *fakeClock) {
	clk := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New[int](opts, hooks)
	c.now = clk.Now
	return c, clk
}

func TestCacheHitMissStaleRefresh(t *testing.T) {
	var hits, misses, stale atomic.Int32
	c, clk := newTestCache(Options{TTL: time.Minute, StaleWhileRevalidate: time.Minute}, MetricsHooks{
		OnHit:   func(string) { hits.Add(1) },
		OnMiss:  func(string) { misses.Add(1) },
		OnStale: func(string) { stale.Add(1) },
	})

	var calls atomic.Int32
	refreshed := make(chan struct{}, 1)
	loader := func(context.Context, string) (int, error) {
		n := int(calls.Add(1))
		if n == 2 {
			refreshed <- struct{}{}
		}
		return n, nil
	}

	if v, err := c.Get(context.Background(), "k", loader); err != nil || v != 1 {
		t.Fatalf("expected first load, got %d %v", v, err)
	}
	if v, _ := c.Get(context.Background(), "k", loader); v != 1 {
		t.Fatalf("expected hit, got %d", v)
	}

	clk.Advance(90 * time.Second)
	if v, _ := c.Get(context.Background(), "k", loader); v != 1 {
		t.Fatalf("expected stale value, got %d", v)
	}
	select {
	case <-refreshed:
	case <-time.After(time.Second):
		t.Fatal("expected background refresh")
	}
	time.Sleep(10 * time.Millisecond)

	if v, _ := c.Get(context.Background(), "k", loader); v != 2 {
		t.Fatalf("expected refreshed value, got %d", v)
	}
	if misses.Load() != 1 || stale.Load() != 1 || hits.Load() != 2 {
		t.Fatalf("unexpected hook counts hits=%d misses=%d stale=%d", hits.Load(), misses.Load(), stale.Load())
	}
}

func TestCacheHardExpiryReloads(t *testing.T) {
	c, clk := newTestCache(Options{TTL: time.Minute}, MetricsHooks{})
	var calls atomic.Int32
	loader := func(context.Context, string) (int, error) { return int(calls.Add(1)), nil }

	_, _ = c.Get(context.Background(), "k", loader)
	clk.Advance(2 * time.Minute)
	if v, _ := c.Get(context.Background(), "k", loader); v != 2 {
		t.Fatalf("expected synchronous reload, got %d", v)
	}
}

func TestCacheErrorsAreNotCached(t *testing.T) {
	c, _ := newTestCache(Options{TTL: time.Minute}, MetricsHooks{})
	boom := errors.New("boom")
	if _, err := c.Get(context.Background(), "k", func(context.Context, string) (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
	if v, err := c.Get(context.Background(), "k", func(context.Context, string) (int, error) { return 7, nil }); err != nil || v != 7 {
		t.Fatalf("expected reload after error, got %d %v", v, err)
	}
}

func TestCacheCoalescesConcurrentLoads(t *testing.T) {
	c, _ := newTestCache(Options{TTL: time.Minute}, MetricsHooks{})
	var calls atomic.Int32
	release := make(chan struct{})
	loader := func(context.Context, string) (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, err := c.Get(context.Background(), "k", loader); err != nil || v != 42 {
				t.Errorf("unexpected %d %v", v, err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("expected one loader call, got %d", calls.Load())
	}
}

func TestCachePurgeDiscardsInFlightLoad(t *testing.T) {
	c, _ := newTestCache(Options{TTL: time.Minute}, MetricsHooks{})
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_, _ = c.Get(context.Background(), "k", func(context.Context, string) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
		close(done)
	}()

	<-started
	c.Purge()
	close(release)
	<-done

	if _, ok := c.Peek("k"); ok {
		t.Fatalf("expected result loaded before purge to be dropped")
	}
}

func TestCacheGetAfterPurgeDoesNotJoinEarlierLoad(t *testing.T) {
	c, _ := newTestCache(Options{TTL: time.Minute}, MetricsHooks{})
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan int)
	go func() {
		v, _ := c.Get(context.Background(), "k", func(context.Context, string) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
		done <- v
	}()

	<-started
	c.Purge()

	v, err := c.Get(context.Background(), "k", func(context.Context, string) (int, error) { return 2, nil })
	if err != nil || v != 2 {
		t.Fatalf("expected a fresh load after purge, got %d, %v", v, err)
	}

	close(release)
	if old := <-done; old != 1 {
		t.Fatalf("expected the earlier caller to get its own load, got %d", old)
	}
	if got, ok := c.Peek("k"); !ok || got != 2 {
		t.Fatalf("expected the post-purge value to stay cached, got %d, %v", got, ok)
	}
}

func TestCacheEvictionAndDelete(t *testing.T) {
	c, _ := newTestCache(Options{TTL: time.Minute, MaxEntries: 2}, MetricsHooks{})
	for i, k := range []string{"a", "b", "c"} {
		v := i
		_, _ = c.Get(context.Background(), k, func(context.Context, string) (int, error) { return v, nil })
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}
	if _, ok := c.Peek("a"); ok {
		t.Fatalf("expected oldest entry evicted")
	}
	c.Delete("b")
	if _, ok := c.Peek("b"); ok {
		t.Fatalf("expected b deleted")
	}
	if v, ok := c.Peek("c"); !ok || v != 2 {
		t.Fatalf("expected c retained")
	}
}
