package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Options tune expiry and size
type Options struct {
	TTL                  time.Duration
	StaleWhileRevalidate time.Duration
	MaxEntries           int
}

// MetricsHooks observe cache outcomes. Any hook may be nil.
type MetricsHooks struct {
	OnHit   func(key string)
	OnMiss  func(key string)
	OnStale func(key string)
	OnError func(key string)
}

// Loader computes the value for key on a miss
type Loader[V any] func(ctx context.Context, key string) (V, error)

type entry[V any] struct {
	value     V
	expiresAt time.Time
	staleAt   time.Time
}

// Cache is a stale-while-revalidate cache with per-key load coalescing.
// Load errors are never cached.
type Cache[V any] struct {
	mu    sync.RWMutex
	items map[string]*entry[V]
	order []string
	gen   uint64

	opts    Options
	metrics MetricsHooks
	sf      singleflight.Group
	now     func() time.Time
}

// New creates an empty cache
func New[V any](opts Options, hooks MetricsHooks) *Cache[V] {
	return &Cache[V]{
		items:   make(map[string]*entry[V]),
		opts:    opts,
		metrics: hooks,
		now:     time.Now,
	}
}

func (c *Cache[V]) hook(fn func(string), key string) {
	if fn != nil {
		fn(key)
	}
}

// Get returns the cached value, a stale value while refreshing it in the
// background, or loads synchronously. Concurrent loads of one key share a
// single loader call.
func (c *Cache[V]) Get(ctx context.Context, key string, loader Loader[V]) (V, error) {
	now := c.now()
	c.mu.RLock()
	e, ok := c.items[key]
	gen := c.gen
	c.mu.RUnlock()

	if ok {
		if now.Before(e.expiresAt) {
			c.hook(c.metrics.OnHit, key)
			return e.value, nil
		}
		if now.Before(e.staleAt) {
			c.hook(c.metrics.OnStale, key)
			bg := context.WithoutCancel(ctx)
			go func() {
				_, _, _ = c.sf.Do(flightKey("refresh", gen, key), func() (interface{}, error) {
					if v, err := loader(bg, key); err == nil {
						c.store(key, v, gen)
					} else {
						c.hook(c.metrics.OnError, key)
					}
					return nil, nil
				})
			}()
			return e.value, nil
		}
	}

	c.hook(c.metrics.OnMiss, key)
	res, err, _ := c.sf.Do(flightKey("load", gen, key), func() (interface{}, error) {
		v, err := loader(ctx, key)
		if err != nil {
			c.hook(c.metrics.OnError, key)
			return v, err
		}
		c.store(key, v, gen)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// flightKey scopes load coalescing to one purge generation so a caller
// arriving after Purge never joins a load that started before it.
func flightKey(kind string, gen uint64, key string) string {
	return kind + ":" + strconv.FormatUint(gen, 10) + ":" + key
}

// store drops results loaded before the most recent Purge.
func (c *Cache[V]) store(key string, v V, gen uint64) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	if _, exists := c.items[key]; !exists {
		c.order = append(c.order, key)
	}
	exp := now.Add(c.opts.TTL)
	c.items[key] = &entry[V]{value: v, expiresAt: exp, staleAt: exp.Add(c.opts.StaleWhileRevalidate)}
	c.evictIfNeeded()
}

func (c *Cache[V]) evictIfNeeded() {
	if c.opts.MaxEntries <= 0 {
		return
	}
	for len(c.items) > c.opts.MaxEntries && len(c.order) > 0 {
		victim := c.order[0]
		c.order = c.order[1:]
		delete(c.items, victim)
	}
}

// Peek returns a fresh or stale value without loading
func (c *Cache[V]) Peek(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.items[key]
	if !ok || !c.now().Before(e.staleAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Delete removes one key
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Purge drops every entry and discards loads still in flight
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*entry[V])
	c.order = nil
	c.gen++
}

// Len returns the number of entries, stale ones included
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
