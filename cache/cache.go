// ABOUTME: In-memory cache with TTL-based expiration
// ABOUTME: Thread-safe generic cache with coalesced loads and background cleanup

package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry[V any] struct {
	data      V
	expiresAt time.Time
}

// Cache stores values for a fixed TTL. Concurrent misses on one key share a
// single load.
type Cache[V any] struct {
	store sync.Map // string -> *entry[V]
	ttl   time.Duration
	group singleflight.Group
	now   func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a cache and starts its cleanup goroutine. Call Close to stop it.
func New[V any](ttl time.Duration) *Cache[V] {
	c := &Cache[V]{
		ttl:  ttl,
		now:  time.Now,
		stop: make(chan struct{}),
	}
	go c.startCleanup(time.Minute)
	return c
}

// Get returns the unexpired value for key.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	val, ok := c.store.Load(key)
	if !ok {
		slog.Debug("Cache miss", "key", key)
		return zero, false
	}

	e := val.(*entry[V])
	if c.now().After(e.expiresAt) {
		c.store.CompareAndDelete(key, val)
		slog.Debug("Cache expired", "key", key)
		return zero, false
	}

	slog.Debug("Cache hit", "key", key)
	return e.data, true
}

// Set stores value under key with the cache TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.store.Store(key, &entry[V]{
		data:      value,
		expiresAt: c.now().Add(c.ttl),
	})
	slog.Debug("Cache set", "key", key, "ttl", c.ttl)
}

// GetOrLoad returns the cached value for key, or calls load once for all
// concurrent callers and caches its result. Errors are not cached.
// cached reports whether the value came from the cache. The shared load ignores
// cancellation of whichever caller started it.
func (c *Cache[V]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (V, error)) (value V, cached bool, err error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}

	res, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.Set(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	return res.(V), false, nil
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *Cache[V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache[V]) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

func (c *Cache[V]) removeExpired() int {
	now := c.now()
	removed := 0
	c.store.Range(func(key, val any) bool {
		if now.After(val.(*entry[V]).expiresAt) {
			if c.store.CompareAndDelete(key, val) {
				removed++
			}
		}
		return true
	})
	return removed
}
