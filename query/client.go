// ABOUTME: Process-wide fetch cache shared by every page: keyed results with a stale time and in-flight dedupe.
// ABOUTME: Errors are never cached; entries can be invalidated by key prefix.
package query

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultStaleTime is how long a fetched result is served from the cache.
const DefaultStaleTime = 30 * time.Second

// FetchFunc loads the value for a key on a cache miss.
type FetchFunc func(ctx context.Context) (any, error)

// cacheEntry holds a single cached result with its fetch timestamp.
type cacheEntry struct {
	value     any
	fetchedAt time.Time
}

// Client caches fetch results by key. Concurrent misses on the same key share
// one call to the fetch function.
//
// Every Invalidate or Clear starts a new epoch. Fetches started in an earlier
// epoch still answer their callers but never store, and later callers do not
// join them.
type Client struct {
	staleTime time.Duration
	now       func() time.Time
	metrics   *Metrics

	mu      sync.RWMutex
	entries map[string]*cacheEntry
	epoch   uint64
	group   singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithStaleTime sets how long results stay fresh. Non-positive values disable
// caching: every Fetch calls through.
func WithStaleTime(d time.Duration) Option {
	return func(c *Client) { c.staleTime = d }
}

// WithMetrics records hits, misses and fetch errors on m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates an empty Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		staleTime: DefaultStaleTime,
		now:       time.Now,
		entries:   make(map[string]*cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the cached value for key when it is still fresh, otherwise it
// calls fn and caches the result. fn runs detached from ctx's cancellation
// because other callers may be waiting on the same call; a canceled caller
// stops waiting and gets ctx's error.
func (c *Client) Fetch(ctx context.Context, key string, fn FetchFunc) (any, error) {
	c.mu.RLock()
	if entry, ok := c.entries[key]; ok && c.now().Sub(entry.fetchedAt) < c.staleTime {
		value := entry.value
		c.mu.RUnlock()
		c.metrics.hit(key)
		return value, nil
	}
	epoch := c.epoch
	c.mu.RUnlock()

	c.metrics.miss(key)
	flight := key + "@" + strconv.FormatUint(epoch, 10)
	ch := c.group.DoChan(flight, func() (any, error) {
		v, err := fn(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.store(key, epoch, v)
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			c.metrics.fail(key)
			return nil, fmt.Errorf("fetch %s: %w", key, res.Err)
		}
		return res.Val, nil
	case <-ctx.Done():
		c.metrics.fail(key)
		return nil, fmt.Errorf("fetch %s: %w", key, ctx.Err())
	}
}

// store caches v for key unless caching is disabled or the cache was
// invalidated since the fetch started.
func (c *Client) store(key string, epoch uint64, v any) {
	if c.staleTime <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return
	}
	c.entries[key] = &cacheEntry{value: v, fetchedAt: c.now()}
}

// Get is a typed wrapper around Client.Fetch. A nil client calls fn directly.
func Get[T any](ctx context.Context, c *Client, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if c == nil {
		return fn(ctx)
	}
	v, err := c.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("fetch %s: cached value is %T, not %T", key, v, zero)
	}
	return typed, nil
}

// Invalidate drops every entry whose key equals prefix or starts with
// prefix followed by "/". An empty prefix drops everything. It returns the
// number of entries removed. Fetches already in flight will not store their
// results.
func (c *Client) Invalidate(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++

	removed := 0
	for key := range c.entries {
		if prefix == "" || key == prefix || strings.HasPrefix(key, prefix+"/") {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries currently in the cache (including stale ones).
func (c *Client) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries from the cache.
func (c *Client) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.entries = make(map[string]*cacheEntry)
}

// Key joins key segments with "/".
func Key(parts ...string) string {
	return strings.Join(parts, "/")
}
