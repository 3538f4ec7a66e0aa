// Package query holds the process-wide response cache shared by every
// session store. Reads go through Fetch, which collapses concurrent loads
// of the same key and retries failures per RetryPolicy. Mutations call
// Invalidate with the exact keys they affect.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Key identifies a cached response: an entity kind followed by its scoping
// IDs, e.g. "topics/3/14".
type Key string

// NewKey joins kind and ids into a Key.
func NewKey(kind string, ids ...any) Key {
	parts := make([]string, 0, len(ids)+1)
	parts = append(parts, kind)
	for _, id := range ids {
		parts = append(parts, fmt.Sprint(id))
	}
	return Key(strings.Join(parts, "/"))
}

type entry struct {
	value any
}

// Cache is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]entry
	// generation is bumped on every invalidation of a key; a fetch that
	// started before the bump must not store its now stale result.
	generation map[Key]uint64
	// epoch is bumped by Clear so loads that straddle a sign-out are dropped.
	epoch  uint64
	group  singleflight.Group
	policy RetryPolicy
	logger *slog.Logger
}

type stamp struct {
	generation uint64
	epoch      uint64
}

// NewCache returns an empty cache using policy for reads.
func NewCache(policy RetryPolicy, logger *slog.Logger) *Cache {
	return &Cache{
		entries:    make(map[Key]entry),
		generation: make(map[Key]uint64),
		policy:     policy,
		logger:     logger,
	}
}

// Fetch returns the cached value for key or loads it with fn. Concurrent
// callers for the same key share one load.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error)) (T, error) {
	if value, ok := c.lookup(key); ok {
		if typed, ok := value.(T); ok {
			return typed, nil
		}
	}

	st := c.stampOf(key)
	result, err, _ := c.group.Do(string(key), func() (any, error) {
		value, err := retry(ctx, c.policy, fn)
		if err != nil {
			return nil, err
		}
		c.store(key, st, value)
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache key %s holds %T", key, result)
	}
	return typed, nil
}

// Refetch drops the cached value for key and loads it again with fn. Views
// call it when they open or refresh so they never show an old snapshot.
func Refetch[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error)) (T, error) {
	c.Invalidate(key)
	return Fetch(ctx, c, key, fn)
}

// Invalidate drops exactly the given keys. Other keys, including ones that
// share a prefix, are left alone.
func (c *Cache) Invalidate(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
		c.generation[key]++
		c.group.Forget(string(key))
		c.logger.Debug("cache invalidated", "key", string(key))
	}
}

// Clear drops every entry. Used on sign-out.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		c.group.Forget(string(key))
	}
	c.entries = make(map[Key]entry)
	c.epoch++
}

// Has reports whether key is cached.
func (c *Cache) Has(key Key) bool {
	_, ok := c.lookup(key)
	return ok
}

func (c *Cache) lookup(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e.value, ok
}

func (c *Cache) stampOf(key Key) stamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	return stamp{generation: c.generation[key], epoch: c.epoch}
}

func (c *Cache) store(key Key, st stamp, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation[key] != st.generation || c.epoch != st.epoch {
		return
	}
	c.entries[key] = entry{value: value}
}
