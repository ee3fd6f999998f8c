// Package querycache is a key-addressed cache of server query results.
// Each key identifies one remote read (resource plus parameters); writes
// declare exactly which keys they invalidate so dependent views refresh.
// Concurrent fetches of the same key are collapsed to a single request.
package querycache

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

const keySep = "\x1f"

// Key identifies a cached query: an ordered tuple of the resource name and
// its parameters, e.g. Key("shiftAttendance", "42").
type Key string

// NewKey builds a Key from its tuple parts.
func NewKey(parts ...string) Key {
	return Key(strings.Join(parts, keySep))
}

// FetchFunc loads the value for a key from the backend.
type FetchFunc func(ctx context.Context) (any, error)

type entry struct {
	value any
}

// Cache holds successful query results keyed by tuple. A result stays
// cached until its key is invalidated; a failed fetch is never stored,
// so the next Get retries.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]entry
	group   singleflight.Group
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[Key]entry)}
}

// Get returns the cached value for key, fetching it when absent. At most
// one fetch per key is in flight; concurrent callers observe the pending
// result rather than issuing duplicates.
func (c *Cache) Get(ctx context.Context, key Key, fetch FetchFunc) (any, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return e.value, nil
	}
	c.mu.Unlock()

	value, err, _ := c.group.Do(string(key), func() (any, error) {
		// Re-check under the group: a concurrent caller may have completed
		// the fetch between the fast path and Do.
		c.mu.Lock()
		if e, ok := c.entries[key]; ok {
			c.mu.Unlock()
			return e.value, nil
		}
		c.mu.Unlock()

		v, err := fetch(ctx)

		c.mu.Lock()
		if err == nil {
			c.entries[key] = entry{value: v}
		} else {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return v, err
	})
	return value, err
}

// Peek returns the cached value without fetching.
func (c *Cache) Peek(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Invalidate drops the entries for the given keys. Subsequent Gets refetch.
func (c *Cache) Invalidate(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
}

// Clear drops every entry. Called on logout so no per-user data survives
// into the next session.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key]entry)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Fetch is a typed wrapper over Cache.Get.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fetch func(ctx context.Context) (T, error)) (T, error) {
	v, err := c.Get(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
