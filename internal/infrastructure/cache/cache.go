// Package cache is a client-side request cache keyed by stable string
// tuples. Fresh entries are served without touching the backend;
// mutations invalidate their related keys after a short settle delay so
// the backend's read-after-write has time to become consistent.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Key is a stable cache key tuple, e.g. {"listPayments", merchantID}.
type Key []string

func (k Key) String() string {
	return strings.Join(k, "/")
}

type entry struct {
	value     any
	pages     []any
	cursor    string
	started   bool
	stale     bool
	fetchedAt time.Time
}

type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	timers  []*time.Timer
	closed  bool
}

func New() *Cache {
	return &Cache{entries: make(map[string]*entry)}
}

// Resolve returns the cached value for key, calling fetch only when the
// entry is missing or stale. A failed fetch leaves any previous value
// untouched and is reported to the caller.
func Resolve[T any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (T, error)) (T, error) {
	k := key.String()

	c.mu.Lock()
	if e, ok := c.entries[k]; ok && !e.stale {
		v := e.value.(T)
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	v, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	c.mu.Lock()
	c.entries[k] = &entry{value: v, fetchedAt: time.Now()}
	c.mu.Unlock()
	return v, nil
}

// NextPage advances a cursor-paginated list one page and returns every
// page accumulated so far plus whether more pages remain. fetch
// receives the cursor of the last fetched page ("" for the first one)
// and returns the page along with the next cursor ("" when exhausted).
func NextPage[T any](ctx context.Context, c *Cache, key Key, fetch func(ctx context.Context, cursor string) (T, string, error)) ([]T, bool, error) {
	k := key.String()

	c.mu.Lock()
	e, ok := c.entries[k]
	if !ok || e.stale {
		e = &entry{}
		c.entries[k] = e
	}
	if e.started && e.cursor == "" {
		// already exhausted
		pages := typedPages[T](e.pages)
		c.mu.Unlock()
		return pages, false, nil
	}
	cursor := e.cursor
	c.mu.Unlock()

	page, next, err := fetch(ctx, cursor)
	if err != nil {
		c.mu.Lock()
		pages := typedPages[T](e.pages)
		hasMore := e.started && e.cursor != ""
		c.mu.Unlock()
		return pages, hasMore, err
	}

	c.mu.Lock()
	e.pages = append(e.pages, page)
	e.cursor = next
	e.started = true
	e.fetchedAt = time.Now()
	pages := typedPages[T](e.pages)
	hasMore := next != ""
	c.mu.Unlock()
	return pages, hasMore, nil
}

// Pages returns the accumulated pages for key without fetching.
func Pages[T any](c *Cache, key Key) []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key.String()]; ok && !e.stale {
		return typedPages[T](e.pages)
	}
	return nil
}

func typedPages[T any](pages []any) []T {
	out := make([]T, 0, len(pages))
	for _, p := range pages {
		out = append(out, p.(T))
	}
	return out
}

// Invalidate marks the given keys stale after the settle delay. Reads
// that arrive before the delay fires still see the previous values.
func (c *Cache) Invalidate(settle time.Duration, keys ...Key) {
	if settle <= 0 {
		c.markStale(keys)
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	t := time.AfterFunc(settle, func() { c.markStale(keys) })
	c.timers = append(c.timers, t)
	c.mu.Unlock()
}

func (c *Cache) markStale(keys []Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		if e, ok := c.entries[key.String()]; ok {
			e.stale = true
		}
	}
}

// DropAll empties the cache immediately. Used on logout and on
// merchant switch.
func (c *Cache) DropAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

// Close stops pending invalidation timers.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for _, t := range c.timers {
		t.Stop()
	}
	c.timers = nil
}
