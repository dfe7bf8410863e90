package search

import (
	"strings"
	"time"

	"fidakune/internal/query"
)

type cacheKey struct {
	query     string
	forceRoot bool
	limit     int
	domain    string
}

func newCacheKey(q string, opts Options) cacheKey {
	return cacheKey{
		query:     query.Normalize(q),
		forceRoot: opts.ForceRootTier,
		limit:     opts.Limit,
		domain:    strings.ToLower(strings.TrimSpace(string(opts.Domain))),
	}
}

type cacheEntry struct {
	result    *Result
	storedAt  time.Time
	expiresAt time.Time
}

// resultCache is a TTL cache bounded by entry count. It is guarded by the engine mutex.
type resultCache struct {
	max     int
	entries map[cacheKey]cacheEntry
}

func newResultCache(capacity int) *resultCache {
	return &resultCache{max: capacity, entries: make(map[cacheKey]cacheEntry)}
}

func (c *resultCache) get(k cacheKey, now time.Time) (*Result, bool) {
	ce, ok := c.entries[k]
	if !ok {
		return nil, false
	}
	if !now.Before(ce.expiresAt) {
		delete(c.entries, k)
		return nil, false
	}
	return ce.result, true
}

func (c *resultCache) put(k cacheKey, r *Result, expiresAt, now time.Time) {
	if _, exists := c.entries[k]; !exists && len(c.entries) >= c.max {
		c.evict(now)
	}
	c.entries[k] = cacheEntry{result: r, storedAt: now, expiresAt: expiresAt}
}

// evict drops expired entries, then the oldest one if the cache is still full.
func (c *resultCache) evict(now time.Time) {
	for k, ce := range c.entries {
		if !now.Before(ce.expiresAt) {
			delete(c.entries, k)
		}
	}
	if len(c.entries) < c.max {
		return
	}
	var oldest cacheKey
	var oldestAt time.Time
	first := true
	for k, ce := range c.entries {
		if first || ce.storedAt.Before(oldestAt) {
			oldest, oldestAt, first = k, ce.storedAt, false
		}
	}
	delete(c.entries, oldest)
}

func (c *resultCache) clear() {
	c.entries = make(map[cacheKey]cacheEntry)
}

func (c *resultCache) len() int {
	return len(c.entries)
}
