package search

import "time"

// Metrics is a point-in-time view of engine activity.
type Metrics struct {
	TotalSearches  int           `json:"total_searches"`
	CacheHits      int           `json:"cache_hits"`
	AverageTime    time.Duration `json:"average_time"`
	CachedQueries  int           `json:"cached_queries"`
	CollectionSize int           `json:"collection_size"`
}

// HistoryItem records one served query.
type HistoryItem struct {
	Query       string    `json:"query"`
	Timestamp   time.Time `json:"timestamp"`
	ResultCount int       `json:"result_count"`
}

type counters struct {
	searches  int
	cacheHits int
	totalTime time.Duration
}

func (c *counters) record(d time.Duration, hit bool) {
	c.searches++
	c.totalTime += d
	if hit {
		c.cacheHits++
	}
}

func (c *counters) average() time.Duration {
	if c.searches == 0 {
		return 0
	}
	return c.totalTime / time.Duration(c.searches)
}

// history keeps the most recent items, newest last.
type history struct {
	size  int
	items []HistoryItem
}

func newHistory(size int) *history {
	return &history{size: size, items: make([]HistoryItem, 0, size)}
}

func (h *history) add(item HistoryItem) {
	if len(h.items) == h.size {
		copy(h.items, h.items[1:])
		h.items = h.items[:len(h.items)-1]
	}
	h.items = append(h.items, item)
}

func (h *history) snapshot() []HistoryItem {
	out := make([]HistoryItem, len(h.items))
	copy(out, h.items)
	return out
}

func (e *Engine) Metrics() Metrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Metrics{
		TotalSearches:  e.stats.searches,
		CacheHits:      e.stats.cacheHits,
		AverageTime:    e.stats.average(),
		CachedQueries:  e.cache.len(),
		CollectionSize: e.collection.Len(),
	}
}

// History returns recent queries, oldest first.
func (e *Engine) History() []HistoryItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.snapshot()
}
