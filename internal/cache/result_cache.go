// Package cache keeps analysis results keyed by path and content hash so
// unchanged files are not re-analyzed by long-running modes.
package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/standardbeagle/incheck/internal/analyze"
)

// Entry is one cached analysis.
type Entry struct {
	Hash     uint64
	Result   *analyze.Result
	CachedAt time.Time
}

// Stats is a point-in-time snapshot of cache activity.
type Stats struct {
	Entries int
	Hits    int64
	Misses  int64
	HitRate float64
}

// ResultCache maps a file path to the result of its last analysis.
// Safe for concurrent use.
type ResultCache struct {
	entries sync.Map // map[string]*Entry

	// Atomic counters
	hits   int64
	misses int64
	count  int64
}

// NewResultCache creates an empty cache.
func NewResultCache() *ResultCache {
	return &ResultCache{}
}

// Lookup returns the cached result for path when it was computed from
// content with the same hash.
func (c *ResultCache) Lookup(path string, hash uint64) (*analyze.Result, bool) {
	if v, ok := c.entries.Load(path); ok {
		entry := v.(*Entry)
		if entry.Hash == hash {
			atomic.AddInt64(&c.hits, 1)
			return entry.Result, true
		}
	}
	atomic.AddInt64(&c.misses, 1)
	return nil, false
}

// Store records the result for path, replacing any earlier entry.
func (c *ResultCache) Store(path string, hash uint64, result *analyze.Result) {
	entry := &Entry{Hash: hash, Result: result, CachedAt: time.Now()}
	if _, loaded := c.entries.Swap(path, entry); !loaded {
		atomic.AddInt64(&c.count, 1)
	}
}

// Invalidate drops the entry for path, e.g. after the file was removed.
func (c *ResultCache) Invalidate(path string) {
	if _, loaded := c.entries.LoadAndDelete(path); loaded {
		atomic.AddInt64(&c.count, -1)
	}
}

// Len returns the number of cached files.
func (c *ResultCache) Len() int {
	return int(atomic.LoadInt64(&c.count))
}

// Stats returns the current counters.
func (c *ResultCache) Stats() Stats {
	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)
	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}
	return Stats{
		Entries: c.Len(),
		Hits:    hits,
		Misses:  misses,
		HitRate: rate,
	}
}
