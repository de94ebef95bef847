package uriparser

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// DefaultCacheSize is the number of bound clauses a Parser keeps by default.
const DefaultCacheSize = 512

// clauseCache holds bound clauses keyed by entity set, option and text.
//
// Reads are lock-free. When the cache grows past its limit it is cleared
// entirely; bound trees are immutable, so callers holding a cleared entry
// are unaffected.
type clauseCache struct {
	entries sync.Map // map[uint64]*cacheEntry
	size    atomic.Int64
	limit   int64
	logger  *slog.Logger
}

type cacheEntry struct {
	key   string
	value interface{}
}

func newClauseCache(limit int, logger *slog.Logger) *clauseCache {
	if limit <= 0 {
		return nil
	}
	return &clauseCache{limit: int64(limit), logger: logger}
}

func cacheKey(entitySet, option, text string) string {
	return entitySet + "\x00" + option + "\x00" + text
}

func (c *clauseCache) get(key string) (interface{}, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.entries.Load(xxhash.Sum64String(key))
	if !ok {
		return nil, false
	}
	entry := v.(*cacheEntry)
	// a hash collision must not return another query's tree
	if entry.key != key {
		return nil, false
	}
	return entry.value, true
}

func (c *clauseCache) put(key string, value interface{}) {
	if c == nil {
		return
	}
	if _, loaded := c.entries.LoadOrStore(xxhash.Sum64String(key), &cacheEntry{key: key, value: value}); loaded {
		return
	}
	if c.size.Add(1) > c.limit {
		c.clear()
	}
}

func (c *clauseCache) clear() {
	evicted := 0
	c.entries.Range(func(k, _ interface{}) bool {
		c.entries.Delete(k)
		evicted++
		return true
	})
	c.size.Store(0)
	c.logger.Debug("Cleared parse cache", slog.Int("evicted", evicted))
}

func (c *clauseCache) len() int {
	if c == nil {
		return 0
	}
	return int(c.size.Load())
}
