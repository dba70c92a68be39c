package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// DefaultLocalCapacity and DefaultLocalTTL size the local tier when the
// caller does not.
const (
	DefaultLocalCapacity = 10_000
	DefaultLocalTTL      = 30 * time.Minute
)

// LoadFunc computes a value on a local miss. cacheable=false hands the value
// to every waiter of the current flight without storing it.
type LoadFunc func() (value string, cacheable bool)

// LocalCache is the bounded in-process tier. Entries expire a fixed time
// after insertion and the least recently used entry is evicted once the
// tier is full. Concurrent misses on the same key are collapsed into a
// single LoadFunc call.
type LocalCache struct {
	lru   *expirable.LRU[string, string]
	group singleflight.Group
}

// NewLocalCache creates a local tier holding at most capacity entries for
// ttl each. Non-positive values fall back to the defaults.
func NewLocalCache(capacity int, ttl time.Duration) *LocalCache {
	if capacity <= 0 {
		capacity = DefaultLocalCapacity
	}
	if ttl <= 0 {
		ttl = DefaultLocalTTL
	}
	return &LocalCache{
		lru: expirable.NewLRU[string, string](capacity, nil, ttl),
	}
}

// Get returns a cached value.
func (c *LocalCache) Get(key string) (string, bool) {
	return c.lru.Get(key)
}

// Set stores a value, evicting the oldest entry if the tier is full.
func (c *LocalCache) Set(key, value string) {
	c.lru.Add(key, value)
}

// GetOrLoad returns the cached value for key, or runs load exactly once for
// all concurrent callers missing on key and hands each of them its result.
// hit reports whether the value came straight from the tier.
func (c *LocalCache) GetOrLoad(key string, load LoadFunc) (value string, hit bool) {
	if v, ok := c.lru.Get(key); ok {
		return v, true
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		// A flight that finished between our miss and Do has stored its value.
		if v, ok := c.lru.Get(key); ok {
			return v, nil
		}
		val, cacheable := load()
		if cacheable {
			c.lru.Add(key, val)
		}
		return val, nil
	})

	return v.(string), false
}

// Len returns the number of entries, including ones not yet purged.
func (c *LocalCache) Len() int {
	return c.lru.Len()
}

// Purge removes every entry.
func (c *LocalCache) Purge() {
	c.lru.Purge()
}

// Entries returns all non-expired entries as key-value pairs.
func (c *LocalCache) Entries() map[string]string {
	keys := c.lru.Keys()
	result := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := c.lru.Peek(k); ok {
			result[k] = v
		}
	}
	return result
}

var _ ExportableCache = (*LocalCache)(nil)
