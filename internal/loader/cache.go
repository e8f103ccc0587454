package loader

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sells-group/dashspec-cli/internal/table"
)

// Cache memoizes loaded tables keyed by (path, columns, row cap) with a
// time-based expiry. Entries are never invalidated by file changes; callers
// accept that an entry may be stale for up to the TTL window. The clock is
// injectable so expiry is testable.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	tbl      *table.Table
	info     LoadInfo
	storedAt time.Time
}

// NewCache creates a cache with the given TTL. A nil clock uses time.Now. A
// non-positive TTL disables caching entirely.
func NewCache(ttl time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]cacheEntry),
	}
}

func cacheKey(path string, columns []string, rowCap int) string {
	return fmt.Sprintf("%s|%s|%d", path, strings.Join(columns, ","), rowCap)
}

func (c *Cache) get(key string) (*table.Table, LoadInfo, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, LoadInfo{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, LoadInfo{}, false
	}
	if c.now().Sub(e.storedAt) > c.ttl {
		delete(c.entries, key)
		return nil, LoadInfo{}, false
	}
	return e.tbl, e.info, true
}

func (c *Cache) put(key string, tbl *table.Table, info LoadInfo) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{tbl: tbl, info: info, storedAt: c.now()}
}

// Purge drops every entry.
func (c *Cache) Purge() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
