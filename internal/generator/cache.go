package generator

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/parametric-risk-engine/internal/domain"
)

// SeriesCache stores generated series keyed by region, weather type, range,
// and cache context. Implementations must be safe for concurrent use.
type SeriesCache interface {
	Get(key string) ([]domain.DataPoint, bool)
	Put(key string, points []domain.DataPoint)
	// Clear removes every entry whose key contains pattern and returns the
	// number removed. An empty pattern clears everything.
	Clear(pattern string) int
}

// CacheKey renders the canonical cache key for a series request. Context
// tags keep differently-extended series for the same region apart, and the
// data type is part of the key because predicted values are damped.
func CacheKey(region domain.Region, weatherType domain.WeatherType, dataType domain.DataType, r domain.TimeRange, cacheContext string) string {
	key := fmt.Sprintf("%s-%s-%s-%s-%s",
		region.Key(), weatherType, dataType,
		r.From.UTC().Format(keyTimeLayout), r.To.UTC().Format(keyTimeLayout))
	if cacheContext != "" {
		key += "-ctx-" + cacheContext
	}
	return key
}

const keyTimeLayout = "2006-01-02-15"

// MemoryCache is a thread-safe in-memory LRU implementation of SeriesCache.
type MemoryCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*cacheEntry
	head       *cacheEntry // most recently used
	tail       *cacheEntry // least recently used
}

type cacheEntry struct {
	key    string
	points []domain.DataPoint
	prev   *cacheEntry
	next   *cacheEntry
}

// NewMemoryCache creates an LRU series cache bounded at maxEntries.
func NewMemoryCache(maxEntries int) *MemoryCache {
	return &MemoryCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*cacheEntry),
	}
}

func (c *MemoryCache) Get(key string) ([]domain.DataPoint, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.points, true
}

func (c *MemoryCache) Put(key string, points []domain.DataPoint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.points = points
		c.moveToFront(e)
		return
	}

	e := &cacheEntry{key: key, points: points}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *MemoryCache) Clear(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if pattern == "" || strings.Contains(key, pattern) {
			delete(c.entries, key)
			c.remove(e)
			removed++
		}
	}
	return removed
}

// Len reports the current entry count.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryCache) moveToFront(e *cacheEntry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *MemoryCache) addToFront(e *cacheEntry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *MemoryCache) remove(e *cacheEntry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *MemoryCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}

// hourSpan reports the inclusive number of hourly points between two
// aligned instants.
func hourSpan(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start)/time.Hour) + 1
}
