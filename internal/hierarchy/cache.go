package hierarchy

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/roach88/fanling-index/internal/model"
)

// LoadFunc returns the current items from the item store.
type LoadFunc func(ctx context.Context) ([]model.Item, error)

type cacheKey struct {
	generation int64
	openOnly   bool
}

// Cache memoizes ordered listings by item generation.
//
// The generation is a counter that changes with every committed item
// mutation. Only the newest generation is retained. Concurrent misses for
// the same key share one computation.
//
// Thread-safety: Cache is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[cacheKey][]Entry
	flight  singleflight.Group

	hits   int64
	misses int64
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey][]Entry)}
}

// Get returns the listing for generation, computing it with load on a miss.
// The returned slice is a copy the caller may modify.
func (c *Cache) Get(ctx context.Context, generation int64, openOnly bool, load LoadFunc) ([]Entry, error) {
	key := cacheKey{generation: generation, openOnly: openOnly}

	c.mu.Lock()
	if cached, ok := c.entries[key]; ok {
		c.hits++
		c.mu.Unlock()
		return clone(cached), nil
	}
	c.misses++
	c.mu.Unlock()

	flightKey := fmt.Sprintf("%d/%t", generation, openOnly)
	v, err, _ := c.flight.Do(flightKey, func() (interface{}, error) {
		items, err := load(ctx)
		if err != nil {
			return nil, err
		}
		entries, err := Order(items, openOnly)
		if err != nil {
			return nil, err
		}
		c.store(key, entries)
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(v.([]Entry)), nil
}

// store keeps entries and evicts every older generation.
func (c *Cache) store(key cacheKey, entries []Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.generation < key.generation {
			delete(c.entries, k)
		}
	}
	c.entries[key] = entries
}

// Stats returns hit and miss counts.
func (c *Cache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func clone(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}
