package geometry

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/paulmach/orb"
)

// Cache is a thin wrapper around hashicorp/golang-lru/v2 that adds the
// piece the library doesn't provide: eviction-count telemetry, so
// get_statistics-style callers can report cache pressure. Entries are
// immutable once built (spec.md §4.4), so there's no need for the
// wrapper to do anything beyond that and the size bound itself.
type Cache struct {
	inner     *lru.Cache[int64, orb.MultiPolygon]
	evictions atomic.Int64
}

// NewCache builds an LRU of up to size assembled airspaces.
func NewCache(size int) (*Cache, error) {
	c := &Cache{}
	inner, err := lru.NewWithEvict[int64, orb.MultiPolygon](size, func(int64, orb.MultiPolygon) {
		c.evictions.Add(1)
	})
	if err != nil {
		return nil, err
	}
	c.inner = inner
	return c, nil
}

func (c *Cache) Get(id int64) (orb.MultiPolygon, bool) { return c.inner.Get(id) }

func (c *Cache) Add(id int64, mp orb.MultiPolygon) { c.inner.Add(id, mp) }

func (c *Cache) Len() int { return c.inner.Len() }

// Evictions reports how many entries have been evicted over the
// cache's lifetime.
func (c *Cache) Evictions() int64 { return c.evictions.Load() }
