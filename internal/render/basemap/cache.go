package basemap

import (
	"fmt"
	"sync"
	"time"
)

// TileCache is a concurrent-safe LRU cache for basemap tiles with TTL
// expiration. A poster render revisits the same tile grid repeatedly when
// both the raster map and the tile proxy are active.
type TileCache struct {
	mu         sync.Mutex
	entries    map[string]*tileEntry
	order      []string // LRU order: front=oldest, back=newest
	maxEntries int
	ttl        time.Duration
}

type tileEntry struct {
	data      []byte
	createdAt time.Time
}

// NewTileCache creates a TileCache with the given capacity and TTL.
func NewTileCache(maxEntries int, ttl time.Duration) *TileCache {
	return &TileCache{
		entries:    make(map[string]*tileEntry),
		maxEntries: maxEntries,
		ttl:        ttl,
	}
}

func tileKey(z, x, y int) string {
	return fmt.Sprintf("%d/%d/%d", z, x, y)
}

// Get retrieves a cached tile. Returns nil on miss or expiration.
func (c *TileCache) Get(z, x, y int) []byte {
	key := tileKey(z, x, y)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil
	}
	if time.Since(entry.createdAt) > c.ttl {
		delete(c.entries, key)
		c.removeFromOrder(key)
		return nil
	}

	c.removeFromOrder(key)
	c.order = append(c.order, key)
	return entry.data
}

// Put stores a tile, evicting the oldest entry at capacity.
func (c *TileCache) Put(z, x, y int, data []byte) {
	key := tileKey(z, x, y)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.removeFromOrder(key)
	} else if len(c.entries) >= c.maxEntries && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = &tileEntry{data: data, createdAt: time.Now()}
	c.order = append(c.order, key)
}

// Len returns the number of cached tiles.
func (c *TileCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *TileCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
