package texture

import (
	"image"
	"image/color"
	"sync"
)

// Cache is a concurrency-safe texture cache over an Index.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*cacheEntry
	index *Index
}

type cacheEntry struct {
	img     *image.NRGBA // nil if the file failed to decode
	average color.NRGBA
}

// NewCache creates a new texture cache backed by the given index.
func NewCache(index *Index) *Cache {
	return &Cache{
		items: make(map[string]*cacheEntry),
		index: index,
	}
}

// Resolve loads and caches a texture by name. Returns nil if not found.
func (c *Cache) Resolve(name string) *image.NRGBA {
	if e := c.entry(name); e != nil {
		return e.img
	}
	return nil
}

// Average returns the mean color of the named texture; ok is false when the
// texture is missing or unreadable.
func (c *Cache) Average(name string) (avg color.NRGBA, ok bool) {
	e := c.entry(name)
	if e == nil || e.img == nil {
		return color.NRGBA{}, false
	}
	return e.average, true
}

func (c *Cache) entry(name string) *cacheEntry {
	path, ok := c.index.ResolvePath(name)
	if !ok {
		return nil
	}

	// Fast path: read lock
	c.mu.RLock()
	if e, exists := c.items[path]; exists {
		c.mu.RUnlock()
		return e
	}
	c.mu.RUnlock()

	// Slow path: load from disk
	e := &cacheEntry{}
	if img, err := Load(path); err == nil {
		e.img = img
		e.average = Average(img)
	}

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, exists := c.items[path]; exists {
		return existing
	}
	c.items[path] = e
	return e
}
