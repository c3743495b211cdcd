package runtime

import (
	"errors"
	"sync"
	"time"
)

// CacheEntry represents a cached template with metadata
type CacheEntry struct {
	Template     *Template
	LoadedAt     time.Time
	LastUsed     time.Time
	ExpiresAt    time.Time
	Dependencies map[string]time.Time
}

// IsExpired checks if the cache entry has expired
func (e *CacheEntry) IsExpired(now time.Time) bool {
	if e.ExpiresAt.IsZero() {
		return false
	}
	return now.After(e.ExpiresAt)
}

// IsValid reports whether the entry is unexpired and none of its source files
// changed since it was compiled.
func (e *CacheEntry) IsValid(loader Loader, now time.Time) bool {
	if e.IsExpired(now) {
		return false
	}
	if loader == nil {
		return true
	}

	for path, modTime := range e.Dependencies {
		if modTime.IsZero() {
			continue
		}
		current, err := getModTime(loader, path)
		if err != nil || current.IsZero() {
			return false
		}
		if !current.Equal(modTime) {
			return false
		}
	}
	return true
}

// CacheStats counts cache lookups
type CacheStats struct {
	Hits      int
	Misses    int
	Evictions int
}

// TemplateCache is a thread-safe compiled-template cache with an optional TTL
// and least-recently-used eviction.
type TemplateCache struct {
	entries map[string]*CacheEntry
	mutex   sync.Mutex
	ttl     time.Duration
	maxSize int
	stats   CacheStats
	now     func() time.Time
}

// NewTemplateCache creates a cache. A zero ttl never expires entries and a
// maxSize of zero or less means unbounded.
func NewTemplateCache(ttl time.Duration, maxSize int) *TemplateCache {
	return &TemplateCache{
		entries: make(map[string]*CacheEntry),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Get retrieves a template, dropping the entry when it is stale.
func (c *TemplateCache) Get(name string, loader Loader) (*Template, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, ok := c.entries[name]
	if !ok {
		c.stats.Misses++
		return nil, false
	}

	now := c.now()
	if !entry.IsValid(loader, now) {
		delete(c.entries, name)
		c.stats.Misses++
		return nil, false
	}

	entry.LastUsed = now
	c.stats.Hits++
	return entry.Template, true
}

// Set stores a template along with the modification times of its sources.
func (c *TemplateCache) Set(name string, template *Template, dependencies map[string]time.Time) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.entries[name]; !exists && c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictLeastRecentlyUsed()
	}

	now := c.now()
	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = now.Add(c.ttl)
	}

	deps := make(map[string]time.Time, len(dependencies))
	for k, v := range dependencies {
		deps[k] = v
	}

	c.entries[name] = &CacheEntry{
		Template:     template,
		LoadedAt:     now,
		LastUsed:     now,
		ExpiresAt:    expiresAt,
		Dependencies: deps,
	}
}

// Delete removes a template from the cache
func (c *TemplateCache) Delete(name string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.entries, name)
}

// Clear removes all entries from the cache
func (c *TemplateCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries = make(map[string]*CacheEntry)
}

// Invalidate removes the entry for path and every entry depending on it.
func (c *TemplateCache) Invalidate(path string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.entries, path)
	for name, entry := range c.entries {
		if _, depends := entry.Dependencies[path]; depends {
			delete(c.entries, name)
		}
	}
}

// Size returns the current number of cached entries
func (c *TemplateCache) Size() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the lookup counters
func (c *TemplateCache) Stats() CacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.stats
}

func (c *TemplateCache) evictLeastRecentlyUsed() {
	var victim string
	var oldest time.Time
	for name, entry := range c.entries {
		if victim == "" || entry.LastUsed.Before(oldest) {
			victim = name
			oldest = entry.LastUsed
		}
	}
	if victim != "" {
		delete(c.entries, victim)
		c.stats.Evictions++
	}
}

// getModTime asks loaders that track modification times for one.
func getModTime(loader Loader, path string) (time.Time, error) {
	if loader == nil {
		return time.Time{}, errors.New("no loader configured")
	}

	type modTimeLoader interface {
		TemplateModTime(name string) (time.Time, error)
	}

	if mt, ok := loader.(modTimeLoader); ok {
		return mt.TemplateModTime(path)
	}
	return time.Time{}, errors.New("loader does not support modification times")
}
