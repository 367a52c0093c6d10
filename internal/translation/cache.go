package translation

import (
	"context"
	"html"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache maps source phrases to translations for one language pair. Keys are
// exact strings: phrases differing only in whitespace are distinct entries.
// Concurrent misses on the same phrase share a single backend call.
type Cache struct {
	mu           sync.RWMutex
	translations map[string]string
	group        singleflight.Group
	store        Store
	stats        *TimeStats

	hits   atomic.Int64
	misses atomic.Int64
}

// NewTranslationCache creates an empty cache persisted to store and
// recording miss latencies in stats. Both may be nil.
func NewTranslationCache(store Store, stats *TimeStats) *Cache {
	if store == nil {
		store = NopStore{}
	}
	return &Cache{
		translations: make(map[string]string),
		store:        store,
		stats:        stats,
	}
}

// LoadCache creates a cache and fills it from store. The cache is always
// usable: when loading fails it is empty and the returned *LoadError says why.
func LoadCache(store Store, stats *TimeStats) (*Cache, error) {
	c := NewTranslationCache(store, stats)

	entries, err := c.store.Load()
	if err != nil {
		return c, &LoadError{Location: c.store.Location(), Err: err}
	}
	for k, v := range entries {
		c.translations[k] = v
	}
	return c, nil
}

// Add adds a translation to the cache
func (c *Cache) Add(phrase, translation string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.translations[phrase] = translation
}

// Get retrieves a translation from the cache
func (c *Cache) Get(phrase string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	translation, ok := c.translations[phrase]
	return translation, ok
}

// GetAll returns a copy of all cached translations
func (c *Cache) GetAll() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make(map[string]string, len(c.translations))
	for k, v := range c.translations {
		result[k] = v
	}
	return result
}

// Len returns the number of cached phrases.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.translations)
}

// Stats returns hit and miss counts of GetOrTranslate. Every non-empty
// lookup counts exactly once.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Location returns where the cache is persisted.
func (c *Cache) Location() string {
	return c.store.Location()
}

// GetOrTranslate returns the cached translation of phrase, or translates it
// with backend, records the call latency and caches the HTML-unescaped
// result. Failed translations are not cached. The empty phrase translates
// to itself without a backend call.
func (c *Cache) GetOrTranslate(ctx context.Context, phrase string, backend Backend, sourceLang, targetLang string) (string, error) {
	if phrase == "" {
		return "", nil
	}
	if t, ok := c.Get(phrase); ok {
		c.hits.Add(1)
		return t, nil
	}

	// A caller joining an in-flight call counts as a hit, or as a miss when
	// the call fails.
	ran := false
	v, err, shared := c.group.Do(phrase, func() (interface{}, error) {
		ran = true
		if t, ok := c.Get(phrase); ok {
			c.hits.Add(1)
			return t, nil
		}
		c.misses.Add(1)

		start := time.Now()
		out, err := backend.Translate(ctx, phrase, sourceLang, targetLang)
		c.stats.Add(phrase, time.Since(start))
		if err != nil {
			return "", err
		}

		out = html.UnescapeString(out)
		c.Add(phrase, out)
		return out, nil
	})
	if shared && !ran {
		if err != nil {
			c.misses.Add(1)
		} else {
			c.hits.Add(1)
		}
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Save persists all entries to the store.
func (c *Cache) Save() error {
	return c.store.Save(c.GetAll())
}

// Close releases the store when it holds resources such as a database.
func (c *Cache) Close() error {
	if closer, ok := c.store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
