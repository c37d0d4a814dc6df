package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"docai/internal/domain"
	"docai/internal/port"
)

// MemoryCache is a size bounded LRU with a TTL. It sits in front of the
// bolt cache so repeated units within one run skip the disk.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	order   []string
	maxSize int
	ttl     time.Duration
}

type cacheEntry struct {
	value     string
	timestamp time.Time
}

func NewMemoryCache(maxSize int, ttl time.Duration) *MemoryCache {
	if maxSize <= 0 {
		maxSize = 256
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MemoryCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

func (c *MemoryCache) Get(key string) (string, bool, error) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		return "", false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if time.Since(entry.timestamp) > c.ttl {
		delete(c.entries, key)
		c.removeFromOrder(key)
		return "", false, nil
	}
	c.moveToEnd(key)
	return entry.value, true, nil
}

func (c *MemoryCache) Put(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = &cacheEntry{value: value, timestamp: time.Now()}
		c.moveToEnd(key)
		return nil
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.entries[key] = &cacheEntry{value: value, timestamp: time.Now()}
	c.order = append(c.order, key)
	return nil
}

func (c *MemoryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.order = c.order[:0]
	return nil
}

func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *MemoryCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *MemoryCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *MemoryCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// Key fingerprints a generation request within a namespace (provider, model
// and prompt version).
func Key(namespace string, req domain.GenerationRequest) string {
	h := sha256.New()
	for _, part := range []string{namespace, string(req.Language), boolString(req.Inline), req.Source} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}

func boolString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// CachedGenerator answers repeated requests from its cache layers, fastest
// first. Cache failures are logged and never fail a generation.
type CachedGenerator struct {
	next      port.Generator
	namespace string
	layers    []port.DocCache
}

func NewCachedGenerator(next port.Generator, namespace string, layers ...port.DocCache) *CachedGenerator {
	return &CachedGenerator{
		next:      next,
		namespace: namespace,
		layers:    layers,
	}
}

func (g *CachedGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	key := Key(g.namespace, req)

	for i, layer := range g.layers {
		value, hit, err := layer.Get(key)
		if err != nil {
			log.Warn().Err(err).Msg("Doc cache read failed")
			continue
		}
		if hit {
			for _, upper := range g.layers[:i] {
				g.put(upper, key, value)
			}
			log.Debug().Str("key", key).Int("layer", i).Msg("Doc cache hit")
			return value, nil
		}
	}

	value, err := g.next.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	for _, layer := range g.layers {
		g.put(layer, key, value)
	}
	return value, nil
}

func (g *CachedGenerator) put(layer port.DocCache, key, value string) {
	if err := layer.Put(key, value); err != nil {
		log.Warn().Err(err).Msg("Doc cache write failed")
	}
}

func (g *CachedGenerator) ModelName() string {
	return g.next.ModelName()
}
