package sourcemap

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/ristretto/v2"

	"github.com/yaklabco/gosage/internal/logging"
	"github.com/yaklabco/gosage/pkg/recognize"
)

// spanCost approximates the memory held by one span and its payload.
const spanCost = 96

// Cache keeps maps across document versions, keyed by a hash of the text
// they were built from. Reverting an edit, or opening two files with the same
// content, reuses the earlier map.
type Cache struct {
	store *ristretto.Cache[uint64, *Map]
	ttl   time.Duration
}

// NewCache creates a cache holding roughly maxBytes of text and spans.
// A zero ttl keeps entries until they are evicted.
func NewCache(maxBytes int64, ttl time.Duration) (*Cache, error) {
	store, err := ristretto.NewCache(&ristretto.Config[uint64, *Map]{
		NumCounters: max(maxBytes/100, 1000),
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("creating source map cache: %w", err)
	}
	return &Cache{store: store, ttl: ttl}, nil
}

// Key hashes the recognizer variant and the text a map is built from.
func Key(variant string, content []byte) uint64 {
	digest := xxhash.New()
	_, _ = digest.WriteString(variant)
	_, _ = digest.Write([]byte{0})
	_, _ = digest.Write(content)
	return digest.Sum64()
}

// Lookup returns the map stored under key if it was built from content.
// Comparing the text guards against hash collisions.
func (c *Cache) Lookup(key uint64, content []byte) (*Map, bool) {
	m, ok := c.store.Get(key)
	if !ok || !bytes.Equal(m.original.Content, content) {
		return nil, false
	}
	return m, true
}

// Store saves m under key and waits until it is visible to Lookup.
func (c *Cache) Store(key uint64, m *Map) {
	cost := int64(len(m.original.Content)+len(m.rewritten.Content)) + int64(m.index.Len())*spanCost
	c.store.SetWithTTL(key, m, cost, c.ttl)
	c.store.Wait()
}

// Close releases the cache's background goroutines.
func (c *Cache) Close() {
	c.store.Close()
}

// Builder builds maps with one recognizer, consulting an optional cache.
type Builder struct {
	rec     *recognize.Recognizer
	variant string
	cache   *Cache
}

// NewBuilder creates a Builder. variant must differ between recognizers
// configured differently (for instance with and without a prelude) when they
// share a cache. cache may be nil.
func NewBuilder(rec *recognize.Recognizer, variant string, cache *Cache) *Builder {
	return &Builder{rec: rec, variant: variant, cache: cache}
}

// Build returns the map for content, from the cache when possible.
func (b *Builder) Build(ctx context.Context, content []byte) (*Map, error) {
	logger := logging.FromContext(ctx)

	var key uint64
	if b.cache != nil {
		key = Key(b.variant, content)
		if m, ok := b.cache.Lookup(key, content); ok {
			logger.Debug("source map reused", logging.FieldCacheHit, true)
			return m, nil
		}
	}

	m, err := Build(b.rec, content)
	if err != nil {
		return nil, err
	}
	logger.Debug("source map built", logging.FieldSpans, m.index.Len())

	if b.cache != nil {
		b.cache.Store(key, m)
	}
	return m, nil
}
