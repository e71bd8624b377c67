// Package memcache is an in-process ports.CacheService used when Valkey is
// disabled or unreachable.
package memcache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/samirrijal/farmmap/internal/adapters/valkey"
	"github.com/samirrijal/farmmap/internal/core/domain"
	"github.com/samirrijal/farmmap/internal/pkg/metrics"
)

// Cache implements ports.CacheService on go-cache.
type Cache struct {
	c *gocache.Cache
}

// New returns a cache that purges expired entries every cleanup interval.
func New(cleanup time.Duration) *Cache {
	return &Cache{c: gocache.New(gocache.NoExpiration, cleanup)}
}

func (m *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	v, ok := m.c.Get(key)
	if !ok {
		metrics.CacheMisses.WithLabelValues(valkey.MetricLabel(key)).Inc()
		return nil, domain.ErrNotFound
	}
	metrics.CacheHits.WithLabelValues(valkey.MetricLabel(key)).Inc()
	return v.([]byte), nil
}

// Set stores a copy of value. A non-positive ttl never expires.
func (m *Cache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	ttl := gocache.NoExpiration
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	m.c.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

func (m *Cache) Delete(ctx context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

// Len returns the number of stored entries, including expired ones not yet purged.
func (m *Cache) Len() int {
	return m.c.ItemCount()
}
