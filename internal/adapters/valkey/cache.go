package valkey

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/samirrijal/farmmap/internal/core/domain"
	"github.com/samirrijal/farmmap/internal/pkg/metrics"
)

// localTTL bounds how long a GET may be answered from the client-side cache.
// Server-assisted tracking evicts entries earlier when a key is deleted, so
// plant invalidations from NATS take effect on every API replica.
const localTTL = 15 * time.Second

// Cache implements ports.CacheService on Valkey with client-side caching.
type Cache struct {
	client valkey.Client
}

// New connects to addr.
func New(addr string) (*Cache, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect %s: %w", addr, err)
	}
	return &Cache{client: client}, nil
}

// Get returns the value at key, or domain.ErrNotFound.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	label := MetricLabel(key)
	b, err := c.client.DoCache(ctx, c.client.B().Get().Key(key).Cache(), localTTL).AsBytes()
	switch {
	case valkey.IsValkeyNil(err):
		metrics.CacheMisses.WithLabelValues(label).Inc()
		return nil, domain.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("valkey get %s: %w", label, err)
	}
	metrics.CacheHits.WithLabelValues(label).Inc()
	return b, nil
}

// Set stores value under key. A non-positive ttl never expires.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	set := c.client.B().Set().Key(key).Value(valkey.BinaryString(value))
	var err error
	if ttlSeconds > 0 {
		err = c.client.Do(ctx, set.Ex(time.Duration(ttlSeconds)*time.Second).Build()).Error()
	} else {
		err = c.client.Do(ctx, set.Build()).Error()
	}
	if err != nil {
		return fmt.Errorf("valkey set %s: %w", MetricLabel(key), err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Do(ctx, c.client.B().Del().Key(key).Build()).Error()
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}

func (c *Cache) Close() {
	c.client.Close()
}

// MetricLabel keeps the first two segments of a cache key so per-viewport
// keys share one label: "plants:mapview:78.0000:..." becomes "plants:mapview".
func MetricLabel(key string) string {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) < 2 {
		return key
	}
	return parts[0] + ":" + parts[1]
}
