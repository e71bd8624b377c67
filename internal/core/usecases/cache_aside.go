package usecases

import (
	"context"
	"encoding/json"

	"github.com/samirrijal/farmmap/internal/core/ports"
)

// cachedGet serves key from cache, falling back to load and storing its
// result for ttlSeconds. A nil cache always loads.
func cachedGet[T any](ctx context.Context, cache ports.CacheService, key string, ttlSeconds int, load func() (*T, error)) (*T, error) {
	if cache != nil {
		if data, err := cache.Get(ctx, key); err == nil {
			var v T
			if err := json.Unmarshal(data, &v); err == nil {
				return &v, nil
			}
		}
	}

	v, err := load()
	if err != nil {
		return nil, err
	}

	if cache != nil {
		if data, err := json.Marshal(v); err == nil {
			_ = cache.Set(ctx, key, data, ttlSeconds)
		}
	}
	return v, nil
}
