package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samirrijal/farmmap/internal/core/domain"
	"github.com/samirrijal/farmmap/internal/core/ports"
)

// PlantService handles plant-related business logic.
type PlantService struct {
	plants ports.PlantRepository
	cache  ports.CacheService
	limit  int
}

// NewPlantService creates a new PlantService. limit caps mapview results.
func NewPlantService(plants ports.PlantRepository, cache ports.CacheService, limit int) *PlantService {
	if limit <= 0 {
		limit = 5000
	}
	return &PlantService{plants: plants, cache: cache, limit: limit}
}

func mapviewCacheKey(b *domain.ViewportBounds, limit int) string {
	if b == nil {
		return fmt.Sprintf("plants:mapview:all:%d", limit)
	}
	return fmt.Sprintf("plants:mapview:%.4f:%.4f:%.4f:%.4f:%d", b.SW.Lon, b.SW.Lat, b.NE.Lon, b.NE.Lat, limit)
}

// Mapview returns the located plants inside bounds; nil bounds returns every
// located plant up to the limit.
func (s *PlantService) Mapview(ctx context.Context, bounds *domain.ViewportBounds) ([]domain.Plant, error) {
	if bounds != nil {
		if err := bounds.Validate(); err != nil {
			return nil, err
		}
	}

	// Try cache
	cacheKey := mapviewCacheKey(bounds, s.limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var plants []domain.Plant
			if err := json.Unmarshal(data, &plants); err == nil {
				return plants, nil
			}
		}
	}

	plants, err := s.plants.FindInBounds(ctx, bounds, s.limit)
	if err != nil {
		return nil, err
	}

	// Cache for 30 seconds; plants move rarely but the map polls often.
	if s.cache != nil {
		if data, err := json.Marshal(plants); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 30)
		}
	}

	return plants, nil
}

// FetchPlants lets an in-process ProgressiveLoader query storage directly.
func (s *PlantService) FetchPlants(ctx context.Context, bounds *domain.ViewportBounds) ([]domain.Plant, error) {
	return s.Mapview(ctx, bounds)
}

// GetByID returns a single plant, cached for 10 minutes.
func (s *PlantService) GetByID(ctx context.Context, id string) (*domain.Plant, error) {
	return cachedGet(ctx, s.cache, "plants:id:"+id, 600, func() (*domain.Plant, error) {
		return s.plants.GetByID(ctx, id)
	})
}

// ListByPlot returns the plants of a plot.
func (s *PlantService) ListByPlot(ctx context.Context, plotID string) ([]domain.Plant, error) {
	return s.plants.ListByPlot(ctx, plotID)
}

// Invalidate drops the cached copy of a plant after its location changed.
func (s *PlantService) Invalidate(ctx context.Context, id string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, "plants:id:"+id)
}
