package usecases

import (
	"context"

	"github.com/samirrijal/farmmap/internal/core/domain"
	"github.com/samirrijal/farmmap/internal/core/ports"
)

// PlotService handles plot-related business logic.
type PlotService struct {
	plots ports.PlotRepository
	cache ports.CacheService
}

// NewPlotService creates a new PlotService. cache may be nil.
func NewPlotService(plots ports.PlotRepository, cache ports.CacheService) *PlotService {
	return &PlotService{plots: plots, cache: cache}
}

// List returns plots filtered by domain when domainID is set, otherwise by
// organization.
func (s *PlotService) List(ctx context.Context, organizationID, domainID string) ([]domain.Plot, error) {
	if domainID != "" {
		return s.plots.ListByDomain(ctx, domainID)
	}
	return s.plots.List(ctx, organizationID)
}

// GetByID returns a plot by id.
func (s *PlotService) GetByID(ctx context.Context, id string) (*domain.Plot, error) {
	return cachedGet(ctx, s.cache, "plots:id:"+id, 600, func() (*domain.Plot, error) {
		return s.plots.GetByID(ctx, id)
	})
}

// ContainmentRadius returns the radius new plots of domainID must fall within.
func (s *PlotService) ContainmentRadius(ctx context.Context, domainID string) (float64, domain.RadiusSource, error) {
	siblings, err := s.plots.ListByDomain(ctx, domainID)
	if err != nil {
		return 0, "", err
	}
	r, src := PlotRadiusKm(siblings)
	return r, src, nil
}
