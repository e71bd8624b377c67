package ports

import (
	"context"

	"github.com/samirrijal/farmmap/internal/core/domain"
)

// DomainRepository reads domains.
type DomainRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Domain, error)
	List(ctx context.Context, organizationID string) ([]domain.Domain, error)
}

// PlotRepository reads plots.
type PlotRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Plot, error)
	ListByDomain(ctx context.Context, domainID string) ([]domain.Plot, error)
	List(ctx context.Context, organizationID string) ([]domain.Plot, error)
}

// PlantRepository reads plants.
type PlantRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Plant, error)
	ListByPlot(ctx context.Context, plotID string) ([]domain.Plant, error)
	// FindInBounds returns active plants inside bounds; nil bounds means unbounded.
	FindInBounds(ctx context.Context, bounds *domain.ViewportBounds, limit int) ([]domain.Plant, error)
}
