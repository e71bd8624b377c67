package usecases

import (
	"context"

	"github.com/samirrijal/farmmap/internal/core/domain"
	"github.com/samirrijal/farmmap/internal/core/ports"
)

// DomainService handles domain-related business logic.
type DomainService struct {
	domains ports.DomainRepository
	cache   ports.CacheService
}

// NewDomainService creates a new DomainService. cache may be nil.
func NewDomainService(domains ports.DomainRepository, cache ports.CacheService) *DomainService {
	return &DomainService{domains: domains, cache: cache}
}

// List returns the domains of an organization, or all when organizationID is empty.
func (s *DomainService) List(ctx context.Context, organizationID string) ([]domain.Domain, error) {
	return s.domains.List(ctx, organizationID)
}

// GetByID returns a domain by id. Domains are edited rarely; cached for an hour.
func (s *DomainService) GetByID(ctx context.Context, id string) (*domain.Domain, error) {
	return cachedGet(ctx, s.cache, "domains:id:"+id, 3600, func() (*domain.Domain, error) {
		return s.domains.GetByID(ctx, id)
	})
}
