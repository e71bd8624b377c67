package usecases_test

import (
	"context"
	"sync"

	"github.com/samirrijal/farmmap/internal/core/domain"
	"github.com/samirrijal/farmmap/internal/core/ports"
)

// --- Mock DomainRepository ---

type mockDomainRepo struct {
	getByIDFn func(ctx context.Context, id string) (*domain.Domain, error)
	listFn    func(ctx context.Context, organizationID string) ([]domain.Domain, error)
}

func (m *mockDomainRepo) GetByID(ctx context.Context, id string) (*domain.Domain, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockDomainRepo) List(ctx context.Context, organizationID string) ([]domain.Domain, error) {
	if m.listFn != nil {
		return m.listFn(ctx, organizationID)
	}
	return nil, nil
}

// --- Mock PlotRepository ---

type mockPlotRepo struct {
	getByIDFn      func(ctx context.Context, id string) (*domain.Plot, error)
	listByDomainFn func(ctx context.Context, domainID string) ([]domain.Plot, error)
	listFn         func(ctx context.Context, organizationID string) ([]domain.Plot, error)
}

func (m *mockPlotRepo) GetByID(ctx context.Context, id string) (*domain.Plot, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockPlotRepo) ListByDomain(ctx context.Context, domainID string) ([]domain.Plot, error) {
	if m.listByDomainFn != nil {
		return m.listByDomainFn(ctx, domainID)
	}
	return nil, nil
}

func (m *mockPlotRepo) List(ctx context.Context, organizationID string) ([]domain.Plot, error) {
	if m.listFn != nil {
		return m.listFn(ctx, organizationID)
	}
	return nil, nil
}

// --- Mock PlantRepository ---

type mockPlantRepo struct {
	getByIDFn      func(ctx context.Context, id string) (*domain.Plant, error)
	listByPlotFn   func(ctx context.Context, plotID string) ([]domain.Plant, error)
	findInBoundsFn func(ctx context.Context, b *domain.ViewportBounds, limit int) ([]domain.Plant, error)
}

func (m *mockPlantRepo) GetByID(ctx context.Context, id string) (*domain.Plant, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockPlantRepo) ListByPlot(ctx context.Context, plotID string) ([]domain.Plant, error) {
	if m.listByPlotFn != nil {
		return m.listByPlotFn(ctx, plotID)
	}
	return nil, nil
}

func (m *mockPlantRepo) FindInBounds(ctx context.Context, b *domain.ViewportBounds, limit int) ([]domain.Plant, error) {
	if m.findInBoundsFn != nil {
		return m.findInBoundsFn(ctx, b, limit)
	}
	return nil, nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu         sync.Mutex
	validated  []*ports.LocationEvent
	violations []*ports.AuditViolation
	broadcasts [][]byte
	err        error
}

func (m *mockPublisher) PublishLocationValidated(ctx context.Context, ev *ports.LocationEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validated = append(m.validated, ev)
	return m.err
}

func (m *mockPublisher) PublishAuditViolation(ctx context.Context, v *ports.AuditViolation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.violations = append(m.violations, v)
	return m.err
}

func (m *mockPublisher) PublishBroadcast(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broadcasts = append(m.broadcasts, data)
	return m.err
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.sets++
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Mock PlantQuery ---

type mockPlantQuery struct {
	fetchFn func(ctx context.Context, b *domain.ViewportBounds) ([]domain.Plant, error)
}

func (m *mockPlantQuery) FetchPlants(ctx context.Context, b *domain.ViewportBounds) ([]domain.Plant, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, b)
	}
	return nil, nil
}
