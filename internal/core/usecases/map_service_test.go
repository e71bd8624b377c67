package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/farmmap/internal/core/domain"
	"github.com/samirrijal/farmmap/internal/core/usecases"
)

func heldFarm() usecases.RenderRequest {
	return usecases.RenderRequest{
		Domains: []domain.Domain{
			{ID: "d1", OrganizationID: "o1", Name: "North", Location: domain.NewPoint(12.69, 78.06)},
			{ID: "d2", OrganizationID: "o2", Name: "South", Location: domain.NewPoint(12.60, 78.00)},
		},
		Plots: []domain.Plot{
			{ID: "p1", DomainID: "d1", OrganizationID: "o1", Name: "Orchard", Location: domain.NewPoint(12.691, 78.061)},
			{ID: "p2", DomainID: "d2", OrganizationID: "o2", Name: "Paddy", Location: domain.NewPoint(12.601, 78.001)},
		},
		Plants: []domain.Plant{
			{ID: "a", PlotID: "p1", DomainID: "d1", OrganizationID: "o1", Name: "Alphonso", Type: "Mango", Category: "fruit", Health: "good", Location: domain.NewPoint(12.6911, 78.0611)},
			{ID: "b", PlotID: "p1", DomainID: "d1", OrganizationID: "o1", Name: "Tulsi", Category: "herb", Health: "poor", Location: domain.NewPoint(12.6912, 78.0612)},
			{ID: "c", PlotID: "p2", DomainID: "d2", OrganizationID: "o2", Name: "Ponni", Type: "Rice", Category: "grain", Location: domain.NewPoint(12.6011, 78.0011)},
		},
	}
}

func newRenderer() *usecases.MapService {
	return usecases.NewMapService(nil, nil, nil, domain.DefaultZoomThresholds, nil, 0)
}

func TestRender_ZoomGating(t *testing.T) {
	svc := newRenderer()
	req := heldFarm()

	tests := []struct {
		zoom                   float64
		domains, plots, plants int
	}{
		{10, 2, 0, 0},
		{12, 2, 2, 0},
		{14.9, 2, 2, 0},
		{15, 2, 2, 3},
	}
	for _, tt := range tests {
		req.Zoom = tt.zoom
		out, err := svc.Render(req)
		if err != nil {
			t.Fatalf("zoom %v: unexpected error: %v", tt.zoom, err)
		}
		if len(out.Domains.Features) != tt.domains || len(out.Plots.Features) != tt.plots || len(out.Plants.Features) != tt.plants {
			t.Errorf("zoom %v: got %d/%d/%d, want %d/%d/%d", tt.zoom,
				len(out.Domains.Features), len(out.Plots.Features), len(out.Plants.Features),
				tt.domains, tt.plots, tt.plants)
		}
	}
}

func TestRender_FilterForcesClasses(t *testing.T) {
	svc := newRenderer()
	req := heldFarm()
	req.Zoom = 10
	req.Filters = domain.FilterState{DomainID: "d1"}

	out, err := svc.Render(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Domains.Features) != 1 || out.Domains.Features[0].ID != "domain:d1" {
		t.Errorf("unexpected domains %+v", out.Domains.Features)
	}
	if len(out.Plots.Features) != 1 || out.Plots.Features[0].ID != "plot:p1" {
		t.Errorf("expected forced plot p1, got %+v", out.Plots.Features)
	}
	if len(out.Plants.Features) != 2 {
		t.Errorf("expected both plants of d1, got %d", len(out.Plants.Features))
	}
}

func TestRender_AttributeFilters(t *testing.T) {
	svc := newRenderer()
	tests := []struct {
		name    string
		filters domain.FilterState
		want    []string
	}{
		{"category", domain.FilterState{Category: "FRUIT"}, []string{"plant:a"}},
		{"health", domain.FilterState{Health: "poor"}, []string{"plant:b"}},
		{"search by type", domain.FilterState{Search: "rice"}, []string{"plant:c"}},
		{"organization", domain.FilterState{OrganizationID: "o1"}, []string{"plant:a", "plant:b"}},
		{"plot", domain.FilterState{PlotID: "p2"}, []string{"plant:c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := heldFarm()
			req.Zoom = 16
			req.Filters = tt.filters
			out, err := svc.Render(req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var got []string
			for _, f := range out.Plants.Features {
				got = append(got, f.ID)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestRender_BoundsAndClustering(t *testing.T) {
	svc := newRenderer()
	req := heldFarm()
	req.Zoom = 15
	req.Bounds = &domain.ViewportBounds{
		SW: domain.GeoPoint{Lat: 12.68, Lon: 78.05},
		NE: domain.GeoPoint{Lat: 12.70, Lon: 78.07},
	}
	req.Cluster = true

	out, err := svc.Render(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Domains.Features) != 1 || len(out.Plots.Features) != 1 {
		t.Errorf("expected only the northern domain and plot, got %d/%d", len(out.Domains.Features), len(out.Plots.Features))
	}
	if len(out.Clusters.Features) != 1 || len(out.Plants.Features) != 0 {
		t.Errorf("expected the two northern plants clustered, got %d clusters %d plants",
			len(out.Clusters.Features), len(out.Plants.Features))
	}
}

func TestMapService_FeaturesLoadsOnlyVisibleClasses(t *testing.T) {
	farm := heldFarm()
	plantsCalled := false
	svc := usecases.NewMapService(
		&mockDomainRepo{listFn: func(ctx context.Context, org string) ([]domain.Domain, error) { return farm.Domains, nil }},
		&mockPlotRepo{listFn: func(ctx context.Context, org string) ([]domain.Plot, error) { return farm.Plots, nil }},
		&mockPlantRepo{findInBoundsFn: func(ctx context.Context, b *domain.ViewportBounds, limit int) ([]domain.Plant, error) {
			plantsCalled = true
			return farm.Plants, nil
		}},
		domain.DefaultZoomThresholds, nil, 100,
	)

	out, err := svc.Features(context.Background(), usecases.FeaturesQuery{Zoom: 13})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plantsCalled {
		t.Error("plants must not be loaded below the plant threshold")
	}
	if len(out.Plots.Features) != 2 || len(out.Plants.Features) != 0 {
		t.Errorf("unexpected output %d plots %d plants", len(out.Plots.Features), len(out.Plants.Features))
	}
}

func TestMapService_ExpandCluster(t *testing.T) {
	farm := heldFarm()
	svc := usecases.NewMapService(
		&mockDomainRepo{listFn: func(ctx context.Context, org string) ([]domain.Domain, error) { return farm.Domains, nil }},
		&mockPlotRepo{listFn: func(ctx context.Context, org string) ([]domain.Plot, error) { return farm.Plots, nil }},
		&mockPlantRepo{findInBoundsFn: func(ctx context.Context, b *domain.ViewportBounds, limit int) ([]domain.Plant, error) {
			if limit != 100 {
				t.Errorf("limit = %d", limit)
			}
			return farm.Plants, nil
		}},
		domain.DefaultZoomThresholds, nil, 100,
	)
	q := usecases.FeaturesQuery{Zoom: 15, Cluster: true}
	out, err := svc.Features(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Clusters.Features) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(out.Clusters.Features))
	}

	children, err := svc.ExpandCluster(context.Background(), q, out.Clusters.Features[0].ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(children) != 2 {
		t.Errorf("expected 2 children, got %d", len(children))
	}

	_, err = svc.ExpandCluster(context.Background(), q, "cluster:nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMapService_FeaturesRejectsBadBounds(t *testing.T) {
	svc := usecases.NewMapService(&mockDomainRepo{}, &mockPlotRepo{}, &mockPlantRepo{}, domain.DefaultZoomThresholds, nil, 0)
	bad := &domain.ViewportBounds{SW: domain.GeoPoint{Lat: 20}, NE: domain.GeoPoint{Lat: 10}}
	_, err := svc.Features(context.Background(), usecases.FeaturesQuery{Bounds: bad, Zoom: 15})
	if !errors.Is(err, domain.ErrInvalidBounds) {
		t.Errorf("expected ErrInvalidBounds, got %v", err)
	}
}
