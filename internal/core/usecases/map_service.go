package usecases

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/samirrijal/farmmap/internal/core/domain"
	"github.com/samirrijal/farmmap/internal/core/ports"
	"github.com/samirrijal/farmmap/internal/pkg/geospatial"
	"github.com/samirrijal/farmmap/internal/pkg/telemetry"
)

// RenderRequest is the held data and view state to render.
type RenderRequest struct {
	Domains []domain.Domain
	Plots   []domain.Plot
	Plants  []domain.Plant
	// Bounds limits output to the buffered viewport; nil renders everything.
	Bounds  *domain.ViewportBounds
	Zoom    float64
	Filters domain.FilterState
	Cluster bool
}

// FeaturesQuery asks the server to load and render one viewport.
type FeaturesQuery struct {
	Bounds  *domain.ViewportBounds
	Zoom    float64
	Filters domain.FilterState
	Cluster bool
}

// MapService turns held entities into the feature sets the map draws.
type MapService struct {
	domains    ports.DomainRepository
	plots      ports.PlotRepository
	plants     ports.PlantRepository
	thresholds domain.ZoomThresholds
	clusters   *ClusterAggregator
	plantLimit int
}

// NewMapService creates a new MapService. Repositories are only needed by
// Features and ExpandCluster.
func NewMapService(domains ports.DomainRepository, plots ports.PlotRepository, plants ports.PlantRepository,
	thresholds domain.ZoomThresholds, clusters *ClusterAggregator, plantLimit int) *MapService {
	if clusters == nil {
		clusters = NewClusterAggregator(0, 0)
	}
	if plantLimit <= 0 {
		plantLimit = 5000
	}
	return &MapService{
		domains:    domains,
		plots:      plots,
		plants:     plants,
		thresholds: thresholds,
		clusters:   clusters,
		plantLimit: plantLimit,
	}
}

// Thresholds returns the zoom gates in force.
func (s *MapService) Thresholds() domain.ZoomThresholds { return s.thresholds }

// PlotsVisible reports whether plots are drawn at zoom under filters.
func (s *MapService) PlotsVisible(zoom float64, f domain.FilterState) bool {
	return zoom >= s.thresholds.ShowPlots || f.ForcesPlots()
}

// PlantsVisible reports whether plants are drawn at zoom under filters.
func (s *MapService) PlantsVisible(zoom float64, f domain.FilterState) bool {
	return zoom >= s.thresholds.ShowPlants || f.ForcesPlants()
}

// Render filters, gates and converts the held entities.
func (s *MapService) Render(req RenderRequest) (domain.MapFeatures, error) {
	out, _, err := s.render(req)
	return out, err
}

func (s *MapService) render(req RenderRequest) (domain.MapFeatures, ClusterSet, error) {
	out := domain.MapFeatures{
		Zoom:     req.Zoom,
		Domains:  domain.NewFeatureCollection(),
		Plots:    domain.NewFeatureCollection(),
		Plants:   domain.NewFeatureCollection(),
		Clusters: domain.NewFeatureCollection(),
	}
	f := req.Filters

	domains := filterSlice(req.Domains, f.MatchDomain)
	var plots []domain.Plot
	if s.PlotsVisible(req.Zoom, f) {
		plots = filterSlice(req.Plots, f.MatchPlot)
	}
	var plants []domain.Plant
	if s.PlantsVisible(req.Zoom, f) {
		plants = filterSlice(req.Plants, f.MatchPlant)
	}

	if req.Bounds != nil {
		domains = geospatial.FilterInBounds(domains, *req.Bounds)
		plots = geospatial.FilterInBounds(plots, *req.Bounds)
		plants = geospatial.FilterInBounds(plants, *req.Bounds)
	}

	out.Domains = BuildCollection(domain.KindDomain, domains)
	out.Plots = BuildCollection(domain.KindPlot, plots)
	out.Plants = BuildCollection(domain.KindPlant, plants)

	if !req.Cluster {
		return out, ClusterSet{}, nil
	}
	set, err := s.clusters.Cluster(out.Plants.Features, req.Zoom)
	if err != nil {
		return domain.MapFeatures{}, ClusterSet{}, fmt.Errorf("cluster plants: %w", err)
	}
	out.Plants = set.Points
	out.Clusters = set.Clusters
	return out, set, nil
}

// Features loads the entities visible in q from storage and renders them.
func (s *MapService) Features(ctx context.Context, q FeaturesQuery) (out domain.MapFeatures, err error) {
	ctx, span := telemetry.Start(ctx, telemetry.SpanMapFeatures,
		trace.WithAttributes(attribute.Float64("map.zoom", q.Zoom), attribute.Bool("map.cluster", q.Cluster)))
	defer func() { telemetry.End(span, err) }()

	req, err := s.load(ctx, q)
	if err != nil {
		return domain.MapFeatures{}, err
	}
	return s.Render(req)
}

// ExpandCluster re-renders q and returns the members of clusterID. Cluster
// ids are derived from their members, so the same query yields the same ids.
func (s *MapService) ExpandCluster(ctx context.Context, q FeaturesQuery, clusterID string) (_ []domain.PointFeature, err error) {
	ctx, span := telemetry.Start(ctx, telemetry.SpanClusterExpand, trace.WithAttributes(attribute.String("map.cluster_id", clusterID)))
	defer func() { telemetry.End(span, err) }()

	q.Cluster = true
	req, err := s.load(ctx, q)
	if err != nil {
		return nil, err
	}
	_, set, err := s.render(req)
	if err != nil {
		return nil, err
	}
	children, ok := set.Expand(clusterID)
	if !ok {
		return nil, fmt.Errorf("cluster %s: %w", clusterID, domain.ErrNotFound)
	}
	return children, nil
}

func (s *MapService) load(ctx context.Context, q FeaturesQuery) (RenderRequest, error) {
	if q.Bounds != nil {
		if err := q.Bounds.Validate(); err != nil {
			return RenderRequest{}, err
		}
	}
	req := RenderRequest{Bounds: q.Bounds, Zoom: q.Zoom, Filters: q.Filters, Cluster: q.Cluster}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		req.Domains, err = s.domains.List(gctx, q.Filters.OrganizationID)
		if err != nil {
			return fmt.Errorf("list domains: %w", err)
		}
		return nil
	})
	if s.PlotsVisible(q.Zoom, q.Filters) {
		g.Go(func() error {
			var err error
			if q.Filters.DomainID != "" {
				req.Plots, err = s.plots.ListByDomain(gctx, q.Filters.DomainID)
			} else {
				req.Plots, err = s.plots.List(gctx, q.Filters.OrganizationID)
			}
			if err != nil {
				return fmt.Errorf("list plots: %w", err)
			}
			return nil
		})
	}
	if s.PlantsVisible(q.Zoom, q.Filters) {
		g.Go(func() error {
			var err error
			if q.Filters.PlotID != "" {
				req.Plants, err = s.plants.ListByPlot(gctx, q.Filters.PlotID)
			} else {
				req.Plants, err = s.plants.FindInBounds(gctx, q.Bounds, s.plantLimit)
			}
			if err != nil {
				return fmt.Errorf("load plants: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return RenderRequest{}, err
	}
	return req, nil
}

func filterSlice[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
