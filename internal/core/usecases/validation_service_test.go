package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/farmmap/internal/core/domain"
	"github.com/samirrijal/farmmap/internal/core/usecases"
)

func TestValidationService_PlotExcludesEditedPlot(t *testing.T) {
	center := domain.Phase1Center
	domains := &mockDomainRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Domain, error) {
			return &domain.Domain{ID: id, Location: &center}, nil
		},
	}
	plots := &mockPlotRepo{
		listByDomainFn: func(ctx context.Context, domainID string) ([]domain.Plot, error) {
			if domainID != "d1" {
				t.Errorf("expected domain d1, got %s", domainID)
			}
			return []domain.Plot{
				{ID: "p1", AreaSqFt: domain.Float64(20000)},
				{ID: "p2", AreaSqFt: domain.Float64(9_000_000)},
			}, nil
		},
	}
	pub := &mockPublisher{}
	svc := usecases.NewValidationService(domains, plots, pub)

	// p2 is being moved; without it the radius is ≈24 m, so 200 m fails.
	candidate := domain.GeoPoint{Lat: center.Lat + 0.0018, Lon: center.Lon}
	res, err := svc.Validate(context.Background(), usecases.ValidateRequest{
		Level:     domain.LevelPlot,
		Candidate: candidate,
		DomainID:  "d1",
		ExcludeID: "p2",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Valid {
		t.Fatalf("expected rejection, got %+v", res)
	}

	if len(pub.validated) != 1 {
		t.Fatalf("expected one published event, got %d", len(pub.validated))
	}
	ev := pub.validated[0]
	if ev.ParentID != "d1" || ev.EntityID != "p2" || ev.Result.Outcome != domain.OutcomeRejected {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestValidationService_PlotWithSiblingsIncluded(t *testing.T) {
	center := domain.Phase1Center
	svc := usecases.NewValidationService(
		&mockDomainRepo{getByIDFn: func(ctx context.Context, id string) (*domain.Domain, error) {
			return &domain.Domain{ID: id, Location: &center}, nil
		}},
		&mockPlotRepo{listByDomainFn: func(ctx context.Context, domainID string) ([]domain.Plot, error) {
			return []domain.Plot{{ID: "p2", AreaSqFt: domain.Float64(9_000_000)}}, nil
		}},
		nil,
	)

	res, err := svc.Validate(context.Background(), usecases.ValidateRequest{
		Level:     domain.LevelPlot,
		Candidate: domain.GeoPoint{Lat: center.Lat + 0.0018, Lon: center.Lon},
		DomainID:  "d1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Valid || res.RadiusSource != domain.RadiusArea {
		t.Errorf("expected area-derived pass, got %+v", res)
	}
}

func TestValidationService_PlantUsesPlotCenter(t *testing.T) {
	plotCenter := domain.GeoPoint{Lat: 12.69, Lon: 78.06}
	plots := &mockPlotRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Plot, error) {
			return &domain.Plot{ID: id, Location: &plotCenter}, nil
		},
	}
	svc := usecases.NewValidationService(&mockDomainRepo{}, plots, nil)

	res, err := svc.Validate(context.Background(), usecases.ValidateRequest{
		Level:     domain.LevelPlant,
		Candidate: plotCenter,
		PlotID:    "p1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Valid || res.Outcome != domain.OutcomeValidated {
		t.Errorf("expected validated plant, got %+v", res)
	}
}

func TestValidationService_PlotWithoutDomainLocation(t *testing.T) {
	svc := usecases.NewValidationService(
		&mockDomainRepo{getByIDFn: func(ctx context.Context, id string) (*domain.Domain, error) {
			return &domain.Domain{ID: id}, nil
		}},
		&mockPlotRepo{},
		nil,
	)

	res, err := svc.Validate(context.Background(), usecases.ValidateRequest{
		Level:     domain.LevelPlot,
		Candidate: domain.GeoPoint{Lat: 1, Lon: 1},
		DomainID:  "d1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != domain.OutcomeUnvalidated || !res.Valid {
		t.Errorf("expected unvalidated pass, got %+v", res)
	}
}

func TestValidationService_Errors(t *testing.T) {
	svc := usecases.NewValidationService(&mockDomainRepo{}, &mockPlotRepo{}, nil)
	ctx := context.Background()

	if _, err := svc.Validate(ctx, usecases.ValidateRequest{Level: domain.LevelPlot}); err == nil {
		t.Error("expected error for missing domain_id")
	}
	if _, err := svc.Validate(ctx, usecases.ValidateRequest{Level: domain.LevelPlant}); err == nil {
		t.Error("expected error for missing plot_id")
	}

	_, err := svc.Validate(ctx, usecases.ValidateRequest{Level: domain.LevelPlant, PlotID: "missing"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected wrapped ErrNotFound, got %v", err)
	}
}

func TestValidationService_PublishFailureIsNotFatal(t *testing.T) {
	pub := &mockPublisher{err: errors.New("nats down")}
	svc := usecases.NewValidationService(&mockDomainRepo{}, &mockPlotRepo{}, pub)

	res, err := svc.Validate(context.Background(), usecases.ValidateRequest{
		Level:     domain.LevelDomain,
		Candidate: domain.Phase1Center,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Valid {
		t.Errorf("expected valid domain, got %+v", res)
	}
}
