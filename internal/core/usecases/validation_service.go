package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/farmmap/internal/core/domain"
	"github.com/samirrijal/farmmap/internal/core/ports"
	"github.com/samirrijal/farmmap/internal/pkg/logging"
	"github.com/samirrijal/farmmap/internal/pkg/metrics"
	"github.com/samirrijal/farmmap/internal/pkg/telemetry"
)

// ValidateRequest asks whether Candidate is an acceptable location for a new
// or edited entity at Level. DomainID is required for plots, PlotID for
// plants. ExcludeID is the entity being edited, left out of the sibling sum.
type ValidateRequest struct {
	Level     domain.Level    `json:"level"`
	Candidate domain.GeoPoint `json:"candidate"`
	DomainID  string          `json:"domain_id,omitempty"`
	PlotID    string          `json:"plot_id,omitempty"`
	ExcludeID string          `json:"exclude_id,omitempty"`
}

// UnmarshalJSON accepts expanded parent references, as sent by pickers that
// hold populated records, and reduces them to their ids.
func (r *ValidateRequest) UnmarshalJSON(b []byte) error {
	var wire struct {
		Level     domain.Level    `json:"level"`
		Candidate domain.GeoPoint `json:"candidate"`
		DomainID  domain.Ref      `json:"domain_id"`
		PlotID    domain.Ref      `json:"plot_id"`
		ExcludeID domain.Ref      `json:"exclude_id"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	*r = ValidateRequest{
		Level:     wire.Level,
		Candidate: wire.Candidate,
		DomainID:  string(wire.DomainID),
		PlotID:    string(wire.PlotID),
		ExcludeID: string(wire.ExcludeID),
	}
	return nil
}

// ValidationService resolves parent context from storage and runs the
// containment check against it.
type ValidationService struct {
	domains   ports.DomainRepository
	plots     ports.PlotRepository
	validator *HierarchyValidator
	events    ports.EventPublisher
}

// NewValidationService creates a new ValidationService. events may be nil.
func NewValidationService(domains ports.DomainRepository, plots ports.PlotRepository, events ports.EventPublisher) *ValidationService {
	return &ValidationService{
		domains:   domains,
		plots:     plots,
		validator: NewHierarchyValidator(),
		events:    events,
	}
}

// Validate checks req. Storage failures are returned as errors; a placement
// outside the allowed zone is a result with Valid=false.
func (s *ValidationService) Validate(ctx context.Context, req ValidateRequest) (_ domain.ValidationResult, err error) {
	ctx, span := telemetry.Start(ctx, telemetry.SpanLocationValidate, trace.WithAttributes(attribute.String("location.level", string(req.Level))))
	defer func() { telemetry.End(span, err) }()

	parent, parentID, err := s.ParentContext(ctx, req)
	if err != nil {
		return domain.ValidationResult{}, err
	}

	res, err := s.validator.ValidateLocation(ctx, req.Level, req.Candidate, parent)
	if err != nil {
		return domain.ValidationResult{}, err
	}
	metrics.LocationValidations.WithLabelValues(string(res.Level), string(res.Outcome)).Inc()

	if s.events != nil {
		ev := &ports.LocationEvent{
			Level:    req.Level,
			EntityID: req.ExcludeID,
			ParentID: parentID,
			Point:    req.Candidate,
			Result:   res,
		}
		if err := s.events.PublishLocationValidated(ctx, ev); err != nil {
			logging.LoggerFromCtx(ctx).Warn("publish location event failed", slog.String("error", err.Error()))
		}
	}
	return res, nil
}

// ParentContext loads the reference point and, for plots, the sibling plots
// of the candidate's parent. It returns the parent id alongside.
func (s *ValidationService) ParentContext(ctx context.Context, req ValidateRequest) (domain.ParentContext, string, error) {
	switch req.Level {
	case domain.LevelDomain:
		return domain.ParentContext{}, "", nil

	case domain.LevelPlot:
		if req.DomainID == "" {
			return domain.ParentContext{}, "", fmt.Errorf("%w: domain_id is required for plot validation", domain.ErrMissingParent)
		}
		d, err := s.domains.GetByID(ctx, req.DomainID)
		if err != nil {
			return domain.ParentContext{}, "", fmt.Errorf("load domain %s: %w", req.DomainID, err)
		}
		siblings, err := s.plots.ListByDomain(ctx, req.DomainID)
		if err != nil {
			return domain.ParentContext{}, "", fmt.Errorf("load plots of domain %s: %w", req.DomainID, err)
		}
		if req.ExcludeID != "" {
			siblings = withoutPlot(siblings, req.ExcludeID)
		}
		return domain.ParentContext{Center: d.Location, Siblings: siblings}, d.ID, nil

	case domain.LevelPlant:
		if req.PlotID == "" {
			return domain.ParentContext{}, "", fmt.Errorf("%w: plot_id is required for plant validation", domain.ErrMissingParent)
		}
		p, err := s.plots.GetByID(ctx, req.PlotID)
		if err != nil {
			return domain.ParentContext{}, "", fmt.Errorf("load plot %s: %w", req.PlotID, err)
		}
		return domain.ParentContext{Center: p.Location}, p.ID, nil
	}
	return domain.ParentContext{}, "", fmt.Errorf("%w: %q", domain.ErrInvalidLevel, req.Level)
}

func withoutPlot(plots []domain.Plot, id string) []domain.Plot {
	out := make([]domain.Plot, 0, len(plots))
	for _, p := range plots {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}
