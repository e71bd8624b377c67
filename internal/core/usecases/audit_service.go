package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samirrijal/farmmap/internal/core/domain"
	"github.com/samirrijal/farmmap/internal/core/ports"
	"github.com/samirrijal/farmmap/internal/pkg/logging"
	"github.com/samirrijal/farmmap/internal/pkg/metrics"
	"github.com/samirrijal/farmmap/internal/pkg/telemetry"
)

// AuditResult summarises the re-validation of a batch of stored entities.
type AuditResult struct {
	Checked     int                    `json:"checked"`
	Unvalidated int                    `json:"unvalidated"`
	Violations  []ports.AuditViolation `json:"violations"`
}

// Add folds o into r.
func (r *AuditResult) Add(o AuditResult) {
	r.Checked += o.Checked
	r.Unvalidated += o.Unvalidated
	r.Violations = append(r.Violations, o.Violations...)
}

// AuditReport is the outcome of auditing one domain.
type AuditReport struct {
	DomainID string `json:"domain_id"`
	AuditResult
	FinishedAt time.Time `json:"finished_at"`
}

// AuditService re-checks stored domains, plots and plants against the
// containment rules in force now. Rules depend on sibling areas, so entities
// that were valid when placed can drift out of their zone.
type AuditService struct {
	domains   ports.DomainRepository
	plots     ports.PlotRepository
	plants    ports.PlantRepository
	events    ports.EventPublisher
	validator *HierarchyValidator
}

// NewAuditService creates a new AuditService. events may be nil.
func NewAuditService(domains ports.DomainRepository, plots ports.PlotRepository, plants ports.PlantRepository, events ports.EventPublisher) *AuditService {
	return &AuditService{
		domains:   domains,
		plots:     plots,
		plants:    plants,
		events:    events,
		validator: NewHierarchyValidator(),
	}
}

// CheckDomain validates the domain's own location against the Phase 1 center.
func (s *AuditService) CheckDomain(ctx context.Context, domainID string) (AuditResult, error) {
	d, err := s.domains.GetByID(ctx, domainID)
	if err != nil {
		return AuditResult{}, fmt.Errorf("load domain %s: %w", domainID, err)
	}
	var res AuditResult
	if d.Location == nil {
		return res, nil
	}
	if err := s.check(ctx, &res, domain.LevelDomain, domainID, d.ID, d.Name, *d.Location, domain.ParentContext{}); err != nil {
		return AuditResult{}, err
	}
	return res, nil
}

// CheckPlots validates every plot of a domain, each against the area of its
// siblings, and returns the ids of the plots checked.
func (s *AuditService) CheckPlots(ctx context.Context, domainID string) (AuditResult, []string, error) {
	d, err := s.domains.GetByID(ctx, domainID)
	if err != nil {
		return AuditResult{}, nil, fmt.Errorf("load domain %s: %w", domainID, err)
	}
	plots, err := s.plots.ListByDomain(ctx, domainID)
	if err != nil {
		return AuditResult{}, nil, fmt.Errorf("load plots of domain %s: %w", domainID, err)
	}

	var res AuditResult
	ids := make([]string, 0, len(plots))
	for _, p := range plots {
		ids = append(ids, p.ID)
		if p.Location == nil {
			continue
		}
		parent := domain.ParentContext{Center: d.Location, Siblings: withoutPlot(plots, p.ID)}
		if err := s.check(ctx, &res, domain.LevelPlot, domainID, p.ID, p.Name, *p.Location, parent); err != nil {
			return AuditResult{}, nil, err
		}
	}
	return res, ids, nil
}

// CheckPlants validates every plant of a plot against the plot center.
func (s *AuditService) CheckPlants(ctx context.Context, domainID, plotID string) (AuditResult, error) {
	p, err := s.plots.GetByID(ctx, plotID)
	if err != nil {
		return AuditResult{}, fmt.Errorf("load plot %s: %w", plotID, err)
	}
	plants, err := s.plants.ListByPlot(ctx, plotID)
	if err != nil {
		return AuditResult{}, fmt.Errorf("load plants of plot %s: %w", plotID, err)
	}

	var res AuditResult
	parent := domain.ParentContext{Center: p.Location}
	for _, pl := range plants {
		if pl.Location == nil {
			continue
		}
		if err := s.check(ctx, &res, domain.LevelPlant, domainID, pl.ID, pl.Name, *pl.Location, parent); err != nil {
			return AuditResult{}, err
		}
	}
	return res, nil
}

// Publish emits each violation as an event.
func (s *AuditService) Publish(ctx context.Context, violations []ports.AuditViolation) error {
	if s.events == nil {
		return nil
	}
	for i := range violations {
		if err := s.events.PublishAuditViolation(ctx, &violations[i]); err != nil {
			return fmt.Errorf("publish violation %s: %w", violations[i].EntityID, err)
		}
	}
	return nil
}

// AuditDomain runs every check for one domain in-process and publishes the
// violations found.
func (s *AuditService) AuditDomain(ctx context.Context, domainID string, now time.Time) (_ *AuditReport, err error) {
	ctx, span := telemetry.Start(ctx, telemetry.SpanContainmentAudit)
	defer func() { telemetry.End(span, err) }()

	report := &AuditReport{DomainID: domainID}

	res, err := s.CheckDomain(ctx, domainID)
	if err != nil {
		return nil, err
	}
	report.Add(res)

	res, plotIDs, err := s.CheckPlots(ctx, domainID)
	if err != nil {
		return nil, err
	}
	report.Add(res)

	for _, id := range plotIDs {
		res, err := s.CheckPlants(ctx, domainID, id)
		if err != nil {
			return nil, err
		}
		report.Add(res)
	}

	if err := s.Publish(ctx, report.Violations); err != nil {
		return nil, err
	}
	report.FinishedAt = now
	logging.LoggerFromCtx(ctx).Info("containment audit finished",
		slog.String("domain_id", domainID),
		slog.Int("checked", report.Checked),
		slog.Int("violations", len(report.Violations)),
		slog.Int("unvalidated", report.Unvalidated),
	)
	return report, nil
}

func (s *AuditService) check(ctx context.Context, res *AuditResult, level domain.Level, domainID, id, name string, loc domain.GeoPoint, parent domain.ParentContext) error {
	vr, err := s.validator.ValidateLocation(ctx, level, loc, parent)
	switch {
	case errors.Is(err, domain.ErrInvalidLocation):
		vr = domain.ValidationResult{
			Outcome:      domain.OutcomeRejected,
			Level:        level,
			ErrorMessage: fmt.Sprintf("Stored coordinates %v are out of range.", loc),
		}
	case err != nil:
		return fmt.Errorf("validate %s %s: %w", level, id, err)
	}
	res.Checked++
	switch vr.Outcome {
	case domain.OutcomeUnvalidated:
		res.Unvalidated++
	case domain.OutcomeRejected:
		metrics.AuditViolations.WithLabelValues(string(level)).Inc()
		res.Violations = append(res.Violations, ports.AuditViolation{
			DomainID: domainID,
			Level:    level,
			EntityID: id,
			Name:     name,
			Result:   vr,
		})
	}
	return nil
}
