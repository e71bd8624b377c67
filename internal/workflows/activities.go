package workflows

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/activity"

	"github.com/samirrijal/farmmap/internal/core/ports"
	"github.com/samirrijal/farmmap/internal/core/usecases"
)

// PlotAudit is the result of the AuditPlots activity.
type PlotAudit struct {
	Result  usecases.AuditResult
	PlotIDs []string
}

// AuditActivities holds the activity implementations for the containment audit workflow.
type AuditActivities struct {
	Audit *usecases.AuditService
}

// AuditDomainLocation checks the domain's own coordinates.
func (a *AuditActivities) AuditDomainLocation(ctx context.Context, domainID string) (usecases.AuditResult, error) {
	res, err := a.Audit.CheckDomain(ctx, domainID)
	if err != nil {
		return usecases.AuditResult{}, fmt.Errorf("audit domain %s: %w", domainID, err)
	}
	return res, nil
}

// AuditPlots checks every plot of a domain and returns their ids for the
// per-plot plant audits.
func (a *AuditActivities) AuditPlots(ctx context.Context, domainID string) (PlotAudit, error) {
	res, ids, err := a.Audit.CheckPlots(ctx, domainID)
	if err != nil {
		return PlotAudit{}, fmt.Errorf("audit plots of %s: %w", domainID, err)
	}
	return PlotAudit{Result: res, PlotIDs: ids}, nil
}

// AuditPlants checks every plant of one plot.
func (a *AuditActivities) AuditPlants(ctx context.Context, domainID, plotID string) (usecases.AuditResult, error) {
	res, err := a.Audit.CheckPlants(ctx, domainID, plotID)
	if err != nil {
		return usecases.AuditResult{}, fmt.Errorf("audit plants of %s: %w", plotID, err)
	}
	return res, nil
}

// PublishViolations emits the violations found over the message broker.
func (a *AuditActivities) PublishViolations(ctx context.Context, violations []ports.AuditViolation) error {
	activity.GetLogger(ctx).Info("Publishing audit violations", "count", len(violations))
	return a.Audit.Publish(ctx, violations)
}
