package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/farmmap/internal/core/usecases"
)

// TaskQueue is the Temporal task queue served by the auditor worker.
const TaskQueue = "containment-audit"

// AuditInput is the input for the containment audit workflow.
type AuditInput struct {
	DomainID string
}

// ContainmentAuditWorkflow re-validates a domain, its plots and their plants
// against the current containment rules, then publishes the violations.
// Plant audits run in parallel, one activity per plot.
func ContainmentAuditWorkflow(ctx workflow.Context, input AuditInput) (usecases.AuditReport, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting containment audit", "domainID", input.DomainID)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	report := usecases.AuditReport{DomainID: input.DomainID}

	// Step 1: Domain location
	var res usecases.AuditResult
	if err := workflow.ExecuteActivity(ctx, "AuditDomainLocation", input.DomainID).Get(ctx, &res); err != nil {
		return report, err
	}
	report.Add(res)

	// Step 2: Plots against their sibling area
	var plots PlotAudit
	if err := workflow.ExecuteActivity(ctx, "AuditPlots", input.DomainID).Get(ctx, &plots); err != nil {
		return report, err
	}
	report.Add(plots.Result)

	// Step 3: Plants, fanned out per plot
	futures := make([]workflow.Future, 0, len(plots.PlotIDs))
	for _, id := range plots.PlotIDs {
		futures = append(futures, workflow.ExecuteActivity(ctx, "AuditPlants", input.DomainID, id))
	}
	for _, f := range futures {
		var pr usecases.AuditResult
		if err := f.Get(ctx, &pr); err != nil {
			return report, err
		}
		report.Add(pr)
	}

	// Step 4: Publish
	if len(report.Violations) > 0 {
		if err := workflow.ExecuteActivity(ctx, "PublishViolations", report.Violations).Get(ctx, nil); err != nil {
			logger.Warn("publishing violations failed", "error", err)
			return report, err
		}
	}

	report.FinishedAt = workflow.Now(ctx)
	logger.Info("Containment audit finished", "checked", report.Checked, "violations", len(report.Violations))
	return report, nil
}
