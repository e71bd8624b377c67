package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/farmmap/internal/adapters/nats"
	"github.com/samirrijal/farmmap/internal/adapters/postgres"
	"github.com/samirrijal/farmmap/internal/core/ports"
	"github.com/samirrijal/farmmap/internal/core/usecases"
	"github.com/samirrijal/farmmap/internal/pkg/config"
	"github.com/samirrijal/farmmap/internal/pkg/logging"
	"github.com/samirrijal/farmmap/internal/workflows"
)

// Usage:
//
//	auditor              run the worker
//	auditor run <domain> start one audit and wait for its report
func main() {
	cfg, err := config.Load("farmmap-auditor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(slog.Default()),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	if len(os.Args) == 3 && os.Args[1] == "run" {
		startAudit(c, cfg.Temporal.TaskQueue, os.Args[2])
		return
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	var events ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, violations will not be published", "error", err)
	} else {
		defer pub.Close()
		events = pub
	}

	audit := usecases.NewAuditService(
		postgres.NewDomainRepo(db),
		postgres.NewPlotRepo(db),
		postgres.NewPlantRepo(db),
		events,
	)

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.ContainmentAuditWorkflow)
	w.RegisterActivity(&workflows.AuditActivities{Audit: audit})

	slog.Info("auditor worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}

func startAudit(c client.Client, queue, domainID string) {
	ctx := context.Background()
	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        "containment-audit-" + domainID,
		TaskQueue: queue,
	}, workflows.ContainmentAuditWorkflow, workflows.AuditInput{DomainID: domainID})
	if err != nil {
		log.Fatalf("start audit: %v", err)
	}

	var report usecases.AuditReport
	if err := run.Get(ctx, &report); err != nil {
		log.Fatalf("audit %s: %v", run.GetRunID(), err)
	}
	slog.Info("audit finished",
		"domain_id", report.DomainID,
		"checked", report.Checked,
		"violations", len(report.Violations),
		"unvalidated", report.Unvalidated,
	)
}
