package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/farmmap/internal/adapters/http"
	"github.com/samirrijal/farmmap/internal/adapters/memcache"
	natsadapter "github.com/samirrijal/farmmap/internal/adapters/nats"
	"github.com/samirrijal/farmmap/internal/adapters/postgres"
	"github.com/samirrijal/farmmap/internal/adapters/valkey"
	"github.com/samirrijal/farmmap/internal/core/domain"
	"github.com/samirrijal/farmmap/internal/core/ports"
	"github.com/samirrijal/farmmap/internal/core/usecases"
	"github.com/samirrijal/farmmap/internal/pkg/config"
	"github.com/samirrijal/farmmap/internal/pkg/logging"
	"github.com/samirrijal/farmmap/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("farmmap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go db.ReportPoolStats(ctx, 15*time.Second)

	// Cache: valkey, or process memory when valkey is disabled or down
	var cache ports.CacheService
	if !cfg.Valkey.Disabled {
		vc, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable, using in-process cache", "error", err)
		} else {
			defer vc.Close()
			cache = vc
		}
	}
	if cache == nil {
		cache = memcache.New(time.Minute)
	}

	// NATS
	var events ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		events = pub
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Repos
	domainRepo := postgres.NewDomainRepo(db)
	plotRepo := postgres.NewPlotRepo(db)
	plantRepo := postgres.NewPlantRepo(db)

	// Use cases
	plantSvc := usecases.NewPlantService(plantRepo, cache, cfg.Map.PlantLimit)
	clusters := usecases.NewClusterAggregator(cfg.Map.ClusterRadiusPx, cfg.Map.ClusterMaxZoom)

	deps := &http.Dependencies{
		Domains:    usecases.NewDomainService(domainRepo, cache),
		Plots:      usecases.NewPlotService(plotRepo, cache),
		Plants:     plantSvc,
		Map:        usecases.NewMapService(domainRepo, plotRepo, plantRepo, cfg.Map.Zoom, clusters, cfg.Map.PlantLimit),
		Validation: usecases.NewValidationService(domainRepo, plotRepo, events),
		NATS:       natsConn,
		DB:         db,
		Cache:      cache,
	}

	// Drop cached plants whose location was re-validated elsewhere
	if sub, err := natsadapter.NewSubscriber(cfg.NATS.URL); err != nil {
		slog.Warn("nats subscriber unavailable", "error", err)
	} else {
		defer sub.Close()
		err := sub.SubscribeLocationValidated(ctx, func(ctx context.Context, ev *ports.LocationEvent) error {
			if ev.Level != domain.LevelPlant || ev.EntityID == "" {
				return nil
			}
			return plantSvc.Invalidate(ctx, ev.EntityID)
		})
		if err != nil {
			slog.Warn("location subscription failed", "error", err)
		}
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Farm Map API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
