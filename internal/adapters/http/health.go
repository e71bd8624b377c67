package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/farmmap/internal/core/domain"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

const readyCheckKey = "farmmap:ready-check"

// HealthHandler is the liveness check. It never touches collaborators.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).Round(time.Second).String(),
			"version": Version,
		})
	}
}

// dependencyCheck checks one collaborator. A nil check means the
// collaborator is not configured; that only fails readiness when required.
type dependencyCheck struct {
	name     string
	required bool
	check    func(ctx context.Context) error
}

func readinessChecks(deps *Dependencies) []dependencyCheck {
	checks := []dependencyCheck{{name: "database", required: true}, {name: "nats"}, {name: "cache"}}
	if deps.DB != nil {
		checks[0].check = func(ctx context.Context) error { return deps.DB.Pool.Ping(ctx) }
	}
	if deps.NATS != nil {
		checks[1].check = func(context.Context) error {
			if !deps.NATS.IsConnected() {
				return errors.New("disconnected")
			}
			return nil
		}
	}
	if deps.Cache != nil {
		checks[2].check = func(ctx context.Context) error {
			_, err := deps.Cache.Get(ctx, readyCheckKey)
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			return err
		}
	}
	return checks
}

// ReadyHandler reports 503 until the plant store answers and every
// configured collaborator is reachable.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string)
		ready := true
		for _, p := range readinessChecks(deps) {
			switch {
			case p.check == nil:
				checks[p.name] = "not configured"
				ready = ready && !p.required
			default:
				if err := p.check(ctx); err != nil {
					checks[p.name] = "error: " + err.Error()
					ready = false
				} else {
					checks[p.name] = "ok"
				}
			}
		}

		if !ready {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "not ready", "checks": checks})
		}
		return c.JSON(fiber.Map{"status": "ready", "checks": checks})
	}
}
