package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/farmmap/internal/pkg/metrics"
)

// LegacyRoutes are the pre-v1 paths still served for old map clients.
var LegacyRoutes = []DeprecatedRoute{
	{
		Path:        "/api/plants/mapview",
		SunsetDate:  time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC),
		Alternative: "/v1/plants/mapview",
	},
}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // Balance speed vs compression ratio
	}))

	// Request ID
	app.Use(requestid.New())

	// Server spans, continuing inbound trace context
	app.Use(TracingMiddleware())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: map panning is bursty, allow 600 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        600,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, 429, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	app.Use(DeprecationMiddleware(LegacyRoutes))

	// Health & readiness (no timeout)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// REST API v1, 15s per-request timeout
	const reqTimeout = 15 * time.Second
	v1 := app.Group("/v1")
	v1.Get("/domains", timeout.NewWithContext(ListDomainsHandler(deps), reqTimeout))
	v1.Get("/domains/:id", timeout.NewWithContext(GetDomainHandler(deps), reqTimeout))
	v1.Get("/domains/:id/containment", timeout.NewWithContext(DomainContainmentHandler(deps), reqTimeout))
	v1.Get("/plots", timeout.NewWithContext(ListPlotsHandler(deps), reqTimeout))
	v1.Get("/plots/:id", timeout.NewWithContext(GetPlotHandler(deps), reqTimeout))
	v1.Get("/plots/:id/plants", timeout.NewWithContext(PlotPlantsHandler(deps), reqTimeout))
	v1.Get("/plants/mapview", timeout.NewWithContext(MapviewHandler(deps), reqTimeout))
	v1.Get("/plants/:id", timeout.NewWithContext(GetPlantHandler(deps), reqTimeout))
	v1.Get("/map/features", timeout.NewWithContext(MapFeaturesHandler(deps), reqTimeout))
	v1.Get("/map/clusters/:id", timeout.NewWithContext(ExpandClusterHandler(deps), reqTimeout))
	v1.Post("/locations/validate", timeout.NewWithContext(ValidateLocationHandler(deps), reqTimeout))

	// Legacy
	app.Get("/api/plants/mapview", timeout.NewWithContext(MapviewHandler(deps), reqTimeout))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app, deps.DocsPath)

	// WebSocket
	if deps.NATS != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
	}
}
