package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/farmmap/internal/adapters/postgres"
	"github.com/samirrijal/farmmap/internal/core/ports"
	"github.com/samirrijal/farmmap/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Domains    *usecases.DomainService
	Plots      *usecases.PlotService
	Plants     *usecases.PlantService
	Map        *usecases.MapService
	Validation *usecases.ValidationService
	NATS       *nats.Conn
	DB         *postgres.DB
	Cache      ports.CacheService
	// DocsPath locates openapi.yaml; empty means DefaultSpecPath.
	DocsPath string
}
