package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/farmmap/internal/core/domain"
	"github.com/samirrijal/farmmap/internal/core/usecases"
	"github.com/samirrijal/farmmap/internal/pkg/geospatial"
)

// MapviewResponse is the envelope of the mapview endpoint.
type MapviewResponse struct {
	Success bool                   `json:"success"`
	Data    []domain.Plant         `json:"data"`
	Total   int                    `json:"total"`
	// Bounds fits the returned plants when the request had no bounding box.
	Bounds  *domain.ViewportBounds `json:"bounds,omitempty"`
}

// ContainmentResponse describes the zone new plots of a domain must fall in.
type ContainmentResponse struct {
	DomainID     string              `json:"domain_id"`
	Center       *domain.GeoPoint    `json:"center,omitempty"`
	RadiusKm     float64             `json:"radius_km"`
	RadiusSource domain.RadiusSource `json:"radius_source"`
}

// ListDomainsHandler lists domains, optionally of one organization.
func ListDomainsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		domains, err := deps.Domains.List(c.UserContext(), c.Query("organizationId"))
		if err != nil {
			return respondErr(c, err, "domains")
		}
		return c.JSON(paginate(c, domains, 100, 500))
	}
}

// GetDomainHandler returns a domain by ID.
func GetDomainHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := deps.Domains.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondErr(c, err, "domain")
		}
		return c.JSON(d)
	}
}

// DomainContainmentHandler returns the center and current plot radius of a domain.
func DomainContainmentHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		d, err := deps.Domains.GetByID(ctx, c.Params("id"))
		if err != nil {
			return respondErr(c, err, "domain")
		}
		r, src, err := deps.Plots.ContainmentRadius(ctx, d.ID)
		if err != nil {
			return respondErr(c, err, "plots")
		}
		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(ContainmentResponse{DomainID: d.ID, Center: d.Location, RadiusKm: r, RadiusSource: src})
	}
}

// ListPlotsHandler lists plots by organization and/or domain.
func ListPlotsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		plots, err := deps.Plots.List(c.UserContext(), c.Query("organizationId"), c.Query("domainId"))
		if err != nil {
			return respondErr(c, err, "plots")
		}
		return c.JSON(paginate(c, plots, 100, 500))
	}
}

// GetPlotHandler returns a plot by ID.
func GetPlotHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := deps.Plots.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondErr(c, err, "plot")
		}
		return c.JSON(p)
	}
}

// PlotPlantsHandler lists the plants of a plot.
func PlotPlantsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		plants, err := deps.Plants.ListByPlot(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondErr(c, err, "plants")
		}
		return c.JSON(paginate(c, plants, 200, 1000))
	}
}

// MapviewHandler returns located plants, optionally inside a bounding box.
func MapviewHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bounds, err := parseBounds(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		plants, err := deps.Plants.Mapview(c.UserContext(), bounds)
		if err != nil {
			return respondErr(c, err, "plants")
		}
		if plants == nil {
			plants = []domain.Plant{}
		}
		resp := MapviewResponse{Success: true, Data: plants, Total: len(plants)}
		if bounds == nil {
			if fit, ok := geospatial.BoundsOf(plants); ok {
				resp.Bounds = &fit
			}
		}
		c.Set("Cache-Control", "public, max-age=30")
		return c.JSON(resp)
	}
}

// GetPlantHandler returns a plant by ID.
func GetPlantHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := deps.Plants.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondErr(c, err, "plant")
		}
		return c.JSON(p)
	}
}

// MapFeaturesHandler renders the zoom-gated feature sets of one viewport.
func MapFeaturesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := parseFeaturesQuery(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		out, err := deps.Map.Features(c.UserContext(), q)
		if err != nil {
			return respondErr(c, err, "features")
		}
		return c.JSON(out)
	}
}

// ExpandClusterHandler returns the member features of a cluster rendered
// with the same query parameters.
func ExpandClusterHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := parseFeaturesQuery(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		children, err := deps.Map.ExpandCluster(c.UserContext(), q, c.Params("id"))
		if err != nil {
			return respondErr(c, err, "cluster")
		}
		fc := domain.NewFeatureCollection()
		fc.Features = append(fc.Features, children...)
		return c.JSON(fc)
	}
}

// ValidateLocationHandler checks a candidate placement against the
// containment rules of its level.
func ValidateLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req usecases.ValidateRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if _, err := domain.ParseLevel(string(req.Level)); err != nil {
			return errBadRequest(c, err.Error())
		}
		res, err := deps.Validation.Validate(c.UserContext(), req)
		if err != nil {
			return respondErr(c, err, "parent")
		}
		return c.JSON(res)
	}
}
