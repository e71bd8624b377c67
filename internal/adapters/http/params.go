package http

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/farmmap/internal/core/domain"
	"github.com/samirrijal/farmmap/internal/core/usecases"
)

var boundsParams = [4]string{"swLng", "swLat", "neLng", "neLat"}

// parseBounds reads swLng, swLat, neLng and neLat. All four absent means no
// bounds; a partial or malformed box is an error.
func parseBounds(c *fiber.Ctx) (*domain.ViewportBounds, error) {
	var (
		vals    [4]float64
		present int
	)
	for i, name := range boundsParams {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s is not a number", domain.ErrInvalidBounds, name)
		}
		vals[i] = v
		present++
	}
	switch present {
	case 0:
		return nil, nil
	case 4:
	default:
		return nil, fmt.Errorf("%w: swLng, swLat, neLng and neLat must be given together", domain.ErrInvalidBounds)
	}

	b := &domain.ViewportBounds{
		SW: domain.GeoPoint{Lon: vals[0], Lat: vals[1]},
		NE: domain.GeoPoint{Lon: vals[2], Lat: vals[3]},
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// parseFilters reads the map filter query parameters.
func parseFilters(c *fiber.Ctx) (domain.FilterState, error) {
	f := domain.FilterState{
		OrganizationID: c.Query("organizationId"),
		DomainID:       c.Query("domainId"),
		PlotID:         c.Query("plotId"),
		Category:       c.Query("category"),
		Health:         c.Query("health"),
		Search:         c.Query("search"),
	}
	if len(f.Search) > 200 {
		return f, fmt.Errorf("search too long (max 200 characters)")
	}
	return f, nil
}

// parseFeaturesQuery reads a full map features request.
func parseFeaturesQuery(c *fiber.Ctx) (usecases.FeaturesQuery, error) {
	var (
		q   usecases.FeaturesQuery
		err error
	)
	if q.Bounds, err = parseBounds(c); err != nil {
		return q, err
	}
	if q.Filters, err = parseFilters(c); err != nil {
		return q, err
	}
	q.Zoom = c.QueryFloat("zoom", -1)
	if q.Zoom < 0 || q.Zoom > 24 {
		return q, fmt.Errorf("zoom must be between 0 and 24")
	}
	q.Cluster = c.QueryBool("cluster", false)
	return q, nil
}
