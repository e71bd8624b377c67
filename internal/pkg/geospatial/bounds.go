package geospatial

import "github.com/samirrijal/farmmap/internal/core/domain"

// BoundsBufferDeg widens the viewport (≈1.1 km) so markers near the edges do
// not pop in and out during small pans.
const BoundsBufferDeg = 0.01

// Buffer grows b by deg on all four sides.
func Buffer(b domain.ViewportBounds, deg float64) domain.ViewportBounds {
	return domain.ViewportBounds{
		SW: domain.GeoPoint{Lat: b.SW.Lat - deg, Lon: b.SW.Lon - deg},
		NE: domain.GeoPoint{Lat: b.NE.Lat + deg, Lon: b.NE.Lon + deg},
	}
}

// InBounds tests p against already-buffered bounds. When west > east the
// longitude test is an OR across the antimeridian.
func InBounds(p domain.GeoPoint, b domain.ViewportBounds) bool {
	if p.Lat < b.SW.Lat || p.Lat > b.NE.Lat {
		return false
	}
	if b.SW.Lon > b.NE.Lon {
		return p.Lon >= b.SW.Lon || p.Lon <= b.NE.Lon
	}
	return p.Lon >= b.SW.Lon && p.Lon <= b.NE.Lon
}

// FilterInBounds returns the entities whose location falls inside the
// buffered viewport, in input order. Entities without a location are dropped.
func FilterInBounds[T domain.Locatable](entities []T, b domain.ViewportBounds) []T {
	buffered := Buffer(b, BoundsBufferDeg)
	out := make([]T, 0, len(entities))
	for _, e := range entities {
		p := e.Point()
		if p == nil {
			continue
		}
		if InBounds(*p, buffered) {
			out = append(out, e)
		}
	}
	return out
}

// Contains reports whether inner lies entirely within outer. Both rectangles
// are treated as non-wrapping.
func Contains(outer, inner domain.ViewportBounds) bool {
	return inner.SW.Lat >= outer.SW.Lat &&
		inner.SW.Lon >= outer.SW.Lon &&
		inner.NE.Lat <= outer.NE.Lat &&
		inner.NE.Lon <= outer.NE.Lon
}

// BoundsOf returns the smallest rectangle covering every located entity, or
// false when none has a location.
func BoundsOf[T domain.Locatable](entities []T) (domain.ViewportBounds, bool) {
	var b domain.ViewportBounds
	found := false
	for _, e := range entities {
		p := e.Point()
		if p == nil {
			continue
		}
		if !found {
			b = domain.ViewportBounds{SW: *p, NE: *p}
			found = true
			continue
		}
		b.SW.Lat = min(b.SW.Lat, p.Lat)
		b.SW.Lon = min(b.SW.Lon, p.Lon)
		b.NE.Lat = max(b.NE.Lat, p.Lat)
		b.NE.Lon = max(b.NE.Lon, p.Lon)
	}
	return b, found
}
