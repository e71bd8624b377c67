package geospatial

import (
	"fmt"
	"math"

	"github.com/umahmood/haversine"

	"github.com/samirrijal/farmmap/internal/core/domain"
)

// EarthRadiusKm is the mean radius used by the haversine implementation.
const EarthRadiusKm = 6371.0

// DistanceKm calculates the great-circle distance in kilometers between two points.
// NaN coordinates propagate; callers must not pass points of entities without a location.
func DistanceKm(a, b domain.GeoPoint) float64 {
	_, km := haversine.Distance(
		haversine.Coord{Lat: a.Lat, Lon: a.Lon},
		haversine.Coord{Lat: b.Lat, Lon: b.Lon},
	)
	return km
}

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	return DistanceKm(domain.GeoPoint{Lat: lat1, Lon: lon1}, domain.GeoPoint{Lat: lat2, Lon: lon2}) * 1000
}

// IsWithinRadius reports whether point lies within radiusKm of center.
// A point exactly on the boundary is inside.
func IsWithinRadius(center, point domain.GeoPoint, radiusKm float64) bool {
	return DistanceKm(center, point) <= radiusKm
}

// FormatDistance renders a distance the way the location picker shows it:
// whole meters below one kilometer, kilometers with two decimals above.
func FormatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%dm", int64(math.Round(km*1000)))
	}
	return fmt.Sprintf("%.2fkm", km)
}

// BoundingBox returns the rectangle enclosing the circle of radiusKm around
// center. Useful as an index prefilter before the exact distance check.
func BoundingBox(center domain.GeoPoint, radiusKm float64) domain.ViewportBounds {
	latDelta := radiusKm * 1000 / 111320.0
	lonDelta := radiusKm * 1000 / (111320.0 * math.Cos(toRad(center.Lat)))

	return domain.ViewportBounds{
		SW: domain.GeoPoint{Lat: center.Lat - latDelta, Lon: center.Lon - lonDelta},
		NE: domain.GeoPoint{Lat: center.Lat + latDelta, Lon: center.Lon + lonDelta},
	}
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
