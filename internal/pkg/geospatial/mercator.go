package geospatial

import (
	"math"

	"github.com/samirrijal/farmmap/internal/core/domain"
)

const (
	// TileSize is the pixel size of one Web-Mercator tile at zoom 0.
	TileSize = 512.0

	maxMercatorLat = 85.05112878
)

// Project converts p to Web-Mercator pixel coordinates at the given
// fractional zoom.
func Project(p domain.GeoPoint, zoom float64) (x, y float64) {
	lon := math.Max(-180, math.Min(180, p.Lon))
	lat := math.Max(-maxMercatorLat, math.Min(maxMercatorLat, p.Lat))

	scale := TileSize * math.Pow(2, zoom)
	x = (lon + 180) / 360 * scale
	sin := math.Sin(toRad(lat))
	y = (0.5 - 0.25*math.Log((1+sin)/(1-sin))/math.Pi) * scale
	return x, y
}

// Unproject is the inverse of Project.
func Unproject(x, y, zoom float64) domain.GeoPoint {
	scale := TileSize * math.Pow(2, zoom)
	lon := x/scale*360 - 180
	n := math.Pi * (1 - 2*y/scale)
	lat := math.Atan(math.Sinh(n)) * 180 / math.Pi
	return domain.GeoPoint{Lat: lat, Lon: lon}
}
