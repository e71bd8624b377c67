package domain

import "fmt"

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the point lies inside the WGS 84 coordinate range.
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", p.Lat, p.Lon)
}

// ViewportBounds is an axis-aligned lng/lat rectangle as reported by the map.
// When SW.Lon > NE.Lon the rectangle wraps the antimeridian.
type ViewportBounds struct {
	SW GeoPoint `json:"sw"`
	NE GeoPoint `json:"ne"`
}

// Wraps reports whether the bounds cross the antimeridian.
func (b ViewportBounds) Wraps() bool {
	return b.SW.Lon > b.NE.Lon
}

// Validate checks both corners and the latitude ordering.
func (b ViewportBounds) Validate() error {
	if !b.SW.Valid() || !b.NE.Valid() {
		return fmt.Errorf("%w: corner out of range", ErrInvalidBounds)
	}
	if b.SW.Lat > b.NE.Lat {
		return fmt.Errorf("%w: south %.6f above north %.6f", ErrInvalidBounds, b.SW.Lat, b.NE.Lat)
	}
	return nil
}

// Locatable is anything that may carry a coordinate.
type Locatable interface {
	Point() *GeoPoint
}
