package domain

import "fmt"

// Level identifies a tier of the farm hierarchy.
type Level string

const (
	LevelDomain Level = "domain"
	LevelPlot   Level = "plot"
	LevelPlant  Level = "plant"
)

// ParseLevel converts a user supplied string into a Level.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelDomain, LevelPlot, LevelPlant:
		return Level(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLevel, s)
}

// Phase1Center is the reference point every domain must sit close to.
var Phase1Center = GeoPoint{Lat: 12.684582467948083, Lon: 78.0549622542717}

const (
	DomainRadiusKm       = 4.0
	PlotRadiusKmFallback = 1.0
	PlantRadiusKm        = 0.5

	// FeetToMeters converts the linear dimension of square-foot areas.
	FeetToMeters = 0.3048
)

// ContainmentRule describes how the allowed zone of one level is derived.
type ContainmentRule struct {
	Level         Level   `json:"level"`
	FixedRadiusKm float64 `json:"fixed_radius_km"`
	AreaDerived   bool    `json:"area_derived"`
}

// ContainmentRules are the rules in force, one per level. For plots the fixed
// radius is only the fallback used until sibling area data exists.
var ContainmentRules = map[Level]ContainmentRule{
	LevelDomain: {Level: LevelDomain, FixedRadiusKm: DomainRadiusKm},
	LevelPlot:   {Level: LevelPlot, FixedRadiusKm: PlotRadiusKmFallback, AreaDerived: true},
	LevelPlant:  {Level: LevelPlant, FixedRadiusKm: PlantRadiusKm},
}

// ZoomThresholds gate which entity classes are visible and fetchable.
type ZoomThresholds struct {
	ShowPlots  float64 `json:"show_plots" mapstructure:"show_plots"`
	ShowPlants float64 `json:"show_plants" mapstructure:"show_plants"`
}

// DefaultZoomThresholds matches the map configuration used in production.
var DefaultZoomThresholds = ZoomThresholds{ShowPlots: 12, ShowPlants: 15}

// Validate enforces ShowPlants > ShowPlots.
func (z ZoomThresholds) Validate() error {
	if z.ShowPlants <= z.ShowPlots {
		return fmt.Errorf("show_plants (%.1f) must be greater than show_plots (%.1f)", z.ShowPlants, z.ShowPlots)
	}
	return nil
}
