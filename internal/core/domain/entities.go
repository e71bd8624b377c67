package domain

import (
	"time"
)

// Organization owns domains.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Domain is a top-level farm subdivision with a central coordinate.
type Domain struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Location       *GeoPoint `json:"location,omitempty"`
	AreaSqFt       *float64  `json:"area_sq_ft,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Plot is a subdivision of a domain. Area is stored in square feet.
type Plot struct {
	ID             string    `json:"id"`
	DomainID       string    `json:"domain_id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	Location       *GeoPoint `json:"location,omitempty"`
	AreaSqFt       *float64  `json:"area_sq_ft,omitempty"`
	SoilType       string    `json:"soil_type,omitempty"`
	IrrigationType string    `json:"irrigation_type,omitempty"`
	OwnerName      string    `json:"owner_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Plant is an individual tracked specimen located within a plot.
type Plant struct {
	ID             string    `json:"id"`
	PlotID         string    `json:"plot_id"`
	DomainID       string    `json:"domain_id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	Type           string    `json:"type,omitempty"`
	Variety        string    `json:"variety,omitempty"`
	Category       string    `json:"category,omitempty"`
	Health         string    `json:"health,omitempty"`
	GrowthStage    string    `json:"growth_stage,omitempty"`
	Location       *GeoPoint `json:"location,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (d Domain) Point() *GeoPoint { return d.Location }
func (p Plot) Point() *GeoPoint   { return p.Location }
func (p Plant) Point() *GeoPoint  { return p.Location }

// AreaEntity is the level-agnostic view of a domain, plot or plant used by
// the spatial code.
type AreaEntity struct {
	ID       string    `json:"id"`
	Level    Level     `json:"level"`
	Location *GeoPoint `json:"location,omitempty"`
	AreaSqFt *float64  `json:"area_sq_ft,omitempty"`
	ParentID string    `json:"parent_id,omitempty"`
}

func (e AreaEntity) Point() *GeoPoint { return e.Location }

func (d Domain) AreaEntity() AreaEntity {
	return AreaEntity{ID: d.ID, Level: LevelDomain, Location: d.Location, AreaSqFt: d.AreaSqFt}
}

func (p Plot) AreaEntity() AreaEntity {
	return AreaEntity{ID: p.ID, Level: LevelPlot, Location: p.Location, AreaSqFt: p.AreaSqFt, ParentID: p.DomainID}
}

func (p Plant) AreaEntity() AreaEntity {
	return AreaEntity{ID: p.ID, Level: LevelPlant, Location: p.Location, ParentID: p.PlotID}
}

// Float64 returns a pointer to v. Handy for optional area fields.
func Float64(v float64) *float64 { return &v }

// NewPoint returns a pointer to a GeoPoint.
func NewPoint(lat, lon float64) *GeoPoint { return &GeoPoint{Lat: lat, Lon: lon} }
