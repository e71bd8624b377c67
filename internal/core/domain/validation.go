package domain

// Outcome tags a validation result. Unvalidated means no reference point was
// available, which is permitted but distinct from a passed check.
type Outcome string

const (
	OutcomeValidated   Outcome = "validated"
	OutcomeUnvalidated Outcome = "unvalidated"
	OutcomeRejected    Outcome = "rejected"
)

// RadiusSource records where the radius used by a check came from.
type RadiusSource string

const (
	RadiusFixed    RadiusSource = "fixed"
	RadiusArea     RadiusSource = "area"
	RadiusFallback RadiusSource = "fallback"
)

// ParentContext is what the validator needs to know about the parent of a
// candidate location. Center is nil when the parent has no coordinates.
type ParentContext struct {
	Center   *GeoPoint `json:"center,omitempty"`
	Siblings []Plot    `json:"siblings,omitempty"`
}

// ValidationResult is returned for every placement check.
type ValidationResult struct {
	Outcome      Outcome      `json:"outcome"`
	Valid        bool         `json:"valid"`
	Level        Level        `json:"level"`
	DistanceKm   float64      `json:"distance_km"`
	RadiusKm     float64      `json:"radius_km"`
	RadiusSource RadiusSource `json:"radius_source,omitempty"`
	ErrorMessage string       `json:"error_message,omitempty"`
}
