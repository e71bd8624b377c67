package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/samirrijal/farmmap/internal/core/domain"
	"github.com/samirrijal/farmmap/internal/pkg/geospatial"
	"github.com/samirrijal/farmmap/internal/pkg/logging"
)

// HierarchyValidator checks that a location sits inside the containment zone
// of its parent. Results are never cached: the plot radius depends on the
// sibling set at the time of the call.
type HierarchyValidator struct {
	phase1 domain.GeoPoint
	rules  map[domain.Level]domain.ContainmentRule
}

// NewHierarchyValidator creates a validator anchored at domain.Phase1Center
// that applies domain.ContainmentRules.
func NewHierarchyValidator() *HierarchyValidator {
	return NewHierarchyValidatorWithRules(domain.ContainmentRules)
}

// NewHierarchyValidatorWithRules creates a validator applying rules. A level
// missing from rules is rejected as ErrInvalidLevel.
func NewHierarchyValidatorWithRules(rules map[domain.Level]domain.ContainmentRule) *HierarchyValidator {
	return &HierarchyValidator{phase1: domain.Phase1Center, rules: rules}
}

// PlotRadiusKm returns the radius plots of a domain must fall within, derived
// from the combined area of the sibling plots treated as a single circle.
// Siblings without a positive area are ignored; when none remain the
// fallback radius applies.
func PlotRadiusKm(siblings []domain.Plot) (float64, domain.RadiusSource) {
	return areaRadiusKm(siblings, domain.ContainmentRules[domain.LevelPlot].FixedRadiusKm)
}

func areaRadiusKm(siblings []domain.Plot, fallbackKm float64) (float64, domain.RadiusSource) {
	var totalSqFt float64
	for _, p := range siblings {
		if p.AreaSqFt != nil && *p.AreaSqFt > 0 {
			totalSqFt += *p.AreaSqFt
		}
	}
	if totalSqFt <= 0 {
		return fallbackKm, domain.RadiusFallback
	}
	radiusMeters := math.Sqrt(totalSqFt/math.Pi) * domain.FeetToMeters
	return radiusMeters / 1000, domain.RadiusArea
}

// ValidateLocation evaluates candidate for the given level. The parent center
// is ignored for domains, which are always measured from the Phase 1 center.
func (v *HierarchyValidator) ValidateLocation(ctx context.Context, level domain.Level, candidate domain.GeoPoint, parent domain.ParentContext) (domain.ValidationResult, error) {
	if !candidate.Valid() {
		return domain.ValidationResult{}, fmt.Errorf("%w: %v", domain.ErrInvalidLocation, candidate)
	}

	rule, ok := v.rules[level]
	if !ok {
		return domain.ValidationResult{}, fmt.Errorf("%w: %q", domain.ErrInvalidLevel, level)
	}

	center := v.phase1
	if level != domain.LevelDomain {
		if parent.Center == nil {
			return v.unvalidated(ctx, level, parentName(level)+" has no location"), nil
		}
		center = *parent.Center
	}

	radius, source := rule.FixedRadiusKm, domain.RadiusFixed
	if rule.AreaDerived {
		radius, source = areaRadiusKm(parent.Siblings, rule.FixedRadiusKm)
	}

	dist := geospatial.DistanceKm(center, candidate)
	res := domain.ValidationResult{
		Outcome:      domain.OutcomeValidated,
		Valid:        true,
		Level:        level,
		DistanceKm:   dist,
		RadiusKm:     radius,
		RadiusSource: source,
	}
	if dist > radius {
		res.Outcome = domain.OutcomeRejected
		res.Valid = false
		res.ErrorMessage = rejectionMessage(level, radius, dist)
	}
	return res, nil
}

func (v *HierarchyValidator) unvalidated(ctx context.Context, level domain.Level, reason string) domain.ValidationResult {
	logging.LoggerFromCtx(ctx).Warn("location accepted without containment check",
		slog.String("level", string(level)),
		slog.String("reason", reason),
	)
	return domain.ValidationResult{
		Outcome: domain.OutcomeUnvalidated,
		Valid:   true,
		Level:   level,
	}
}

func parentName(level domain.Level) string {
	if level == domain.LevelPlant {
		return "plot"
	}
	return "domain"
}

func rejectionMessage(level domain.Level, radiusKm, distanceKm float64) string {
	r := geospatial.FormatDistance(radiusKm)
	d := geospatial.FormatDistance(distanceKm)
	switch level {
	case domain.LevelDomain:
		return fmt.Sprintf("Domain must be within %s of Phase 1 center. Current distance: %s.", r, d)
	case domain.LevelPlot:
		return fmt.Sprintf("Plot must be within domain boundary (%s radius). Current distance: %s.", r, d)
	default:
		return fmt.Sprintf("Plant must be within %s of plot center. Current distance: %s.", r, d)
	}
}
