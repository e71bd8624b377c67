package usecases

import (
	"strings"

	"github.com/samirrijal/farmmap/internal/core/domain"
)

// Featurable is an entity that can be drawn as a map point.
type Featurable interface {
	domain.Locatable
	domain.IDer
}

var categoryGlyphs = map[string]string{
	"vegetable": "🥕",
	"herb":      "🌿",
	"fruit":     "🍎",
	"tree":      "🌳",
	"grain":     "🌾",
	"legume":    "🫘",
}

const (
	domainGlyph       = "🏡"
	plotGlyph         = "🟩"
	defaultPlantGlyph = "🌱"
)

// CategoryGlyph returns the marker glyph for a plant category.
func CategoryGlyph(category string) string {
	if g, ok := categoryGlyphs[strings.ToLower(category)]; ok {
		return g
	}
	return defaultPlantGlyph
}

// FeatureID is the stable id of an entity's feature.
func FeatureID(kind domain.FeatureKind, id string) string {
	return string(kind) + ":" + id
}

// ToFeature converts e into a point feature, or returns nil when e has no
// location.
func ToFeature(e Featurable, kind domain.FeatureKind) *domain.PointFeature {
	loc := e.Point()
	if loc == nil {
		return nil
	}
	props := featureProperties(e)
	props["id"] = e.GetID()
	props["kind"] = string(kind)

	name, _ := props["name"].(string)
	glyph, _ := props["glyph"].(string)
	if glyph == "" {
		glyph = defaultPlantGlyph
		props["glyph"] = glyph
	}
	props["displayLabel"] = strings.TrimSpace(glyph + " " + name)

	return &domain.PointFeature{
		Type: "Feature",
		ID:   FeatureID(kind, e.GetID()),
		Geometry: domain.PointGeometry{
			Type:        "Point",
			Coordinates: [2]float64{loc.Lon, loc.Lat},
		},
		Properties: props,
	}
}

// BuildCollection converts every located entity into a feature. Entities
// without a location are skipped; order follows the input.
func BuildCollection[T Featurable](kind domain.FeatureKind, entities []T) domain.FeatureCollection {
	fc := domain.NewFeatureCollection()
	for _, e := range entities {
		if f := ToFeature(e, kind); f != nil {
			fc.Features = append(fc.Features, *f)
		}
	}
	return fc
}

func featureProperties(e Featurable) map[string]any {
	switch v := e.(type) {
	case domain.Domain:
		props := map[string]any{
			"name":           v.Name,
			"organizationId": v.OrganizationID,
			"glyph":          domainGlyph,
		}
		if v.AreaSqFt != nil {
			props["areaSqFt"] = *v.AreaSqFt
		}
		return props
	case domain.Plot:
		props := map[string]any{
			"name":           v.Name,
			"domainId":       v.DomainID,
			"organizationId": v.OrganizationID,
			"glyph":          plotGlyph,
		}
		if v.AreaSqFt != nil {
			props["areaSqFt"] = *v.AreaSqFt
		}
		if v.SoilType != "" {
			props["soilType"] = v.SoilType
		}
		return props
	case domain.Plant:
		return map[string]any{
			"name":           v.Name,
			"plotId":         v.PlotID,
			"domainId":       v.DomainID,
			"organizationId": v.OrganizationID,
			"type":           v.Type,
			"variety":        v.Variety,
			"category":       v.Category,
			"health":         v.Health,
			"growthStage":    v.GrowthStage,
			"glyph":          CategoryGlyph(v.Category),
		}
	}
	return map[string]any{}
}
