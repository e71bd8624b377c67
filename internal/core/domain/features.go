package domain

// FeatureKind is the entity class a feature was built from.
type FeatureKind string

const (
	KindDomain  FeatureKind = "domain"
	KindPlot    FeatureKind = "plot"
	KindPlant   FeatureKind = "plant"
	KindCluster FeatureKind = "cluster"
)

// PointGeometry is a GeoJSON point; coordinates are [lon, lat].
type PointGeometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// PointFeature is a GeoJSON-like feature consumed by the rendering layer.
type PointFeature struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	Geometry   PointGeometry  `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// FeatureCollection groups the features of one kind.
type FeatureCollection struct {
	Type     string         `json:"type"`
	Features []PointFeature `json:"features"`
}

// NewFeatureCollection returns an empty, JSON-ready collection.
func NewFeatureCollection() FeatureCollection {
	return FeatureCollection{Type: "FeatureCollection", Features: []PointFeature{}}
}

// MapFeatures is the rendered feature set for one viewport.
type MapFeatures struct {
	Zoom     float64           `json:"zoom"`
	Domains  FeatureCollection `json:"domains"`
	Plots    FeatureCollection `json:"plots"`
	Plants   FeatureCollection `json:"plants"`
	Clusters FeatureCollection `json:"clusters"`
}
