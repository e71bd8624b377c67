package usecases

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dhconnelly/rtreego"
	"github.com/google/uuid"

	"github.com/samirrijal/farmmap/internal/core/domain"
	"github.com/samirrijal/farmmap/internal/pkg/geospatial"
)

const (
	DefaultClusterRadiusPx = 40
	DefaultClusterMaxZoom  = 16
)

// clusterNamespace seeds the name-based UUIDs of clusters.
var clusterNamespace = uuid.MustParse("9c1f4e8a-3b52-4d7e-a0c6-5f2b8d91e347")

// ClusterAggregator groups point features that would overlap on screen.
type ClusterAggregator struct {
	RadiusPx  float64
	MaxZoom   float64
	MinPoints int
}

// NewClusterAggregator returns an aggregator; non-positive arguments fall
// back to the defaults.
func NewClusterAggregator(radiusPx, maxZoom float64) *ClusterAggregator {
	if radiusPx <= 0 {
		radiusPx = DefaultClusterRadiusPx
	}
	if maxZoom <= 0 {
		maxZoom = DefaultClusterMaxZoom
	}
	return &ClusterAggregator{RadiusPx: radiusPx, MaxZoom: maxZoom, MinPoints: 2}
}

// ClusterSet is the outcome of clustering one feature set at one zoom.
type ClusterSet struct {
	Points   domain.FeatureCollection
	Clusters domain.FeatureCollection
	members  map[string][]domain.PointFeature
}

// Expand returns the member features of a cluster with their original
// properties, in id order.
func (s ClusterSet) Expand(clusterID string) ([]domain.PointFeature, bool) {
	m, ok := s.members[clusterID]
	if !ok {
		return nil, false
	}
	return append([]domain.PointFeature(nil), m...), true
}

type pixelPoint struct {
	idx  int
	x, y float64
	rect rtreego.Rect
}

func (p *pixelPoint) Bounds() rtreego.Rect { return p.rect }

// Cluster groups features at zoom. Above MaxZoom every feature is returned
// individually. Output is independent of input order.
func (a *ClusterAggregator) Cluster(features []domain.PointFeature, zoom float64) (ClusterSet, error) {
	set := ClusterSet{
		Points:   domain.NewFeatureCollection(),
		Clusters: domain.NewFeatureCollection(),
		members:  make(map[string][]domain.PointFeature),
	}

	sorted := append([]domain.PointFeature(nil), features...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	if zoom > a.MaxZoom || len(sorted) < a.MinPoints {
		set.Points.Features = append(set.Points.Features, sorted...)
		return set, nil
	}

	z := math.Floor(zoom)
	tree := rtreego.NewTree(2, 25, 50)
	points := make([]*pixelPoint, len(sorted))
	for i, f := range sorted {
		x, y := geospatial.Project(domain.GeoPoint{Lat: f.Geometry.Coordinates[1], Lon: f.Geometry.Coordinates[0]}, z)
		rect, err := rtreego.NewRect(rtreego.Point{x - 0.5, y - 0.5}, []float64{1, 1})
		if err != nil {
			return ClusterSet{}, fmt.Errorf("index feature %s: %w", f.ID, err)
		}
		points[i] = &pixelPoint{idx: i, x: x, y: y, rect: rect}
		tree.Insert(points[i])
	}

	visited := make([]bool, len(sorted))
	for i, p := range points {
		if visited[i] {
			continue
		}
		search, err := rtreego.NewRect(rtreego.Point{p.x - a.RadiusPx, p.y - a.RadiusPx}, []float64{2 * a.RadiusPx, 2 * a.RadiusPx})
		if err != nil {
			return ClusterSet{}, fmt.Errorf("cluster search around %s: %w", sorted[i].ID, err)
		}

		group := []int{i}
		for _, s := range tree.SearchIntersect(search) {
			n := s.(*pixelPoint)
			if n.idx == i || visited[n.idx] {
				continue
			}
			if math.Hypot(n.x-p.x, n.y-p.y) <= a.RadiusPx {
				group = append(group, n.idx)
			}
		}

		if len(group) < a.MinPoints {
			visited[i] = true
			set.Points.Features = append(set.Points.Features, sorted[i])
			continue
		}

		sort.Ints(group)
		members := make([]domain.PointFeature, 0, len(group))
		var sx, sy float64
		for _, idx := range group {
			visited[idx] = true
			members = append(members, sorted[idx])
			sx += points[idx].x
			sy += points[idx].y
		}
		center := geospatial.Unproject(sx/float64(len(group)), sy/float64(len(group)), z)
		cf := clusterFeature(members, center)
		set.members[cf.ID] = members
		set.Clusters.Features = append(set.Clusters.Features, cf)
	}
	return set, nil
}

// ClusterID derives a deterministic cluster id from its member feature ids.
func ClusterID(memberIDs []string) string {
	ids := append([]string(nil), memberIDs...)
	sort.Strings(ids)
	return FeatureID(domain.KindCluster, uuid.NewSHA1(clusterNamespace, []byte(strings.Join(ids, "\n"))).String())
}

func clusterFeature(members []domain.PointFeature, center domain.GeoPoint) domain.PointFeature {
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	id := ClusterID(ids)
	return domain.PointFeature{
		Type: "Feature",
		ID:   id,
		Geometry: domain.PointGeometry{
			Type:        "Point",
			Coordinates: [2]float64{center.Lon, center.Lat},
		},
		Properties: map[string]any{
			"cluster":      true,
			"kind":         string(domain.KindCluster),
			"point_count":  len(members),
			"displayLabel": fmt.Sprintf("%d", len(members)),
		},
	}
}
