// Package cluster groups marker descriptors into zoom-dependent layers.
//
// Markers are partitioned into independent buckets before clustering so
// that a lower-priority bucket can never absorb (and visually bury) a
// higher-priority marker. Within a bucket, grouping is a deterministic
// greedy sweep in screen space: the pixel radius is fixed, and callers
// re-invoke Layerize on every zoom change so the effective geographic
// radius self-adjusts. Panning never requires recomputation.
package cluster

import (
	"math"

	"github.com/twpayne/go-geom"

	"github.com/feiramap/feiramap/pkg/geomath"
	domain "github.com/feiramap/feiramap/pkg/types"
)

// DefaultRadiusPx is the standard screen-space merge radius.
const DefaultRadiusPx = 64

// tileSizePx is the Web Mercator tile edge used for pixel projection.
const tileSizePx = 256

// layerOrder lists the buckets in descending visual priority; layers are
// emitted in this order.
var layerOrder = []domain.Bucket{
	domain.BucketSearchResults,
	domain.BucketPremium,
	domain.BucketPromotion,
	domain.BucketCommon,
}

// Manager groups markers into cluster layers.
type Manager struct {
	radiusPx float64
}

// NewManager creates a cluster manager with the given screen-space merge
// radius in pixels.
func NewManager(radiusPx float64) *Manager {
	if radiusPx <= 0 {
		radiusPx = DefaultRadiusPx
	}
	return &Manager{radiusPx: radiusPx}
}

// Layerize partitions markers by bucket and merges near-coincident ones
// into cluster nodes at the given zoom level. Output is deterministic:
// identical input and zoom produce identical cluster membership. Empty
// buckets are omitted.
func (m *Manager) Layerize(markers []domain.MarkerDescriptor, zoom int) []domain.ClusterLayer {
	byBucket := make(map[domain.Bucket][]domain.MarkerDescriptor, len(layerOrder))
	for i := range markers {
		b := markers[i].Bucket
		byBucket[b] = append(byBucket[b], markers[i])
	}

	layers := make([]domain.ClusterLayer, 0, len(byBucket))
	for _, bucket := range layerOrder {
		members, ok := byBucket[bucket]
		if !ok {
			continue
		}
		singles, clusters := m.groupBucket(members, zoom)
		layers = append(layers, domain.ClusterLayer{
			Bucket:   bucket,
			Markers:  singles,
			Clusters: clusters,
		})
	}

	return layers
}

// groupBucket runs the greedy sweep over one bucket's markers. Each
// unassigned marker seeds a group and absorbs every later unassigned
// marker within the pixel radius of the seed. Groups of one stay
// individual markers.
func (m *Manager) groupBucket(
	markers []domain.MarkerDescriptor,
	zoom int,
) ([]domain.MarkerDescriptor, []domain.ClusterNode) {
	xs := make([]float64, len(markers))
	ys := make([]float64, len(markers))
	for i := range markers {
		xs[i], ys[i] = project(markers[i].Position, zoom)
	}

	assigned := make([]bool, len(markers))
	var singles []domain.MarkerDescriptor
	var clusters []domain.ClusterNode

	for i := range markers {
		if assigned[i] {
			continue
		}
		assigned[i] = true

		group := []int{i}
		for j := i + 1; j < len(markers); j++ {
			if assigned[j] {
				continue
			}
			dx := xs[j] - xs[i]
			dy := ys[j] - ys[i]
			if math.Hypot(dx, dy) <= m.radiusPx {
				assigned[j] = true
				group = append(group, j)
			}
		}

		if len(group) == 1 {
			singles = append(singles, markers[i])
			continue
		}
		clusters = append(clusters, buildNode(markers, group))
	}

	return singles, clusters
}

// buildNode aggregates a group of markers into one cluster node with the
// member centroid as its representative position.
func buildNode(markers []domain.MarkerDescriptor, group []int) domain.ClusterNode {
	var sumLat, sumLng float64
	bounds := geom.NewBounds(geom.XY)
	memberIDs := make([]string, 0, len(group))

	for _, idx := range group {
		p := markers[idx].Position
		sumLat += p.Lat
		sumLng += p.Lng
		bounds.Extend(geom.NewPointFlat(geom.XY, []float64{p.Lng, p.Lat}))
		memberIDs = append(memberIDs, markers[idx].ID)
	}

	n := float64(len(group))
	return domain.ClusterNode{
		ID: "cluster:" + markers[group[0]].ID,
		Position: geomath.Point{
			Lat: sumLat / n,
			Lng: sumLng / n,
		},
		Count: len(group),
		Bounds: domain.BBox{
			MinLat: bounds.Min(1),
			MinLng: bounds.Min(0),
			MaxLat: bounds.Max(1),
			MaxLng: bounds.Max(0),
		},
		MemberIDs: memberIDs,
	}
}

// project maps a coordinate to Web Mercator pixel space at the given
// zoom level.
func project(p geomath.Point, zoom int) (x, y float64) {
	world := tileSizePx * math.Exp2(float64(zoom))
	latRad := p.Lat * math.Pi / 180

	x = (p.Lng + 180) / 360 * world
	y = (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * world
	return x, y
}
