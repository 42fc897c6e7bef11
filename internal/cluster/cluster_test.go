package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feiramap/feiramap/pkg/geomath"
	domain "github.com/feiramap/feiramap/pkg/types"
)

func markerAt(id string, bucket domain.Bucket, lat, lng float64) domain.MarkerDescriptor {
	return domain.MarkerDescriptor{
		ID:       id,
		VendorID: "vendor-" + id,
		Bucket:   bucket,
		Position: geomath.Point{Lat: lat, Lng: lng},
	}
}

func layerFor(t *testing.T, layers []domain.ClusterLayer, bucket domain.Bucket) domain.ClusterLayer {
	t.Helper()
	for _, l := range layers {
		if l.Bucket == bucket {
			return l
		}
	}
	t.Fatalf("no layer for bucket %s", bucket)
	return domain.ClusterLayer{}
}

func TestLayerize_BucketsNeverMerge(t *testing.T) {
	t.Parallel()

	// Two markers at the same position but in different buckets must stay
	// in separate layers.
	markers := []domain.MarkerDescriptor{
		markerAt("a", domain.BucketCommon, -23.55, -46.63),
		markerAt("b", domain.BucketPremium, -23.55, -46.63),
	}

	layers := NewManager(DefaultRadiusPx).Layerize(markers, 12)
	require.Len(t, layers, 2)

	common := layerFor(t, layers, domain.BucketCommon)
	premium := layerFor(t, layers, domain.BucketPremium)
	assert.Len(t, common.Markers, 1)
	assert.Len(t, premium.Markers, 1)
	assert.Empty(t, common.Clusters)
	assert.Empty(t, premium.Clusters)
}

func TestLayerize_MergesNearbyAtLowZoom(t *testing.T) {
	t.Parallel()

	// Two city-center vendors a few hundred meters apart: one pixel blob
	// at zoom 10, distinct markers at zoom 17.
	markers := []domain.MarkerDescriptor{
		markerAt("a", domain.BucketCommon, -23.5505, -46.6333),
		markerAt("b", domain.BucketCommon, -23.5530, -46.6350),
		markerAt("far", domain.BucketCommon, -22.9068, -43.1729), // Rio, never merged
	}
	m := NewManager(DefaultRadiusPx)

	low := m.Layerize(markers, 10)
	lowLayer := layerFor(t, low, domain.BucketCommon)
	require.Len(t, lowLayer.Clusters, 1)
	assert.Equal(t, 2, lowLayer.Clusters[0].Count)
	assert.ElementsMatch(t, []string{"a", "b"}, lowLayer.Clusters[0].MemberIDs)
	require.Len(t, lowLayer.Markers, 1)
	assert.Equal(t, "far", lowLayer.Markers[0].ID)

	high := m.Layerize(markers, 17)
	highLayer := layerFor(t, high, domain.BucketCommon)
	assert.Empty(t, highLayer.Clusters)
	assert.Len(t, highLayer.Markers, 3)
}

func TestLayerize_ClusterCentroidAndBounds(t *testing.T) {
	t.Parallel()

	markers := []domain.MarkerDescriptor{
		markerAt("a", domain.BucketCommon, 10.0, 20.0),
		markerAt("b", domain.BucketCommon, 10.001, 20.003),
	}

	layers := NewManager(DefaultRadiusPx).Layerize(markers, 8)
	layer := layerFor(t, layers, domain.BucketCommon)
	require.Len(t, layer.Clusters, 1)

	node := layer.Clusters[0]
	assert.InDelta(t, 10.0005, node.Position.Lat, 1e-9)
	assert.InDelta(t, 20.0015, node.Position.Lng, 1e-9)
	assert.Equal(t, 10.0, node.Bounds.MinLat)
	assert.Equal(t, 10.001, node.Bounds.MaxLat)
	assert.Equal(t, 20.0, node.Bounds.MinLng)
	assert.Equal(t, 20.003, node.Bounds.MaxLng)
}

func TestLayerize_Idempotent(t *testing.T) {
	t.Parallel()

	markers := []domain.MarkerDescriptor{
		markerAt("a", domain.BucketCommon, -23.5505, -46.6333),
		markerAt("b", domain.BucketCommon, -23.5530, -46.6350),
		markerAt("c", domain.BucketCommon, -23.5600, -46.6400),
		markerAt("d", domain.BucketPromotion, -23.5505, -46.6333),
	}
	m := NewManager(DefaultRadiusPx)

	first := m.Layerize(markers, 11)
	second := m.Layerize(markers, 11)
	assert.Equal(t, first, second, "identical input and zoom must produce identical layers")
}

func TestLayerize_LayerOrderDescendingPriority(t *testing.T) {
	t.Parallel()

	markers := []domain.MarkerDescriptor{
		markerAt("c", domain.BucketCommon, 1, 1),
		markerAt("s", domain.BucketSearchResults, 2, 2),
		markerAt("p", domain.BucketPremium, 3, 3),
		markerAt("m", domain.BucketPromotion, 4, 4),
	}

	layers := NewManager(DefaultRadiusPx).Layerize(markers, 12)
	require.Len(t, layers, 4)
	assert.Equal(t, domain.BucketSearchResults, layers[0].Bucket)
	assert.Equal(t, domain.BucketPremium, layers[1].Bucket)
	assert.Equal(t, domain.BucketPromotion, layers[2].Bucket)
	assert.Equal(t, domain.BucketCommon, layers[3].Bucket)
}

func TestLayerize_EmptyInput(t *testing.T) {
	t.Parallel()

	assert.Empty(t, NewManager(DefaultRadiusPx).Layerize(nil, 12))
}

func TestNewManager_NonPositiveRadiusFallsBack(t *testing.T) {
	t.Parallel()

	m := NewManager(0)
	assert.Equal(t, float64(DefaultRadiusPx), m.radiusPx)
}
