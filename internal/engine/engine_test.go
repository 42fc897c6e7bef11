package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feiramap/feiramap/pkg/geomath"
	score "github.com/feiramap/feiramap/pkg/scorer"
	domain "github.com/feiramap/feiramap/pkg/types"
)

func fptr(v float64) *float64 { return &v }

func offer(id, vendorID, title string, price float64, plan domain.PlanTier, loc *geomath.Point) domain.Offer {
	return domain.Offer{
		ID:        id,
		ProductID: "prod-" + title,
		Title:     title,
		Price:     fptr(price),
		Vendor: domain.Vendor{
			ID:       vendorID,
			Name:     "Vendor " + vendorID,
			Plan:     plan,
			Location: loc,
		},
	}
}

func testOffers() []domain.Offer {
	return []domain.Offer{
		offer("o1", "v1", "banana prata", 10, domain.PlanFree,
			&geomath.Point{Lat: -23.5505, Lng: -46.6333}),
		offer("o2", "v2", "banana nanica", 20, domain.PlanPremium,
			&geomath.Point{Lat: -23.5530, Lng: -46.6350}),
		offer("o3", "v3", "manga tommy", 8, domain.PlanBasic,
			&geomath.Point{Lat: -23.5600, Lng: -46.6400}),
	}
}

func TestLoadSnapshot_FiltersInvalidGeometry(t *testing.T) {
	t.Parallel()

	offers := testOffers()
	offers = append(offers, offer("bad", "v4", "banana invalida", 5,
		domain.PlanFree, &geomath.Point{Lat: 95, Lng: 0}))

	e := New()
	stats := e.LoadSnapshot(offers)

	assert.NotEmpty(t, stats.SnapshotID)
	assert.Equal(t, 3, stats.Accepted)
	assert.Equal(t, 1, stats.FilteredGeometry)
	assert.Equal(t, ModeDefault, e.Mode())

	// The dropped offer must never surface, not even in search.
	assert.Equal(t, 2, e.Search("banana"))
}

func TestLoadSnapshot_KeepsUnlocatedVendors(t *testing.T) {
	t.Parallel()

	offers := []domain.Offer{
		offer("o1", "v1", "banana", 10, domain.PlanFree, nil),
	}

	e := New()
	stats := e.LoadSnapshot(offers)
	assert.Equal(t, 1, stats.Accepted)
	assert.Zero(t, stats.FilteredGeometry)
}

func TestSearch_MatchesTitleAndProductID(t *testing.T) {
	t.Parallel()

	e := New()
	e.LoadSnapshot(testOffers())

	assert.Equal(t, 2, e.Search("BANANA"), "title match is case-insensitive")
	assert.Equal(t, 1, e.Search("prod-manga tommy"), "product id matches exactly")
	assert.Equal(t, 1, e.Search("  prod-manga tommy  "), "product id match ignores surrounding whitespace")
	assert.Equal(t, 0, e.Search("abacaxi"))
	assert.Equal(t, 0, e.Search("  "))
}

func TestSetMode_BestPriceRequiresSearch(t *testing.T) {
	t.Parallel()

	e := New()
	e.LoadSnapshot(testOffers())

	err := e.SetMode(ModeBestPrice)
	require.ErrorIs(t, err, ErrNoSearchResults)
	assert.Equal(t, ModeDefault, e.Mode())

	e.Search("banana")
	require.NoError(t, e.SetMode(ModeBestPrice))
	assert.Equal(t, ModeBestPrice, e.Mode())
}

func TestSetMode_UnknownModeRejected(t *testing.T) {
	t.Parallel()

	e := New()
	assert.Error(t, e.SetMode(ViewMode("satellite")))
}

func TestRanked_DenseRanksAndTopPicks(t *testing.T) {
	t.Parallel()

	e := New()
	e.LoadSnapshot(testOffers())
	e.SetOrigin(&geomath.Point{Lat: -23.5505, Lng: -46.6333})
	e.Search("banana")
	require.NoError(t, e.SetMode(ModeBestPrice))

	ranked := e.Ranked()
	require.Len(t, ranked, 2)
	for _, so := range ranked {
		require.NotNil(t, so.Rank)
		assert.True(t, so.TopPick)
	}
	// o1 is cheaper and closer, so it must hold rank 1.
	assert.Equal(t, "o1", ranked[0].ID)
	assert.Equal(t, 1, *ranked[0].Rank)

	// Leaving best-price mode discards all annotations.
	require.NoError(t, e.SetMode(ModeDefault))
	assert.Empty(t, e.Ranked())
}

func TestRanked_ExcludesPricelessOffers(t *testing.T) {
	t.Parallel()

	offers := testOffers()
	priceless := offer("o4", "v4", "banana sem preco", 0, domain.PlanFree,
		&geomath.Point{Lat: -23.55, Lng: -46.63})
	priceless.Price = nil
	offers = append(offers, priceless)

	e := New()
	e.LoadSnapshot(offers)
	assert.Equal(t, 3, e.Search("banana"))
	require.NoError(t, e.SetMode(ModeBestPrice))

	ranked := e.Ranked()
	require.Len(t, ranked, 2)
	for _, so := range ranked {
		assert.NotEqual(t, "o4", so.ID)
	}
}

func TestLayers_DefaultModeOneMarkerPerLocatedVendor(t *testing.T) {
	t.Parallel()

	offers := testOffers()
	offers[2].OnPromotion = true
	offers[2].DiscountPrice = fptr(6)
	offers = append(offers, offer("o4", "v4", "uva", 12, domain.PlanFree, nil))

	e := New()
	e.LoadSnapshot(offers)
	e.SetZoom(17) // far apart at street scale, no clustering

	layers := e.Layers()

	var total int
	byBucket := make(map[domain.Bucket]domain.ClusterLayer)
	for _, l := range layers {
		byBucket[l.Bucket] = l
		total += len(l.Markers)
		assert.Empty(t, l.Clusters)
	}
	assert.Equal(t, 3, total, "unlocated vendor draws no marker")

	require.Len(t, byBucket[domain.BucketPremium].Markers, 1)
	assert.Equal(t, "v2", byBucket[domain.BucketPremium].Markers[0].VendorID)
	require.Len(t, byBucket[domain.BucketPromotion].Markers, 1)
	assert.Equal(t, "v3", byBucket[domain.BucketPromotion].Markers[0].VendorID)
	require.Len(t, byBucket[domain.BucketCommon].Markers, 1)
	assert.Equal(t, "v1", byBucket[domain.BucketCommon].Markers[0].VendorID)
}

func TestLayers_BestPriceModeShowsOnlySearchResults(t *testing.T) {
	t.Parallel()

	e := New()
	e.LoadSnapshot(testOffers())
	e.Search("banana")
	require.NoError(t, e.SetMode(ModeBestPrice))
	e.SetZoom(17)

	layers := e.Layers()
	require.Len(t, layers, 1)
	layer := layers[0]
	assert.Equal(t, domain.BucketSearchResults, layer.Bucket)
	require.Len(t, layer.Markers, 2)
	for _, m := range layer.Markers {
		assert.True(t, m.Pulsing)
	}
}

func TestLayers_ZoomControlsLabelsAndClustering(t *testing.T) {
	t.Parallel()

	// Two free-tier vendors ~300m apart: same bucket, so they may merge.
	offers := []domain.Offer{
		offer("o1", "v1", "banana prata", 10, domain.PlanFree,
			&geomath.Point{Lat: -23.5505, Lng: -46.6333}),
		offer("o2", "v2", "banana nanica", 20, domain.PlanFree,
			&geomath.Point{Lat: -23.5530, Lng: -46.6350}),
	}

	e := New()
	e.LoadSnapshot(offers)

	e.SetZoom(10)
	low := e.Layers()
	require.Len(t, low, 1)
	assert.Equal(t, domain.BucketCommon, low[0].Bucket)
	require.Len(t, low[0].Clusters, 1)
	assert.Equal(t, 2, low[0].Clusters[0].Count)

	e.SetZoom(17)
	high := e.Layers()
	require.Len(t, high, 1)
	assert.Empty(t, high[0].Clusters)
	require.Len(t, high[0].Markers, 2)
	for _, m := range high[0].Markers {
		assert.True(t, m.LabelVisible)
	}
}

func TestLayers_NearbyVendorsInDifferentBucketsNeverMerge(t *testing.T) {
	t.Parallel()

	// A free vendor and a premium vendor ~300m apart would merge at zoom 10
	// if they shared a bucket; they do not, so each keeps its own layer.
	e := New()
	e.LoadSnapshot(testOffers()[:2])
	e.SetZoom(10)

	layers := e.Layers()
	require.Len(t, layers, 2)
	assert.Equal(t, domain.BucketPremium, layers[0].Bucket)
	assert.Equal(t, domain.BucketCommon, layers[1].Bucket)
	for _, l := range layers {
		assert.Empty(t, l.Clusters)
		require.Len(t, l.Markers, 1)
	}
}

func TestHighlight_FlagsMarkersAndNotifiesListeners(t *testing.T) {
	t.Parallel()

	e := New()
	e.LoadSnapshot(testOffers())
	e.SetZoom(17)

	var notified []*string
	e.OnHighlight(func(id *string) {
		notified = append(notified, id)
	})

	v2 := "v2"
	e.SetHighlight(&v2)
	require.NotNil(t, e.Highlight())
	assert.Equal(t, "v2", *e.Highlight())

	for _, l := range e.Layers() {
		for _, m := range l.Markers {
			assert.Equal(t, m.VendorID == "v2", m.Highlighted)
		}
	}

	// Last write wins.
	v1 := "v1"
	e.SetHighlight(&v1)
	e.SetHighlight(nil)
	assert.Nil(t, e.Highlight())

	require.Len(t, notified, 3)
	assert.Equal(t, "v2", *notified[0])
	assert.Equal(t, "v1", *notified[1])
	assert.Nil(t, notified[2])
}

func TestSearch_RefinementDropsToDefaultWhenEmpty(t *testing.T) {
	t.Parallel()

	e := New()
	e.LoadSnapshot(testOffers())
	e.Search("banana")
	require.NoError(t, e.SetMode(ModeBestPrice))

	assert.Equal(t, 0, e.Search("abacaxi"))
	assert.Equal(t, ModeDefault, e.Mode())
	assert.Empty(t, e.Ranked())
}

func TestLoadSnapshot_ResetsSearchAndMode(t *testing.T) {
	t.Parallel()

	e := New()
	e.LoadSnapshot(testOffers())
	e.Search("banana")
	require.NoError(t, e.SetMode(ModeBestPrice))

	e.LoadSnapshot(testOffers())
	assert.Equal(t, ModeDefault, e.Mode())
	assert.Empty(t, e.Ranked())
	assert.ErrorIs(t, e.SetMode(ModeBestPrice), ErrNoSearchResults)
}

func TestSetOrigin_InvalidTreatedAsMissing(t *testing.T) {
	t.Parallel()

	e := New()
	e.LoadSnapshot(testOffers())
	e.Search("banana")
	require.NoError(t, e.SetMode(ModeBestPrice))

	e.SetOrigin(&geomath.Point{Lat: 200, Lng: 0})
	for _, so := range e.Ranked() {
		assert.Nil(t, so.DistanceKm)
		assert.InDelta(t, 0.5, so.DistNorm, 1e-9)
	}
}

func TestValidateOffers(t *testing.T) {
	t.Parallel()

	offers := []domain.Offer{
		offer("ok", "v1", "a", 1, domain.PlanFree, &geomath.Point{Lat: 0, Lng: 0}),
		offer("nil", "v2", "b", 1, domain.PlanFree, nil),
		offer("bad", "v3", "c", 1, domain.PlanFree, &geomath.Point{Lat: -91, Lng: 0}),
	}

	valid, filtered := ValidateOffers(offers)
	assert.Len(t, valid, 2)
	assert.Equal(t, 1, filtered)
}

func TestRankOffers_Pure(t *testing.T) {
	t.Parallel()

	offers := testOffers()
	ranked, excluded := RankOffers(offers, nil, score.DefaultWeights(), 3)
	require.Len(t, ranked, 3)
	assert.Zero(t, excluded)
	assert.Equal(t, "o3", ranked[0].ID, "cheapest offer wins without an origin")
}
