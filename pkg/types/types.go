// Package domain defines the core business types for the feiramap
// proximity-ranking and map-clustering engine.
package domain

import (
	"time"

	"github.com/feiramap/feiramap/pkg/geomath"
)

// PlanTier represents a vendor's subscription level.
type PlanTier string

// Plan tier constants, ascending visual priority.
const (
	PlanFree       PlanTier = "free"
	PlanBasic      PlanTier = "basic"
	PlanPremium    PlanTier = "premium"
	PlanPremiumMax PlanTier = "premium_max"
)

// ParsePlanTier normalizes a raw catalog plan name. Unknown or missing
// plans fall back to the free tier; display tier is cosmetic, so this is
// fail-open by policy.
func ParsePlanTier(s string) PlanTier {
	switch PlanTier(s) {
	case PlanBasic, PlanPremium, PlanPremiumMax:
		return PlanTier(s)
	default:
		return PlanFree
	}
}

// Bucket names the independent cluster layers. Clustering never merges
// across buckets, so higher-priority buckets are never buried under
// lower-priority ones.
type Bucket string

// Bucket constants, ascending visual priority.
const (
	BucketCommon        Bucket = "common"
	BucketPromotion     Bucket = "promotion"
	BucketPremium       Bucket = "premium"
	BucketSearchResults Bucket = "searchResults"
)

// Vendor is a snapshot of an independent seller embedded in each offer.
// Owned by the catalog subsystem; this engine only reads it.
type Vendor struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	AvatarURL string         `json:"avatar_url,omitempty"`
	Location  *geomath.Point `json:"location,omitempty"`
	Plan      PlanTier       `json:"plan"`
}

// Offer is a product instance attached to one vendor with a price.
type Offer struct {
	ID            string   `json:"id"`
	ProductID     string   `json:"product_id"`
	Title         string   `json:"title"`
	ImageURL      string   `json:"image_url,omitempty"`
	Vendor        Vendor   `json:"vendor"`
	Price         *float64 `json:"price,omitempty"`
	DiscountPrice *float64 `json:"discount_price,omitempty"`
	OnPromotion   bool     `json:"on_promotion"`
	Currency      string   `json:"currency,omitempty"`
}

// EffectivePrice returns the price used for scoring: the discount price
// when the offer is on promotion and one is set, otherwise the list
// price. The second return is false when the offer has no usable price
// at all, in which case it cannot be ranked.
func (o *Offer) EffectivePrice() (float64, bool) {
	if o.OnPromotion && o.DiscountPrice != nil {
		return *o.DiscountPrice, true
	}
	if o.Price != nil {
		return *o.Price, true
	}
	return 0, false
}

// HasValidLocation reports whether the offer's vendor carries a valid
// coordinate. Offers without one degrade to a neutral distance signal.
func (o *Offer) HasValidLocation() bool {
	return o.Vendor.Location != nil && o.Vendor.Location.Valid()
}

// ScoredOffer is an offer annotated by one ranking pass. It is
// recomputed on every new search or view-mode toggle and never persisted.
type ScoredOffer struct {
	Offer

	Score      float64  `json:"score"`
	PriceNorm  float64  `json:"price_norm"`
	DistNorm   float64  `json:"dist_norm"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
	Rank       *int     `json:"rank,omitempty"`
	TopPick    bool     `json:"top_pick"`
}

// MarkerDescriptor is the renderable description of one map marker.
// It is plain data: a separate renderer translates descriptors into
// whatever primitives the mapping surface uses.
type MarkerDescriptor struct {
	ID            string        `json:"id"`
	VendorID      string        `json:"vendor_id"`
	Position      geomath.Point `json:"position"`
	Bucket        Bucket        `json:"bucket"`
	Tier          PlanTier      `json:"tier"`
	SizePx        int           `json:"size_px"`
	Badge         bool          `json:"badge"`
	CornerBadge   bool          `json:"corner_badge"`
	StackPriority int           `json:"stack_priority"`
	Pulsing       bool          `json:"pulsing"`
	Highlighted   bool          `json:"highlighted"`
	LabelVisible  bool          `json:"label_visible"`
	LabelFontPx   int           `json:"label_font_px"`
	Color         string        `json:"color"`
}

// BBox is a geographic bounding box around a cluster's members.
type BBox struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

// ClusterNode is an aggregate marker standing in for two or more nearby
// markers at the current zoom level.
type ClusterNode struct {
	ID        string        `json:"id"`
	Position  geomath.Point `json:"position"` // centroid of member positions
	Count     int           `json:"count"`
	Bounds    BBox          `json:"bounds"`
	MemberIDs []string      `json:"member_ids"`
}

// ClusterLayer is one named bucket of markers and clusters, ready for
// the rendering surface.
type ClusterLayer struct {
	Bucket   Bucket             `json:"bucket"`
	Markers  []MarkerDescriptor `json:"markers"`
	Clusters []ClusterNode      `json:"clusters"`
}

// Snapshot is an immutable set of offers fetched for the current view.
// One pipeline run operates on exactly one snapshot.
type Snapshot struct {
	ID        string    `json:"id"`
	Offers    []Offer   `json:"offers"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Vendors returns the distinct vendors appearing in the snapshot, in
// first-seen order.
func (s *Snapshot) Vendors() []Vendor {
	seen := make(map[string]struct{}, len(s.Offers))
	vendors := make([]Vendor, 0, len(s.Offers))
	for i := range s.Offers {
		v := s.Offers[i].Vendor
		if _, ok := seen[v.ID]; ok {
			continue
		}
		seen[v.ID] = struct{}{}
		vendors = append(vendors, v)
	}
	return vendors
}

// VendorOnPromotion reports whether any offer from the given vendor in
// the snapshot is currently on promotion.
func (s *Snapshot) VendorOnPromotion(vendorID string) bool {
	for i := range s.Offers {
		if s.Offers[i].Vendor.ID == vendorID && s.Offers[i].OnPromotion {
			return true
		}
	}
	return false
}
