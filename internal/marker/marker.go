// Package marker converts vendors and scored offers into renderable
// marker descriptors. Descriptors are plain data; a renderer elsewhere
// turns them into drawing primitives, keeping the scoring and clustering
// logic independent of any mapping library.
package marker

import (
	"github.com/feiramap/feiramap/pkg/tier"
	domain "github.com/feiramap/feiramap/pkg/types"
)

// Marker pixel sizes per visual tier.
const (
	baseSizePx      = 40
	badgeSizePx     = 48
	spotlightSizePx = 56
)

// Label font sizes. The larger size applies from Config.LargeFontZoom.
const (
	baseFontPx  = 11
	largeFontPx = 13
)

// TopPickStackPriority is the stacking band forced onto top-3 search
// results so best-price winners are never obscured by premium-tier
// vendors that are not part of the current search.
const TopPickStackPriority = 1000

// Color tokens per bucket. The exact palette is an external styling
// concern; these are contract names.
const (
	colorNeutral     = "neutral"
	colorAccentGreen = "accent-green"
	colorGold        = "gold"
	colorBrightGreen = "bright-green"
)

// Config holds the zoom thresholds controlling label rendering.
type Config struct {
	LabelMinZoom  int
	LargeFontZoom int
}

// DefaultConfig returns the standard zoom thresholds: labels appear at
// city-block zoom, the larger font one level deeper.
func DefaultConfig() Config {
	return Config{
		LabelMinZoom:  15,
		LargeFontZoom: 16,
	}
}

// Factory builds marker descriptors for a fixed zoom-threshold config.
type Factory struct {
	cfg Config
}

// NewFactory creates a marker factory.
func NewFactory(cfg Config) *Factory {
	return &Factory{cfg: cfg}
}

// BucketFor decides which cluster layer a marker belongs to. Search
// results always take the dedicated bucket; otherwise spotlight vendors
// go to premium, promoted vendors to promotion, and everyone else to
// common.
func BucketFor(c tier.Classification, onPromotion, searchResult bool) domain.Bucket {
	switch {
	case searchResult:
		return domain.BucketSearchResults
	case c.HasSpotlight:
		return domain.BucketPremium
	case onPromotion:
		return domain.BucketPromotion
	default:
		return domain.BucketCommon
	}
}

// ColorFor maps a bucket to its color token. A pure function of bucket.
func ColorFor(b domain.Bucket) string {
	switch b {
	case domain.BucketPromotion:
		return colorAccentGreen
	case domain.BucketPremium:
		return colorGold
	case domain.BucketSearchResults:
		return colorBrightGreen
	default:
		return colorNeutral
	}
}

// Build creates the descriptor for one vendor at the given zoom level.
// scored is nil outside of best-price mode; when present the marker
// represents an active search result. The vendor must carry a valid
// location: unlocatable vendors are filtered before marker generation.
func (f *Factory) Build(
	v *domain.Vendor,
	c tier.Classification,
	scored *domain.ScoredOffer,
	onPromotion bool,
	zoom int,
) domain.MarkerDescriptor {
	bucket := BucketFor(c, onPromotion, scored != nil)

	m := domain.MarkerDescriptor{
		ID:            "vendor:" + v.ID,
		VendorID:      v.ID,
		Position:      *v.Location,
		Bucket:        bucket,
		Tier:          c.Tier,
		SizePx:        baseSizePx,
		Badge:         c.HasBadge,
		CornerBadge:   c.HasSpotlight,
		StackPriority: c.StackPriority,
		LabelVisible:  zoom >= f.cfg.LabelMinZoom,
		LabelFontPx:   baseFontPx,
		Color:         ColorFor(bucket),
	}

	if c.HasSpotlight {
		m.SizePx = spotlightSizePx
	} else if c.HasBadge {
		m.SizePx = badgeSizePx
	}

	if m.LabelVisible && zoom >= f.cfg.LargeFontZoom {
		m.LabelFontPx = largeFontPx
	}

	if scored != nil {
		m.ID = "offer:" + scored.ID
		m.Pulsing = true
		if scored.TopPick {
			m.StackPriority = TopPickStackPriority
		}
	}

	return m
}
