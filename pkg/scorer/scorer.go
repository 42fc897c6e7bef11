// Package score computes the composite price/proximity score for
// competing offers. Scoring is a pure function over an immutable input
// set: re-running with the same offers and origin yields identical
// scores.
package score

import (
	"github.com/feiramap/feiramap/pkg/geomath"
	domain "github.com/feiramap/feiramap/pkg/types"
)

// neutralNorm is the midpoint used when a signal carries no information:
// unknown vendor location, missing origin, or a degenerate value range.
const neutralNorm = 0.5

// Weights defines the relative importance of price versus distance.
type Weights struct {
	Price    float64
	Distance float64
}

// DefaultWeights returns the default scoring weights. Price dominates:
// users opened a price-comparison view, proximity is a secondary signal.
func DefaultWeights() Weights {
	return Weights{
		Price:    0.60,
		Distance: 0.40,
	}
}

// Valid reports whether the weights are non-negative and sum to 1.
func (w Weights) Valid() bool {
	if w.Price < 0 || w.Distance < 0 {
		return false
	}
	sum := w.Price + w.Distance
	return sum > 0.999 && sum < 1.001
}

// Score computes a composite score in [0,1] for every offer; lower is
// better. The output preserves input order and length.
//
// Price is min-max normalized over the set's effective prices. Distance
// is normalized against the farthest observed vendor when an origin is
// available; offers without a usable location (or when origin is nil)
// take the neutral midpoint so unknown geography is neither a penalty
// nor a bonus. Promotion status never enters the score: the discount is
// already reflected in the effective price, and counting it again would
// double-weight it.
//
// Offers without a usable price also take the neutral price midpoint;
// callers that rank exclude them beforehand.
func Score(offers []domain.Offer, origin *geomath.Point, w Weights) []domain.ScoredOffer {
	if len(offers) == 0 {
		return []domain.ScoredOffer{}
	}

	prices := make([]float64, len(offers))
	priced := make([]bool, len(offers))
	minPrice, maxPrice, anyPrice := 0.0, 0.0, false
	for i := range offers {
		p, ok := offers[i].EffectivePrice()
		prices[i], priced[i] = p, ok
		if !ok {
			continue
		}
		if !anyPrice || p < minPrice {
			minPrice = p
		}
		if !anyPrice || p > maxPrice {
			maxPrice = p
		}
		anyPrice = true
	}

	dists := distances(offers, origin)
	maxDist := 0.0
	for _, d := range dists {
		if d != nil && *d > maxDist {
			maxDist = *d
		}
	}

	scored := make([]domain.ScoredOffer, len(offers))
	for i := range offers {
		s := domain.ScoredOffer{Offer: offers[i]}

		s.PriceNorm = neutralNorm
		if priced[i] {
			s.PriceNorm = geomath.Normalize(prices[i], minPrice, maxPrice)
		}

		s.DistNorm = neutralNorm
		if dists[i] != nil {
			s.DistanceKm = dists[i]
			s.DistNorm = geomath.Normalize(*dists[i], 0, maxDist)
		}

		s.Score = w.Price*s.PriceNorm + w.Distance*s.DistNorm
		scored[i] = s
	}

	return scored
}

// distances returns the vendor distance from origin per offer, nil where
// no distance can be computed.
func distances(offers []domain.Offer, origin *geomath.Point) []*float64 {
	dists := make([]*float64, len(offers))
	if origin == nil || !origin.Valid() {
		return dists
	}
	for i := range offers {
		if !offers[i].HasValidLocation() {
			continue
		}
		d := geomath.DistanceKm(*origin, *offers[i].Vendor.Location)
		dists[i] = &d
	}
	return dists
}
