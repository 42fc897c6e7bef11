// Package rank orders scored offers and assigns dense 1-based ranks.
package rank

import (
	"math"
	"sort"

	domain "github.com/feiramap/feiramap/pkg/types"
)

// Epsilon is the tolerance under which two composite scores are
// considered tied.
const Epsilon = 1e-9

// DefaultTopPicks is how many leading ranks get the top-pick marker.
const DefaultTopPicks = 3

// Assign stable-sorts scored offers ascending by score and annotates
// each with a distinct, contiguous rank starting at 1. Ties within
// Epsilon break first on lower effective price, then on input order
// (the stable sort preserves it). The input slice is not mutated.
//
// Offers ranked at or above topN are flagged as top picks; pass
// DefaultTopPicks for the standard medal set.
func Assign(scored []domain.ScoredOffer, topN int) []domain.ScoredOffer {
	out := make([]domain.ScoredOffer, len(scored))
	copy(out, scored)

	sort.SliceStable(out, func(i, j int) bool {
		if math.Abs(out[i].Score-out[j].Score) > Epsilon {
			return out[i].Score < out[j].Score
		}
		pi, iOK := out[i].EffectivePrice()
		pj, jOK := out[j].EffectivePrice()
		if iOK && jOK && pi != pj {
			return pi < pj
		}
		// Exact tie: stability keeps input order.
		return false
	})

	for i := range out {
		r := i + 1
		out[i].Rank = &r
		out[i].TopPick = r <= topN
	}

	return out
}
