package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/feiramap/feiramap/internal/engine"
	"github.com/feiramap/feiramap/pkg/geomath"
	score "github.com/feiramap/feiramap/pkg/scorer"
	domain "github.com/feiramap/feiramap/pkg/types"
)

// RankHandler scores and ranks inline offer lists. The endpoint is
// stateless: nothing it does touches the session engine, so batch
// callers can rank candidate sets without disturbing the live view.
type RankHandler struct {
	weights  score.Weights
	topPicks int
}

// NewRankHandler creates a new RankHandler.
func NewRankHandler(w score.Weights, topPicks int) *RankHandler {
	return &RankHandler{weights: w, topPicks: topPicks}
}

// RankInput is the request body for the rank endpoint.
type RankInput struct {
	Body struct {
		Offers   []domain.Offer `json:"offers" doc:"Offers to score and rank"`
		Origin   *geomath.Point `json:"origin,omitempty" doc:"Shopper location; omit for neutral distances"`
		TopPicks int            `json:"top_picks,omitempty" minimum:"0" doc:"Ranks receiving the top-pick treatment (default 3)"`
	}
}

// RankOutput is the response body for the rank endpoint.
type RankOutput struct {
	Body struct {
		Results           []domain.ScoredOffer `json:"results" doc:"Offers in rank order"`
		FilteredGeometry  int                  `json:"filtered_geometry" doc:"Offers dropped for invalid coordinates"`
		PricelessExcluded int                  `json:"priceless_excluded" doc:"Offers excluded for missing prices"`
	}
}

// Rank scores the submitted offers against the optional origin and
// returns them in rank order.
func (h *RankHandler) Rank(_ context.Context, input *RankInput) (*RankOutput, error) {
	origin := input.Body.Origin
	if origin != nil && !origin.Valid() {
		return nil, huma.Error422UnprocessableEntity("origin coordinates out of range")
	}

	topN := input.Body.TopPicks
	if topN == 0 {
		topN = h.topPicks
	}

	valid, filtered := engine.ValidateOffers(input.Body.Offers)
	ranked, priceless := engine.RankOffers(valid, origin, h.weights, topN)

	out := &RankOutput{}
	out.Body.Results = ranked
	out.Body.FilteredGeometry = filtered
	out.Body.PricelessExcluded = priceless
	return out, nil
}

// RegisterRankRoutes registers rank endpoints with the Huma API.
func RegisterRankRoutes(api huma.API, h *RankHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "rank-offers",
		Method:      http.MethodPost,
		Path:        "/api/v1/rank",
		Summary:     "Score and rank offers",
		Description: "Computes composite price/distance scores and dense ranks for the submitted offers.",
		Tags:        []string{"ranking"},
		Errors:      []int{http.StatusUnprocessableEntity},
	}, h.Rank)
}
