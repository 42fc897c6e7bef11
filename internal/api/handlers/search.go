package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/feiramap/feiramap/internal/engine"
)

// SearchHandler drives the session search result set.
type SearchHandler struct {
	engine *engine.Engine
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(e *engine.Engine) *SearchHandler {
	return &SearchHandler{engine: e}
}

// SearchInput is the request body for the search endpoint.
type SearchInput struct {
	Body struct {
		Query string `json:"query" minLength:"1" doc:"Product title substring or exact product id" example:"banana prata"`
	}
}

// SearchOutput is the response body for the search endpoint.
type SearchOutput struct {
	Body struct {
		Matches int    `json:"matches" doc:"Offers in the new search result set"`
		Mode    string `json:"mode" doc:"View mode after the search"`
	}
}

// Search updates the active search result set. While in best-price mode
// this re-runs the ranking pipeline immediately.
func (h *SearchHandler) Search(_ context.Context, input *SearchInput) (*SearchOutput, error) {
	matches := h.engine.Search(input.Body.Query)

	out := &SearchOutput{}
	out.Body.Matches = matches
	out.Body.Mode = string(h.engine.Mode())
	return out, nil
}

// ClearSearchInput is the (empty) request for the search clear endpoint.
type ClearSearchInput struct{}

// ClearSearchOutput is the response body for the search clear endpoint.
type ClearSearchOutput struct {
	Body struct {
		Mode string `json:"mode" doc:"View mode after clearing the search"`
	}
}

// ClearSearch discards the search result set and returns to default mode.
func (h *SearchHandler) ClearSearch(_ context.Context, _ *ClearSearchInput) (*ClearSearchOutput, error) {
	h.engine.ClearSearch()

	out := &ClearSearchOutput{}
	out.Body.Mode = string(h.engine.Mode())
	return out, nil
}

// RegisterSearchRoutes registers search endpoints with the Huma API.
func RegisterSearchRoutes(api huma.API, h *SearchHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "search-offers",
		Method:      http.MethodPost,
		Path:        "/api/v1/search",
		Summary:     "Search the snapshot",
		Description: "Filters the working snapshot and makes the matches the active search result set.",
		Tags:        []string{"search"},
	}, h.Search)

	huma.Register(api, huma.Operation{
		OperationID: "clear-search",
		Method:      http.MethodDelete,
		Path:        "/api/v1/search",
		Summary:     "Clear the search",
		Description: "Discards the active search result set and returns to the default view.",
		Tags:        []string{"search"},
	}, h.ClearSearch)
}
