package client

import (
	"context"

	"github.com/feiramap/feiramap/internal/engine"
	"github.com/feiramap/feiramap/pkg/geomath"
	domain "github.com/feiramap/feiramap/pkg/types"
)

// IngestSnapshot replaces the server's working snapshot.
func (c *Client) IngestSnapshot(ctx context.Context, offers []domain.Offer) (*engine.IngestStats, error) {
	body := struct {
		Offers []domain.Offer `json:"offers"`
	}{Offers: offers}

	var stats engine.IngestStats
	if err := c.post(ctx, "/api/v1/snapshots", body, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// RankResponse wraps a rank endpoint response.
type RankResponse struct {
	Results           []domain.ScoredOffer `json:"results"`
	FilteredGeometry  int                  `json:"filtered_geometry"`
	PricelessExcluded int                  `json:"priceless_excluded"`
}

// Rank scores and ranks offers against an optional origin.
func (c *Client) Rank(ctx context.Context, offers []domain.Offer, origin *geomath.Point, topPicks int) (*RankResponse, error) {
	body := struct {
		Offers   []domain.Offer `json:"offers"`
		Origin   *geomath.Point `json:"origin,omitempty"`
		TopPicks int            `json:"top_picks,omitempty"`
	}{Offers: offers, Origin: origin, TopPicks: topPicks}

	var resp RankResponse
	if err := c.post(ctx, "/api/v1/rank", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchResponse wraps a search endpoint response.
type SearchResponse struct {
	Matches int    `json:"matches"`
	Mode    string `json:"mode"`
}

// Search updates the server's active search result set.
func (c *Client) Search(ctx context.Context, query string) (*SearchResponse, error) {
	body := struct {
		Query string `json:"query"`
	}{Query: query}

	var resp SearchResponse
	if err := c.post(ctx, "/api/v1/search", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClearSearch discards the server's search result set.
func (c *Client) ClearSearch(ctx context.Context) error {
	return c.del(ctx, "/api/v1/search", nil)
}

// ViewResponse wraps a view endpoint response.
type ViewResponse struct {
	Mode    string               `json:"mode"`
	Results []domain.ScoredOffer `json:"results,omitempty"`
}

// SetView toggles the server's view mode.
func (c *Client) SetView(ctx context.Context, mode string) (*ViewResponse, error) {
	body := struct {
		Mode string `json:"mode"`
	}{Mode: mode}

	var resp ViewResponse
	if err := c.put(ctx, "/api/v1/view", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LayersResponse wraps a layers endpoint response.
type LayersResponse struct {
	SnapshotID string                `json:"snapshot_id"`
	Mode       string                `json:"mode"`
	Zoom       int                   `json:"zoom"`
	Layers     []domain.ClusterLayer `json:"layers"`
}

// Layers computes cluster layers for a zoom level.
func (c *Client) Layers(ctx context.Context, zoom int, origin *geomath.Point) (*LayersResponse, error) {
	body := struct {
		Zoom   int            `json:"zoom"`
		Origin *geomath.Point `json:"origin,omitempty"`
	}{Zoom: zoom, Origin: origin}

	var resp LayersResponse
	if err := c.post(ctx, "/api/v1/layers", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HighlightResponse wraps a highlight endpoint response.
type HighlightResponse struct {
	VendorID *string `json:"vendor_id"`
}

// SetHighlight records the hovered vendor; nil clears it.
func (c *Client) SetHighlight(ctx context.Context, vendorID *string) (*HighlightResponse, error) {
	body := struct {
		VendorID *string `json:"vendor_id"`
	}{VendorID: vendorID}

	var resp HighlightResponse
	if err := c.put(ctx, "/api/v1/highlight", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetHighlight reads the currently highlighted vendor.
func (c *Client) GetHighlight(ctx context.Context) (*HighlightResponse, error) {
	var resp HighlightResponse
	if err := c.get(ctx, "/api/v1/highlight", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
