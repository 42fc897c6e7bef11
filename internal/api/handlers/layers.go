package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/feiramap/feiramap/internal/engine"
	"github.com/feiramap/feiramap/pkg/geomath"
	domain "github.com/feiramap/feiramap/pkg/types"
)

// LayersHandler runs the marker and clustering pipeline.
type LayersHandler struct {
	engine *engine.Engine
}

// NewLayersHandler creates a new LayersHandler.
func NewLayersHandler(e *engine.Engine) *LayersHandler {
	return &LayersHandler{engine: e}
}

// LayersInput is the request body for the layers endpoint.
type LayersInput struct {
	Body struct {
		Zoom   int            `json:"zoom" minimum:"0" maximum:"22" doc:"Map zoom level"`
		Origin *geomath.Point `json:"origin,omitempty" doc:"Shopper location for distance scoring"`
	}
}

// LayersOutput is the response body for the layers endpoint.
type LayersOutput struct {
	Body struct {
		SnapshotID string                `json:"snapshot_id" doc:"Working snapshot id"`
		Mode       string                `json:"mode" doc:"View mode the layers were computed for"`
		Zoom       int                   `json:"zoom" doc:"Zoom level the layers were computed for"`
		Layers     []domain.ClusterLayer `json:"layers" doc:"Cluster layers in descending visual priority"`
	}
}

// Layers computes cluster layers for the requested zoom level under the
// session's current view mode.
func (h *LayersHandler) Layers(_ context.Context, input *LayersInput) (*LayersOutput, error) {
	origin := input.Body.Origin
	if origin != nil && !origin.Valid() {
		return nil, huma.Error422UnprocessableEntity("origin coordinates out of range")
	}
	if origin != nil {
		h.engine.SetOrigin(origin)
	}
	h.engine.SetZoom(input.Body.Zoom)

	out := &LayersOutput{}
	out.Body.SnapshotID = h.engine.SnapshotID()
	out.Body.Mode = string(h.engine.Mode())
	out.Body.Zoom = h.engine.Zoom()
	out.Body.Layers = h.engine.Layers()
	return out, nil
}

// RegisterLayerRoutes registers layer endpoints with the Huma API.
func RegisterLayerRoutes(api huma.API, h *LayersHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "compute-layers",
		Method:      http.MethodPost,
		Path:        "/api/v1/layers",
		Summary:     "Compute cluster layers",
		Description: "Runs the marker and clustering pipeline for a zoom level under the current view mode.",
		Tags:        []string{"layers"},
		Errors:      []int{http.StatusUnprocessableEntity},
	}, h.Layers)
}
