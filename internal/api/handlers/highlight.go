package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/feiramap/feiramap/internal/engine"
)

// HighlightHandler reads and writes the hover highlight.
type HighlightHandler struct {
	engine *engine.Engine
}

// NewHighlightHandler creates a new HighlightHandler.
func NewHighlightHandler(e *engine.Engine) *HighlightHandler {
	return &HighlightHandler{engine: e}
}

// SetHighlightInput is the request body for the highlight put endpoint.
type SetHighlightInput struct {
	Body struct {
		VendorID *string `json:"vendor_id" doc:"Vendor to highlight; null clears the highlight"`
	}
}

// HighlightOutput is the response body for both highlight endpoints.
type HighlightOutput struct {
	Body struct {
		VendorID *string `json:"vendor_id" doc:"Currently highlighted vendor, null when none"`
	}
}

// SetHighlight records the hovered vendor. Rapid hover changes are
// last-write-wins; there is no queue to drain.
func (h *HighlightHandler) SetHighlight(_ context.Context, input *SetHighlightInput) (*HighlightOutput, error) {
	h.engine.SetHighlight(input.Body.VendorID)

	out := &HighlightOutput{}
	out.Body.VendorID = h.engine.Highlight()
	return out, nil
}

// GetHighlightInput is the (empty) request for the highlight get endpoint.
type GetHighlightInput struct{}

// GetHighlight returns the currently highlighted vendor.
func (h *HighlightHandler) GetHighlight(_ context.Context, _ *GetHighlightInput) (*HighlightOutput, error) {
	out := &HighlightOutput{}
	out.Body.VendorID = h.engine.Highlight()
	return out, nil
}

// RegisterHighlightRoutes registers highlight endpoints with the Huma API.
func RegisterHighlightRoutes(api huma.API, h *HighlightHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "set-highlight",
		Method:      http.MethodPut,
		Path:        "/api/v1/highlight",
		Summary:     "Set the highlighted vendor",
		Description: "Records the hovered vendor for cross-surface emphasis; last write wins.",
		Tags:        []string{"highlight"},
	}, h.SetHighlight)

	huma.Register(api, huma.Operation{
		OperationID: "get-highlight",
		Method:      http.MethodGet,
		Path:        "/api/v1/highlight",
		Summary:     "Read the highlighted vendor",
		Tags:        []string{"highlight"},
	}, h.GetHighlight)
}
