package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/feiramap/feiramap/internal/engine"
	domain "github.com/feiramap/feiramap/pkg/types"
)

// ViewHandler toggles the session view mode.
type ViewHandler struct {
	engine *engine.Engine
}

// NewViewHandler creates a new ViewHandler.
func NewViewHandler(e *engine.Engine) *ViewHandler {
	return &ViewHandler{engine: e}
}

// ViewInput is the request body for the view endpoint.
type ViewInput struct {
	Body struct {
		Mode string `json:"mode" enum:"default,best_price" doc:"Target view mode"`
	}
}

// ViewOutput is the response body for the view endpoint.
type ViewOutput struct {
	Body struct {
		Mode    string               `json:"mode" doc:"View mode after the toggle"`
		Results []domain.ScoredOffer `json:"results,omitempty" doc:"Ranked search results, best-price mode only"`
	}
}

// SetView switches between the default and best-price views. Best-price
// needs an active search result set; without one the toggle is refused
// and the view stays where it was.
func (h *ViewHandler) SetView(_ context.Context, input *ViewInput) (*ViewOutput, error) {
	err := h.engine.SetMode(engine.ViewMode(input.Body.Mode))
	if errors.Is(err, engine.ErrNoSearchResults) {
		return nil, huma.Error409Conflict(err.Error())
	}
	if err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	out := &ViewOutput{}
	out.Body.Mode = string(h.engine.Mode())
	if h.engine.Mode() == engine.ModeBestPrice {
		out.Body.Results = h.engine.Ranked()
	}
	return out, nil
}

// RegisterViewRoutes registers view endpoints with the Huma API.
func RegisterViewRoutes(api huma.API, h *ViewHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "set-view-mode",
		Method:      http.MethodPut,
		Path:        "/api/v1/view",
		Summary:     "Toggle the view mode",
		Description: "Switches the session between the default and best-price views.",
		Tags:        []string{"view"},
		Errors:      []int{http.StatusConflict, http.StatusUnprocessableEntity},
	}, h.SetView)
}
