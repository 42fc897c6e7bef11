package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/feiramap/feiramap/internal/engine"
	domain "github.com/feiramap/feiramap/pkg/types"
)

// SnapshotsHandler ingests offer snapshots into the engine.
type SnapshotsHandler struct {
	engine *engine.Engine
}

// NewSnapshotsHandler creates a new SnapshotsHandler.
func NewSnapshotsHandler(e *engine.Engine) *SnapshotsHandler {
	return &SnapshotsHandler{engine: e}
}

// IngestInput is the request body for the snapshot ingest endpoint.
type IngestInput struct {
	Body struct {
		Offers []domain.Offer `json:"offers" doc:"Offers for the new snapshot; replaces the current one"`
	}
}

// IngestOutput is the response body for the snapshot ingest endpoint.
type IngestOutput struct {
	Body engine.IngestStats
}

// Ingest replaces the working snapshot. Offers with malformed
// coordinates are dropped and counted, not rejected wholesale.
func (h *SnapshotsHandler) Ingest(_ context.Context, input *IngestInput) (*IngestOutput, error) {
	stats := h.engine.LoadSnapshot(input.Body.Offers)

	out := &IngestOutput{}
	out.Body = stats
	return out, nil
}

// RegisterSnapshotRoutes registers snapshot endpoints with the Huma API.
func RegisterSnapshotRoutes(api huma.API, h *SnapshotsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "ingest-snapshot",
		Method:      http.MethodPost,
		Path:        "/api/v1/snapshots",
		Summary:     "Ingest an offer snapshot",
		Description: "Replaces the working snapshot, filtering offers with invalid coordinates.",
		Tags:        []string{"snapshots"},
	}, h.Ingest)
}
