// Package handlers implements HTTP handlers for the feiramap API.
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/feiramap/feiramap/internal/engine"
)

// HealthHandler provides health and readiness endpoints.
type HealthHandler struct {
	engine *engine.Engine
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(e *engine.Engine) *HealthHandler {
	return &HealthHandler{engine: e}
}

// Healthz returns 200 if the process is running.
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz returns 200 once a snapshot has been loaded, 503 before that.
// A map server with no offers cannot serve layers.
func (h *HealthHandler) Readyz(c echo.Context) error {
	if h.engine.SnapshotID() == "" {
		return c.JSON(
			http.StatusServiceUnavailable,
			map[string]string{"status": "no snapshot"},
		)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}
