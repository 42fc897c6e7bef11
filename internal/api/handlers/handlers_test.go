package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feiramap/feiramap/internal/api/handlers"
	"github.com/feiramap/feiramap/internal/engine"
	score "github.com/feiramap/feiramap/pkg/scorer"
)

func sampleOfferBodies() []map[string]any {
	return []map[string]any{
		{
			"id":         "o1",
			"product_id": "p1",
			"title":      "banana prata",
			"price":      10.0,
			"vendor": map[string]any{
				"id":       "v1",
				"name":     "Banca do Zé",
				"plan":     "free",
				"location": map[string]any{"lat": -23.5505, "lng": -46.6333},
			},
		},
		{
			"id":         "o2",
			"product_id": "p1",
			"title":      "banana nanica",
			"price":      20.0,
			"vendor": map[string]any{
				"id":       "v2",
				"name":     "Hortifruti Sol",
				"plan":     "premium",
				"location": map[string]any{"lat": -23.5530, "lng": -46.6350},
			},
		},
		{
			"id":         "bad",
			"product_id": "p9",
			"title":      "fora do mapa",
			"price":      5.0,
			"vendor": map[string]any{
				"id":       "v9",
				"name":     "Inválido",
				"plan":     "free",
				"location": map[string]any{"lat": 95.0, "lng": 0.0},
			},
		},
	}
}

func TestSnapshotsHandler_Ingest(t *testing.T) {
	t.Parallel()

	e := engine.New()
	_, api := humatest.New(t)
	handlers.RegisterSnapshotRoutes(api, handlers.NewSnapshotsHandler(e))

	resp := api.Post("/api/v1/snapshots", map[string]any{
		"offers": sampleOfferBodies(),
	})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"accepted":2`)
	assert.Contains(t, resp.Body.String(), `"filtered_geometry":1`)
	assert.NotEmpty(t, e.SnapshotID())
}

func TestRankHandler_Rank(t *testing.T) {
	t.Parallel()

	_, api := humatest.New(t)
	handlers.RegisterRankRoutes(api, handlers.NewRankHandler(score.DefaultWeights(), 3))

	t.Run("ranks offers against an origin", func(t *testing.T) {
		t.Parallel()
		resp := api.Post("/api/v1/rank", map[string]any{
			"offers": sampleOfferBodies()[:2],
			"origin": map[string]any{"lat": -23.5505, "lng": -46.6333},
		})
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"rank":1`)
		assert.Contains(t, resp.Body.String(), `"top_pick":true`)
	})

	t.Run("rejects out-of-range origin", func(t *testing.T) {
		t.Parallel()
		resp := api.Post("/api/v1/rank", map[string]any{
			"offers": sampleOfferBodies()[:1],
			"origin": map[string]any{"lat": 123.0, "lng": 0.0},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})
}

// sessionAPI wires every session handler onto one engine.
func sessionAPI(t *testing.T) (humatest.TestAPI, *engine.Engine) {
	t.Helper()

	e := engine.New()
	_, api := humatest.New(t)
	handlers.RegisterSnapshotRoutes(api, handlers.NewSnapshotsHandler(e))
	handlers.RegisterSearchRoutes(api, handlers.NewSearchHandler(e))
	handlers.RegisterViewRoutes(api, handlers.NewViewHandler(e))
	handlers.RegisterLayerRoutes(api, handlers.NewLayersHandler(e))
	handlers.RegisterHighlightRoutes(api, handlers.NewHighlightHandler(e))

	resp := api.Post("/api/v1/snapshots", map[string]any{
		"offers": sampleOfferBodies(),
	})
	require.Equal(t, http.StatusOK, resp.Code)
	return api, e
}

func TestViewHandler_RequiresSearch(t *testing.T) {
	t.Parallel()

	api, _ := sessionAPI(t)

	resp := api.Put("/api/v1/view", map[string]any{"mode": "best_price"})
	assert.Equal(t, http.StatusConflict, resp.Code)

	resp = api.Post("/api/v1/search", map[string]any{"query": "banana"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"matches":2`)

	resp = api.Put("/api/v1/view", map[string]any{"mode": "best_price"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"mode":"best_price"`)
	assert.Contains(t, resp.Body.String(), `"rank":1`)
}

func TestViewHandler_RejectsUnknownMode(t *testing.T) {
	t.Parallel()

	api, _ := sessionAPI(t)
	resp := api.Put("/api/v1/view", map[string]any{"mode": "satellite"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestSearchHandler_ClearReturnsToDefault(t *testing.T) {
	t.Parallel()

	api, e := sessionAPI(t)

	api.Post("/api/v1/search", map[string]any{"query": "banana"})
	require.NoError(t, e.SetMode(engine.ModeBestPrice))

	resp := api.Delete("/api/v1/search")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"mode":"default"`)
	assert.Equal(t, engine.ModeDefault, e.Mode())
}

func TestLayersHandler_Layers(t *testing.T) {
	t.Parallel()

	api, _ := sessionAPI(t)

	resp := api.Post("/api/v1/layers", map[string]any{"zoom": 17})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"zoom":17`)
	assert.Contains(t, resp.Body.String(), `"bucket":"premium"`)
	assert.Contains(t, resp.Body.String(), `"bucket":"common"`)

	resp = api.Post("/api/v1/layers", map[string]any{
		"zoom":   17,
		"origin": map[string]any{"lat": 95.0, "lng": 0.0},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestHighlightHandler_LastWriteWins(t *testing.T) {
	t.Parallel()

	api, e := sessionAPI(t)

	resp := api.Put("/api/v1/highlight", map[string]any{"vendor_id": "v1"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = api.Put("/api/v1/highlight", map[string]any{"vendor_id": "v2"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = api.Get("/api/v1/highlight")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"vendor_id":"v2"`)
	require.NotNil(t, e.Highlight())

	resp = api.Put("/api/v1/highlight", map[string]any{"vendor_id": nil})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Nil(t, e.Highlight())
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	h := handlers.NewHealthHandler(engine.New())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Healthz(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadyz(t *testing.T) {
	t.Parallel()

	eng := engine.New()
	h := handlers.NewHealthHandler(eng)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/readyz", http.NoBody)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Readyz(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	eng.LoadSnapshot(nil)
	rec = httptest.NewRecorder()
	require.NoError(t, h.Readyz(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
}
