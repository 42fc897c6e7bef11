package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/feiramap/feiramap/api/openapi"
	"github.com/feiramap/feiramap/internal/api/handlers"
	"github.com/feiramap/feiramap/internal/api/middleware"
	"github.com/feiramap/feiramap/internal/catalog"
	"github.com/feiramap/feiramap/internal/config"
	"github.com/feiramap/feiramap/internal/engine"
	"github.com/feiramap/feiramap/internal/marker"
	"github.com/feiramap/feiramap/pkg/logger"
	score "github.com/feiramap/feiramap/pkg/scorer"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and snapshot scheduler",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	return config.Load(cfgFile)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	eng := engine.New(
		engine.WithLogger(log),
		engine.WithWeights(score.Weights{
			Price:    cfg.Scoring.Weights.Price,
			Distance: cfg.Scoring.Weights.Distance,
		}),
		engine.WithTopPicks(cfg.Scoring.TopPicks),
		engine.WithMarkerConfig(marker.Config{
			LabelMinZoom:  cfg.Marker.LabelMinZoom,
			LargeFontZoom: cfg.Marker.LargeFontZoom,
		}),
		engine.WithClusterRadius(cfg.Cluster.RadiusPx),
	)

	// The catalog is optional at startup: without one, snapshots arrive
	// via POST /api/v1/snapshots only.
	var sched *engine.Scheduler
	if src, srcErr := catalog.New(cmd.Context(), cfg.Catalog, log); srcErr != nil {
		log.Warn("catalog source unavailable, serving ingest-only", "error", srcErr)
	} else if cfg.Catalog.Source != "file" || cfg.Catalog.File.Path != "" {
		sched = engine.NewScheduler(eng, src, cfg.Schedule.RefreshInterval, log)
		if err := sched.Start(cmd.Context()); err != nil {
			log.Warn("initial snapshot refresh failed, serving ingest-only", "error", err)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.Use(middleware.RequestLog(log))
	e.Use(middleware.Recovery(log))
	e.Use(middleware.Metrics())

	health := handlers.NewHealthHandler(eng)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	openapi.RegisterRoutes(e)

	api := humaecho.New(e, huma.DefaultConfig("Feiramap API", Version))
	handlers.RegisterSnapshotRoutes(api, handlers.NewSnapshotsHandler(eng))
	handlers.RegisterSearchRoutes(api, handlers.NewSearchHandler(eng))
	handlers.RegisterRankRoutes(api, handlers.NewRankHandler(score.Weights{
		Price:    cfg.Scoring.Weights.Price,
		Distance: cfg.Scoring.Weights.Distance,
	}, cfg.Scoring.TopPicks))
	handlers.RegisterViewRoutes(api, handlers.NewViewHandler(eng))
	handlers.RegisterLayerRoutes(api, handlers.NewLayersHandler(eng))
	handlers.RegisterHighlightRoutes(api, handlers.NewHighlightHandler(eng))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("starting server", "addr", addr)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	if sched != nil {
		sched.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	log.Info("server stopped")
	return nil
}
