package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/feiramap/feiramap/internal/catalog"
	"github.com/feiramap/feiramap/internal/metrics"
)

const refreshTimeout = 30 * time.Second

// Scheduler refreshes the engine's snapshot from the catalog on a fixed
// interval. A failed refresh keeps the previous snapshot; stale data
// beats no data.
type Scheduler struct {
	cron     *cron.Cron
	engine   *Engine
	source   catalog.Source
	interval time.Duration
	log      *slog.Logger
}

// NewScheduler creates a snapshot refresh scheduler.
func NewScheduler(e *Engine, src catalog.Source, interval time.Duration, log *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		engine:   e,
		source:   src,
		interval: interval,
		log:      log,
	}
}

// Start performs one immediate refresh and then schedules periodic ones.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil {
		return fmt.Errorf("initial snapshot refresh: %w", err)
	}

	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, s.refreshJob); err != nil {
		return fmt.Errorf("scheduling snapshot refresh: %w", err)
	}

	s.cron.Start()
	s.log.Info("snapshot refresh scheduled",
		"source", s.source.Name(),
		"interval", s.interval.String(),
	)
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Refresh fetches the catalog once and loads the result into the engine.
func (s *Scheduler) Refresh(ctx context.Context) error {
	offers, err := s.source.Fetch(ctx)
	if err != nil {
		metrics.SnapshotRefreshErrorsTotal.Inc()
		return fmt.Errorf("fetching catalog snapshot: %w", err)
	}

	stats := s.engine.LoadSnapshot(offers)
	s.log.Info("snapshot refreshed",
		"snapshot_id", stats.SnapshotID,
		"accepted", stats.Accepted,
		"filtered_geometry", stats.FilteredGeometry,
	)
	return nil
}

func (s *Scheduler) refreshJob() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	if err := s.Refresh(ctx); err != nil {
		s.log.Error("snapshot refresh failed, keeping previous snapshot", "error", err)
	}
}
