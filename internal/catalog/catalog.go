// Package catalog fetches offer snapshots from the marketplace catalog.
// The engine treats the catalog as read-only: it pulls a snapshot per
// view and never writes back.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/feiramap/feiramap/internal/config"
	domain "github.com/feiramap/feiramap/pkg/types"
)

// Source produces the offers for one snapshot.
type Source interface {
	// Fetch returns the current catalog offers. Implementations must not
	// retain the returned slice.
	Fetch(ctx context.Context) ([]domain.Offer, error)

	// Name identifies the source in logs.
	Name() string
}

// New builds the Source selected by the catalog configuration.
func New(ctx context.Context, cfg config.CatalogConfig, log *slog.Logger) (Source, error) {
	switch cfg.Source {
	case "file":
		return NewFileSource(cfg.File.Path), nil
	case "http":
		return NewHTTPSource(cfg.HTTP), nil
	case "postgres":
		src, err := NewPostgresSource(ctx, cfg.Postgres.DSN(), cfg.Postgres.PoolSize, log)
		if err != nil {
			return nil, fmt.Errorf("creating postgres catalog source: %w", err)
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unknown catalog source: %q", cfg.Source)
	}
}
