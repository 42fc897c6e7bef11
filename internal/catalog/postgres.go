package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feiramap/feiramap/pkg/geomath"
	domain "github.com/feiramap/feiramap/pkg/types"
)

const offersQuery = `
SELECT o.id, o.product_id, o.title, o.image_url,
       o.price, o.discount_price, o.on_promotion, o.currency,
       v.id, v.name, v.avatar_url, v.lat, v.lng, v.plan
FROM offers o
JOIN vendors v ON v.id = o.vendor_id
ORDER BY o.id`

// PostgresSource reads offers straight from the marketplace catalog
// database. The engine never writes: the catalog owns its own schema
// and migrations.
type PostgresSource struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewPostgresSource connects to the catalog database and verifies the
// connection.
func NewPostgresSource(ctx context.Context, dsn string, poolSize int, log *slog.Logger) (*PostgresSource, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing postgres config: %w", err)
	}
	if poolSize > 0 {
		poolCfg.MaxConns = int32(poolSize)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging catalog database: %w", err)
	}

	return &PostgresSource{pool: pool, log: log}, nil
}

// Fetch loads every offer joined with its vendor.
func (s *PostgresSource) Fetch(ctx context.Context) ([]domain.Offer, error) {
	rows, err := s.pool.Query(ctx, offersQuery)
	if err != nil {
		return nil, fmt.Errorf("querying offers: %w", err)
	}
	defer rows.Close()

	var offers []domain.Offer
	for rows.Next() {
		var (
			o        domain.Offer
			lat, lng *float64
		)
		err := rows.Scan(
			&o.ID, &o.ProductID, &o.Title, &o.ImageURL,
			&o.Price, &o.DiscountPrice, &o.OnPromotion, &o.Currency,
			&o.Vendor.ID, &o.Vendor.Name, &o.Vendor.AvatarURL,
			&lat, &lng, &o.Vendor.Plan,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning offer row: %w", err)
		}
		if lat != nil && lng != nil {
			o.Vendor.Location = &geomath.Point{Lat: *lat, Lng: *lng}
		}
		o.Vendor.Plan = domain.ParsePlanTier(string(o.Vendor.Plan))
		offers = append(offers, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating offer rows: %w", err)
	}

	s.log.Debug("catalog offers fetched", "count", len(offers))
	return offers, nil
}

// Name identifies the source in logs.
func (s *PostgresSource) Name() string {
	return "postgres"
}

// Close releases the connection pool.
func (s *PostgresSource) Close() {
	s.pool.Close()
}
