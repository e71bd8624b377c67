package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samirrijal/farmmap/internal/core/domain"
	"github.com/samirrijal/farmmap/internal/pkg/metrics"
)

// DB wraps pgxpool.Pool and provides a shared connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new DB connection pool.
func New(ctx context.Context, dsn string, maxConns int32) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// ReportPoolStats publishes pool gauges every interval until ctx is done.
func (db *DB) ReportPoolStats(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			metrics.UpdateDBPoolMetrics(db.Pool.Stat())
		}
	}
}

// Close releases pool resources.
func (db *DB) Close() {
	db.Pool.Close()
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

// point builds an optional GeoPoint from nullable lat/lon columns.
func point(lat, lon *float64) *domain.GeoPoint {
	if lat == nil || lon == nil {
		return nil
	}
	return &domain.GeoPoint{Lat: *lat, Lon: *lon}
}

// boundsClause returns a WHERE fragment restricting col to b, with
// placeholders starting at $next. Bounds that wrap the antimeridian are
// split into two envelopes.
func boundsClause(col string, b domain.ViewportBounds, next int) (string, []any) {
	env := func(i int) string {
		return fmt.Sprintf("ST_MakeEnvelope($%d, $%d, $%d, $%d, 4326)", i, i+1, i+2, i+3)
	}
	if !b.Wraps() {
		return fmt.Sprintf("%s::geometry && %s", col, env(next)),
			[]any{b.SW.Lon, b.SW.Lat, b.NE.Lon, b.NE.Lat}
	}
	return fmt.Sprintf("(%s::geometry && %s OR %s::geometry && %s)", col, env(next), col, env(next+4)),
		[]any{b.SW.Lon, b.SW.Lat, 180.0, b.NE.Lat, -180.0, b.SW.Lat, b.NE.Lon, b.NE.Lat}
}
