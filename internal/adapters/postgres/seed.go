package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/farmmap/internal/core/domain"
)

// plantBatchSize bounds the plants sent per pgx batch.
const plantBatchSize = 500

// FarmSeed is one organization and its hierarchy, as loaded by `migrate seed`.
type FarmSeed struct {
	Organization string       `json:"organization"`
	Domains      []DomainSeed `json:"domains"`
}

type DomainSeed struct {
	Name     string           `json:"name"`
	Location *domain.GeoPoint `json:"location,omitempty"`
	AreaSqFt *float64         `json:"area_sq_ft,omitempty"`
	Plots    []PlotSeed       `json:"plots"`
}

type PlotSeed struct {
	Name     string           `json:"name"`
	Location *domain.GeoPoint `json:"location,omitempty"`
	AreaSqFt *float64         `json:"area_sq_ft,omitempty"`
	SoilType string           `json:"soil_type,omitempty"`
	Plants   []PlantSeed      `json:"plants"`
}

type PlantSeed struct {
	Name     string           `json:"name"`
	Type     string           `json:"type,omitempty"`
	Variety  string           `json:"variety,omitempty"`
	Category string           `json:"category,omitempty"`
	Health   string           `json:"health,omitempty"`
	Location *domain.GeoPoint `json:"location,omitempty"`
}

// SeedCounts reports how many rows a seed inserted.
type SeedCounts struct {
	Domains, Plots, Plants int
}

// Seed inserts a farm hierarchy in one transaction. Plants go through pgx
// batches; coordinates outside the valid range are stored as NULL and logged.
func (db *DB) Seed(ctx context.Context, farm FarmSeed) (SeedCounts, error) {
	var n SeedCounts
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return n, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var orgID string
	if err := tx.QueryRow(ctx, `INSERT INTO organizations (name) VALUES ($1) RETURNING id`, farm.Organization).Scan(&orgID); err != nil {
		return n, fmt.Errorf("insert organization: %w", err)
	}

	batch := &pgx.Batch{}
	for _, d := range farm.Domains {
		lon, lat := coords(d.Name, d.Location)
		var domainID string
		if err := tx.QueryRow(ctx, `
			INSERT INTO domains (organization_id, name, location, area_sq_ft)
			VALUES ($1, $2, `+pointExpr+`, $5)
			RETURNING id
		`, orgID, d.Name, lon, lat, d.AreaSqFt).Scan(&domainID); err != nil {
			return n, fmt.Errorf("insert domain %q: %w", d.Name, err)
		}
		n.Domains++

		for _, p := range d.Plots {
			lon, lat := coords(p.Name, p.Location)
			var plotID string
			if err := tx.QueryRow(ctx, `
				INSERT INTO plots (domain_id, name, location, area_sq_ft, soil_type)
				VALUES ($1, $2, `+pointExpr+`, $5, NULLIF($6, ''))
				RETURNING id
			`, domainID, p.Name, lon, lat, p.AreaSqFt, p.SoilType).Scan(&plotID); err != nil {
				return n, fmt.Errorf("insert plot %q: %w", p.Name, err)
			}
			n.Plots++

			for _, pl := range p.Plants {
				lon, lat := coords(pl.Name, pl.Location)
				batch.Queue(`
					INSERT INTO plants (plot_id, name, location, type, variety, category, health)
					VALUES ($1, $2, `+pointExpr+`, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''))
				`, plotID, pl.Name, lon, lat, pl.Type, pl.Variety, pl.Category, pl.Health)
				if batch.Len() >= plantBatchSize {
					if err := flushBatch(ctx, tx, batch); err != nil {
						return n, err
					}
					n.Plants += plantBatchSize
					batch = &pgx.Batch{}
				}
			}
		}
	}
	if batch.Len() > 0 {
		if err := flushBatch(ctx, tx, batch); err != nil {
			return n, err
		}
		n.Plants += batch.Len()
	}

	if err := tx.Commit(ctx); err != nil {
		return n, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// pointExpr builds a geography point from $3 (lon) and $4 (lat), or NULL.
const pointExpr = `CASE WHEN $3::float8 IS NULL THEN NULL ELSE ST_SetSRID(ST_MakePoint($3, $4::float8), 4326)::geography END`

func coords(name string, p *domain.GeoPoint) (*float64, *float64) {
	if p == nil {
		return nil, nil
	}
	if !p.Valid() {
		slog.Warn("seed: dropping out-of-range coordinates", "entity", name, "point", p.String())
		return nil, nil
	}
	lon, lat := p.Lon, p.Lat
	return &lon, &lat
}

func flushBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch) error {
	br := tx.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch item %d: %w", i, err)
		}
	}
	return nil
}
