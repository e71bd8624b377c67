package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/farmmap/internal/core/domain"
)

// PlantRepo implements ports.PlantRepository with pgx.
type PlantRepo struct {
	db *DB
}

// NewPlantRepo creates a new PlantRepo.
func NewPlantRepo(db *DB) *PlantRepo {
	return &PlantRepo{db: db}
}

const plantColumns = `
	pl.id, pl.plot_id, p.domain_id, d.organization_id, pl.name,
	COALESCE(pl.type, ''), COALESCE(pl.variety, ''), COALESCE(pl.category, ''),
	COALESCE(pl.health, ''), COALESCE(pl.growth_stage, ''),
	ST_Y(pl.location::geometry), ST_X(pl.location::geometry),
	pl.created_at, pl.updated_at`

const plantFrom = `
	FROM plants pl
	JOIN plots p ON p.id = pl.plot_id
	JOIN domains d ON d.id = p.domain_id`

func scanPlant(row pgx.Row) (domain.Plant, error) {
	var (
		pl       domain.Plant
		lat, lon *float64
	)
	err := row.Scan(&pl.ID, &pl.PlotID, &pl.DomainID, &pl.OrganizationID, &pl.Name,
		&pl.Type, &pl.Variety, &pl.Category, &pl.Health, &pl.GrowthStage,
		&lat, &lon, &pl.CreatedAt, &pl.UpdatedAt)
	pl.Location = point(lat, lon)
	return pl, err
}

// GetByID returns a plant by UUID.
func (r *PlantRepo) GetByID(ctx context.Context, id string) (*domain.Plant, error) {
	pl, err := scanPlant(r.db.Pool.QueryRow(ctx, `SELECT `+plantColumns+plantFrom+` WHERE pl.id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &pl, nil
}

// ListByPlot returns the active plants of a plot.
func (r *PlantRepo) ListByPlot(ctx context.Context, plotID string) ([]domain.Plant, error) {
	return r.query(ctx, `SELECT `+plantColumns+plantFrom+`
		WHERE pl.plot_id = $1 AND pl.is_active
		ORDER BY pl.name`, plotID)
}

// FindInBounds returns located active plants inside bounds using the GiST
// index on location. Nil bounds returns every located plant up to limit.
func (r *PlantRepo) FindInBounds(ctx context.Context, bounds *domain.ViewportBounds, limit int) ([]domain.Plant, error) {
	where := "pl.is_active AND pl.location IS NOT NULL"
	args := []any{limit}
	if bounds != nil {
		clause, bargs := boundsClause("pl.location", *bounds, 2)
		where += " AND " + clause
		args = append(args, bargs...)
	}
	return r.query(ctx, fmt.Sprintf(`SELECT %s%s
		WHERE %s
		ORDER BY pl.id
		LIMIT $1`, plantColumns, plantFrom, where), args...)
}

func (r *PlantRepo) query(ctx context.Context, sql string, args ...any) ([]domain.Plant, error) {
	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plants []domain.Plant
	for rows.Next() {
		pl, err := scanPlant(rows)
		if err != nil {
			return nil, err
		}
		plants = append(plants, pl)
	}
	return plants, rows.Err()
}
