package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/farmmap/internal/core/domain"
)

// PlotRepo implements ports.PlotRepository.
type PlotRepo struct {
	db *DB
}

func NewPlotRepo(db *DB) *PlotRepo {
	return &PlotRepo{db: db}
}

const plotColumns = `
	p.id, p.domain_id, d.organization_id, p.name,
	ST_Y(p.location::geometry), ST_X(p.location::geometry), p.area_sq_ft,
	COALESCE(p.soil_type, ''), COALESCE(p.irrigation_type, ''), COALESCE(p.owner_name, ''),
	p.created_at`

func scanPlot(row pgx.Row) (domain.Plot, error) {
	var (
		p        domain.Plot
		lat, lon *float64
	)
	err := row.Scan(&p.ID, &p.DomainID, &p.OrganizationID, &p.Name, &lat, &lon, &p.AreaSqFt,
		&p.SoilType, &p.IrrigationType, &p.OwnerName, &p.CreatedAt)
	p.Location = point(lat, lon)
	return p, err
}

func (r *PlotRepo) GetByID(ctx context.Context, id string) (*domain.Plot, error) {
	p, err := scanPlot(r.db.Pool.QueryRow(ctx, `
		SELECT `+plotColumns+`
		FROM plots p JOIN domains d ON d.id = p.domain_id
		WHERE p.id = $1
	`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *PlotRepo) ListByDomain(ctx context.Context, domainID string) ([]domain.Plot, error) {
	return r.query(ctx, `
		SELECT `+plotColumns+`
		FROM plots p JOIN domains d ON d.id = p.domain_id
		WHERE p.domain_id = $1
		ORDER BY p.name
	`, domainID)
}

// List returns the plots of an organization, or all plots when
// organizationID is empty.
func (r *PlotRepo) List(ctx context.Context, organizationID string) ([]domain.Plot, error) {
	return r.query(ctx, `
		SELECT `+plotColumns+`
		FROM plots p JOIN domains d ON d.id = p.domain_id
		WHERE $1 = '' OR d.organization_id::text = $1
		ORDER BY p.name
	`, organizationID)
}

func (r *PlotRepo) query(ctx context.Context, sql string, args ...any) ([]domain.Plot, error) {
	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plots []domain.Plot
	for rows.Next() {
		p, err := scanPlot(rows)
		if err != nil {
			return nil, err
		}
		plots = append(plots, p)
	}
	return plots, rows.Err()
}
