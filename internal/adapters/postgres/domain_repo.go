package postgres

import (
	"context"

	"github.com/samirrijal/farmmap/internal/core/domain"
)

// DomainRepo implements ports.DomainRepository.
type DomainRepo struct {
	db *DB
}

func NewDomainRepo(db *DB) *DomainRepo {
	return &DomainRepo{db: db}
}

const domainColumns = `
	id, organization_id, name, COALESCE(description, ''),
	ST_Y(location::geometry), ST_X(location::geometry), area_sq_ft, created_at`

func (r *DomainRepo) GetByID(ctx context.Context, id string) (*domain.Domain, error) {
	var (
		d        domain.Domain
		lat, lon *float64
	)
	err := r.db.Pool.QueryRow(ctx, `SELECT `+domainColumns+` FROM domains WHERE id = $1`, id).
		Scan(&d.ID, &d.OrganizationID, &d.Name, &d.Description, &lat, &lon, &d.AreaSqFt, &d.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	d.Location = point(lat, lon)
	return &d, nil
}

// List returns the domains of an organization, or all domains when
// organizationID is empty.
func (r *DomainRepo) List(ctx context.Context, organizationID string) ([]domain.Domain, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+domainColumns+`
		FROM domains
		WHERE $1 = '' OR organization_id::text = $1
		ORDER BY name
	`, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var domains []domain.Domain
	for rows.Next() {
		var (
			d        domain.Domain
			lat, lon *float64
		)
		if err := rows.Scan(&d.ID, &d.OrganizationID, &d.Name, &d.Description, &lat, &lon, &d.AreaSqFt, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Location = point(lat, lon)
		domains = append(domains, d)
	}
	return domains, rows.Err()
}
