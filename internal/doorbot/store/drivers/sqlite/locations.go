package sqlite

import (
	"context"

	"github.com/tinkerhall/doorbot/internal/doorbot/domain"
)

type locationsRepo struct {
	q dbtx
}

func (r *locationsRepo) GetLocationByName(ctx context.Context, name string) (domain.Location, error) {
	var l domain.Location
	err := r.q.QueryRowContext(ctx,
		`SELECT id, name FROM locations WHERE name = ?;`, name,
	).Scan(&l.ID, &l.Name)
	if err != nil {
		return domain.Location{}, mapNotFound(err)
	}
	return l, nil
}

func (r *locationsRepo) CreateLocation(ctx context.Context, l domain.Location) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO locations (id, name) VALUES (?, ?);`, l.ID, l.Name)
	return mapConflict(err)
}

func (r *locationsRepo) ListLocations(ctx context.Context) ([]domain.Location, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, name FROM locations ORDER BY name;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []domain.Location
	for rows.Next() {
		var l domain.Location
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}
