package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"delivery-optimizer/internal/domain"
)

// PostgresDriverRepository reads volunteer drivers.
type PostgresDriverRepository struct {
	db *sql.DB
}

func NewPostgresDriverRepository(db *sql.DB) *PostgresDriverRepository {
	return &PostgresDriverRepository{db: db}
}

func (r *PostgresDriverRepository) ListByIDs(ctx context.Context, ids []int64) ([]domain.Driver, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT id, name, COALESCE(phone, ''), COALESCE(gender, ''),
		       max_stops, max_route_duration_minutes,
		       COALESCE(home_latitude, 0), COALESCE(home_longitude, 0),
		       COALESCE(home_address, ''), home_latitude IS NOT NULL,
		       is_active
		FROM drivers
		WHERE id IN (%s)`, placeholders(len(ids)))

	rows, err := r.db.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	defer rows.Close()

	var out []domain.Driver
	for rows.Next() {
		var d domain.Driver
		if err := rows.Scan(
			&d.ID, &d.Name, &d.Phone, &d.Gender,
			&d.MaxStops, &d.MaxRouteDurationMinutes,
			&d.HomeLat, &d.HomeLon,
			&d.HomeAddress, &d.HasHome,
			&d.IsActive,
		); err != nil {
			return nil, fmt.Errorf("scan driver: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
