package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"delivery-optimizer/internal/domain"
)

// PostgresAddressRepository reads delivery addresses.
type PostgresAddressRepository struct {
	db *sql.DB
}

func NewPostgresAddressRepository(db *sql.DB) *PostgresAddressRepository {
	return &PostgresAddressRepository{db: db}
}

func (r *PostgresAddressRepository) ListByIDs(ctx context.Context, ids []int64) ([]domain.Address, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT id, street, city, state, postal_code, recipient_name, phone, notes,
		       latitude, longitude, service_time_minutes,
		       COALESCE(preferred_time_start, ''), COALESCE(preferred_time_end, ''),
		       COALESCE(preferred_driver_id, 0), COALESCE(required_driver_gender, ''),
		       is_active
		FROM addresses
		WHERE id IN (%s)`, placeholders(len(ids)))

	rows, err := r.db.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()

	var out []domain.Address
	for rows.Next() {
		var a domain.Address
		if err := rows.Scan(
			&a.ID, &a.Street, &a.City, &a.State, &a.PostalCode, &a.RecipientName, &a.Phone, &a.Notes,
			&a.Lat, &a.Lon, &a.ServiceTimeMinutes,
			&a.PreferredTimeStart, &a.PreferredTimeEnd,
			&a.PreferredDriverID, &a.RequiredDriverGender,
			&a.IsActive,
		); err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListUngeocoded returns addresses still missing coordinates.
func (r *PostgresAddressRepository) ListUngeocoded(ctx context.Context) ([]domain.Address, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, street, city, state, postal_code
		FROM addresses
		WHERE latitude = 0 AND longitude = 0`)
	if err != nil {
		return nil, fmt.Errorf("list ungeocoded: %w", err)
	}
	defer rows.Close()

	var out []domain.Address
	for rows.Next() {
		var a domain.Address
		if err := rows.Scan(&a.ID, &a.Street, &a.City, &a.State, &a.PostalCode); err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SetCoordinates stores a resolved location for an address.
func (r *PostgresAddressRepository) SetCoordinates(ctx context.Context, id int64, lat, lon float64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE addresses SET latitude = $1, longitude = $2 WHERE id = $3`, lat, lon, id)
	if err != nil {
		return fmt.Errorf("set coordinates: %w", err)
	}
	return nil
}

// placeholders renders "$1, $2, ..." for n parameters.
func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ", ")
}

func int64Args(ids []int64) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
