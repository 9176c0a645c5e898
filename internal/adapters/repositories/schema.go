package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates the tables when they do not exist yet.
func InitSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS addresses (
			id BIGSERIAL PRIMARY KEY,
			street TEXT NOT NULL,
			city TEXT NOT NULL DEFAULT '',
			state TEXT NOT NULL DEFAULT '',
			postal_code TEXT NOT NULL DEFAULT '',
			recipient_name TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			service_time_minutes INT NOT NULL DEFAULT 5,
			preferred_time_start TEXT,
			preferred_time_end TEXT,
			preferred_driver_id BIGINT,
			required_driver_gender TEXT,
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS drivers (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			phone TEXT,
			gender TEXT,
			max_stops INT NOT NULL DEFAULT 15,
			max_route_duration_minutes INT NOT NULL DEFAULT 240,
			home_latitude DOUBLE PRECISION,
			home_longitude DOUBLE PRECISION,
			home_address TEXT,
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS delivery_days (
			id BIGSERIAL PRIMARY KEY,
			date DATE NOT NULL UNIQUE,
			depot_latitude DOUBLE PRECISION NOT NULL,
			depot_longitude DOUBLE PRECISION NOT NULL,
			depot_address TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			total_stops INT NOT NULL DEFAULT 0,
			total_drivers INT NOT NULL DEFAULT 0,
			total_distance_km DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_duration_minutes DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS routes (
			id BIGSERIAL PRIMARY KEY,
			delivery_day_id BIGINT NOT NULL REFERENCES delivery_days(id) ON DELETE CASCADE,
			driver_id BIGINT NOT NULL REFERENCES drivers(id),
			route_number INT NOT NULL,
			color TEXT NOT NULL DEFAULT '',
			total_stops INT NOT NULL DEFAULT 0,
			total_distance_km DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_duration_minutes DOUBLE PRECISION NOT NULL DEFAULT 0,
			geometry TEXT NOT NULL DEFAULT '',
			start_time TEXT NOT NULL DEFAULT '',
			end_time TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS route_stops (
			id BIGSERIAL PRIMARY KEY,
			route_id BIGINT NOT NULL REFERENCES routes(id) ON DELETE CASCADE,
			address_id BIGINT NOT NULL REFERENCES addresses(id),
			sequence INT NOT NULL,
			estimated_arrival TEXT NOT NULL DEFAULT '',
			estimated_departure TEXT NOT NULL DEFAULT '',
			distance_from_previous_km DOUBLE PRECISION NOT NULL DEFAULT 0,
			duration_from_previous_minutes DOUBLE PRECISION NOT NULL DEFAULT 0,
			UNIQUE (route_id, sequence)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_routes_day ON routes(delivery_day_id)`,
		`CREATE INDEX IF NOT EXISTS idx_stops_route ON route_stops(route_id)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// SeedDemo loads a small Manhattan data set for local development. It is
// idempotent by the skip-when-populated check, not by upsert.
func SeedDemo(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM addresses`).Scan(&count); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	addresses := []struct {
		street, recipient      string
		lat, lon               float64
		windowStart, windowEnd string
	}{
		{"350 5th Ave", "A. Rivera", 40.74844, -73.98565, "", ""},
		{"11 Wall St", "B. Chen", 40.70707, -74.01117, "09:00", "11:00"},
		{"89 E 42nd St", "C. Okafor", 40.75273, -73.97723, "", ""},
		{"1000 5th Ave", "D. Haddad", 40.77944, -73.96324, "10:00", "12:00"},
		{"30 Rockefeller Plaza", "E. Novak", 40.75874, -73.97867, "", ""},
		{"233 Broadway", "F. Laurent", 40.71258, -74.00861, "", ""},
	}
	for _, a := range addresses {
		_, err := db.ExecContext(ctx, `
			INSERT INTO addresses (street, recipient_name, latitude, longitude,
				preferred_time_start, preferred_time_end)
			VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''))`,
			a.street, a.recipient, a.lat, a.lon, a.windowStart, a.windowEnd)
		if err != nil {
			return fmt.Errorf("seed address %q: %w", a.street, err)
		}
	}

	drivers := []struct {
		name, gender     string
		homeLat, homeLon float64
		hasHome          bool
	}{
		{"Jordan Lee", "female", 40.73061, -73.93524, true},
		{"Sam Ortiz", "male", 0, 0, false},
	}
	for _, d := range drivers {
		var err error
		if d.hasHome {
			_, err = db.ExecContext(ctx, `
				INSERT INTO drivers (name, gender, home_latitude, home_longitude)
				VALUES ($1, $2, $3, $4)`,
				d.name, d.gender, d.homeLat, d.homeLon)
		} else {
			_, err = db.ExecContext(ctx,
				`INSERT INTO drivers (name, gender) VALUES ($1, $2)`, d.name, d.gender)
		}
		if err != nil {
			return fmt.Errorf("seed driver %q: %w", d.name, err)
		}
	}
	return nil
}
