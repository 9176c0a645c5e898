package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"delivery-optimizer/internal/domain"
	"delivery-optimizer/internal/ports"
)

// PostgresPlanRepository persists the DeliveryDay graph. Writes go
// through ReplaceDay only: a date's result is always stored whole.
type PostgresPlanRepository struct {
	db *sql.DB
}

func NewPostgresPlanRepository(db *sql.DB) *PostgresPlanRepository {
	return &PostgresPlanRepository{db: db}
}

func (r *PostgresPlanRepository) ReplaceDay(ctx context.Context, day *domain.DeliveryDay, routes []domain.Route) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace day: begin: %w", err)
	}
	defer tx.Rollback()

	// Stops and routes cascade from the day row.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM delivery_days WHERE date = $1`, day.Date); err != nil {
		return fmt.Errorf("replace day: clear prior: %w", err)
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO delivery_days
			(date, depot_latitude, depot_longitude, depot_address, status,
			 total_stops, total_drivers, total_distance_km, total_duration_minutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		day.Date, day.DepotLat, day.DepotLon, day.DepotAddress, day.Status,
		day.TotalStops, day.TotalDrivers, day.TotalDistanceKm, day.TotalDurationMinutes,
	).Scan(&day.ID, &day.CreatedAt, &day.UpdatedAt)
	if err != nil {
		return fmt.Errorf("replace day: insert day: %w", err)
	}

	for i := range routes {
		route := &routes[i]
		route.DeliveryDayID = day.ID
		err = tx.QueryRowContext(ctx, `
			INSERT INTO routes
				(delivery_day_id, driver_id, route_number, color, total_stops,
				 total_distance_km, total_duration_minutes, geometry, start_time, end_time)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id`,
			route.DeliveryDayID, route.DriverID, route.RouteNumber, route.Color, route.TotalStops,
			route.TotalDistanceKm, route.TotalDurationMinutes, route.Geometry, route.StartTime, route.EndTime,
		).Scan(&route.ID)
		if err != nil {
			return fmt.Errorf("replace day: insert route %d: %w", route.RouteNumber, err)
		}

		for j := range route.Stops {
			stop := &route.Stops[j]
			stop.RouteID = route.ID
			err = tx.QueryRowContext(ctx, `
				INSERT INTO route_stops
					(route_id, address_id, sequence, estimated_arrival, estimated_departure,
					 distance_from_previous_km, duration_from_previous_minutes)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING id`,
				stop.RouteID, stop.AddressID, stop.Sequence, stop.EstimatedArrival, stop.EstimatedDeparture,
				stop.DistanceFromPreviousKm, stop.DurationFromPreviousMinutes,
			).Scan(&stop.ID)
			if err != nil {
				return fmt.Errorf("replace day: insert stop %d/%d: %w", route.RouteNumber, stop.Sequence, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace day: commit: %w", err)
	}
	return nil
}

func (r *PostgresPlanRepository) ListDays(ctx context.Context) ([]domain.DeliveryDay, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, depot_latitude, depot_longitude, depot_address, status,
		       total_stops, total_drivers, total_distance_km, total_duration_minutes,
		       created_at, updated_at
		FROM delivery_days
		ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	defer rows.Close()

	var out []domain.DeliveryDay
	for rows.Next() {
		day, err := scanDay(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, day)
	}
	return out, rows.Err()
}

func (r *PostgresPlanRepository) GetDayByDate(ctx context.Context, date time.Time) (domain.DeliveryDay, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, date, depot_latitude, depot_longitude, depot_address, status,
		       total_stops, total_drivers, total_distance_km, total_duration_minutes,
		       created_at, updated_at
		FROM delivery_days
		WHERE date = $1`, date)

	day, err := scanDay(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DeliveryDay{}, ports.ErrNotFound
	}
	return day, err
}

func (r *PostgresPlanRepository) GetRoutesForDay(ctx context.Context, deliveryDayID int64) ([]domain.Route, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, delivery_day_id, driver_id, route_number, color, total_stops,
		       total_distance_km, total_duration_minutes, geometry, start_time, end_time
		FROM routes
		WHERE delivery_day_id = $1
		ORDER BY route_number`, deliveryDayID)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	defer rows.Close()

	var out []domain.Route
	for rows.Next() {
		var route domain.Route
		if err := rows.Scan(
			&route.ID, &route.DeliveryDayID, &route.DriverID, &route.RouteNumber, &route.Color,
			&route.TotalStops, &route.TotalDistanceKm, &route.TotalDurationMinutes,
			&route.Geometry, &route.StartTime, &route.EndTime,
		); err != nil {
			return nil, fmt.Errorf("scan route: %w", err)
		}
		out = append(out, route)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		stops, err := r.stopsForRoute(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Stops = stops
	}
	return out, nil
}

func (r *PostgresPlanRepository) GetRoute(ctx context.Context, routeID int64) (domain.Route, error) {
	var route domain.Route
	err := r.db.QueryRowContext(ctx, `
		SELECT id, delivery_day_id, driver_id, route_number, color, total_stops,
		       total_distance_km, total_duration_minutes, geometry, start_time, end_time
		FROM routes
		WHERE id = $1`, routeID,
	).Scan(
		&route.ID, &route.DeliveryDayID, &route.DriverID, &route.RouteNumber, &route.Color,
		&route.TotalStops, &route.TotalDistanceKm, &route.TotalDurationMinutes,
		&route.Geometry, &route.StartTime, &route.EndTime,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Route{}, ports.ErrNotFound
	}
	if err != nil {
		return domain.Route{}, fmt.Errorf("get route: %w", err)
	}

	route.Stops, err = r.stopsForRoute(ctx, route.ID)
	return route, err
}

func (r *PostgresPlanRepository) DeleteDay(ctx context.Context, deliveryDayID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM delivery_days WHERE id = $1`, deliveryDayID)
	if err != nil {
		return fmt.Errorf("delete day: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete day: %w", err)
	}
	if affected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *PostgresPlanRepository) stopsForRoute(ctx context.Context, routeID int64) ([]domain.RouteStop, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, route_id, address_id, sequence, estimated_arrival, estimated_departure,
		       distance_from_previous_km, duration_from_previous_minutes
		FROM route_stops
		WHERE route_id = $1
		ORDER BY sequence`, routeID)
	if err != nil {
		return nil, fmt.Errorf("list stops: %w", err)
	}
	defer rows.Close()

	var out []domain.RouteStop
	for rows.Next() {
		var stop domain.RouteStop
		if err := rows.Scan(
			&stop.ID, &stop.RouteID, &stop.AddressID, &stop.Sequence,
			&stop.EstimatedArrival, &stop.EstimatedDeparture,
			&stop.DistanceFromPreviousKm, &stop.DurationFromPreviousMinutes,
		); err != nil {
			return nil, fmt.Errorf("scan stop: %w", err)
		}
		out = append(out, stop)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDay(row rowScanner) (domain.DeliveryDay, error) {
	var day domain.DeliveryDay
	err := row.Scan(
		&day.ID, &day.Date, &day.DepotLat, &day.DepotLon, &day.DepotAddress, &day.Status,
		&day.TotalStops, &day.TotalDrivers, &day.TotalDistanceKm, &day.TotalDurationMinutes,
		&day.CreatedAt, &day.UpdatedAt,
	)
	if err != nil {
		return domain.DeliveryDay{}, err
	}
	return day, nil
}
