package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"delivery-optimizer/internal/domain"
	"delivery-optimizer/internal/ports"
)

// PlansService reads persisted delivery days and exports driver-facing
// route sheets.
type PlansService struct {
	plans     ports.PlanRepository
	addresses ports.AddressRepository
}

func NewPlansService(plans ports.PlanRepository, addresses ports.AddressRepository) *PlansService {
	return &PlansService{plans: plans, addresses: addresses}
}

func (s *PlansService) ListDays(ctx context.Context) ([]domain.DeliveryDay, error) {
	return s.plans.ListDays(ctx)
}

// GetDay returns the day for a date together with its routes and stops.
func (s *PlansService) GetDay(ctx context.Context, date time.Time) (domain.DeliveryDay, []domain.Route, error) {
	day, err := s.plans.GetDayByDate(ctx, date)
	if err != nil {
		return domain.DeliveryDay{}, nil, err
	}
	routes, err := s.plans.GetRoutesForDay(ctx, day.ID)
	if err != nil {
		return domain.DeliveryDay{}, nil, err
	}
	return day, routes, nil
}

// RoutesForDay returns the routes persisted for a delivery day id.
func (s *PlansService) RoutesForDay(ctx context.Context, dayID int64) ([]domain.Route, error) {
	return s.plans.GetRoutesForDay(ctx, dayID)
}

func (s *PlansService) DeleteDay(ctx context.Context, date time.Time) error {
	day, err := s.plans.GetDayByDate(ctx, date)
	if err != nil {
		return err
	}
	return s.plans.DeleteDay(ctx, day.ID)
}

// RouteCSV renders one route as a printable stop sheet.
func (s *PlansService) RouteCSV(ctx context.Context, routeID int64) ([]byte, error) {
	route, err := s.plans.GetRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}
	return s.renderCSV(ctx, []domain.Route{route})
}

// DayCSV renders every route of a date into one sheet, route by route.
func (s *PlansService) DayCSV(ctx context.Context, date time.Time) ([]byte, error) {
	_, routes, err := s.GetDay(ctx, date)
	if err != nil {
		return nil, err
	}
	return s.renderCSV(ctx, routes)
}

func (s *PlansService) renderCSV(ctx context.Context, routes []domain.Route) ([]byte, error) {
	ids := make([]int64, 0, 16)
	for _, r := range routes {
		for _, stop := range r.Stops {
			ids = append(ids, stop.AddressID)
		}
	}
	addresses, err := s.addresses.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("export: load addresses: %w", err)
	}
	byID := make(map[int64]domain.Address, len(addresses))
	for _, a := range addresses {
		byID[a.ID] = a
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"route", "stop", "recipient", "street", "city", "phone", "arrival", "departure", "distance_km", "notes"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	for _, r := range routes {
		for _, stop := range r.Stops {
			a := byID[stop.AddressID]
			row := []string{
				strconv.Itoa(r.RouteNumber),
				strconv.Itoa(stop.Sequence),
				a.RecipientName,
				a.Street,
				a.City,
				a.Phone,
				stop.EstimatedArrival,
				stop.EstimatedDeparture,
				strconv.FormatFloat(stop.DistanceFromPreviousKm, 'f', 2, 64),
				a.Notes,
			}
			if err := w.Write(row); err != nil {
				return nil, fmt.Errorf("export: %w", err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return buf.Bytes(), nil
}
