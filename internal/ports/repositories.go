package ports

import (
	"context"
	"errors"
	"time"

	"delivery-optimizer/internal/domain"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// AddressRepository looks up delivery addresses selected for a run.
type AddressRepository interface {
	// ListByIDs returns active, geocoded addresses for the given ids,
	// in no particular order. Missing ids are simply absent.
	ListByIDs(ctx context.Context, ids []int64) ([]domain.Address, error)
}

// DriverRepository looks up volunteer drivers selected for a run.
type DriverRepository interface {
	ListByIDs(ctx context.Context, ids []int64) ([]domain.Driver, error)
}

// PlanRepository persists and reads the DeliveryDay graph.
type PlanRepository interface {
	// ReplaceDay writes a day and its routes/stops in one transaction,
	// replacing any prior result for the same date. All-or-nothing:
	// either the complete new graph commits or nothing is written.
	// Returns the persisted day id and route/stop ids filled in.
	ReplaceDay(ctx context.Context, day *domain.DeliveryDay, routes []domain.Route) error

	ListDays(ctx context.Context) ([]domain.DeliveryDay, error)
	GetDayByDate(ctx context.Context, date time.Time) (domain.DeliveryDay, error)
	GetRoutesForDay(ctx context.Context, deliveryDayID int64) ([]domain.Route, error)
	GetRoute(ctx context.Context, routeID int64) (domain.Route, error)
	DeleteDay(ctx context.Context, deliveryDayID int64) error
}
