package domain

import "time"

// DeliveryDay statuses. A day is created once per optimization invocation
// and replaced wholesale when the same date is re-optimized.
const (
	DayCompleted             = "completed"
	DayCompletedWithWarnings = "completed_with_warnings"
	DayFailed                = "failed"
)

// Reasons attached to dropped addresses.
const (
	DropNoMatchingDriver = "no matching driver"
	DropTimeBudget       = "no feasible assignment within time budget"
	DropBounds           = "exceeds duration/capacity bound"
)

// RouteColors is the fixed display palette, indexed by route number.
var RouteColors = []string{
	"#3B82F6", // blue
	"#EF4444", // red
	"#10B981", // green
	"#F59E0B", // amber
	"#8B5CF6", // purple
	"#EC4899", // pink
	"#14B8A6", // teal
	"#F97316", // orange
}

// ColorForRoute returns the palette color for a 1-based route number.
func ColorForRoute(routeNumber int) string {
	if routeNumber < 1 {
		routeNumber = 1
	}
	return RouteColors[(routeNumber-1)%len(RouteColors)]
}

// DeliveryDay aggregates one date's optimization output.
type DeliveryDay struct {
	ID                   int64
	Date                 time.Time
	DepotLat             float64
	DepotLon             float64
	DepotAddress         string
	Status               string
	TotalStops           int
	TotalDrivers         int
	TotalDistanceKm      float64
	TotalDurationMinutes float64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Route is one driver's ordered plan within a DeliveryDay.
type Route struct {
	ID                   int64
	DeliveryDayID        int64
	DriverID             int64
	RouteNumber          int
	Color                string
	TotalStops           int
	TotalDistanceKm      float64
	TotalDurationMinutes float64
	Geometry             string // GeoJSON LineString, empty when unavailable
	StartTime            string // "HH:MM"
	EndTime              string // "HH:MM"
	Stops                []RouteStop
}

// RouteStop is one delivery within a Route. Sequence values within a
// route form 1..N with no gaps.
type RouteStop struct {
	ID                          int64
	RouteID                     int64
	AddressID                   int64
	Sequence                    int
	EstimatedArrival            string // "HH:MM"
	EstimatedDeparture          string // "HH:MM"
	DistanceFromPreviousKm      float64
	DurationFromPreviousMinutes float64
}

// DroppedAddress records why a requested address did not make any route.
type DroppedAddress struct {
	AddressID          int64
	RecipientName      string
	Street             string
	Reason             string
	TimeWindow         string // "HH:MM-HH:MM" or empty
	ServiceTimeMinutes int
}

// OptimizationResult is the transient response for one invocation; the
// persisted state lives in the DeliveryDay graph.
type OptimizationResult struct {
	DeliveryDayID         int64
	Date                  time.Time
	Status                string
	TotalRoutes           int
	TotalStops            int
	TotalDistanceKm       float64
	TotalDurationMinutes  float64
	Routes                []Route
	DroppedAddresses      []int64
	DroppedAddressDetails []DroppedAddress
	Message               string
}
