package dto

// OptimizeRequest is the POST /optimize body.
type OptimizeRequest struct {
	Date              string                      `json:"date"`
	AddressIDs        []int64                     `json:"address_ids"`
	DriverIDs         []int64                     `json:"driver_ids"`
	DepotLatitude     float64                     `json:"depot_latitude"`
	DepotLongitude    float64                     `json:"depot_longitude"`
	DepotAddress      string                      `json:"depot_address,omitempty"`
	StartTime         string                      `json:"start_time,omitempty"`
	DriverConstraints map[int64]DriverConstraints `json:"driver_constraints,omitempty"`
	TimeLimitSeconds  int                         `json:"time_limit_seconds,omitempty"`
}

// DriverConstraints overrides one driver's limits for this run.
type DriverConstraints struct {
	MaxStops                int    `json:"max_stops,omitempty"`
	MaxRouteDurationMinutes int    `json:"max_route_duration_minutes,omitempty"`
	StartTime               string `json:"start_time,omitempty"`
	EndAtHome               bool   `json:"end_at_home,omitempty"`
}

// OptimizeResponse is the result of one optimization invocation.
type OptimizeResponse struct {
	DeliveryDayID         int64            `json:"delivery_day_id"`
	Date                  string           `json:"date"`
	Status                string           `json:"status"`
	TotalRoutes           int              `json:"total_routes"`
	TotalStops            int              `json:"total_stops"`
	TotalDistanceKm       float64          `json:"total_distance_km"`
	TotalDurationMinutes  float64          `json:"total_duration_minutes"`
	Routes                []RouteResponse  `json:"routes"`
	DroppedAddresses      []int64          `json:"dropped_addresses"`
	DroppedAddressDetails []DroppedAddress `json:"dropped_address_details"`
	Message               string           `json:"message,omitempty"`
}

type RouteResponse struct {
	ID                   int64          `json:"id"`
	DriverID             int64          `json:"driver_id"`
	RouteNumber          int            `json:"route_number"`
	Color                string         `json:"color"`
	TotalStops           int            `json:"total_stops"`
	TotalDistanceKm      float64        `json:"total_distance_km"`
	TotalDurationMinutes float64        `json:"total_duration_minutes"`
	Geometry             string         `json:"geometry,omitempty"`
	StartTime            string         `json:"start_time"`
	EndTime              string         `json:"end_time"`
	Stops                []StopResponse `json:"stops"`
}

type StopResponse struct {
	AddressID                   int64   `json:"address_id"`
	Sequence                    int     `json:"sequence"`
	EstimatedArrival            string  `json:"estimated_arrival"`
	EstimatedDeparture          string  `json:"estimated_departure"`
	DistanceFromPreviousKm      float64 `json:"distance_from_previous_km"`
	DurationFromPreviousMinutes float64 `json:"duration_from_previous_minutes"`
}

type DroppedAddress struct {
	AddressID          int64  `json:"address_id"`
	RecipientName      string `json:"recipient_name,omitempty"`
	Street             string `json:"street,omitempty"`
	Reason             string `json:"reason"`
	TimeWindow         string `json:"time_window,omitempty"`
	ServiceTimeMinutes int    `json:"service_time_minutes"`
}
