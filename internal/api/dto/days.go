package dto

// DeliveryDayResponse is one entry of GET /delivery-days, and the day
// header of GET /delivery-days/{date}.
type DeliveryDayResponse struct {
	ID                   int64           `json:"id"`
	Date                 string          `json:"date"`
	DepotLatitude        float64         `json:"depot_latitude"`
	DepotLongitude       float64         `json:"depot_longitude"`
	DepotAddress         string          `json:"depot_address,omitempty"`
	Status               string          `json:"status"`
	TotalStops           int             `json:"total_stops"`
	TotalDrivers         int             `json:"total_drivers"`
	TotalDistanceKm      float64         `json:"total_distance_km"`
	TotalDurationMinutes float64         `json:"total_duration_minutes"`
	Routes               []RouteResponse `json:"routes,omitempty"`
}

type ListDaysResponse struct {
	Days []DeliveryDayResponse `json:"days"`
}
