package ports

import "context"

// GeocodeResult is the resolved location for a free-text address.
type GeocodeResult struct {
	Lat    float64
	Lon    float64
	Status string // success, not_found
}

// Geocoder resolves address text to coordinates. Geocoding is an external
// collaborator; the engine only consumes already-geocoded addresses, so
// this port is exercised by seeding tools rather than the hot path.
type Geocoder interface {
	Geocode(ctx context.Context, addressText string) (GeocodeResult, error)
}
