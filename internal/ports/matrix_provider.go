package ports

import (
	"context"
	"fmt"

	"delivery-optimizer/internal/domain"
)

// TravelLeg is the directed travel cost between two coordinates.
type TravelLeg struct {
	DistanceMeters  float64
	DurationSeconds float64
}

// Matrix holds pairwise directed travel costs for an ordered node list.
// Road networks are directed, so m[i][j] need not equal m[j][i].
type Matrix struct {
	DistanceMeters  [][]float64
	DurationSeconds [][]float64
}

// DurationMinutes returns the travel time i->j in minutes.
func (m Matrix) DurationMinutes(i, j int) float64 {
	return m.DurationSeconds[i][j] / 60.0
}

// DistanceKm returns the travel distance i->j in kilometers.
func (m Matrix) DistanceKm(i, j int) float64 {
	return m.DistanceMeters[i][j] / 1000.0
}

// MatrixProvider is the contract for the external routing service.
type MatrixProvider interface {
	// Table returns directed distance/duration between sources and
	// destinations (indices into points).
	Table(ctx context.Context, points []domain.Coordinates, sources, destinations []int) (Matrix, error)

	// Shape returns the road-network polyline through the ordered points
	// as a GeoJSON LineString. Best-effort decoration only.
	Shape(ctx context.Context, points []domain.Coordinates) (string, error)
}

// ProviderError marks a routing-provider failure after retry exhaustion.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string { return fmt.Sprintf("routing provider: %s: %v", e.Op, e.Err) }
func (e *ProviderError) Unwrap() error { return e.Err }
