package routing

import (
	"context"
	"math"
	"sync/atomic"

	"delivery-optimizer/internal/domain"
	"delivery-optimizer/internal/ports"
)

// MockMatrixProvider computes synthetic travel legs from straight-line
// distance at a fixed speed. It keeps tests deterministic and offline,
// and counts Table calls so caching behavior can be asserted.
type MockMatrixProvider struct {
	SpeedKph   float64
	ShapeJSON  string
	tableCalls atomic.Int64
}

func NewMockMatrixProvider() *MockMatrixProvider {
	return &MockMatrixProvider{SpeedKph: 40}
}

func (p *MockMatrixProvider) TableCalls() int64 { return p.tableCalls.Load() }

func (p *MockMatrixProvider) Table(
	_ context.Context,
	points []domain.Coordinates,
	sources, destinations []int,
) (ports.Matrix, error) {
	p.tableCalls.Add(1)

	if len(sources) == 0 {
		sources = allIndices(len(points))
	}
	if len(destinations) == 0 {
		destinations = allIndices(len(points))
	}

	m := ports.Matrix{
		DistanceMeters:  make([][]float64, len(sources)),
		DurationSeconds: make([][]float64, len(sources)),
	}
	for i, si := range sources {
		m.DistanceMeters[i] = make([]float64, len(destinations))
		m.DurationSeconds[i] = make([]float64, len(destinations))
		for j, dj := range destinations {
			d := haversineMeters(points[si], points[dj])
			m.DistanceMeters[i][j] = d
			m.DurationSeconds[i][j] = d / (p.SpeedKph / 3.6)
		}
	}
	return m, nil
}

func (p *MockMatrixProvider) Shape(context.Context, []domain.Coordinates) (string, error) {
	return p.ShapeJSON, nil
}

func allIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func haversineMeters(a, b domain.Coordinates) float64 {
	const r = 6371000.0
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return r * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
