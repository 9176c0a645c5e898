package matrix

import (
	"context"
	"testing"

	"delivery-optimizer/internal/adapters/cache"
	"delivery-optimizer/internal/adapters/routing"
	"delivery-optimizer/internal/domain"
)

func testCoords() []domain.Coordinates {
	return []domain.Coordinates{
		{Lat: 40.7128, Lon: -74.0060},
		{Lat: 40.7306, Lon: -73.9352},
		{Lat: 40.6782, Lon: -73.9442},
		{Lat: 40.7580, Lon: -73.9855},
	}
}

func TestBuildFullMatrix(t *testing.T) {
	provider := routing.NewMockMatrixProvider()
	store := cache.NewMemoryMatrixCache()
	b := NewBuilder(provider, store)

	coords := testCoords()
	m, err := b.Build(context.Background(), coords)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for i := range coords {
		if m.DistanceMeters[i][i] != 0 {
			t.Errorf("diagonal [%d][%d] = %f, want 0", i, i, m.DistanceMeters[i][i])
		}
		for j := range coords {
			if i == j {
				continue
			}
			if m.DistanceMeters[i][j] <= 0 {
				t.Errorf("distance [%d][%d] = %f, want > 0", i, j, m.DistanceMeters[i][j])
			}
			if m.DurationSeconds[i][j] <= 0 {
				t.Errorf("duration [%d][%d] = %f, want > 0", i, j, m.DurationSeconds[i][j])
			}
		}
	}
}

func TestBuildSecondCallServedFromCache(t *testing.T) {
	provider := routing.NewMockMatrixProvider()
	store := cache.NewMemoryMatrixCache()
	b := NewBuilder(provider, store)

	coords := testCoords()
	first, err := b.Build(context.Background(), coords)
	if err != nil {
		t.Fatalf("first Build: %v", err)
	}
	callsAfterFirst := provider.TableCalls()
	if callsAfterFirst == 0 {
		t.Fatal("expected at least one provider call on cold cache")
	}

	second, err := b.Build(context.Background(), coords)
	if err != nil {
		t.Fatalf("second Build: %v", err)
	}
	if got := provider.TableCalls(); got != callsAfterFirst {
		t.Errorf("provider calls after warm build = %d, want %d", got, callsAfterFirst)
	}
	for i := range coords {
		for j := range coords {
			if first.DistanceMeters[i][j] != second.DistanceMeters[i][j] {
				t.Errorf("cached distance [%d][%d] = %f, want %f",
					i, j, second.DistanceMeters[i][j], first.DistanceMeters[i][j])
			}
		}
	}
}

func TestBuildBatchesLargeInputs(t *testing.T) {
	provider := routing.NewMockMatrixProvider()
	b := NewBuilder(provider, cache.NewMemoryMatrixCache())
	b.maxSources = 3

	coords := make([]domain.Coordinates, 0, 10)
	for i := 0; i < 10; i++ {
		coords = append(coords, domain.Coordinates{
			Lat: 40.70 + float64(i)*0.01,
			Lon: -74.00 + float64(i)*0.01,
		})
	}

	m, err := b.Build(context.Background(), coords)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := provider.TableCalls(); got != 4 {
		t.Errorf("provider calls = %d, want 4 batches of <=3 rows", got)
	}
	for i := range coords {
		for j := range coords {
			if i != j && m.DurationSeconds[i][j] <= 0 {
				t.Errorf("duration [%d][%d] = %f, want > 0", i, j, m.DurationSeconds[i][j])
			}
		}
	}
}

func TestBuildDuplicateCoordinatesAreZero(t *testing.T) {
	provider := routing.NewMockMatrixProvider()
	b := NewBuilder(provider, cache.NewMemoryMatrixCache())

	coords := []domain.Coordinates{
		{Lat: 40.7128, Lon: -74.0060},
		{Lat: 40.7128, Lon: -74.0060},
		{Lat: 40.7306, Lon: -73.9352},
	}
	m, err := b.Build(context.Background(), coords)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if m.DistanceMeters[0][1] != 0 || m.DistanceMeters[1][0] != 0 {
		t.Errorf("same-point legs = %f / %f, want 0",
			m.DistanceMeters[0][1], m.DistanceMeters[1][0])
	}
	if m.DistanceMeters[0][2] <= 0 {
		t.Errorf("distinct-point leg = %f, want > 0", m.DistanceMeters[0][2])
	}
}

func TestBuildSinglePoint(t *testing.T) {
	provider := routing.NewMockMatrixProvider()
	b := NewBuilder(provider, cache.NewMemoryMatrixCache())

	m, err := b.Build(context.Background(), []domain.Coordinates{{Lat: 40.7, Lon: -74.0}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(m.DistanceMeters) != 1 || m.DistanceMeters[0][0] != 0 {
		t.Fatalf("unexpected matrix for single point: %+v", m)
	}
	if provider.TableCalls() != 0 {
		t.Errorf("provider calls = %d, want 0", provider.TableCalls())
	}
}
