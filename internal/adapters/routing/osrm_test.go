package routing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"delivery-optimizer/internal/domain"
	"delivery-optimizer/internal/ports"
)

func TestOSRMTableParsesDirectedMatrix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/table/v1/driving/") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("annotations"); got != "distance,duration" {
			t.Errorf("annotations = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"code": "Ok",
			"distances": [[0, 1200.5], [1350.0, 0]],
			"durations": [[0, 180.0], [200.0, 0]]
		}`))
	}))
	defer srv.Close()

	c := NewOSRMClient(srv.URL)
	points := []domain.Coordinates{
		{Lat: 44.9904, Lon: -93.0978},
		{Lat: 44.9500, Lon: -93.1000},
	}

	m, err := c.Table(context.Background(), points, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.DistanceMeters[0][1] != 1200.5 {
		t.Errorf("forward distance = %v, want 1200.5", m.DistanceMeters[0][1])
	}
	if m.DistanceMeters[1][0] != 1350.0 {
		t.Errorf("reverse distance = %v, want 1350.0", m.DistanceMeters[1][0])
	}
	if m.DurationSeconds[1][0] != 200.0 {
		t.Errorf("reverse duration = %v, want 200.0", m.DurationSeconds[1][0])
	}
}

func TestOSRMTableSubstitutesNullEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"code": "Ok",
			"distances": [[0, null], [900.0, 0]],
			"durations": [[0, null], [100.0, 0]]
		}`))
	}))
	defer srv.Close()

	c := NewOSRMClient(srv.URL)
	points := []domain.Coordinates{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}}

	m, err := c.Table(context.Background(), points, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.DistanceMeters[0][1] != unroutableMeters {
		t.Errorf("null distance = %v, want unroutable sentinel", m.DistanceMeters[0][1])
	}
	if m.DurationSeconds[0][1] != unroutableSeconds {
		t.Errorf("null duration = %v, want unroutable sentinel", m.DurationSeconds[0][1])
	}
}

func TestOSRMTableRetriesThenSurfacesProviderError(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewOSRMClient(srv.URL)
	points := []domain.Coordinates{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}}

	_, err := c.Table(context.Background(), points, nil, nil)
	if err == nil {
		t.Fatal("expected error after retry exhaustion")
	}

	var pe *ports.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *ports.ProviderError", err)
	}
	if got := calls.Load(); got != 4 {
		t.Errorf("attempts = %d, want 4", got)
	}
}

func TestOSRMTableRecoversAfterTransientFailure(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "try again", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"Ok","distances":[[0,1],[1,0]],"durations":[[0,1],[1,0]]}`))
	}))
	defer srv.Close()

	c := NewOSRMClient(srv.URL)
	points := []domain.Coordinates{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}}

	if _, err := c.Table(context.Background(), points, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("attempts = %d, want 2", got)
	}
}

func TestOSRMShapeReturnsGeometry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/route/v1/driving/") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"code": "Ok",
			"routes": [{"geometry": {"type":"LineString","coordinates":[[-93.1,44.9],[-93.0,45.0]]}}]
		}`))
	}))
	defer srv.Close()

	c := NewOSRMClient(srv.URL)
	points := []domain.Coordinates{{Lat: 44.9, Lon: -93.1}, {Lat: 45.0, Lon: -93.0}}

	geom, err := c.Shape(context.Background(), points)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(geom, `"LineString"`) {
		t.Errorf("geometry = %q, want GeoJSON LineString", geom)
	}
}
