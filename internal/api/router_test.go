package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"delivery-optimizer/internal/adapters/cache"
	"delivery-optimizer/internal/adapters/routing"
	"delivery-optimizer/internal/domain"
	"delivery-optimizer/internal/matrix"
	"delivery-optimizer/internal/metrics"
	"delivery-optimizer/internal/ports"
	"delivery-optimizer/internal/services"
)

type stubAddressRepo map[int64]domain.Address

func (r stubAddressRepo) ListByIDs(_ context.Context, ids []int64) ([]domain.Address, error) {
	var out []domain.Address
	for _, id := range ids {
		if a, ok := r[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

type stubDriverRepo map[int64]domain.Driver

func (r stubDriverRepo) ListByIDs(_ context.Context, ids []int64) ([]domain.Driver, error) {
	var out []domain.Driver
	for _, id := range ids {
		if d, ok := r[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

type stubPlanRepo struct {
	nextID int64
	days   map[int64]domain.DeliveryDay
	routes map[int64][]domain.Route
}

func newStubPlanRepo() *stubPlanRepo {
	return &stubPlanRepo{days: map[int64]domain.DeliveryDay{}, routes: map[int64][]domain.Route{}}
}

func (r *stubPlanRepo) ReplaceDay(_ context.Context, day *domain.DeliveryDay, routes []domain.Route) error {
	for id, existing := range r.days {
		if existing.Date.Equal(day.Date) {
			delete(r.days, id)
			delete(r.routes, id)
		}
	}
	r.nextID++
	day.ID = r.nextID
	stored := make([]domain.Route, len(routes))
	for i, route := range routes {
		r.nextID++
		route.ID = r.nextID
		route.DeliveryDayID = day.ID
		stored[i] = route
	}
	r.days[day.ID] = *day
	r.routes[day.ID] = stored
	return nil
}

func (r *stubPlanRepo) ListDays(context.Context) ([]domain.DeliveryDay, error) {
	var out []domain.DeliveryDay
	for _, d := range r.days {
		out = append(out, d)
	}
	return out, nil
}

func (r *stubPlanRepo) GetDayByDate(_ context.Context, date time.Time) (domain.DeliveryDay, error) {
	for _, d := range r.days {
		if d.Date.Equal(date) {
			return d, nil
		}
	}
	return domain.DeliveryDay{}, ports.ErrNotFound
}

func (r *stubPlanRepo) GetRoutesForDay(_ context.Context, dayID int64) ([]domain.Route, error) {
	return r.routes[dayID], nil
}

func (r *stubPlanRepo) GetRoute(_ context.Context, routeID int64) (domain.Route, error) {
	for _, routes := range r.routes {
		for _, route := range routes {
			if route.ID == routeID {
				return route, nil
			}
		}
	}
	return domain.Route{}, ports.ErrNotFound
}

func (r *stubPlanRepo) DeleteDay(_ context.Context, dayID int64) error {
	if _, ok := r.days[dayID]; !ok {
		return ports.ErrNotFound
	}
	delete(r.days, dayID)
	delete(r.routes, dayID)
	return nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	metrics.RegisterDefault()

	addresses := stubAddressRepo{}
	for i := int64(1); i <= 4; i++ {
		addresses[i] = domain.Address{
			ID:                 i,
			Street:             fmt.Sprintf("%d Oak Ave", i),
			RecipientName:      fmt.Sprintf("R%d", i),
			Lat:                40.70 + float64(i)*0.005,
			Lon:                -74.00,
			ServiceTimeMinutes: 5,
			IsActive:           true,
		}
	}
	drivers := stubDriverRepo{1: {ID: 1, Name: "Sam"}}

	provider := routing.NewMockMatrixProvider()
	builder := matrix.NewBuilder(provider, cache.NewMemoryMatrixCache())
	plans := newStubPlanRepo()

	optimize := services.NewOptimizeService(addresses, drivers, plans, builder, provider)
	planSvc := services.NewPlansService(plans, addresses)

	srv := httptest.NewServer(NewRouter(optimize, planSvc))
	t.Cleanup(srv.Close)
	return srv
}

func optimizeBody() string {
	return `{
		"date": "2026-09-01",
		"address_ids": [1, 2, 3, 4],
		"driver_ids": [1],
		"depot_latitude": 40.71,
		"depot_longitude": -74.005,
		"start_time": "09:00",
		"time_limit_seconds": 2
	}`
}

func TestOptimizeEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/optimize", "application/json", strings.NewReader(optimizeBody()))
	if err != nil {
		t.Fatalf("POST /optimize: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Status      string `json:"status"`
		TotalRoutes int    `json:"total_routes"`
		TotalStops  int    `json:"total_stops"`
		Routes      []struct {
			Color string `json:"color"`
			Stops []struct {
				Sequence int `json:"sequence"`
			} `json:"stops"`
		} `json:"routes"`
		DroppedAddresses []int64 `json:"dropped_addresses"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "completed" || body.TotalRoutes != 1 || body.TotalStops != 4 {
		t.Errorf("body = %+v", body)
	}
	if len(body.DroppedAddresses) != 0 {
		t.Errorf("dropped = %v, want empty list", body.DroppedAddresses)
	}
	if body.Routes[0].Color != domain.RouteColors[0] {
		t.Errorf("color = %q", body.Routes[0].Color)
	}
	for i, stop := range body.Routes[0].Stops {
		if stop.Sequence != i+1 {
			t.Errorf("sequence[%d] = %d", i, stop.Sequence)
		}
	}
}

func TestOptimizeEndpointRejectsBadInput(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{`, http.StatusBadRequest},
		{"unknown field", `{"date": "2026-09-01", "bogus": 1}`, http.StatusBadRequest},
		{"validation", `{"date": "2026-09-01", "address_ids": [], "driver_ids": [1], "depot_latitude": 40.7, "depot_longitude": -74.0}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/optimize", "application/json", strings.NewReader(tc.body))
			if err != nil {
				t.Fatalf("POST: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tc.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tc.want)
			}
		})
	}

	resp, err := http.Get(srv.URL + "/optimize")
	if err != nil {
		t.Fatalf("GET /optimize: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want 405", resp.StatusCode)
	}
}

func TestDayEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/optimize", "application/json", strings.NewReader(optimizeBody()))
	if err != nil {
		t.Fatalf("POST /optimize: %v", err)
	}
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/delivery-days")
	if err != nil {
		t.Fatalf("GET /delivery-days: %v", err)
	}
	var list struct {
		Days []struct {
			Date   string `json:"date"`
			Status string `json:"status"`
		} `json:"days"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if len(list.Days) != 1 || list.Days[0].Date != "2026-09-01" {
		t.Fatalf("days = %+v", list.Days)
	}

	resp, err = http.Get(srv.URL + "/delivery-days/2026-09-01")
	if err != nil {
		t.Fatalf("GET day: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("get day status = %d", resp.StatusCode)
	}
	var day struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&day); err != nil {
		t.Fatalf("decode day: %v", err)
	}
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/routes/" + strconv.FormatInt(day.ID, 10))
	if err != nil {
		t.Fatalf("GET routes for day: %v", err)
	}
	var routes []struct {
		RouteNumber int `json:"route_number"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&routes); err != nil {
		t.Fatalf("decode routes: %v", err)
	}
	resp.Body.Close()
	if len(routes) != 1 || routes[0].RouteNumber != 1 {
		t.Fatalf("routes for day = %+v", routes)
	}

	resp, err = http.Get(srv.URL + "/delivery-days/2026-12-25")
	if err != nil {
		t.Fatalf("GET missing day: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing day status = %d, want 404", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/delivery-days/2026-09-01/export")
	if err != nil {
		t.Fatalf("GET day export: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("export status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "text/csv" {
		t.Errorf("export content type = %q", got)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/delivery-days/2026-09-01", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE day: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", resp.StatusCode)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("metrics status = %d", resp.StatusCode)
	}
}
