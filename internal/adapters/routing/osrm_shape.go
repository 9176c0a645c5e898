package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"delivery-optimizer/internal/domain"
	"delivery-optimizer/internal/ports"
)

type routeResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Geometry json.RawMessage `json:"geometry"`
	} `json:"routes"`
}

// Shape fetches the road-network polyline through the ordered points as a
// GeoJSON LineString. Callers treat failures as non-fatal; geometry is
// decorative, not load-bearing.
func (c *OSRMClient) Shape(ctx context.Context, points []domain.Coordinates) (string, error) {
	if len(points) < 2 {
		return "", nil
	}

	url := fmt.Sprintf("%s/route/v1/%s/%s?overview=full&geometries=geojson&steps=false",
		c.baseURL, c.profile, coordPath(points))

	resp, err := c.http.doWithRetry(ctx, func() (*http.Request, error) {
		return c.http.newRequest(ctx, url)
	})
	if err != nil {
		return "", &ports.ProviderError{Op: "shape", Err: err}
	}
	defer resp.Body.Close()

	var rr routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return "", &ports.ProviderError{Op: "shape", Err: fmt.Errorf("decode response: %w", err)}
	}
	if rr.Code != "Ok" {
		return "", &ports.ProviderError{Op: "shape", Err: fmt.Errorf("OSRM error %s: %s", rr.Code, rr.Message)}
	}
	if len(rr.Routes) == 0 {
		return "", &ports.ProviderError{Op: "shape", Err: fmt.Errorf("no routes in response")}
	}

	return string(rr.Routes[0].Geometry), nil
}
