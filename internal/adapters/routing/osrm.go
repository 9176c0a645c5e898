package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"delivery-optimizer/internal/domain"
	"delivery-optimizer/internal/ports"
)

// Unroutable pairs (ferries, islands, snapping failures) come back null
// from OSRM. They are mapped to costs large enough that no route ever
// chooses them, matching the drop-penalty scale in the solver.
const (
	unroutableMeters  = 999_999_000
	unroutableSeconds = 59_999_940
)

// OSRMClient implements ports.MatrixProvider against an OSRM server
// (public demo instance or self-hosted).
//
// The client is safe for concurrent use.
type OSRMClient struct {
	http    session
	baseURL string
	profile string
}

func NewOSRMClient(baseURL string) *OSRMClient {
	if baseURL == "" {
		baseURL = "https://router.project-osrm.org"
	}
	return &OSRMClient{
		http:    newSession(30 * time.Second),
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: "driving",
	}
}

type tableResponse struct {
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// Table fetches directed distance/duration between sources and
// destinations (indices into points) from the OSRM table service.
// Empty sources/destinations mean "all points".
func (c *OSRMClient) Table(
	ctx context.Context,
	points []domain.Coordinates,
	sources, destinations []int,
) (ports.Matrix, error) {
	if len(points) < 2 {
		return ports.Matrix{
			DistanceMeters:  [][]float64{{0}},
			DurationSeconds: [][]float64{{0}},
		}, nil
	}

	url := fmt.Sprintf("%s/table/v1/%s/%s?annotations=distance,duration",
		c.baseURL, c.profile, coordPath(points))
	if len(sources) > 0 {
		url += "&sources=" + joinIndices(sources)
	}
	if len(destinations) > 0 {
		url += "&destinations=" + joinIndices(destinations)
	}

	resp, err := c.http.doWithRetry(ctx, func() (*http.Request, error) {
		return c.http.newRequest(ctx, url)
	})
	if err != nil {
		return ports.Matrix{}, &ports.ProviderError{Op: "table", Err: err}
	}
	defer resp.Body.Close()

	var tr tableResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return ports.Matrix{}, &ports.ProviderError{Op: "table", Err: fmt.Errorf("decode response: %w", err)}
	}
	if tr.Code != "Ok" {
		return ports.Matrix{}, &ports.ProviderError{Op: "table", Err: fmt.Errorf("OSRM error %s: %s", tr.Code, tr.Message)}
	}

	nRows := len(sources)
	if nRows == 0 {
		nRows = len(points)
	}
	nCols := len(destinations)
	if nCols == 0 {
		nCols = len(points)
	}
	if len(tr.Distances) != nRows || len(tr.Durations) != nRows {
		return ports.Matrix{}, &ports.ProviderError{Op: "table", Err: fmt.Errorf(
			"expected %d rows, got distances=%d durations=%d",
			nRows, len(tr.Distances), len(tr.Durations),
		)}
	}

	m := ports.Matrix{
		DistanceMeters:  make([][]float64, nRows),
		DurationSeconds: make([][]float64, nRows),
	}
	for i := 0; i < nRows; i++ {
		if len(tr.Distances[i]) != nCols || len(tr.Durations[i]) != nCols {
			return ports.Matrix{}, &ports.ProviderError{Op: "table", Err: fmt.Errorf(
				"row %d: expected %d columns, got distances=%d durations=%d",
				i, nCols, len(tr.Distances[i]), len(tr.Durations[i]),
			)}
		}
		m.DistanceMeters[i] = make([]float64, nCols)
		m.DurationSeconds[i] = make([]float64, nCols)
		for j := 0; j < nCols; j++ {
			m.DistanceMeters[i][j] = derefOr(tr.Distances[i][j], unroutableMeters)
			m.DurationSeconds[i][j] = derefOr(tr.Durations[i][j], unroutableSeconds)
		}
	}
	return m, nil
}

func derefOr(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	return *p
}

// coordPath renders points in OSRM's lon,lat;lon,lat path format.
func coordPath(points []domain.Coordinates) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = fmt.Sprintf("%.6f,%.6f", p.Lon, p.Lat)
	}
	return strings.Join(parts, ";")
}

func joinIndices(idx []int) string {
	parts := make([]string, len(idx))
	for i, v := range idx {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ";")
}
