package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"delivery-optimizer/internal/ports"
)

// NominatimGeocoder resolves address text against a Nominatim instance.
// The public instance rate-limits aggressively; callers batch-geocoding
// should pace their requests and identify themselves via userAgent.
type NominatimGeocoder struct {
	http    session
	baseURL string
}

func NewNominatimGeocoder(baseURL, userAgent string) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	if userAgent == "" {
		userAgent = "delivery-optimizer"
	}
	s := newSession(15 * time.Second)
	s.userAgent = userAgent
	return &NominatimGeocoder{http: s, baseURL: baseURL}
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, addressText string) (ports.GeocodeResult, error) {
	endpoint := fmt.Sprintf("%s/search?format=jsonv2&limit=1&q=%s",
		g.baseURL, url.QueryEscape(addressText))

	resp, err := g.http.doWithRetry(ctx, func() (*http.Request, error) {
		return g.http.newRequest(ctx, endpoint)
	})
	if err != nil {
		return ports.GeocodeResult{}, &ports.ProviderError{Op: "geocode", Err: err}
	}
	defer resp.Body.Close()

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return ports.GeocodeResult{}, &ports.ProviderError{Op: "geocode", Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(results) == 0 {
		return ports.GeocodeResult{Status: "not_found"}, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return ports.GeocodeResult{}, &ports.ProviderError{Op: "geocode", Err: fmt.Errorf("parse lat %q: %w", results[0].Lat, err)}
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return ports.GeocodeResult{}, &ports.ProviderError{Op: "geocode", Err: fmt.Errorf("parse lon %q: %w", results[0].Lon, err)}
	}
	return ports.GeocodeResult{Lat: lat, Lon: lon, Status: "success"}, nil
}
