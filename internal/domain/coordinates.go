package domain

import (
	"fmt"
	"math"
)

// Immutable geographic coordinates (latitude, longitude).
type Coordinates struct {
	Lat float64
	Lon float64
}

// CoordsToList returns coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Key returns a stable cache key rounded to 5 decimal places (~1m precision),
// so nearby float noise maps to the same entry.
func (c Coordinates) Key() string {
	return fmt.Sprintf("%.5f,%.5f", round5(c.Lat), round5(c.Lon))
}

func round5(v float64) float64 {
	return math.Round(v*100000) / 100000
}
