package domain

// Defaults applied when a request omits per-driver constraints.
const (
	DefaultMaxStops         = 15
	DefaultMaxRouteDuration = 240 // minutes
)

// Driver is a volunteer available for an optimization run.
type Driver struct {
	ID     int64
	Name   string
	Phone  string
	Gender string

	MaxStops                int
	MaxRouteDurationMinutes int

	HomeLat     float64
	HomeLon     float64
	HomeAddress string
	HasHome     bool

	IsActive bool
}

// HomeCoord returns the driver's home location.
func (d Driver) HomeCoord() Coordinates { return Coordinates{Lat: d.HomeLat, Lon: d.HomeLon} }

// DriverConstraintSpec carries per-driver constraints for one request.
// Immutable once handed to the compiler; zero fields fall back to the
// driver's stored values and then to the package defaults.
type DriverConstraintSpec struct {
	MaxStops                int
	MaxRouteDurationMinutes int
	StartTime               string // "HH:MM", empty means the request-wide start
	EndAtHome               bool
}

// Resolve merges a spec with the driver's stored limits and the defaults.
func (s DriverConstraintSpec) Resolve(d Driver) (maxStops, maxDuration int) {
	maxStops = s.MaxStops
	if maxStops <= 0 {
		maxStops = d.MaxStops
	}
	if maxStops <= 0 {
		maxStops = DefaultMaxStops
	}

	maxDuration = s.MaxRouteDurationMinutes
	if maxDuration <= 0 {
		maxDuration = d.MaxRouteDurationMinutes
	}
	if maxDuration <= 0 {
		maxDuration = DefaultMaxRouteDuration
	}
	return maxStops, maxDuration
}
