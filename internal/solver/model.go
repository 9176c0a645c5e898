package solver

import (
	"math"

	"delivery-optimizer/internal/domain"
	"delivery-optimizer/internal/ports"
)

// Cost units are meters. A dropped optional stop charges dropPenaltyMeters;
// mandatory nodes carry an infinite penalty so the search can never shed
// them. The preference bonus rewards arcs into a node served by its
// preferred vehicle without ever forbidding another vehicle.
const (
	dropPenaltyMeters            = 1_000_000.0
	defaultPreferenceBonusMeters = 2_000.0
)

// Vehicle is one driver's solver-side view: absolute start clock, stop and
// duration bounds, and an optional terminal node index for home-ending.
type Vehicle struct {
	Index          int
	DriverID       int64
	MaxStops       int
	MaxDurationMin int
	StartMin       int
	// EndNode is the index of this vehicle's mandatory terminal node, or
	// -1 when the route returns to the depot.
	EndNode int
}

// Model is the compiled search input. Nodes[0] is always the depot;
// address and driver-home nodes follow. Matrix indices align with Nodes.
type Model struct {
	Nodes    []domain.Node
	Vehicles []Vehicle
	Matrix   ports.Matrix

	// DropPenalty[i] in cost units; +Inf marks a mandatory node.
	DropPenalty []float64
	// PreferredVehicle[i] is a vehicle index, or -1.
	PreferredVehicle []int
	BonusMeters      float64
}

// PreDrop records an address excluded before search, with the reason the
// caller reports to the user.
type PreDrop struct {
	Address domain.Address
	Reason  string
}

func (m *Model) mandatory(node int) bool {
	return math.IsInf(m.DropPenalty[node], 1)
}

func (m *Model) travelMin(from, to int) float64 {
	return m.Matrix.DurationMinutes(from, to)
}

// addressCount reports how many Nodes are address stops (not depot or
// driver homes).
func (m *Model) addressCount() int {
	count := 0
	for _, n := range m.Nodes {
		if n.Kind == domain.NodeAddress {
			count++
		}
	}
	return count
}
