package domain

// NodeKind distinguishes the depot, delivery addresses, and driver home
// terminals inside the optimization model.
type NodeKind int

const (
	NodeDepot NodeKind = iota
	NodeAddress
	NodeDriverHome
)

func (k NodeKind) String() string {
	switch k {
	case NodeDepot:
		return "depot"
	case NodeAddress:
		return "address"
	case NodeDriverHome:
		return "driver_home"
	default:
		return "unknown"
	}
}

// TimeWindow is a [Start, End] interval in minutes from the day start.
type TimeWindow struct {
	Start int
	End   int
}

// VehicleSet is a bitset of vehicle indices allowed to serve a node.
// Requests are capped at 64 drivers, which comfortably covers a
// community delivery day.
type VehicleSet uint64

// AllVehicles returns a set containing vehicles 0..n-1.
func AllVehicles(n int) VehicleSet {
	if n >= 64 {
		return ^VehicleSet(0)
	}
	return VehicleSet(1)<<uint(n) - 1
}

func (s VehicleSet) Has(i int) bool                    { return s&(1<<uint(i)) != 0 }
func (s VehicleSet) Add(i int) VehicleSet              { return s | 1<<uint(i) }
func (s VehicleSet) Intersect(o VehicleSet) VehicleSet { return s & o }
func (s VehicleSet) Empty() bool                       { return s == 0 }

// Node is one location in the optimization model. Exactly one Depot node
// exists per model, Address nodes map 1:1 to requested address ids, and
// DriverHome nodes exist only for drivers ending their route at home.
type Node struct {
	Kind           NodeKind
	AddressID      int64 // set for NodeAddress
	DriverID       int64 // set for NodeDriverHome
	Coord          Coordinates
	ServiceMinutes int         // 0 for Depot and DriverHome
	Window         *TimeWindow // nil means unconstrained
	Allowed        VehicleSet
	Mandatory      bool
}
