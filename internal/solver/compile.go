package solver

import (
	"fmt"
	"math"

	"delivery-optimizer/internal/domain"
)

// CompileInput is everything the compiler needs to turn a request into a
// search model. StartMin is the request-wide start clock in minutes from
// midnight; per-driver start times in Constraints override it.
type CompileInput struct {
	Depot       domain.Coordinates
	StartMin    int
	Addresses   []domain.Address
	Drivers     []domain.Driver
	Constraints map[int64]domain.DriverConstraintSpec
	BonusMeters float64
}

// Compile translates domain constraints into the solver model: vehicles
// with capacity and duration bounds, nodes with time windows and
// allowed-vehicle bitsets, drop penalties, and mandatory home terminals.
//
// Addresses whose gender requirement matches none of the selected drivers
// are excluded here and returned as pre-drops; they never reach the
// search.
func Compile(in CompileInput) (*Model, []PreDrop, error) {
	if len(in.Drivers) > 64 {
		return nil, nil, fmt.Errorf("compile: %d drivers exceeds the 64-driver limit", len(in.Drivers))
	}

	vehicles := make([]Vehicle, len(in.Drivers))
	genderSets := map[string]domain.VehicleSet{}
	byDriverID := map[int64]int{}
	for i, d := range in.Drivers {
		spec := in.Constraints[d.ID]
		maxStops, maxDuration := spec.Resolve(d)

		startMin := in.StartMin
		if spec.StartTime != "" {
			parsed, err := domain.ParseClock(spec.StartTime)
			if err != nil {
				return nil, nil, fmt.Errorf("compile: driver %d start time: %w", d.ID, err)
			}
			startMin = parsed
		}

		vehicles[i] = Vehicle{
			Index:          i,
			DriverID:       d.ID,
			MaxStops:       maxStops,
			MaxDurationMin: maxDuration,
			StartMin:       startMin,
			EndNode:        -1,
		}
		byDriverID[d.ID] = i
		if d.Gender != "" {
			genderSets[d.Gender] = genderSets[d.Gender].Add(i)
		}
	}

	all := domain.AllVehicles(len(in.Drivers))
	m := &Model{
		Nodes: []domain.Node{{
			Kind:    domain.NodeDepot,
			Coord:   in.Depot,
			Allowed: all,
		}},
		Vehicles:    vehicles,
		BonusMeters: in.BonusMeters,
	}
	if m.BonusMeters <= 0 {
		m.BonusMeters = defaultPreferenceBonusMeters
	}
	m.DropPenalty = []float64{math.Inf(1)}
	m.PreferredVehicle = []int{-1}

	var preDropped []PreDrop
	for _, a := range in.Addresses {
		allowed := all
		if a.RequiredDriverGender != "" {
			allowed = allowed.Intersect(genderSets[a.RequiredDriverGender])
		}
		if allowed.Empty() {
			preDropped = append(preDropped, PreDrop{Address: a, Reason: domain.DropNoMatchingDriver})
			continue
		}

		window, err := addressWindow(a)
		if err != nil {
			return nil, nil, fmt.Errorf("compile: address %d: %w", a.ID, err)
		}

		preferred := -1
		if a.PreferredDriverID != 0 {
			if idx, ok := byDriverID[a.PreferredDriverID]; ok {
				preferred = idx
			}
		}

		m.Nodes = append(m.Nodes, domain.Node{
			Kind:           domain.NodeAddress,
			AddressID:      a.ID,
			Coord:          a.Coord(),
			ServiceMinutes: a.ServiceTimeMinutes,
			Window:         window,
			Allowed:        allowed,
		})
		m.DropPenalty = append(m.DropPenalty, dropPenaltyMeters)
		m.PreferredVehicle = append(m.PreferredVehicle, preferred)
	}

	// Home terminals are ordinary mandatory nodes restricted to their
	// driver, placed by the search like any other stop. The engine's
	// per-vehicle endpoint arrays stay untouched.
	for i, d := range in.Drivers {
		spec := in.Constraints[d.ID]
		if !spec.EndAtHome || !d.HasHome {
			continue
		}
		m.Vehicles[i].EndNode = len(m.Nodes)
		m.Nodes = append(m.Nodes, domain.Node{
			Kind:      domain.NodeDriverHome,
			DriverID:  d.ID,
			Coord:     d.HomeCoord(),
			Allowed:   domain.VehicleSet(0).Add(i),
			Mandatory: true,
		})
		m.DropPenalty = append(m.DropPenalty, math.Inf(1))
		m.PreferredVehicle = append(m.PreferredVehicle, -1)
	}

	return m, preDropped, nil
}

// addressWindow converts the preferred "HH:MM" pair into an absolute
// minute interval. A half-open preference is completed with the day's
// edges.
func addressWindow(a domain.Address) (*domain.TimeWindow, error) {
	if a.PreferredTimeStart == "" && a.PreferredTimeEnd == "" {
		return nil, nil
	}
	w := &domain.TimeWindow{Start: 0, End: 24*60 - 1}
	if a.PreferredTimeStart != "" {
		start, err := domain.ParseClock(a.PreferredTimeStart)
		if err != nil {
			return nil, fmt.Errorf("preferred start: %w", err)
		}
		w.Start = start
	}
	if a.PreferredTimeEnd != "" {
		end, err := domain.ParseClock(a.PreferredTimeEnd)
		if err != nil {
			return nil, fmt.Errorf("preferred end: %w", err)
		}
		w.End = end
	}
	if w.End < w.Start {
		return nil, fmt.Errorf("window ends (%d) before it starts (%d)", w.End, w.Start)
	}
	return w, nil
}
