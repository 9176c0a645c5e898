package solver

import (
	"math"
	"sort"
	"sync"
	"time"

	"delivery-optimizer/internal/domain"
)

const timeEps = 1e-6

// solution assigns each vehicle an ordered node sequence (excluding the
// depot, including the home terminal when the vehicle has one) and lists
// the address nodes left unserved.
type solution struct {
	routes  [][]int
	dropped []int
}

func (s *solution) clone() *solution {
	out := &solution{
		routes:  make([][]int, len(s.routes)),
		dropped: append([]int(nil), s.dropped...),
	}
	for i, r := range s.routes {
		out.routes[i] = append([]int(nil), r...)
	}
	return out
}

// incumbent is the best solution found so far, shared between the search
// goroutine and the watchdog.
type incumbent struct {
	mu   sync.Mutex
	sol  *solution
	cost float64
}

func (inc *incumbent) publish(sol *solution, cost float64) {
	inc.mu.Lock()
	defer inc.mu.Unlock()
	if inc.sol == nil || cost < inc.cost {
		inc.sol = sol.clone()
		inc.cost = cost
	}
}

func (inc *incumbent) best() (*solution, bool) {
	inc.mu.Lock()
	defer inc.mu.Unlock()
	if inc.sol == nil {
		return nil, false
	}
	return inc.sol.clone(), true
}

type searcher struct {
	m        *Model
	deadline time.Time
	inc      *incumbent
}

// run seeds a solution by cheapest insertion and then alternates
// improvement passes until the deadline or a fixed point.
func (s *searcher) run() *solution {
	sol := s.greedySeed()
	s.inc.publish(sol, s.cost(sol))

	for time.Now().Before(s.deadline) {
		improved := s.reinsertDropped(sol)
		improved = s.relocateImprove(sol) || improved
		improved = s.twoOptImprove(sol) || improved
		improved = s.crossExchangeImprove(sol) || improved
		s.inc.publish(sol, s.cost(sol))
		if !improved {
			break
		}
	}
	return sol
}

// greedySeed inserts every address node at its cheapest feasible position
// across all vehicles, windowed stops first so tight windows claim their
// slots early. Home terminals are pinned before any insertion happens.
func (s *searcher) greedySeed() *solution {
	sol := &solution{routes: make([][]int, len(s.m.Vehicles))}
	for _, v := range s.m.Vehicles {
		if v.EndNode >= 0 {
			sol.routes[v.Index] = []int{v.EndNode}
		}
	}

	order := make([]int, 0, len(s.m.Nodes))
	for i, n := range s.m.Nodes {
		if n.Kind == domain.NodeAddress {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		wa, wb := s.m.Nodes[order[a]].Window, s.m.Nodes[order[b]].Window
		switch {
		case wa != nil && wb == nil:
			return true
		case wa == nil && wb != nil:
			return false
		case wa != nil && wb != nil:
			return wa.Start < wb.Start
		default:
			return false
		}
	})

	for _, node := range order {
		if v, pos, ok := s.cheapestInsertion(sol, node); ok {
			sol.routes[v] = insertAt(sol.routes[v], pos, node)
		} else {
			sol.dropped = append(sol.dropped, node)
		}
	}
	return sol
}

// cheapestInsertion finds the feasible (vehicle, position) with the
// smallest cost increase for node, honoring the allowed-vehicle set.
func (s *searcher) cheapestInsertion(sol *solution, node int) (vehicle, pos int, ok bool) {
	bestDelta := math.Inf(1)
	for _, v := range s.m.Vehicles {
		if !s.m.Nodes[node].Allowed.Has(v.Index) {
			continue
		}
		route := sol.routes[v.Index]
		base := s.routeCost(v, route)
		limit := len(route)
		if v.EndNode >= 0 {
			limit-- // keep the home terminal last
		}
		for p := 0; p <= limit; p++ {
			candidate := insertAt(append([]int(nil), route...), p, node)
			if _, feasible := s.schedule(v, candidate); !feasible {
				continue
			}
			if delta := s.routeCost(v, candidate) - base; delta < bestDelta {
				bestDelta, vehicle, pos, ok = delta, v.Index, p, true
			}
		}
	}
	return vehicle, pos, ok
}

// schedule propagates time along a route: travel, wait to window open,
// serve, continue. Returns the route end clock (after the final leg back
// to the depot when there is no home terminal) and whether every bound
// holds.
func (s *searcher) schedule(v Vehicle, route []int) (endMin float64, ok bool) {
	t := float64(v.StartMin)
	prev := 0
	stops := 0
	for _, node := range route {
		n := s.m.Nodes[node]
		if !n.Allowed.Has(v.Index) {
			return 0, false
		}
		t += s.m.travelMin(prev, node)
		if n.Window != nil {
			if t < float64(n.Window.Start) {
				t = float64(n.Window.Start)
			}
			if t > float64(n.Window.End)+timeEps {
				return 0, false
			}
		}
		t += float64(n.ServiceMinutes)
		if n.Kind == domain.NodeAddress {
			stops++
		}
		prev = node
	}
	if stops > v.MaxStops {
		return 0, false
	}
	if v.EndNode >= 0 {
		if len(route) == 0 || route[len(route)-1] != v.EndNode {
			return 0, false
		}
	} else if prev != 0 {
		t += s.m.travelMin(prev, 0)
	}
	if t-float64(v.StartMin) > float64(v.MaxDurationMin)+timeEps {
		return 0, false
	}
	return t, true
}

// routeCost is the route's travel meters minus the preference bonus for
// every stop served by its preferred vehicle.
func (s *searcher) routeCost(v Vehicle, route []int) float64 {
	cost := 0.0
	prev := 0
	for _, node := range route {
		cost += s.m.Matrix.DistanceMeters[prev][node]
		if s.m.PreferredVehicle[node] == v.Index {
			cost -= s.m.BonusMeters
		}
		prev = node
	}
	if v.EndNode < 0 && prev != 0 {
		cost += s.m.Matrix.DistanceMeters[prev][0]
	}
	return cost
}

func (s *searcher) cost(sol *solution) float64 {
	total := 0.0
	for _, v := range s.m.Vehicles {
		total += s.routeCost(v, sol.routes[v.Index])
	}
	for _, node := range sol.dropped {
		total += s.m.DropPenalty[node]
	}
	return total
}

// reinsertDropped retries every dropped node; improvement passes can have
// opened room for it.
func (s *searcher) reinsertDropped(sol *solution) bool {
	improved := false
	remaining := sol.dropped[:0]
	for _, node := range sol.dropped {
		if v, pos, ok := s.cheapestInsertion(sol, node); ok {
			sol.routes[v] = insertAt(sol.routes[v], pos, node)
			improved = true
		} else {
			remaining = append(remaining, node)
		}
	}
	sol.dropped = remaining
	return improved
}

// relocateImprove moves single stops to cheaper feasible positions, within
// or across routes.
func (s *searcher) relocateImprove(sol *solution) bool {
	improved := false
	for _, from := range s.m.Vehicles {
		route := sol.routes[from.Index]
		for i := 0; i < len(route); i++ {
			if time.Now().After(s.deadline) {
				return improved
			}
			node := route[i]
			if s.m.Nodes[node].Kind != domain.NodeAddress {
				continue
			}
			without := removeAt(append([]int(nil), route...), i)
			if _, ok := s.schedule(from, without); !ok {
				continue
			}
			saved := s.routeCost(from, route) - s.routeCost(from, without)

			trial := sol.clone()
			trial.routes[from.Index] = without
			if v, pos, ok := s.cheapestInsertion(trial, node); ok {
				added := s.routeCost(s.m.Vehicles[v], insertAt(append([]int(nil), trial.routes[v]...), pos, node)) -
					s.routeCost(s.m.Vehicles[v], trial.routes[v])
				if added < saved-timeEps {
					sol.routes[from.Index] = without
					sol.routes[v] = insertAt(sol.routes[v], pos, node)
					improved = true
					route = sol.routes[from.Index]
					i = -1
				}
			}
		}
	}
	return improved
}

// twoOptImprove reverses in-route segments when that shortens the route
// and keeps the schedule feasible.
func (s *searcher) twoOptImprove(sol *solution) bool {
	improved := false
	for _, v := range s.m.Vehicles {
		route := sol.routes[v.Index]
		limit := len(route)
		if v.EndNode >= 0 {
			limit--
		}
		for i := 0; i < limit-1; i++ {
			for j := i + 1; j < limit; j++ {
				if time.Now().After(s.deadline) {
					return improved
				}
				candidate := append([]int(nil), route...)
				reverse(candidate[i : j+1])
				if _, ok := s.schedule(v, candidate); !ok {
					continue
				}
				if s.routeCost(v, candidate) < s.routeCost(v, route)-timeEps {
					sol.routes[v.Index] = candidate
					route = candidate
					improved = true
				}
			}
		}
	}
	return improved
}

// crossExchangeImprove swaps one stop between two routes when the combined
// cost drops.
func (s *searcher) crossExchangeImprove(sol *solution) bool {
	improved := false
	for a := 0; a < len(s.m.Vehicles); a++ {
		for b := a + 1; b < len(s.m.Vehicles); b++ {
			va, vb := s.m.Vehicles[a], s.m.Vehicles[b]
			ra, rb := sol.routes[a], sol.routes[b]
			for i := 0; i < len(ra); i++ {
				if s.m.Nodes[ra[i]].Kind != domain.NodeAddress {
					continue
				}
				for j := 0; j < len(rb); j++ {
					if time.Now().After(s.deadline) {
						return improved
					}
					if s.m.Nodes[rb[j]].Kind != domain.NodeAddress {
						continue
					}
					ca := append([]int(nil), ra...)
					cb := append([]int(nil), rb...)
					ca[i], cb[j] = cb[j], ca[i]
					if _, ok := s.schedule(va, ca); !ok {
						continue
					}
					if _, ok := s.schedule(vb, cb); !ok {
						continue
					}
					before := s.routeCost(va, ra) + s.routeCost(vb, rb)
					after := s.routeCost(va, ca) + s.routeCost(vb, cb)
					if after < before-timeEps {
						sol.routes[a], sol.routes[b] = ca, cb
						ra, rb = ca, cb
						improved = true
					}
				}
			}
		}
	}
	return improved
}

func insertAt(route []int, pos, node int) []int {
	route = append(route, 0)
	copy(route[pos+1:], route[pos:])
	route[pos] = node
	return route
}

func removeAt(route []int, pos int) []int {
	return append(route[:pos], route[pos+1:]...)
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
