package solver

import (
	"math"
	"time"

	"delivery-optimizer/internal/domain"
)

// FallbackSolve is the degraded-mode heuristic used after an engine
// crash: sequential nearest insertion, one vehicle at a time, ignoring
// soft preferences. Hard bounds (windows, capacity, duration, allowed
// vehicles, home terminals) still hold.
func FallbackSolve(m *Model) Result {
	s := &searcher{m: m, deadline: time.Now().Add(10 * time.Second), inc: &incumbent{}}

	sol := &solution{routes: make([][]int, len(m.Vehicles))}
	unassigned := make([]bool, len(m.Nodes))
	for i, n := range m.Nodes {
		if n.Kind == domain.NodeAddress {
			unassigned[i] = true
		}
	}

	for _, v := range m.Vehicles {
		route := []int{}
		if v.EndNode >= 0 {
			route = []int{v.EndNode}
		}
		for {
			last := 0
			core := len(route)
			if v.EndNode >= 0 {
				core--
			}
			if core > 0 {
				last = route[core-1]
			}

			best, bestDist := -1, math.Inf(1)
			for node, open := range unassigned {
				if !open || !m.Nodes[node].Allowed.Has(v.Index) {
					continue
				}
				candidate := insertAt(append([]int(nil), route...), core, node)
				if _, ok := s.schedule(v, candidate); !ok {
					continue
				}
				if d := m.Matrix.DistanceMeters[last][node]; d < bestDist {
					best, bestDist = node, d
				}
			}
			if best < 0 {
				break
			}
			route = insertAt(route, core, best)
			unassigned[best] = false
		}
		sol.routes[v.Index] = route
	}

	for node, open := range unassigned {
		if open {
			sol.dropped = append(sol.dropped, node)
		}
	}
	return classify(m, sol, OutcomeAssignment)
}
