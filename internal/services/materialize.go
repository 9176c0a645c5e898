package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"delivery-optimizer/internal/domain"
	"delivery-optimizer/internal/platform/obs"
	"delivery-optimizer/internal/solver"
)

// arrivalToleranceMin guards the window check against float rounding; a
// larger excursion means the search and the replay disagree and is worth
// a warning in the log.
const arrivalToleranceMin = 0.5

type materializeInput struct {
	model      *solver.Model
	res        solver.Result
	preDropped []solver.PreDrop
	addresses  []domain.Address
	date       time.Time
	req        OptimizeRequest
	startMin   int
	degraded   bool
}

// materialize walks each vehicle's solved sequence into Route and
// RouteStop records with arrival/departure times and per-leg distances,
// merges every dropped address with its reason, and settles the overall
// status.
func (s *OptimizeService) materialize(ctx context.Context, in materializeInput) *domain.OptimizationResult {
	byID := make(map[int64]domain.Address, len(in.addresses))
	for _, a := range in.addresses {
		byID[a.ID] = a
	}

	var routes []domain.Route
	warnings := 0
	for _, v := range in.model.Vehicles {
		seq := in.res.Routes[v.Index]
		if countAddressStops(in.model, seq) == 0 {
			continue
		}

		route := domain.Route{
			DriverID:    v.DriverID,
			RouteNumber: len(routes) + 1,
			StartTime:   domain.FormatClock(v.StartMin),
		}
		route.Color = domain.ColorForRoute(route.RouteNumber)

		t := float64(v.StartMin)
		prev := 0
		for _, node := range seq {
			n := in.model.Nodes[node]
			legKm := in.model.Matrix.DistanceKm(prev, node)
			legMin := in.model.Matrix.DurationMinutes(prev, node)
			arrival := t + legMin

			if n.Kind == domain.NodeDriverHome {
				t = arrival
				prev = node
				continue
			}

			if n.Window != nil {
				if arrival < float64(n.Window.Start) {
					arrival = float64(n.Window.Start)
				}
				if arrival > float64(n.Window.End)+arrivalToleranceMin {
					warnings++
					log.Printf("req_id=%s op=optimize.Materialize address=%d arrival=%.1f outside window [%d, %d]",
						obs.RequestID(ctx), n.AddressID, arrival, n.Window.Start, n.Window.End)
				}
			}
			departure := arrival + float64(n.ServiceMinutes)

			route.Stops = append(route.Stops, domain.RouteStop{
				AddressID:                   n.AddressID,
				Sequence:                    len(route.Stops) + 1,
				EstimatedArrival:            domain.FormatClock(roundMin(arrival)),
				EstimatedDeparture:          domain.FormatClock(roundMin(departure)),
				DistanceFromPreviousKm:      legKm,
				DurationFromPreviousMinutes: legMin,
			})
			route.TotalDistanceKm += legKm
			t = departure
			prev = node
		}
		if v.EndNode < 0 && prev != 0 {
			t += in.model.Matrix.DurationMinutes(prev, 0)
		}

		route.TotalStops = len(route.Stops)
		route.TotalDurationMinutes = t - float64(v.StartMin)
		route.EndTime = domain.FormatClock(roundMin(t))
		route.Geometry = s.fetchGeometry(ctx, in.model, v, seq)
		routes = append(routes, route)
	}

	dropped := mergeDropped(in, byID)

	result := &domain.OptimizationResult{
		Date:                  in.date,
		Routes:                routes,
		TotalRoutes:           len(routes),
		DroppedAddressDetails: dropped,
	}
	for _, r := range routes {
		result.TotalStops += r.TotalStops
		result.TotalDistanceKm += r.TotalDistanceKm
		result.TotalDurationMinutes += r.TotalDurationMinutes
	}
	for _, d := range dropped {
		result.DroppedAddresses = append(result.DroppedAddresses, d.AddressID)
	}

	switch {
	case in.degraded:
		result.Status = domain.DayCompletedWithWarnings
		result.Message = fmt.Sprintf("optimized in degraded mode: %d stops across %d routes, %d dropped",
			result.TotalStops, result.TotalRoutes, len(dropped))
	case len(dropped) > 0 || warnings > 0 || in.res.Outcome == solver.OutcomeTimeout:
		result.Status = domain.DayCompletedWithWarnings
		result.Message = fmt.Sprintf("optimized %d stops across %d routes, %d dropped",
			result.TotalStops, result.TotalRoutes, len(dropped))
	default:
		result.Status = domain.DayCompleted
		result.Message = fmt.Sprintf("optimized %d stops across %d routes",
			result.TotalStops, result.TotalRoutes)
	}
	return result
}

// fetchGeometry decorates a route with its road polyline. Failures only
// log: geometry is not load-bearing.
func (s *OptimizeService) fetchGeometry(ctx context.Context, m *solver.Model, v solver.Vehicle, seq []int) string {
	if s.provider == nil {
		return ""
	}
	coords := []domain.Coordinates{m.Nodes[0].Coord}
	for _, node := range seq {
		coords = append(coords, m.Nodes[node].Coord)
	}
	if v.EndNode < 0 {
		coords = append(coords, m.Nodes[0].Coord)
	}

	shape, err := s.provider.Shape(ctx, coords)
	if err != nil {
		log.Printf("req_id=%s op=optimize.Materialize route geometry unavailable: %v", obs.RequestID(ctx), err)
		return ""
	}
	return shape
}

// mergeDropped combines pre-solve exclusions with search drops under
// their distinct reasons, ordered by address id.
func mergeDropped(in materializeInput, byID map[int64]domain.Address) []domain.DroppedAddress {
	var out []domain.DroppedAddress
	for _, pd := range in.preDropped {
		out = append(out, droppedDetail(pd.Address, pd.Reason))
	}

	searchReason := domain.DropBounds
	if in.res.Outcome == solver.OutcomeTimeout {
		searchReason = domain.DropTimeBudget
	}
	for _, node := range in.res.Dropped {
		a, ok := byID[in.model.Nodes[node].AddressID]
		if !ok {
			continue
		}
		out = append(out, droppedDetail(a, searchReason))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].AddressID < out[j].AddressID })
	return out
}

func droppedDetail(a domain.Address, reason string) domain.DroppedAddress {
	window := ""
	if a.PreferredTimeStart != "" || a.PreferredTimeEnd != "" {
		window = a.PreferredTimeStart + "-" + a.PreferredTimeEnd
	}
	return domain.DroppedAddress{
		AddressID:          a.ID,
		RecipientName:      a.RecipientName,
		Street:             a.Street,
		Reason:             reason,
		TimeWindow:         window,
		ServiceTimeMinutes: a.ServiceTimeMinutes,
	}
}

func countAddressStops(m *solver.Model, seq []int) int {
	count := 0
	for _, node := range seq {
		if m.Nodes[node].Kind == domain.NodeAddress {
			count++
		}
	}
	return count
}

func roundMin(minutes float64) int {
	return int(math.Round(minutes))
}
