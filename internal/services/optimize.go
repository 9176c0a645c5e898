package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"delivery-optimizer/internal/domain"
	"delivery-optimizer/internal/matrix"
	"delivery-optimizer/internal/metrics"
	"delivery-optimizer/internal/platform/obs"
	"delivery-optimizer/internal/ports"
	"delivery-optimizer/internal/solver"
)

const (
	defaultStartTime = "08:00"

	defaultTimeLimitSeconds = 30
	minTimeLimitSeconds     = 1
	maxTimeLimitSeconds     = 120
)

// OptimizeRequest is one optimization invocation for a single date.
type OptimizeRequest struct {
	Date              string // "2006-01-02"
	AddressIDs        []int64
	DriverIDs         []int64
	DepotLat          float64
	DepotLon          float64
	DepotAddress      string
	StartTime         string // "HH:MM", defaults to 08:00
	DriverConstraints map[int64]domain.DriverConstraintSpec
	TimeLimitSeconds  int
}

// OptimizeService turns a request into persisted routes: load and
// validate entities, build the travel matrix, compile and solve the
// model, then materialize and store the result.
type OptimizeService struct {
	addresses ports.AddressRepository
	drivers   ports.DriverRepository
	plans     ports.PlanRepository
	builder   *matrix.Builder
	provider  ports.MatrixProvider

	// BonusMeters tunes how strongly a preferred driver attracts its
	// stop. Zero selects the built-in default.
	BonusMeters float64
}

func NewOptimizeService(
	addresses ports.AddressRepository,
	drivers ports.DriverRepository,
	plans ports.PlanRepository,
	builder *matrix.Builder,
	provider ports.MatrixProvider,
) *OptimizeService {
	return &OptimizeService{
		addresses: addresses,
		drivers:   drivers,
		plans:     plans,
		builder:   builder,
		provider:  provider,
	}
}

// Optimize runs the full pipeline. It returns an error only for
// validation failures and routing-provider failures; every solver
// condition resolves to a result with explanatory detail.
func (s *OptimizeService) Optimize(ctx context.Context, req OptimizeRequest) (_ *domain.OptimizationResult, err error) {
	defer obs.Time(ctx, "optimize.Run")(&err)

	date, addresses, drivers, startMin, err := s.validate(ctx, req)
	if err != nil {
		return nil, err
	}
	limit := clampTimeLimit(req.TimeLimitSeconds)

	model, preDropped, err := solver.Compile(solver.CompileInput{
		Depot:       domain.Coordinates{Lat: req.DepotLat, Lon: req.DepotLon},
		StartMin:    startMin,
		Addresses:   addresses,
		Drivers:     drivers,
		Constraints: req.DriverConstraints,
		BonusMeters: s.BonusMeters,
	})
	if err != nil {
		return nil, validationf("invalid constraints: %v", err)
	}

	coords := make([]domain.Coordinates, len(model.Nodes))
	for i, n := range model.Nodes {
		coords[i] = n.Coord
	}
	model.Matrix, err = s.builder.Build(ctx, coords)
	if err != nil {
		s.recordFailedDay(ctx, date, req)
		return nil, fmt.Errorf("optimize %s: %w", req.Date, err)
	}

	res := solver.Solve(ctx, model, limit)
	degraded := false
	if res.Outcome == solver.OutcomeCrash {
		log.Printf("req_id=%s op=optimize.Run solver crashed, running degraded fallback", obs.RequestID(ctx))
		res = solver.FallbackSolve(model)
		degraded = true
	}

	result := s.materialize(ctx, materializeInput{
		model:      model,
		res:        res,
		preDropped: preDropped,
		addresses:  addresses,
		date:       date,
		req:        req,
		startMin:   startMin,
		degraded:   degraded,
	})

	day := &domain.DeliveryDay{
		Date:                 date,
		DepotLat:             req.DepotLat,
		DepotLon:             req.DepotLon,
		DepotAddress:         req.DepotAddress,
		Status:               result.Status,
		TotalStops:           result.TotalStops,
		TotalDrivers:         len(drivers),
		TotalDistanceKm:      result.TotalDistanceKm,
		TotalDurationMinutes: result.TotalDurationMinutes,
	}
	if err := s.plans.ReplaceDay(ctx, day, result.Routes); err != nil {
		return nil, fmt.Errorf("optimize %s: persist: %w", req.Date, err)
	}
	result.DeliveryDayID = day.ID
	for i := range result.Routes {
		result.Routes[i].DeliveryDayID = day.ID
	}

	for _, d := range result.DroppedAddressDetails {
		metrics.DroppedStops.WithLabelValues(d.Reason).Inc()
	}
	return result, nil
}

// validate loads and checks everything the request references. Any
// failure here is a hard rejection with no partial work performed.
func (s *OptimizeService) validate(ctx context.Context, req OptimizeRequest) (time.Time, []domain.Address, []domain.Driver, int, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return time.Time{}, nil, nil, 0, validationf("date %q is not YYYY-MM-DD", req.Date)
	}
	if len(req.AddressIDs) == 0 {
		return time.Time{}, nil, nil, 0, validationf("no addresses selected")
	}
	if len(req.DriverIDs) == 0 {
		return time.Time{}, nil, nil, 0, validationf("no drivers selected")
	}
	if req.DepotLat < -90 || req.DepotLat > 90 || req.DepotLon < -180 || req.DepotLon > 180 {
		return time.Time{}, nil, nil, 0, validationf("depot coordinates out of range")
	}

	start := req.StartTime
	if start == "" {
		start = defaultStartTime
	}
	startMin, err := domain.ParseClock(start)
	if err != nil {
		return time.Time{}, nil, nil, 0, validationf("start_time: %v", err)
	}

	addresses, err := s.addresses.ListByIDs(ctx, req.AddressIDs)
	if err != nil {
		return time.Time{}, nil, nil, 0, fmt.Errorf("load addresses: %w", err)
	}
	if missing := missingIDs(req.AddressIDs, addressIDs(addresses)); len(missing) > 0 {
		return time.Time{}, nil, nil, 0, validationf("unknown address ids: %v", missing)
	}

	drivers, err := s.drivers.ListByIDs(ctx, req.DriverIDs)
	if err != nil {
		return time.Time{}, nil, nil, 0, fmt.Errorf("load drivers: %w", err)
	}
	if missing := missingIDs(req.DriverIDs, driverIDs(drivers)); len(missing) > 0 {
		return time.Time{}, nil, nil, 0, validationf("unknown driver ids: %v", missing)
	}

	for id := range req.DriverConstraints {
		if !containsID(req.DriverIDs, id) {
			return time.Time{}, nil, nil, 0, validationf("constraints reference driver %d outside driver_ids", id)
		}
	}
	return date, addresses, drivers, startMin, nil
}

// recordFailedDay persists a failed marker so a re-run for the date is
// visible as superseding a failure, best-effort.
func (s *OptimizeService) recordFailedDay(ctx context.Context, date time.Time, req OptimizeRequest) {
	day := &domain.DeliveryDay{
		Date:         date,
		DepotLat:     req.DepotLat,
		DepotLon:     req.DepotLon,
		DepotAddress: req.DepotAddress,
		Status:       domain.DayFailed,
	}
	if err := s.plans.ReplaceDay(ctx, day, nil); err != nil {
		log.Printf("req_id=%s op=optimize.Run record failed day: %v", obs.RequestID(ctx), err)
	}
}

func clampTimeLimit(seconds int) time.Duration {
	if seconds <= 0 {
		seconds = defaultTimeLimitSeconds
	}
	if seconds < minTimeLimitSeconds {
		seconds = minTimeLimitSeconds
	}
	if seconds > maxTimeLimitSeconds {
		seconds = maxTimeLimitSeconds
	}
	return time.Duration(seconds) * time.Second
}

func addressIDs(addresses []domain.Address) []int64 {
	out := make([]int64, len(addresses))
	for i, a := range addresses {
		out[i] = a.ID
	}
	return out
}

func driverIDs(drivers []domain.Driver) []int64 {
	out := make([]int64, len(drivers))
	for i, d := range drivers {
		out[i] = d.ID
	}
	return out
}

func missingIDs(wanted, got []int64) []int64 {
	present := make(map[int64]bool, len(got))
	for _, id := range got {
		present[id] = true
	}
	var missing []int64
	for _, id := range wanted {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	return missing
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
