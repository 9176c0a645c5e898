package solver

import (
	"context"
	"log"
	"time"

	"delivery-optimizer/internal/domain"
	"delivery-optimizer/internal/metrics"
	"delivery-optimizer/internal/platform/obs"
)

// Outcome classifies one solve attempt.
type Outcome int

const (
	OutcomeAssignment Outcome = iota
	OutcomeInfeasible
	OutcomeTimeout
	OutcomeCrash
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAssignment:
		return "assignment"
	case OutcomeInfeasible:
		return "infeasible"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeCrash:
		return "crash"
	default:
		return "unknown"
	}
}

// Result is the adapter's answer: per-vehicle node sequences (model node
// indices, depot excluded) and the address nodes left unserved. Routes is
// nil only for OutcomeCrash.
type Result struct {
	Outcome Outcome
	Routes  [][]int
	Dropped []int
}

// watchdogGrace is how long past the search deadline the adapter waits
// before declaring the engine hung and taking the incumbent instead.
const watchdogGrace = 5 * time.Second

// Solve runs the search on its own goroutine under a wall-clock budget.
// A panic inside the engine becomes OutcomeCrash; a hang past the budget
// becomes OutcomeTimeout carrying the best incumbent published so far.
// The caller is never exposed to either failure mode directly.
func Solve(ctx context.Context, m *Model, limit time.Duration) Result {
	start := time.Now()
	res := solve(ctx, m, limit)
	metrics.SolverDuration.Observe(time.Since(start).Seconds())
	metrics.SolverOutcomes.WithLabelValues(res.Outcome.String()).Inc()
	log.Printf("req_id=%s op=solver.Solve outcome=%s routes=%d dropped=%d dur=%dms",
		obs.RequestID(ctx), res.Outcome, len(res.Routes), len(res.Dropped),
		time.Since(start).Milliseconds())
	return res
}

func solve(ctx context.Context, m *Model, limit time.Duration) Result {
	inc := &incumbent{}
	done := make(chan *solution, 1)
	crashed := make(chan any, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				crashed <- r
			}
		}()
		s := &searcher{m: m, deadline: time.Now().Add(limit), inc: inc}
		done <- s.run()
	}()

	watchdog := time.NewTimer(limit + watchdogGrace)
	defer watchdog.Stop()

	select {
	case sol := <-done:
		return classify(m, sol, OutcomeAssignment)
	case r := <-crashed:
		log.Printf("req_id=%s op=solver.Solve recovered engine panic: %v", obs.RequestID(ctx), r)
		return Result{Outcome: OutcomeCrash}
	case <-watchdog.C:
	case <-ctx.Done():
	}

	// Budget exceeded or caller gone: abandon the goroutine and use the
	// best published incumbent, if any.
	if sol, ok := inc.best(); ok {
		return classify(m, sol, OutcomeTimeout)
	}
	return Result{
		Outcome: OutcomeTimeout,
		Routes:  make([][]int, len(m.Vehicles)),
		Dropped: addressNodes(m),
	}
}

// classify downgrades an assignment that serves nothing to Infeasible.
func classify(m *Model, sol *solution, base Outcome) Result {
	served := 0
	for _, r := range sol.routes {
		for _, node := range r {
			if m.Nodes[node].Kind == domain.NodeAddress {
				served++
			}
		}
	}
	if base == OutcomeAssignment && served == 0 && m.addressCount() > 0 {
		base = OutcomeInfeasible
	}
	return Result{Outcome: base, Routes: sol.routes, Dropped: sol.dropped}
}

func addressNodes(m *Model) []int {
	var out []int
	for i, n := range m.Nodes {
		if n.Kind == domain.NodeAddress {
			out = append(out, i)
		}
	}
	return out
}
