package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, path, and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// SolverOutcomes counts solver runs by outcome (assignment, infeasible, timeout, crash).
	SolverOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "solver_outcomes_total", Help: "Solver runs by outcome."},
		[]string{"outcome"},
	)
	// SolverDuration tracks solver wall-clock time in seconds.
	SolverDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "solver_duration_seconds", Help: "Solver wall-clock time in seconds.", Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120}},
	)
	// DroppedStops counts dropped addresses by reason.
	DroppedStops = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "dropped_stops_total", Help: "Addresses dropped from routes by reason."},
		[]string{"reason"},
	)

	// MatrixCacheHits and MatrixCacheMisses track matrix cache effectiveness.
	MatrixCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "matrix_cache_hits_total", Help: "Matrix cache pair hits."},
	)
	MatrixCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "matrix_cache_misses_total", Help: "Matrix cache pair misses."},
	)
)

var regOnce sync.Once

// RegisterDefault registers all collectors on the service registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(SolverOutcomes)
		Registry.MustRegister(SolverDuration)
		Registry.MustRegister(DroppedStops)
		Registry.MustRegister(MatrixCacheHits)
		Registry.MustRegister(MatrixCacheMisses)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
