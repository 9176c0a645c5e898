package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"delivery-optimizer/internal/api/handlers"
	"delivery-optimizer/internal/metrics"
	"delivery-optimizer/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root; handlers stay unaware
// of concrete adapters.
func NewRouter(optimize *services.OptimizeService, plans *services.PlansService) http.Handler {
	mux := http.NewServeMux()

	optimizeHandler := &handlers.OptimizeHandler{Service: optimize}
	daysHandler := &handlers.DaysHandler{Plans: plans}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/optimize", optimizeHandler.Optimize)

	mux.HandleFunc("GET /delivery-days", daysHandler.List)
	mux.HandleFunc("GET /delivery-days/{date}", daysHandler.Get)
	mux.HandleFunc("DELETE /delivery-days/{date}", daysHandler.Delete)
	mux.HandleFunc("GET /delivery-days/{date}/export", daysHandler.ExportDay)
	mux.HandleFunc("GET /routes/{dayID}", daysHandler.RoutesForDay)
	mux.HandleFunc("GET /routes/{id}/export", daysHandler.ExportRoute)

	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return requestIDMiddleware(loggingMiddleware(mux))
}
