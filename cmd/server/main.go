package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"delivery-optimizer/internal/adapters/cache"
	"delivery-optimizer/internal/adapters/repositories"
	"delivery-optimizer/internal/adapters/routing"
	"delivery-optimizer/internal/api"
	"delivery-optimizer/internal/config"
	"delivery-optimizer/internal/matrix"
	"delivery-optimizer/internal/metrics"
	"delivery-optimizer/internal/platform/db"
	"delivery-optimizer/internal/ports"
	"delivery-optimizer/internal/services"
)

// main is the application composition root. It wires concrete adapters
// (Postgres, OSRM, Redis) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	port := config.Get("PORT", "8080")
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	ctx := context.Background()
	if err := repositories.InitSchema(ctx, conn); err != nil {
		log.Fatal(err)
	}

	provider := routing.NewOSRMClient(config.Get("OSRM_BASE_URL", ""))
	builder := matrix.NewBuilder(provider, newMatrixCache())

	addresses := repositories.NewPostgresAddressRepository(conn)
	drivers := repositories.NewPostgresDriverRepository(conn)
	plans := repositories.NewPostgresPlanRepository(conn)

	optimize := services.NewOptimizeService(addresses, drivers, plans, builder, provider)
	bonus, err := config.GetFloat("PREFERRED_DRIVER_BONUS", 0)
	if err != nil {
		log.Fatal(err)
	}
	optimize.BonusMeters = bonus

	metrics.RegisterDefault()
	router := api.NewRouter(optimize, services.NewPlansService(plans, addresses))

	// Write timeout outlasts the maximum solver budget so a long solve
	// still gets its response out.
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      180 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// newMatrixCache prefers the shared Redis tier when REDIS_URL is set and
// falls back to the in-process cache.
func newMatrixCache() ports.MatrixCache {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return cache.NewMemoryMatrixCache()
	}
	c, err := cache.NewRedisMatrixCache(redisURL, 0)
	if err != nil {
		log.Printf("redis matrix cache unavailable, using in-process cache: %v", err)
		return cache.NewMemoryMatrixCache()
	}
	log.Println("matrix cache backed by redis")
	return c
}
