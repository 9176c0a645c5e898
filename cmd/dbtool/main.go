package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"delivery-optimizer/internal/adapters/repositories"
	"delivery-optimizer/internal/adapters/routing"
	"delivery-optimizer/internal/config"
	"delivery-optimizer/internal/platform/db"
	"delivery-optimizer/internal/ports"
)

// dbtool initializes the schema. With -seed it loads the demo data set;
// with -geocode it resolves coordinates for addresses that still lack
// them.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	seed := hasArg("-seed")
	geocode := hasArg("-geocode")

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	ctx := context.Background()

	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	if seed {
		log.Println("Seeding database...")
		if err := repositories.SeedDemo(ctx, conn); err != nil {
			log.Fatalf("seeding failed: %v", err)
		}
		log.Println("Seeding complete.")
	}

	if geocode {
		geocoder := routing.NewNominatimGeocoder(
			config.Get("NOMINATIM_BASE_URL", ""),
			config.Get("GEOCODING_USER_AGENT", ""),
		)
		if err := geocodeMissing(ctx, conn, geocoder); err != nil {
			log.Fatalf("geocoding failed: %v", err)
		}
	}
}

// geocodeMissing resolves every address without coordinates, paced to a
// request per second for the public Nominatim instance.
func geocodeMissing(ctx context.Context, conn *sql.DB, geocoder ports.Geocoder) error {
	repo := repositories.NewPostgresAddressRepository(conn)
	pending, err := repo.ListUngeocoded(ctx)
	if err != nil {
		return err
	}
	log.Printf("Geocoding %d addresses...", len(pending))

	for i, a := range pending {
		if i > 0 {
			time.Sleep(time.Second)
		}

		parts := []string{a.Street}
		for _, p := range []string{a.City, a.State, a.PostalCode} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		res, err := geocoder.Geocode(ctx, strings.Join(parts, ", "))
		if err != nil {
			return err
		}
		if res.Status != "success" {
			log.Printf("address %d %q: %s", a.ID, a.Street, res.Status)
			continue
		}
		if err := repo.SetCoordinates(ctx, a.ID, res.Lat, res.Lon); err != nil {
			return err
		}
	}
	log.Println("Geocoding complete.")
	return nil
}

func hasArg(name string) bool {
	for _, a := range os.Args[1:] {
		if a == name {
			return true
		}
	}
	return false
}
