package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"present-delivery-service/internal/adapters/repositories"
	"present-delivery-service/internal/config"
	"present-delivery-service/internal/platform/db"
	"present-delivery-service/internal/platform/obs"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// dbtool creates the PostGIS schema and upserts the single delivery facility.
// The facility comes from FACILITY_SEED_PATH (JSON) or, without it, from the
// FACILITY_NAME, FACILITY_ADDRESS, FACILITY_LATITUDE and FACILITY_LONGITUDE variables.
func main() {
	logger := obs.NewLogger(os.Stdout, "info")

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := db.Open(ctx, databaseURL)
	if err != nil {
		logger.Error("open database failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger.Info("Initializing database schema...")
	if err := repositories.InitSchema(ctx, pool); err != nil {
		logger.Error("schema initialization failed", "err", err)
		os.Exit(1)
	}
	logger.Info("Schema ready.")

	seed, ok, err := facilitySeed()
	if err != nil {
		logger.Error("read facility seed failed", "err", err)
		os.Exit(1)
	}
	if !ok {
		logger.Info("No facility seed given; skipping.")
		return
	}

	logger.Info("Seeding facility...", "name", seed.Name)
	if err := repositories.SeedFacility(ctx, pool, seed); err != nil {
		logger.Error("seeding failed", "err", err)
		os.Exit(1)
	}
	logger.Info("Seeding complete.")
}

func facilitySeed() (repositories.FacilitySeed, bool, error) {
	if path := config.Get("FACILITY_SEED_PATH", ""); path != "" {
		seed, err := repositories.ReadFacilitySeed(path)
		return seed, err == nil, err
	}

	name := os.Getenv("FACILITY_NAME")
	if name == "" {
		return repositories.FacilitySeed{}, false, nil
	}

	lat, err := requiredFloat("FACILITY_LATITUDE")
	if err != nil {
		return repositories.FacilitySeed{}, false, err
	}
	lon, err := requiredFloat("FACILITY_LONGITUDE")
	if err != nil {
		return repositories.FacilitySeed{}, false, err
	}

	return repositories.FacilitySeed{
		Name:      name,
		Address:   os.Getenv("FACILITY_ADDRESS"),
		Latitude:  lat,
		Longitude: lon,
	}, true, nil
}

func requiredFloat(key string) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, errors.New(key + " is required when FACILITY_NAME is set")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}
