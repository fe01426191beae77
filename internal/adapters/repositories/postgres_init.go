package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"present-delivery-service/internal/domain"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Satisfied by *pgxpool.Pool and *pgx.Conn.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Initialize the PostGIS schema.
func InitSchema(ctx context.Context, db txBeginner) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	createExtensionQuery := `CREATE EXTENSION IF NOT EXISTS postgis;`

	createFacilityQuery := `
	CREATE TABLE IF NOT EXISTS facility (
		facility_id BIGSERIAL PRIMARY KEY,
		facility_name TEXT NOT NULL,
		address TEXT NOT NULL,
		point geometry(Point) NOT NULL
	);
	`

	createPresentQuery := `
	CREATE TABLE IF NOT EXISTS present (
		present_id BIGSERIAL PRIMARY KEY,
		present_name TEXT NOT NULL,
		address TEXT NOT NULL,
		point geometry(Point) NOT NULL
	);
	`

	createDeliveryRouteQuery := `
	CREATE TABLE IF NOT EXISTS delivery_route (
		delivery_route_id BIGSERIAL PRIMARY KEY,
		facility_id BIGINT NOT NULL REFERENCES facility (facility_id),
		delivery_ordered_point geometry NOT NULL,
		route_flex_polylines TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	statements := []string{
		createExtensionQuery,
		createFacilityQuery,
		createPresentQuery,
		createDeliveryRouteQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type FacilitySeed struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Read a facility definition from a JSON file.
func ReadFacilitySeed(jsonPath string) (FacilitySeed, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return FacilitySeed{}, fmt.Errorf("seed facility: read %q: %w", jsonPath, err)
	}

	var seed FacilitySeed
	if err := json.Unmarshal(bytes, &seed); err != nil {
		return FacilitySeed{}, fmt.Errorf("seed facility: parse json: %w", err)
	}
	return seed, nil
}

// Create or replace the single facility row. It always uses facility_id 1 so
// reseeding never produces a second facility.
func SeedFacility(ctx context.Context, db txBeginner, seed FacilitySeed) error {
	name := strings.TrimSpace(seed.Name)
	if name == "" {
		return errors.New("seed facility: name cannot be empty")
	}
	addr := strings.TrimSpace(seed.Address)
	if addr == "" {
		return errors.New("seed facility: address cannot be empty")
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("seed facility: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
	INSERT INTO facility (
		facility_id,
		facility_name,
		address,
		point
	)
	VALUES (1, $1, $2, ST_GeomFromText($3))
	ON CONFLICT (facility_id) DO UPDATE SET
		facility_name = EXCLUDED.facility_name,
		address = EXCLUDED.address,
		point = EXCLUDED.point;
	`
	point := PointWKT(domain.GeoPoint{Latitude: seed.Latitude, Longitude: seed.Longitude})
	if _, err := tx.Exec(ctx, query, name, addr, point); err != nil {
		return fmt.Errorf("seed facility: upsert: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("seed facility: commit tx: %w", err)
	}

	return nil
}
