package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"present-delivery-service/internal/domain"
	"present-delivery-service/internal/pkg/errs"
	"present-delivery-service/internal/platform/obs"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// The subset of a pooled connection the store uses.
type poolConn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Release()
}

type connPool interface {
	Acquire(ctx context.Context) (poolConn, error)
}

type pgxPool struct{ pool *pgxpool.Pool }

func (p pgxPool) Acquire(ctx context.Context) (poolConn, error) {
	c, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return c, nil
}

const (
	selectFacilityQuery = `
	SELECT
		facility_id,
		facility_name,
		address,
		ST_X(point) AS latitude,
		ST_Y(point) AS longitude
	FROM facility
	LIMIT 1;
	`

	selectPresentsQuery = `
	SELECT
		present_id,
		present_name,
		address,
		ST_X(point) AS latitude,
		ST_Y(point) AS longitude
	FROM present
	ORDER BY present_id;
	`

	insertPresentQuery = `
	INSERT INTO present (
		present_name,
		address,
		point
	)
	VALUES ($1, $2, ST_GeomFromText($3));
	`

	insertDeliveryRouteQuery = `
	INSERT INTO delivery_route (
		facility_id,
		delivery_ordered_point,
		route_flex_polylines
	)
	VALUES ($1, ST_GeomFromText($2), $3);
	`
)

// PostgreSQL/PostGIS implementation of the DeliveryStore port. Every call
// holds the pool's connection only for its own duration.
type PostgresDeliveryStore struct {
	pool   connPool
	logger *slog.Logger
}

func NewPostgresDeliveryStore(pool *pgxpool.Pool, logger *slog.Logger) *PostgresDeliveryStore {
	return newPostgresDeliveryStore(pgxPool{pool: pool}, logger)
}

func newPostgresDeliveryStore(pool connPool, logger *slog.Logger) *PostgresDeliveryStore {
	return &PostgresDeliveryStore{
		pool:   pool,
		logger: logger.With("component", "delivery_store"),
	}
}

// withConn runs fn on an acquired connection and releases it before returning.
func (s *PostgresDeliveryStore) withConn(ctx context.Context, fn func(poolConn) error) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	return fn(conn)
}

// withTx runs fn inside a transaction and commits it. The transaction is
// rolled back if fn or the commit fails.
func (s *PostgresDeliveryStore) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	return s.withConn(ctx, func(conn poolConn) error {
		tx, err := conn.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := fn(tx); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		return nil
	})
}

type placeRow struct {
	id      int64
	name    string
	address string
	lat     float64
	lon     float64
}

func scanPlaces(rows pgx.Rows) ([]placeRow, error) {
	defer rows.Close()

	out := make([]placeRow, 0, 64)
	for rows.Next() {
		var r placeRow
		if err := rows.Scan(&r.id, &r.name, &r.address, &r.lat, &r.lon); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}
	return out, nil
}

func (r placeRow) toAddress() domain.Address {
	return domain.Address{
		Point: domain.GeoPoint{Latitude: r.lat, Longitude: r.lon},
		Text:  r.address,
	}
}

func (s *PostgresDeliveryStore) queryPlaces(ctx context.Context, query string) ([]placeRow, error) {
	s.logger.InfoContext(ctx, "select", "query", strings.TrimSpace(query))

	var places []placeRow
	err := s.withConn(ctx, func(conn poolConn) error {
		rows, err := conn.Query(ctx, query)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		places, err = scanPlaces(rows)
		return err
	})
	return places, err
}

// Return the single delivery facility.
func (s *PostgresDeliveryStore) LoadFacility(ctx context.Context) (_ domain.Facility, err error) {
	const op = "store.LoadFacility"
	defer obs.Time(ctx, s.logger, op)(&err)

	places, err := s.queryPlaces(ctx, selectFacilityQuery)
	if err != nil {
		return domain.Facility{}, errs.StoreError(op, err)
	}
	if len(places) == 0 {
		return domain.Facility{}, errs.StoreError(op, errors.New("no facility row"))
	}

	f := places[0]
	return domain.Facility{ID: f.id, Name: f.name, Address: f.toAddress()}, nil
}

// Return every stored present ordered by id.
func (s *PostgresDeliveryStore) LoadPresents(ctx context.Context) (_ []domain.Present, err error) {
	const op = "store.LoadPresents"
	defer obs.Time(ctx, s.logger, op)(&err)

	places, err := s.queryPlaces(ctx, selectPresentsQuery)
	if err != nil {
		return nil, errs.StoreError(op, err)
	}

	presents := make([]domain.Present, 0, len(places))
	for _, p := range places {
		presents = append(presents, domain.Present{ID: p.id, Name: p.name, Address: p.toAddress()})
	}
	return presents, nil
}

func (s *PostgresDeliveryStore) InsertPresent(ctx context.Context, name string, addr domain.Address) (err error) {
	const op = "store.InsertPresent"
	defer obs.Time(ctx, s.logger, op)(&err)

	params := []any{name, addr.Text, PointWKT(addr.Point)}
	s.logger.InfoContext(ctx, "insert present", "query", strings.TrimSpace(insertPresentQuery), "params", params)

	err = s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertPresentQuery, params...); err != nil {
			return fmt.Errorf("insert present: %w", err)
		}
		return nil
	})
	if err != nil {
		return errs.StoreError(op, err)
	}
	return nil
}

// Record one computed route. Polylines are stored comma-joined in section order.
func (s *PostgresDeliveryStore) InsertDeliveryRoute(
	ctx context.Context,
	facilityID int64,
	orderedPoints []domain.GeoPoint,
	polylines []string,
) (err error) {
	const op = "store.InsertDeliveryRoute"
	defer obs.Time(ctx, s.logger, op)(&err)

	line, err := OrderedPointsWKT(orderedPoints)
	if err != nil {
		return errs.StoreError(op, err)
	}

	params := []any{facilityID, line, strings.Join(polylines, ",")}
	s.logger.InfoContext(ctx, "insert delivery route", "query", strings.TrimSpace(insertDeliveryRouteQuery), "params", params)

	err = s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertDeliveryRouteQuery, params...); err != nil {
			return fmt.Errorf("insert delivery route: %w", err)
		}
		return nil
	})
	if err != nil {
		return errs.StoreError(op, err)
	}
	return nil
}
