package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"revenue-service/internal/reporting"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxQuerier is the subset of *pgxpool.Pool used for reads.
type PgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Numeric columns are cast to float8 so they scan as float64 rather than
// pgtype.Numeric.
const (
	rideColumns = `id, status, COALESCE(passenger, ''), COALESCE(assigned_driver_id, ''),
		COALESCE(pickup_address, ''), COALESCE(dropoff_address, ''),
		distance_meters::float8, COALESCE(priority_type, ''), special_amount::float8,
		fare::float8, date_booked, date_completed`

	selectRides        = `SELECT ` + rideColumns + ` FROM rides ORDER BY id`
	selectRideByID     = `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`
	selectRidesByState = `SELECT ` + rideColumns + ` FROM rides WHERE lower(status) = lower($1) ORDER BY id`
	selectDrivers      = `SELECT id, COALESCE(uid, ''), COALESCE(display_name, ''), COALESCE(username, ''), COALESCE(email, '') FROM drivers ORDER BY id`
	selectRatings      = `SELECT driver_id, rating::float8 FROM ratings`
)

// PostgresStorage reads snapshots from a relational mirror of the ride store.
type PostgresStorage struct {
	db PgxQuerier
}

func NewPostgresStorage(db PgxQuerier) *PostgresStorage {
	return &PostgresStorage{db: db}
}

// ConnectPostgres opens a pool and verifies the connection.
func ConnectPostgres(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MaxConns = 10
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

func (p *PostgresStorage) GetRide(ctx context.Context, rideID string) (*reporting.RideRecord, error) {
	ride, err := scanRide(p.db.QueryRow(ctx, selectRideByID, rideID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ride %s: %w", rideID, ErrRideNotFound)
		}
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}
	return &ride, nil
}

func (p *PostgresStorage) GetAllRides(ctx context.Context) ([]reporting.RideRecord, error) {
	rides, err := p.queryRides(ctx, selectRides)
	if err != nil {
		return nil, fmt.Errorf("failed to query rides: %w", err)
	}
	return rides, nil
}

func (p *PostgresStorage) GetRidesByStatus(ctx context.Context, status string) ([]reporting.RideRecord, error) {
	rides, err := p.queryRides(ctx, selectRidesByState, status)
	if err != nil {
		return nil, fmt.Errorf("failed to query rides by status: %w", err)
	}
	return rides, nil
}

func (p *PostgresStorage) GetAllDrivers(ctx context.Context) ([]reporting.DriverRecord, error) {
	rows, err := p.db.Query(ctx, selectDrivers)
	if err != nil {
		return nil, fmt.Errorf("failed to query drivers: %w", err)
	}

	drivers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (reporting.DriverRecord, error) {
		var d reporting.DriverRecord
		err := row.Scan(&d.ID, &d.UID, &d.DisplayName, &d.Username, &d.Email)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan drivers: %w", err)
	}
	return drivers, nil
}

func (p *PostgresStorage) GetAllRatings(ctx context.Context) ([]reporting.RatingRecord, error) {
	rows, err := p.db.Query(ctx, selectRatings)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}

	ratings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (reporting.RatingRecord, error) {
		var r reporting.RatingRecord
		err := row.Scan(&r.DriverID, &r.Rating)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan ratings: %w", err)
	}
	return ratings, nil
}

func (p *PostgresStorage) queryRides(ctx context.Context, sql string, args ...any) ([]reporting.RideRecord, error) {
	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (reporting.RideRecord, error) {
		return scanRide(row)
	})
}

// scanRide maps one row selected with rideColumns. Nullable numeric and time
// columns land in the record's loosely typed fields as nil.
func scanRide(row pgx.Row) (reporting.RideRecord, error) {
	var r reporting.RideRecord
	err := row.Scan(
		&r.ID,
		&r.Status,
		&r.Passenger,
		&r.AssignedDriverID,
		&r.PickupAddress,
		&r.DropoffAddress,
		&r.DistanceMeters,
		&r.PriorityType,
		&r.SpecialAmount,
		&r.Fare,
		&r.DateBooked,
		&r.DateCompleted,
	)
	return r, err
}
