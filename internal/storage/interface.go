package storage

import (
	"context"
	"errors"

	"revenue-service/internal/reporting"
)

// ErrRideNotFound is returned when a ride lookup has no match.
var ErrRideNotFound = errors.New("ride not found")

// SnapshotReader provides read-only access to the collections reports are
// built from. Implementations return whole snapshots; they never filter by
// date, so every report sees the same data.
type SnapshotReader interface {
	// GetRide retrieves a single ride by ID
	GetRide(ctx context.Context, rideID string) (*reporting.RideRecord, error)

	// GetAllRides returns every ride in the store
	GetAllRides(ctx context.Context) ([]reporting.RideRecord, error)

	// GetRidesByStatus returns rides with the given stored status
	GetRidesByStatus(ctx context.Context, status string) ([]reporting.RideRecord, error)

	// GetAllDrivers returns the driver roster
	GetAllDrivers(ctx context.Context) ([]reporting.DriverRecord, error)

	// GetAllRatings returns every passenger rating
	GetAllRatings(ctx context.Context) ([]reporting.RatingRecord, error)
}
