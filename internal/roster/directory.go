package roster

import (
	"context"

	"revenue-service/internal/reporting"
)

// Directory resolves driver profiles from an external user service.
type Directory interface {
	GetAllDrivers(ctx context.Context) ([]reporting.DriverRecord, error)
	GetDriver(ctx context.Context, driverID string) (*reporting.DriverRecord, error)
}
