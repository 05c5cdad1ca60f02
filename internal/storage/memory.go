package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"revenue-service/internal/reporting"
)

// MemoryStorage implements SnapshotReader using in-memory maps. It also
// accepts writes so demo mode and tests can seed it.
type MemoryStorage struct {
	rides   map[string]reporting.RideRecord
	drivers map[string]reporting.DriverRecord
	ratings []reporting.RatingRecord
	mu      sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage instance
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		rides:   make(map[string]reporting.RideRecord),
		drivers: make(map[string]reporting.DriverRecord),
	}
}

func (m *MemoryStorage) CreateRide(ctx context.Context, ride reporting.RideRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ride.ID == "" {
		return fmt.Errorf("ride id is required")
	}
	if _, exists := m.rides[ride.ID]; exists {
		return fmt.Errorf("ride %s already exists", ride.ID)
	}

	m.rides[ride.ID] = ride
	return nil
}

func (m *MemoryStorage) CreateDriver(ctx context.Context, driver reporting.DriverRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if driver.ID == "" {
		return fmt.Errorf("driver id is required")
	}
	if _, exists := m.drivers[driver.ID]; exists {
		return fmt.Errorf("driver %s already exists", driver.ID)
	}

	m.drivers[driver.ID] = driver
	return nil
}

func (m *MemoryStorage) AddRating(ctx context.Context, rating reporting.RatingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ratings = append(m.ratings, rating)
	return nil
}

func (m *MemoryStorage) GetRide(ctx context.Context, rideID string) (*reporting.RideRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ride, exists := m.rides[rideID]
	if !exists {
		return nil, fmt.Errorf("ride %s: %w", rideID, ErrRideNotFound)
	}

	return &ride, nil
}

func (m *MemoryStorage) GetAllRides(ctx context.Context) ([]reporting.RideRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]reporting.RideRecord, 0, len(m.rides))
	for _, ride := range m.rides {
		result = append(result, ride)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return result, nil
}

func (m *MemoryStorage) GetRidesByStatus(ctx context.Context, status string) ([]reporting.RideRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []reporting.RideRecord{}
	for _, ride := range m.rides {
		if strings.EqualFold(ride.Status, status) {
			result = append(result, ride)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return result, nil
}

func (m *MemoryStorage) GetAllDrivers(ctx context.Context) ([]reporting.DriverRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]reporting.DriverRecord, 0, len(m.drivers))
	for _, driver := range m.drivers {
		result = append(result, driver)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return result, nil
}

func (m *MemoryStorage) GetAllRatings(ctx context.Context) ([]reporting.RatingRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]reporting.RatingRecord, len(m.ratings))
	copy(result, m.ratings)
	return result, nil
}

// RideCount returns the number of stored rides.
func (m *MemoryStorage) RideCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.rides)
}

// DriverIDs returns the roster keys rides can reference.
func (m *MemoryStorage) DriverIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.drivers))
	for _, d := range m.drivers {
		id := d.UID
		if id == "" {
			id = d.ID
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
