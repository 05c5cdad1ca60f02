package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"revenue-service/internal/reporting"
	"revenue-service/internal/storage"

	"github.com/brianvoe/gofakeit/v7"
)

// DemoRideGenerator fills in-memory storage with plausible ride history
type DemoRideGenerator struct {
	store      *storage.MemoryStorage
	calculator *reporting.FareCalculator
	faker      *gofakeit.Faker
	clock      Clock
	interval   time.Duration

	mu        sync.Mutex
	isRunning bool
	stopChan  chan struct{}
	sequence  int
}

// NewDemoRideGenerator creates a new demo ride generator. A zero seed picks a
// random one.
func NewDemoRideGenerator(store *storage.MemoryStorage, calculator *reporting.FareCalculator, interval time.Duration, seed uint64) *DemoRideGenerator {
	return &DemoRideGenerator{
		store:      store,
		calculator: calculator,
		faker:      gofakeit.New(seed),
		clock:      ClockFunc(time.Now),
		interval:   interval,
	}
}

// SetClock replaces the wall clock used to stamp bookings.
func (d *DemoRideGenerator) SetClock(clock Clock) {
	d.clock = clock
}

// SeedDrivers adds n drivers to the roster.
func (d *DemoRideGenerator) SeedDrivers(ctx context.Context, n int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := 0; i < n; i++ {
		driver := reporting.DriverRecord{
			ID:          fmt.Sprintf("driver-doc-%03d", i+1),
			UID:         d.faker.UUID(),
			DisplayName: d.faker.Name(),
			Username:    d.faker.Username(),
			Email:       d.faker.Email(),
		}
		// Some older accounts never set a username
		if d.faker.Number(1, 10) == 1 {
			driver.Username = ""
		}
		if err := d.store.CreateDriver(ctx, driver); err != nil {
			return err
		}
	}
	return nil
}

// SeedRides backfills n rides booked over the last 30 days.
func (d *DemoRideGenerator) SeedRides(ctx context.Context, n int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clock.Now()
	for i := 0; i < n; i++ {
		offset := time.Duration(d.faker.Number(0, 30*24*60)) * time.Minute
		if _, err := d.createRandomRide(ctx, now.Add(-offset)); err != nil {
			return err
		}
	}
	slog.Info("Seeded demo rides", "rides", n)
	return nil
}

// Start begins generating rides
func (d *DemoRideGenerator) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.isRunning {
		return
	}
	d.isRunning = true
	d.stopChan = make(chan struct{})
	slog.Info("Demo ride generator started", "interval", d.interval)

	go d.run(d.stopChan)
}

// Stop stops generating rides
func (d *DemoRideGenerator) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.isRunning {
		return
	}
	d.isRunning = false
	close(d.stopChan)
	slog.Info("Demo ride generator stopped")
}

// IsRunning returns whether the generator is active
func (d *DemoRideGenerator) IsRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.isRunning
}

// RidesGenerated returns how many rides the generator has created.
func (d *DemoRideGenerator) RidesGenerated() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.sequence
}

func (d *DemoRideGenerator) run(stop <-chan struct{}) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			d.mu.Lock()
			ride, err := d.createRandomRide(context.Background(), d.clock.Now())
			d.mu.Unlock()
			if err != nil {
				slog.Error("Failed to create demo ride", "error", err)
				continue
			}
			slog.Debug("Created demo ride", "ride_id", ride.ID, "status", ride.Status)
		}
	}
}

// createRandomRide must be called with d.mu held.
func (d *DemoRideGenerator) createRandomRide(ctx context.Context, bookedAt time.Time) (reporting.RideRecord, error) {
	d.sequence++
	landmarks := getLandmarks()
	pickup := landmarks[d.faker.Number(0, len(landmarks)-1)]
	dropoff := pickup
	for dropoff == pickup {
		dropoff = landmarks[d.faker.Number(0, len(landmarks)-1)]
	}

	ride := reporting.RideRecord{
		ID:             fmt.Sprintf("ride-%s-%04d", bookedAt.UTC().Format("20060102"), d.sequence),
		Status:         d.pickStatus(),
		Passenger:      d.faker.Name(),
		PickupAddress:  pickup,
		DropoffAddress: dropoff,
		DistanceMeters: float64(d.faker.Number(300, 12000)),
		PriorityType:   d.pickPriority(),
		DateBooked:     bookedAt.UTC().Format(time.RFC3339),
	}

	if ride.PriorityType == string(reporting.PrioritySpecial) {
		ride.SpecialAmount = float64(d.faker.Number(2, 10) * 10)
	}

	if ride.Status != string(reporting.StatusPending) {
		ride.AssignedDriverID = d.pickDriver()
	}

	if ride.Status == string(reporting.StatusCompleted) {
		ride.DateCompleted = bookedAt.Add(time.Duration(d.faker.Number(5, 45)) * time.Minute).UTC().Format(time.RFC3339)

		// Drivers occasionally key in a fare that differs from the tariff
		if d.faker.Number(1, 8) == 1 {
			computed := d.calculator.Calculate(reporting.NormalizeRide(ride)).TotalFare
			ride.Fare = reporting.Round2(computed + d.faker.Float64Range(-5, 10))
		}
	}

	// A small share of legacy rows carry an unparseable booking date
	if d.faker.Number(1, 50) == 1 {
		ride.DateBooked = "pending sync"
	}

	if err := d.store.CreateRide(ctx, ride); err != nil {
		return reporting.RideRecord{}, err
	}
	return ride, nil
}

func (d *DemoRideGenerator) pickStatus() string {
	switch n := d.faker.Number(1, 100); {
	case n <= 65:
		return string(reporting.StatusCompleted)
	case n <= 80:
		return string(reporting.StatusCancelled)
	case n <= 88:
		return string(reporting.StatusOngoing)
	case n <= 94:
		return string(reporting.StatusAccepted)
	default:
		return string(reporting.StatusPending)
	}
}

func (d *DemoRideGenerator) pickPriority() string {
	switch n := d.faker.Number(1, 100); {
	case n <= 70:
		return string(reporting.PriorityRegular)
	case n <= 85:
		return string(reporting.PrioritySpecial)
	case n <= 95:
		return string(reporting.PriorityUrgent)
	default:
		return string(reporting.PriorityPriority)
	}
}

// pickDriver assigns a rostered driver, or now and then an id that no longer
// exists in the roster.
func (d *DemoRideGenerator) pickDriver() string {
	ids := d.store.DriverIDs()
	if len(ids) == 0 || d.faker.Number(1, 25) == 1 {
		return "deleted-" + d.faker.UUID()
	}
	return ids[d.faker.Number(0, len(ids)-1)]
}

// getLandmarks returns common pickup and dropoff points in a provincial town
func getLandmarks() []string {
	return []string{
		"Public Market",
		"Town Plaza",
		"Municipal Hall",
		"St. Joseph Parish Church",
		"Central Elementary School",
		"National High School",
		"District Hospital",
		"Rural Health Unit",
		"Bus Terminal",
		"Jeepney Terminal",
		"Fish Port",
		"Police Station",
		"Post Office",
		"Barangay Hall Poblacion",
		"Barangay Hall San Isidro",
		"Barangay Hall Santa Cruz",
		"Savemore Supermarket",
		"Puregold",
		"Town Gym",
		"Cockpit Arena",
		"Public Cemetery",
		"Rice Mill",
		"Riverside Park",
		"Beach Resort Road",
		"State University Gate",
		"Land Bank Branch",
		"Petron Highway",
		"Subdivision Phase 1",
		"Subdivision Phase 2",
		"Provincial Capitol",
	}
}
