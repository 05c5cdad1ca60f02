package service

import (
	"context"
	"testing"
	"time"

	"revenue-service/internal/reporting"
	"revenue-service/internal/storage"
)

func newTestGenerator(seed uint64) (*DemoRideGenerator, *storage.MemoryStorage) {
	store := storage.NewMemoryStorage()
	generator := NewDemoRideGenerator(store, reporting.NewFareCalculator(nil), 20*time.Millisecond, seed)
	generator.SetClock(ClockFunc(func() time.Time { return testNow }))
	return generator, store
}

func TestDemoRideGenerator_Seed(t *testing.T) {
	generator, store := newTestGenerator(42)
	ctx := context.Background()

	if err := generator.SeedDrivers(ctx, 5); err != nil {
		t.Fatalf("Expected no error seeding drivers, got %v", err)
	}
	if err := generator.SeedRides(ctx, 50); err != nil {
		t.Fatalf("Expected no error seeding rides, got %v", err)
	}

	drivers, _ := store.GetAllDrivers(ctx)
	if len(drivers) != 5 {
		t.Errorf("Expected 5 drivers, got %d", len(drivers))
	}
	if store.RideCount() != 50 {
		t.Errorf("Expected 50 rides, got %d", store.RideCount())
	}

	rides, _ := store.GetAllRides(ctx)
	earliest := testNow.Add(-30 * 24 * time.Hour)
	for _, rec := range rides {
		ride := reporting.NormalizeRide(rec)
		if ride.PickupAddress == ride.DropoffAddress {
			t.Errorf("Ride %s starts and ends at %s", ride.ID, ride.PickupAddress)
		}
		if ride.Status == reporting.StatusPending && ride.AssignedDriverID != "" {
			t.Errorf("Pending ride %s should not have a driver", ride.ID)
		}
		if ride.HasBookingTime() && (ride.DateBooked.Before(earliest) || ride.DateBooked.After(testNow)) {
			t.Errorf("Ride %s booked outside the backfill window: %v", ride.ID, ride.DateBooked)
		}
		if ride.SpecialAmount > 0 && ride.PriorityType != reporting.PrioritySpecial {
			t.Errorf("Ride %s has a special amount without special priority", ride.ID)
		}
	}
}

func TestDemoRideGenerator_Deterministic(t *testing.T) {
	first, firstStore := newTestGenerator(7)
	second, secondStore := newTestGenerator(7)
	ctx := context.Background()

	for _, g := range []*DemoRideGenerator{first, second} {
		if err := g.SeedDrivers(ctx, 3); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if err := g.SeedRides(ctx, 20); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	a, _ := firstStore.GetAllRides(ctx)
	b, _ := secondStore.GetAllRides(ctx)
	if len(a) != len(b) {
		t.Fatalf("Expected equal ride counts, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].AssignedDriverID != b[i].AssignedDriverID {
			t.Errorf("Expected identical rides at %d, got %s and %s", i, a[i].ID, b[i].ID)
		}
	}
}

func TestDemoRideGenerator_StartStop(t *testing.T) {
	generator, store := newTestGenerator(1)
	if err := generator.SeedDrivers(context.Background(), 2); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if generator.IsRunning() {
		t.Fatal("Expected generator to be stopped initially")
	}

	generator.Start()
	generator.Start() // no-op while running
	if !generator.IsRunning() {
		t.Fatal("Expected generator to be running")
	}

	deadline := time.Now().Add(2 * time.Second)
	for store.RideCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	generator.Stop()
	generator.Stop()
	if generator.IsRunning() {
		t.Fatal("Expected generator to be stopped")
	}
	if store.RideCount() == 0 {
		t.Error("Expected the generator to create rides while running")
	}

	// Restart after stop
	generator.Start()
	if !generator.IsRunning() {
		t.Error("Expected generator to restart")
	}
	generator.Stop()
}
