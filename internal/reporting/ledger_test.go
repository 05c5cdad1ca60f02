package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceholderName(t *testing.T) {
	assert.Equal(t, "Unknown Driver (UID: abcdefgh...)", PlaceholderName("abcdefghijklmnop"))
	assert.Equal(t, "Unknown Driver (UID: abc...)", PlaceholderName("abc"))
}

func TestAllTimeLedger_PersistedAndComputedFares(t *testing.T) {
	roster := []Driver{
		{ID: "d1", Name: "juan", Email: "juan@example.com"},
		{ID: "d2", Name: "maria"},
		{ID: "idle", Name: "pedro"},
	}

	r1 := ride("r1", StatusCompleted, 1000, time.Time{})
	r1.AssignedDriverID = "d1"
	r1.PersistedFare = fare(20)

	r2 := ride("r2", StatusCompleted, 6000, time.Time{})
	r2.AssignedDriverID = "d1"

	r3 := ride("r3", StatusCompleted, 1000, time.Time{})
	r3.AssignedDriverID = "d2"

	r4 := ride("r4", StatusCancelled, 1000, time.Time{})
	r4.AssignedDriverID = "d2"

	ledger := AllTimeLedger(enrich(r1, r2, r3, r4), roster)

	require.Len(t, ledger.Entries, 2)
	juan := ledger.Entries[0]
	assert.Equal(t, "d1", juan.DriverID)
	assert.Equal(t, "juan", juan.DisplayName)
	assert.False(t, juan.Placeholder)
	assert.Equal(t, 2, juan.TotalRides)
	assert.Equal(t, 41.45, juan.TotalEarnings)
	assert.Equal(t, 3.45, juan.ServiceFeeOwed)
	assert.Equal(t, 38.00, juan.NetEarnings)
	assert.Equal(t, 3.50, juan.FareVariance)
	require.Len(t, juan.Rides, 2)
	assert.Equal(t, 3.50, juan.Rides[0].Variance)
	assert.Equal(t, 0.0, juan.Rides[1].Variance)

	maria := ledger.Entries[1]
	assert.Equal(t, 1, maria.TotalRides)
	assert.Equal(t, 16.50, maria.TotalEarnings)
	assert.Equal(t, 1.50, maria.ServiceFeeOwed)

	assert.Equal(t, 3, ledger.Totals.TotalRides)
	assert.Equal(t, 57.95, ledger.Totals.TotalEarnings)
	assert.Equal(t, 4.95, ledger.Totals.TotalServiceFee)
	assert.Equal(t, 1.65, ledger.Totals.AverageServiceFeePerRide)
	assert.Equal(t, 53.00, ledger.Totals.NetEarnings)
	assert.Nil(t, ledger.Period)
}

func TestAllTimeLedger_UnknownDriverGetsSinglePlaceholder(t *testing.T) {
	var rides []Ride
	for _, id := range []string{"a", "b", "c"} {
		r := ride(id, StatusCompleted, 1000, time.Time{})
		r.AssignedDriverID = "ghost-driver-123456"
		rides = append(rides, r)
	}

	ledger := AllTimeLedger(enrich(rides...), nil)

	require.Len(t, ledger.Entries, 1)
	entry := ledger.Entries[0]
	assert.True(t, entry.Placeholder)
	assert.Equal(t, "Unknown Driver (UID: ghost-dr...)", entry.DisplayName)
	assert.Equal(t, 3, entry.TotalRides)
	assert.Equal(t, 49.50, entry.TotalEarnings)
}

func TestAllTimeLedger_UnassignedRidesAreCounted(t *testing.T) {
	ledger := AllTimeLedger(enrich(ride("a", StatusCompleted, 1000, time.Time{})), nil)

	assert.Empty(t, ledger.Entries)
	assert.Equal(t, 1, ledger.UnassignedRides)
	assert.Equal(t, 0, ledger.Totals.TotalRides)
	assert.Equal(t, 0.0, ledger.Totals.AverageServiceFeePerRide)
}

func TestAllTimeLedger_RideCountsMatchCompletedAssigned(t *testing.T) {
	roster := []Driver{{ID: "d1", Name: "one"}, {ID: "d2", Name: "two"}}
	var rides []Ride
	statuses := []Status{StatusCompleted, StatusCancelled, StatusCompleted, StatusPending, StatusCompleted}
	drivers := []string{"d1", "d1", "d2", "d2", "ghost"}
	for i := range statuses {
		r := ride(string(rune('a'+i)), statuses[i], 2500, time.Time{})
		r.AssignedDriverID = drivers[i]
		rides = append(rides, r)
	}

	ledger := AllTimeLedger(enrich(rides...), roster)

	sum := 0
	for _, e := range ledger.Entries {
		sum += e.TotalRides
	}
	assert.Equal(t, 3, sum)
	assert.Equal(t, 3, ledger.Totals.TotalRides)
}

func TestPeriodLedger_RecomputesFromFilteredRides(t *testing.T) {
	b := NewBucketer(time.UTC, time.Sunday)
	roster := []Driver{{ID: "d1", Name: "juan"}}

	inside := ride("in", StatusCompleted, 1000, time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC))
	inside.AssignedDriverID = "d1"
	outside := ride("out", StatusCompleted, 6000, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC))
	outside.AssignedDriverID = "d1"
	undated := ride("undated", StatusCompleted, 6000, time.Time{})
	undated.AssignedDriverID = "d1"

	rides := enrich(inside, outside, undated)
	period := b.DateRange(time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC))

	ledger := PeriodLedger(rides, roster, period)

	require.Len(t, ledger.Entries, 1)
	assert.Equal(t, 1, ledger.Entries[0].TotalRides)
	assert.Equal(t, 16.50, ledger.Entries[0].TotalEarnings)
	require.NotNil(t, ledger.Period)
	assert.Equal(t, period.Start, ledger.Period.Start)

	allTime := AllTimeLedger(rides, roster)
	assert.Equal(t, 3, allTime.Entries[0].TotalRides)
}

func TestWeeklyLedgers(t *testing.T) {
	b := NewBucketer(time.UTC, time.Sunday)
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	roster := []Driver{{ID: "d1", Name: "juan"}}

	thisWeek := ride("a", StatusCompleted, 1000, time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC))
	thisWeek.AssignedDriverID = "d1"
	lastWeek := ride("b", StatusCompleted, 6000, time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC))
	lastWeek.AssignedDriverID = "d1"

	ledgers := WeeklyLedgers(enrich(thisWeek, lastWeek), roster, b.WeekWindows(now, 4))

	require.Len(t, ledgers, 4)
	assert.Equal(t, 16.50, ledgers[0].Totals.TotalEarnings)
	assert.Equal(t, 21.45, ledgers[1].Totals.TotalEarnings)
	assert.Equal(t, 1.95, ledgers[1].Totals.AverageServiceFeePerRide)
	assert.Empty(t, ledgers[2].Entries)
	assert.Empty(t, ledgers[3].Entries)
}

func TestAllTimeLedger_PriceOverridesComputedFare(t *testing.T) {
	roster := []Driver{{ID: "d1", Name: "juan"}}
	r := NormalizeRide(RideRecord{ID: "r1", Status: "Completed", AssignedDriverID: "d1", DistanceMeters: 2060.0, Price: 20.0})

	ledger := AllTimeLedger(enrich(r), roster)

	require.Len(t, ledger.Entries, 1)
	assert.Equal(t, 20.0, ledger.Entries[0].TotalEarnings)
	assert.Equal(t, 1.65, ledger.Entries[0].ServiceFeeOwed)
	assert.Equal(t, 1.8, ledger.Entries[0].FareVariance)
}
