package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_MixedStatuses(t *testing.T) {
	booked := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	special := ride("b", StatusCompleted, 6000, booked)
	special.PriorityType = PrioritySpecial
	special.SpecialAmount = 50

	s := Summarize(enrich(
		ride("a", StatusCompleted, 1000, booked),
		special,
		ride("c", StatusCancelled, 4000, booked),
	))

	assert.Equal(t, 3, s.TotalRides)
	assert.Equal(t, 2, s.CompletedRides)
	assert.Equal(t, 1, s.CancelledRides)
	assert.Equal(t, 87.95, s.TotalRevenue)
	assert.Equal(t, 3.45, s.CompanyRevenue)
	assert.Equal(t, 84.50, s.DriverRevenue)
	assert.Equal(t, 43.98, s.AverageFare)
	assert.Equal(t, 1.73, s.AverageServiceFee)
	assert.Equal(t, 66.67, s.CompletionRate)
	assert.Equal(t, 33.33, s.CancellationRate)
	assert.Equal(t, 66.67, s.AcceptanceRate)
	assert.Equal(t, 11.0, s.TotalDistanceKm)
	assert.Equal(t, 8.0, s.RevenuePerKm)

	require.Len(t, s.StatusDistribution, 2)
	assert.Equal(t, StatusShare{Status: StatusCompleted, Count: 2, Percentage: 66.67}, s.StatusDistribution[0])
	assert.Equal(t, StatusShare{Status: StatusCancelled, Count: 1, Percentage: 33.33}, s.StatusDistribution[1])

	require.Len(t, s.RevenueByStatus, 2)
	assert.Equal(t, 87.95, s.RevenueByStatus[0].Revenue)
	assert.Equal(t, 0.0, s.RevenueByStatus[1].Revenue)

	assert.Equal(t, 1, s.SpecialRides.Rides)
	assert.Equal(t, 71.45, s.SpecialRides.Revenue)
	assert.Equal(t, 50.0, s.SpecialRides.SpecialAmounts)
	assert.Equal(t, 1, s.RegularRides.Rides)
	assert.Equal(t, 16.50, s.RegularRides.AverageFare)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)

	assert.Equal(t, 0, s.TotalRides)
	assert.Equal(t, 0.0, s.TotalRevenue)
	assert.Equal(t, 0.0, s.AverageFare)
	assert.Equal(t, 0.0, s.AverageServiceFee)
	assert.Equal(t, 0.0, s.CompletionRate)
	assert.Equal(t, 0.0, s.AcceptanceRate)
	assert.Equal(t, 0.0, s.RevenuePerKm)
	assert.Equal(t, 0.0, s.Breakdown.CompanyShare)
	assert.NotNil(t, s.StatusDistribution)
	assert.Empty(t, s.StatusDistribution)
}

func TestSummarize_NoCompletedRides(t *testing.T) {
	s := Summarize(enrich(ride("p", StatusPending, 3000, time.Time{}), ride("o", StatusOngoing, 0, time.Time{})))

	assert.Equal(t, 2, s.TotalRides)
	assert.Equal(t, 0.0, s.TotalRevenue)
	assert.Equal(t, 0.0, s.AverageFare)
	assert.Equal(t, 0.0, s.CompletionRate)
	assert.Equal(t, 0.0, s.AcceptanceRate)
	assert.Equal(t, 3.0, s.TotalDistanceKm)
	assert.Equal(t, 0.0, s.RevenuePerKm)
}

func TestSummarize_StatusOrdering(t *testing.T) {
	s := Summarize(enrich(
		ride("1", Status("Disputed"), 0, time.Time{}),
		ride("2", StatusCancelled, 0, time.Time{}),
		ride("3", StatusPending, 0, time.Time{}),
		ride("4", StatusUnknown, 0, time.Time{}),
	))

	var order []Status
	for _, row := range s.StatusDistribution {
		order = append(order, row.Status)
	}
	assert.Equal(t, []Status{StatusPending, StatusCancelled, "Disputed", StatusUnknown}, order)
}

func TestSummarize_CompletedRevenueMatchesSum(t *testing.T) {
	var rides []Ride
	for i, m := range []float64{500, 2100, 3900, 8800, 15000} {
		rides = append(rides, ride(string(rune('a'+i)), StatusCompleted, m, time.Time{}))
	}
	enriched := enrich(rides...)

	var want float64
	for _, r := range enriched {
		want += r.Fare.TotalFare
	}

	s := Summarize(enriched)
	assert.InDelta(t, want, s.TotalRevenue, 0.001)
	assert.InDelta(t, s.CompanyRevenue+s.DriverRevenue, s.TotalRevenue, 0.001)
	assert.Equal(t, 100.0, s.CompletionRate)
}
