package reporting

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerRide is the audit line for one completed ride in a ledger.
type LedgerRide struct {
	RideID        string    `json:"ride_id"`
	Passenger     string    `json:"passenger"`
	DateBooked    time.Time `json:"date_booked"`
	PersistedFare *float64  `json:"persisted_fare,omitempty"`
	ComputedFare  float64   `json:"computed_fare"`
	ServiceFee    float64   `json:"service_fee"`
	Variance      float64   `json:"variance"`
}

// LedgerEntry is one driver's earnings and the service fee owed for them.
type LedgerEntry struct {
	DriverID       string       `json:"driver_id"`
	DisplayName    string       `json:"display_name"`
	Email          string       `json:"email,omitempty"`
	Placeholder    bool         `json:"placeholder"`
	TotalRides     int          `json:"total_rides"`
	TotalEarnings  float64      `json:"total_earnings"`
	ServiceFeeOwed float64      `json:"service_fee_owed"`
	NetEarnings    float64      `json:"net_earnings"`
	FareVariance   float64      `json:"fare_variance"`
	Rides          []LedgerRide `json:"rides"`
}

// LedgerTotals sums a ledger across drivers.
type LedgerTotals struct {
	TotalRides               int     `json:"total_rides"`
	TotalEarnings            float64 `json:"total_earnings"`
	TotalServiceFee          float64 `json:"total_service_fee"`
	AverageServiceFeePerRide float64 `json:"average_service_fee_per_ride"`
	NetEarnings              float64 `json:"net_earnings"`
	FareVariance             float64 `json:"fare_variance"`
}

// Ledger is the per-driver settlement view over all time or one period.
type Ledger struct {
	Period          *Period       `json:"period,omitempty"`
	Entries         []LedgerEntry `json:"entries"`
	Totals          LedgerTotals  `json:"totals"`
	UnassignedRides int           `json:"unassigned_rides"`
}

// PlaceholderName labels a driver id that is missing from the roster.
func PlaceholderName(driverID string) string {
	short := driverID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s (UID: %s...)", UnknownDriverName, short)
}

// AllTimeLedger settles every completed ride in the snapshot.
func AllTimeLedger(rides []EnrichedRide, roster []Driver) Ledger {
	return buildLedger(rides, roster)
}

// PeriodLedger settles completed rides booked inside the period. The ledger is
// rebuilt from the filtered rides, never derived from another ledger.
func PeriodLedger(rides []EnrichedRide, roster []Driver, period Period) Ledger {
	l := buildLedger(FilterRides(rides, period), roster)
	l.Period = &period
	return l
}

// WeeklyLedgers builds one independent ledger per window.
func WeeklyLedgers(rides []EnrichedRide, roster []Driver, windows []Period) []Ledger {
	ledgers := make([]Ledger, 0, len(windows))
	for _, w := range windows {
		ledgers = append(ledgers, PeriodLedger(rides, roster, w))
	}
	return ledgers
}

type driverTally struct {
	entry    LedgerEntry
	earnings decimal.Decimal
	fees     decimal.Decimal
	variance decimal.Decimal
}

func buildLedger(rides []EnrichedRide, roster []Driver) Ledger {
	tallies := make(map[string]*driverTally, len(roster))
	for _, d := range roster {
		if _, dup := tallies[d.ID]; dup {
			continue
		}
		tallies[d.ID] = &driverTally{entry: LedgerEntry{
			DriverID:    d.ID,
			DisplayName: d.Name,
			Email:       d.Email,
		}}
	}

	var ledger Ledger
	for _, r := range rides {
		if r.Status != StatusCompleted {
			continue
		}
		if r.AssignedDriverID == "" {
			ledger.UnassignedRides++
			continue
		}

		t, ok := tallies[r.AssignedDriverID]
		if !ok {
			t = &driverTally{entry: LedgerEntry{
				DriverID:    r.AssignedDriverID,
				DisplayName: PlaceholderName(r.AssignedDriverID),
				Placeholder: true,
			}}
			tallies[r.AssignedDriverID] = t
		}

		earned := dec(r.Fare.TotalFare)
		variance := decimal.Zero
		if r.PersistedFare != nil {
			earned = dec(*r.PersistedFare)
			variance = earned.Sub(dec(r.Fare.TotalFare))
		}

		t.entry.TotalRides++
		t.earnings = t.earnings.Add(earned)
		t.fees = t.fees.Add(dec(r.Fare.ServiceFee))
		t.variance = t.variance.Add(variance)
		t.entry.Rides = append(t.entry.Rides, LedgerRide{
			RideID:        r.ID,
			Passenger:     r.Passenger,
			DateBooked:    r.DateBooked,
			PersistedFare: r.PersistedFare,
			ComputedFare:  r.Fare.TotalFare,
			ServiceFee:    r.Fare.ServiceFee,
			Variance:      cents(variance),
		})
	}

	var earnings, fees, variance decimal.Decimal
	ledger.Entries = []LedgerEntry{}
	for _, t := range tallies {
		if t.entry.TotalRides == 0 {
			continue
		}
		t.entry.TotalEarnings = cents(t.earnings)
		t.entry.ServiceFeeOwed = cents(t.fees)
		t.entry.NetEarnings = cents(t.earnings.Sub(t.fees))
		t.entry.FareVariance = cents(t.variance)
		ledger.Entries = append(ledger.Entries, t.entry)

		ledger.Totals.TotalRides += t.entry.TotalRides
		earnings = earnings.Add(t.earnings)
		fees = fees.Add(t.fees)
		variance = variance.Add(t.variance)
	}

	sort.Slice(ledger.Entries, func(i, j int) bool {
		a, b := ledger.Entries[i], ledger.Entries[j]
		if a.TotalEarnings != b.TotalEarnings {
			return a.TotalEarnings > b.TotalEarnings
		}
		return a.DriverID < b.DriverID
	})

	ledger.Totals.TotalEarnings = cents(earnings)
	ledger.Totals.TotalServiceFee = cents(fees)
	ledger.Totals.AverageServiceFeePerRide = divide(fees, decimal.NewFromInt(int64(ledger.Totals.TotalRides)))
	ledger.Totals.NetEarnings = cents(earnings.Sub(fees))
	ledger.Totals.FareVariance = cents(variance)

	return ledger
}
