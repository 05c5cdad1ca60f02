package reporting

import (
	"sort"

	"github.com/shopspring/decimal"
)

// StatusShare is one row of a status distribution.
type StatusShare struct {
	Status     Status  `json:"status"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// StatusRevenue is the revenue attributed to a status. Only Completed
// carries revenue.
type StatusRevenue struct {
	Status  Status  `json:"status"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// RevenueBreakdown splits completed revenue between company and drivers.
type RevenueBreakdown struct {
	CompanyRevenue float64 `json:"company_revenue"`
	DriverRevenue  float64 `json:"driver_revenue"`
	CompanyShare   float64 `json:"company_share"`
	DriverShare    float64 `json:"driver_share"`
}

// RideTypeStats compares special and regular completed rides.
type RideTypeStats struct {
	Rides          int     `json:"rides"`
	Revenue        float64 `json:"revenue"`
	AverageFare    float64 `json:"average_fare"`
	SpecialAmounts float64 `json:"special_amounts"`
}

// Summary is the headline revenue report for a ride set.
type Summary struct {
	TotalRides         int              `json:"total_rides"`
	CompletedRides     int              `json:"completed_rides"`
	CancelledRides     int              `json:"cancelled_rides"`
	TotalRevenue       float64          `json:"total_revenue"`
	CompanyRevenue     float64          `json:"company_revenue"`
	DriverRevenue      float64          `json:"driver_revenue"`
	AverageFare        float64          `json:"average_fare"`
	AverageServiceFee  float64          `json:"average_service_fee"`
	CompletionRate     float64          `json:"completion_rate"`
	CancellationRate   float64          `json:"cancellation_rate"`
	AcceptanceRate     float64          `json:"acceptance_rate"`
	TotalDistanceKm    float64          `json:"total_distance_km"`
	RevenuePerKm       float64          `json:"revenue_per_km"`
	StatusDistribution []StatusShare    `json:"status_distribution"`
	RevenueByStatus    []StatusRevenue  `json:"revenue_by_status"`
	Breakdown          RevenueBreakdown `json:"breakdown"`
	SpecialRides       RideTypeStats    `json:"special_rides"`
	RegularRides       RideTypeStats    `json:"regular_rides"`
}

// Summarize aggregates a ride set. Revenue only counts completed rides while
// counts, rates and distance cover every ride. Every ratio with a zero
// denominator is reported as 0.
func Summarize(rides []EnrichedRide) Summary {
	var (
		completed, cancelled int
		revenue              tally
		serviceFees          decimal.Decimal
		distance             decimal.Decimal
		special, regular     typeTally
	)
	counts := make(map[Status]int)

	for _, r := range rides {
		counts[r.Status]++
		distance = distance.Add(dec(r.Fare.DistanceKm))

		switch r.Status {
		case StatusCompleted:
			completed++
			revenue.add(r.Fare)
			serviceFees = serviceFees.Add(dec(r.Fare.ServiceFee))
			if r.IsSpecial() {
				special.add(r)
			} else {
				regular.add(r)
			}
		case StatusCancelled:
			cancelled++
		}
	}

	total := decimal.NewFromInt(int64(len(rides)))
	done := decimal.NewFromInt(int64(completed))
	dropped := decimal.NewFromInt(int64(cancelled))

	s := Summary{
		TotalRides:        len(rides),
		CompletedRides:    completed,
		CancelledRides:    cancelled,
		TotalRevenue:      cents(revenue.total),
		CompanyRevenue:    cents(revenue.company),
		DriverRevenue:     cents(revenue.driver),
		AverageFare:       divide(revenue.total, done),
		AverageServiceFee: divide(serviceFees, done),
		CompletionRate:    percent(done, total),
		CancellationRate:  percent(dropped, total),
		AcceptanceRate:    percent(done, done.Add(dropped)),
		TotalDistanceKm:   cents(distance),
		RevenuePerKm:      divide(revenue.total, distance),
		Breakdown: RevenueBreakdown{
			CompanyRevenue: cents(revenue.company),
			DriverRevenue:  cents(revenue.driver),
			CompanyShare:   percent(revenue.company, revenue.total),
			DriverShare:    percent(revenue.driver, revenue.total),
		},
		SpecialRides: special.stats(),
		RegularRides: regular.stats(),
	}

	for _, status := range orderedStatuses(counts) {
		n := counts[status]
		s.StatusDistribution = append(s.StatusDistribution, StatusShare{
			Status:     status,
			Count:      n,
			Percentage: percent(decimal.NewFromInt(int64(n)), total),
		})

		row := StatusRevenue{Status: status, Count: n}
		if status == StatusCompleted {
			row.Revenue = cents(revenue.total)
		}
		s.RevenueByStatus = append(s.RevenueByStatus, row)
	}
	if s.StatusDistribution == nil {
		s.StatusDistribution = []StatusShare{}
		s.RevenueByStatus = []StatusRevenue{}
	}

	return s
}

// orderedStatuses lists the statuses present in counts, known ones first in
// lifecycle order and any others alphabetically after them.
func orderedStatuses(counts map[Status]int) []Status {
	var out []Status
	known := make(map[Status]bool, len(knownStatuses))
	for _, s := range knownStatuses {
		known[s] = true
		if counts[s] > 0 {
			out = append(out, s)
		}
	}

	var extra []Status
	for s := range counts {
		if !known[s] {
			extra = append(extra, s)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })

	return append(out, extra...)
}

type typeTally struct {
	rides    int
	revenue  decimal.Decimal
	specials decimal.Decimal
}

func (t *typeTally) add(r EnrichedRide) {
	t.rides++
	t.revenue = t.revenue.Add(dec(r.Fare.TotalFare))
	t.specials = t.specials.Add(dec(r.Fare.SpecialAmount))
}

func (t typeTally) stats() RideTypeStats {
	return RideTypeStats{
		Rides:          t.rides,
		Revenue:        cents(t.revenue),
		AverageFare:    divide(t.revenue, decimal.NewFromInt(int64(t.rides))),
		SpecialAmounts: cents(t.specials),
	}
}
