package reporting

import (
	"sort"

	"github.com/shopspring/decimal"
)

const (
	// DefaultTopRoutes is the ranking size used when callers do not pick one.
	DefaultTopRoutes = 5
	// UnknownAddress stands in for a blank pickup or dropoff.
	UnknownAddress = "Unknown"
)

// RouteAggregate is the completed-ride revenue of one pickup/dropoff pair.
type RouteAggregate struct {
	Pickup         string  `json:"pickup"`
	Dropoff        string  `json:"dropoff"`
	Route          string  `json:"route"`
	RideCount      int     `json:"ride_count"`
	Revenue        float64 `json:"revenue"`
	CompanyRevenue float64 `json:"company_revenue"`
	DistanceKm     float64 `json:"distance_km"`
}

type routeKey struct {
	pickup, dropoff string
}

// TopRoutes ranks routes of completed rides by revenue and keeps the first n.
// A non-positive n selects DefaultTopRoutes.
func TopRoutes(rides []EnrichedRide, n int) []RouteAggregate {
	if n <= 0 {
		n = DefaultTopRoutes
	}

	type routeTally struct {
		rides    int
		money    tally
		distance decimal.Decimal
	}
	tallies := make(map[routeKey]*routeTally)
	for _, r := range rides {
		if r.Status != StatusCompleted {
			continue
		}
		key := routeKey{pickup: addressOrUnknown(r.PickupAddress), dropoff: addressOrUnknown(r.DropoffAddress)}
		t, ok := tallies[key]
		if !ok {
			t = &routeTally{}
			tallies[key] = t
		}
		t.rides++
		t.money.add(r.Fare)
		t.distance = t.distance.Add(dec(r.Fare.DistanceKm))
	}

	routes := make([]RouteAggregate, 0, len(tallies))
	for key, t := range tallies {
		routes = append(routes, RouteAggregate{
			Pickup:         key.pickup,
			Dropoff:        key.dropoff,
			Route:          key.pickup + " → " + key.dropoff,
			RideCount:      t.rides,
			Revenue:        cents(t.money.total),
			CompanyRevenue: cents(t.money.company),
			DistanceKm:     cents(t.distance),
		})
	}

	sort.Slice(routes, func(i, j int) bool {
		a, b := routes[i], routes[j]
		if a.Revenue != b.Revenue {
			return a.Revenue > b.Revenue
		}
		if a.RideCount != b.RideCount {
			return a.RideCount > b.RideCount
		}
		return a.Route < b.Route
	})

	if len(routes) > n {
		routes = routes[:n]
	}
	return routes
}

func addressOrUnknown(addr string) string {
	if addr == "" {
		return UnknownAddress
	}
	return addr
}
