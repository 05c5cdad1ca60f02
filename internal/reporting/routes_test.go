package reporting

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routeRide(id, pickup, dropoff string, status Status, meters float64) Ride {
	r := ride(id, status, meters, time.Time{})
	r.PickupAddress = pickup
	r.DropoffAddress = dropoff
	return r
}

func TestTopRoutes_RanksByRevenue(t *testing.T) {
	rides := enrich(
		routeRide("1", "Plaza", "Market", StatusCompleted, 1000),
		routeRide("2", "Plaza", "Market", StatusCompleted, 1000),
		routeRide("3", "Church", "School", StatusCompleted, 6000),
		routeRide("4", "Church", "School", StatusCancelled, 6000),
		routeRide("5", "", "Terminal", StatusCompleted, 1000),
	)

	routes := TopRoutes(rides, 0)

	require.Len(t, routes, 3)
	assert.Equal(t, "Plaza → Market", routes[0].Route)
	assert.Equal(t, 2, routes[0].RideCount)
	assert.Equal(t, 33.00, routes[0].Revenue)
	assert.Equal(t, 3.00, routes[0].CompanyRevenue)
	assert.Equal(t, 2.0, routes[0].DistanceKm)
	assert.Equal(t, "Church → School", routes[1].Route)
	assert.Equal(t, 1, routes[1].RideCount)
	assert.Equal(t, "Unknown → Terminal", routes[2].Route)
	assert.Equal(t, UnknownAddress, routes[2].Pickup)
}

func TestTopRoutes_LimitsResults(t *testing.T) {
	var rides []Ride
	for i := 0; i < 8; i++ {
		rides = append(rides, routeRide(fmt.Sprint(i), fmt.Sprintf("P%d", i), "D", StatusCompleted, float64(1000*(i+1))))
	}
	enriched := enrich(rides...)

	assert.Len(t, TopRoutes(enriched, 0), DefaultTopRoutes)
	assert.Len(t, TopRoutes(enriched, 3), 3)
	assert.Len(t, TopRoutes(enriched, 20), 8)

	top := TopRoutes(enriched, 3)
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].Revenue, top[i].Revenue)
	}
	assert.Equal(t, "P7 → D", top[0].Route)
}

func TestTopRoutes_NoCompletedRides(t *testing.T) {
	routes := TopRoutes(enrich(routeRide("1", "A", "B", StatusPending, 1000)), 5)

	assert.NotNil(t, routes)
	assert.Empty(t, routes)
}
