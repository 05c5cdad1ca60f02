package reporting

import "time"

var testCalc = NewFareCalculator(nil)

func ride(id string, status Status, meters float64, booked time.Time) Ride {
	return Ride{ID: id, Status: status, DistanceMeters: meters, PriorityType: PriorityRegular, DateBooked: booked}
}

func enrich(rides ...Ride) []EnrichedRide {
	return testCalc.Enrich(rides)
}

func fare(v float64) *float64 {
	return &v
}
