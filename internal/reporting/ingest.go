package reporting

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// UnknownDriverName is used for roster entries that carry no usable name.
const UnknownDriverName = "Unknown Driver"

// Accepted string layouts for booking and completion times, tried in order.
// Zone-less layouts are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NormalizeRide applies every defaulting rule once so downstream aggregators
// can trust the values they see.
func NormalizeRide(rec RideRecord) Ride {
	ride := Ride{
		ID:               strings.TrimSpace(rec.ID),
		Status:           ParseStatus(rec.Status),
		Passenger:        strings.TrimSpace(rec.Passenger),
		AssignedDriverID: strings.TrimSpace(rec.AssignedDriverID),
		PickupAddress:    strings.TrimSpace(rec.PickupAddress),
		DropoffAddress:   strings.TrimSpace(rec.DropoffAddress),
		DistanceMeters:   math.Max(0, numberOf(rec.DistanceMeters)),
		PriorityType:     ParsePriority(rec.PriorityType),
		SpecialAmount:    math.Max(0, numberOf(rec.SpecialAmount)),
	}

	// Older bookings store the charged amount as price.
	fare := numberOf(rec.Fare)
	if fare <= 0 {
		fare = numberOf(rec.Price)
	}
	if fare > 0 {
		ride.PersistedFare = &fare
	}
	if booked, ok := timeOf(rec.DateBooked); ok {
		ride.DateBooked = booked
	}
	if completed, ok := timeOf(rec.DateCompleted); ok {
		ride.DateCompleted = &completed
	}

	return ride
}

// NormalizeRides normalizes a snapshot in order.
func NormalizeRides(recs []RideRecord) []Ride {
	rides := make([]Ride, 0, len(recs))
	for _, rec := range recs {
		rides = append(rides, NormalizeRide(rec))
	}
	return rides
}

// NormalizeDriver keys a roster entry by uid, falling back to the document id.
func NormalizeDriver(rec DriverRecord) Driver {
	id := strings.TrimSpace(rec.UID)
	if id == "" {
		id = strings.TrimSpace(rec.ID)
	}

	name := strings.TrimSpace(rec.Username)
	if name == "" {
		name = strings.TrimSpace(rec.DisplayName)
	}
	if name == "" {
		name = UnknownDriverName
	}

	return Driver{ID: id, Name: name, Email: strings.TrimSpace(rec.Email)}
}

// NormalizeRoster normalizes roster records, dropping entries without any id.
// When two records share a key the first one wins.
func NormalizeRoster(recs []DriverRecord) []Driver {
	seen := make(map[string]bool, len(recs))
	drivers := make([]Driver, 0, len(recs))
	for _, rec := range recs {
		d := NormalizeDriver(rec)
		if d.ID == "" || seen[d.ID] {
			continue
		}
		seen[d.ID] = true
		drivers = append(drivers, d)
	}
	return drivers
}

// numberOf coerces a loosely typed value to a finite float64. Anything that
// cannot be read as a number becomes 0.
func numberOf(v any) float64 {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case *float64:
		if n == nil {
			return 0
		}
		f = *n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// timeOf reads a timestamp from the shapes upstream writers produce: native
// times, formatted strings, epoch numbers (seconds or milliseconds) and
// {seconds, nanoseconds} documents.
func timeOf(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, !t.IsZero()
	case string:
		return parseTimeString(t)
	case map[string]any:
		return timeOfDocument(t)
	case float64, float32, int, int32, int64, uint, uint32, uint64, json.Number:
		return timeOfEpoch(numberOf(t))
	default:
		return time.Time{}, false
	}
}

func parseTimeString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return timeOfEpoch(n)
	}
	return time.Time{}, false
}

// epochMillisThreshold separates second and millisecond epochs. Second values
// this large would be thousands of years in the future.
const epochMillisThreshold = 1e11

func timeOfEpoch(n float64) (time.Time, bool) {
	if n <= 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return time.Time{}, false
	}
	if n >= epochMillisThreshold {
		return time.UnixMilli(int64(n)).UTC(), true
	}
	sec, frac := math.Modf(n)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
}

func timeOfDocument(doc map[string]any) (time.Time, bool) {
	secRaw, ok := doc["seconds"]
	if !ok {
		secRaw, ok = doc["_seconds"]
	}
	if !ok {
		return time.Time{}, false
	}
	sec := numberOf(secRaw)
	if sec <= 0 {
		return time.Time{}, false
	}

	nanos := numberOf(doc["nanoseconds"])
	if nanos == 0 {
		nanos = numberOf(doc["_nanoseconds"])
	}
	return time.Unix(int64(sec), int64(nanos)).UTC(), true
}
