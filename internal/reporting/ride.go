package reporting

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a ride. Only Completed and Cancelled are
// branched on by the reports; every other value passes through untouched.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusAccepted  Status = "Accepted"
	StatusOngoing   Status = "Ongoing"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
	StatusUnknown   Status = "Unknown"
)

// knownStatuses is also the display order used by status distributions.
var knownStatuses = []Status{
	StatusPending,
	StatusAccepted,
	StatusOngoing,
	StatusCompleted,
	StatusCancelled,
}

// ParseStatus canonicalises a stored status string case-insensitively.
func ParseStatus(raw string) Status {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return StatusUnknown
	}
	for _, s := range knownStatuses {
		if strings.EqualFold(raw, string(s)) {
			return s
		}
	}
	return Status(raw)
}

// PriorityType classifies a booking. Only special rides carry a surcharge.
type PriorityType string

const (
	PriorityRegular  PriorityType = "regular"
	PrioritySpecial  PriorityType = "special"
	PriorityUrgent   PriorityType = "urgent"
	PriorityPriority PriorityType = "priority"
)

// ParsePriority maps a stored priority to a known type, defaulting to regular.
func ParsePriority(raw string) PriorityType {
	switch p := PriorityType(strings.ToLower(strings.TrimSpace(raw))); p {
	case PrioritySpecial, PriorityUrgent, PriorityPriority:
		return p
	default:
		return PriorityRegular
	}
}

// RideRecord is a ride document as it comes out of a snapshot source. Numeric
// and time fields are loosely typed because upstream writers disagree on them.
type RideRecord struct {
	ID               string `json:"id" dynamodbav:"id"`
	Status           string `json:"status" dynamodbav:"status"`
	Passenger        string `json:"passenger" dynamodbav:"passenger"`
	AssignedDriverID string `json:"assignedDriverId,omitempty" dynamodbav:"assignedDriverId,omitempty"`
	PickupAddress    string `json:"pickUpAddress,omitempty" dynamodbav:"pickUpAddress,omitempty"`
	DropoffAddress   string `json:"dropOffAddress,omitempty" dynamodbav:"dropOffAddress,omitempty"`
	DistanceMeters   any    `json:"distanceMeters,omitempty" dynamodbav:"distanceMeters,omitempty"`
	PriorityType     string `json:"priorityType,omitempty" dynamodbav:"priorityType,omitempty"`
	SpecialAmount    any    `json:"specialAmount,omitempty" dynamodbav:"specialAmount,omitempty"`
	Fare             any    `json:"fare,omitempty" dynamodbav:"fare,omitempty"`
	Price            any    `json:"price,omitempty" dynamodbav:"price,omitempty"`
	DateBooked       any    `json:"dateBooked,omitempty" dynamodbav:"dateBooked,omitempty"`
	DateCompleted    any    `json:"dateCompleted,omitempty" dynamodbav:"dateCompleted,omitempty"`
}

// DriverRecord is a roster document. UID takes precedence over ID as the key
// rides reference.
type DriverRecord struct {
	ID          string `json:"id" dynamodbav:"id"`
	UID         string `json:"uid,omitempty" dynamodbav:"uid,omitempty"`
	DisplayName string `json:"displayName,omitempty" dynamodbav:"displayName,omitempty"`
	Username    string `json:"username,omitempty" dynamodbav:"username,omitempty"`
	Email       string `json:"email,omitempty" dynamodbav:"email,omitempty"`
}

// RatingRecord is a single passenger rating of a driver.
type RatingRecord struct {
	DriverID string `json:"driverId" dynamodbav:"driverId"`
	Rating   any    `json:"rating" dynamodbav:"rating"`
}

// Ride is a normalized ride. DateBooked is zero when the stored value was
// missing or unparseable.
type Ride struct {
	ID               string       `json:"id"`
	Status           Status       `json:"status"`
	Passenger        string       `json:"passenger"`
	AssignedDriverID string       `json:"assigned_driver_id,omitempty"`
	PickupAddress    string       `json:"pickup_address"`
	DropoffAddress   string       `json:"dropoff_address"`
	DistanceMeters   float64      `json:"distance_meters"`
	PriorityType     PriorityType `json:"priority_type"`
	SpecialAmount    float64      `json:"special_amount"`
	PersistedFare    *float64     `json:"persisted_fare,omitempty"`
	DateBooked       time.Time    `json:"date_booked"`
	DateCompleted    *time.Time   `json:"date_completed,omitempty"`
}

// HasBookingTime reports whether the ride can be placed on a timeline.
func (r Ride) HasBookingTime() bool {
	return !r.DateBooked.IsZero()
}

// IsSpecial reports whether the ride counts as special for comparison
// statistics. This is broader than the fare rule, which only looks at the
// priority type.
func (r Ride) IsSpecial() bool {
	return r.PriorityType == PrioritySpecial || r.SpecialAmount > 0
}

// Driver is a normalized roster entry keyed by the id rides reference.
type Driver struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}
