package reporting

import (
	"fmt"
	"time"
)

// Period is an inclusive time range.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"`
}

// Contains reports whether t falls inside the period. Zero times never match.
func (p Period) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	return !t.Before(p.Start) && !t.After(p.End)
}

// Valid reports whether the period does not end before it starts.
func (p Period) Valid() bool {
	return !p.End.Before(p.Start)
}

// FilterRides keeps rides booked inside the period. Rides without a usable
// booking time are dropped.
func FilterRides(rides []EnrichedRide, p Period) []EnrichedRide {
	out := make([]EnrichedRide, 0, len(rides))
	for _, r := range rides {
		if p.Contains(r.DateBooked) {
			out = append(out, r)
		}
	}
	return out
}

func rangeLabel(start, end time.Time) string {
	if start.Year() == end.Year() {
		return fmt.Sprintf("%s - %s", start.Format("Jan 02"), end.Format("Jan 02, 2006"))
	}
	return fmt.Sprintf("%s - %s", start.Format("Jan 02, 2006"), end.Format("Jan 02, 2006"))
}
