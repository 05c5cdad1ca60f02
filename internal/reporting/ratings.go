package reporting

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// DriverRating is a driver's average passenger rating.
type DriverRating struct {
	DriverID string  `json:"driver_id"`
	Name     string  `json:"name"`
	Average  float64 `json:"average"`
	Count    int     `json:"count"`
}

// AverageRatings averages ratings per driver. Ratings that are not numbers are
// skipped rather than counted as zero. Drivers missing from the roster are
// listed under their id.
func AverageRatings(ratings []RatingRecord, roster []Driver) []DriverRating {
	names := make(map[string]string, len(roster))
	for _, d := range roster {
		names[d.ID] = d.Name
	}

	type ratingTally struct {
		sum   decimal.Decimal
		count int
	}
	tallies := make(map[string]*ratingTally)
	for _, rec := range ratings {
		score, ok := ratingOf(rec.Rating)
		if !ok || rec.DriverID == "" {
			continue
		}
		t, exists := tallies[rec.DriverID]
		if !exists {
			t = &ratingTally{}
			tallies[rec.DriverID] = t
		}
		t.sum = t.sum.Add(dec(score))
		t.count++
	}

	out := make([]DriverRating, 0, len(tallies))
	for id, t := range tallies {
		name, ok := names[id]
		if !ok {
			name = id
		}
		out = append(out, DriverRating{
			DriverID: id,
			Name:     name,
			Average:  divide(t.sum, decimal.NewFromInt(int64(t.count))),
			Count:    t.count,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Average != out[j].Average {
			return out[i].Average > out[j].Average
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func ratingOf(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
