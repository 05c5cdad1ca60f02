package reporting

import "time"

const dateKeyLayout = "2006-01-02"

// TimeBucket aggregates rides booked within one calendar day or week.
type TimeBucket struct {
	Key            string    `json:"key"`
	Label          string    `json:"label"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	RideCount      int       `json:"ride_count"`
	CompletedCount int       `json:"completed_count"`
	CancelledCount int       `json:"cancelled_count"`
	TotalRevenue   float64   `json:"total_revenue"`
	CompanyRevenue float64   `json:"company_revenue"`
	DriverRevenue  float64   `json:"driver_revenue"`
}

// HourBucket counts bookings made during one hour of the day.
type HourBucket struct {
	Hour  int    `json:"hour"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Bucketer lays rides out on a calendar in a fixed location. Day and week
// boundaries are local midnights there.
type Bucketer struct {
	loc       *time.Location
	weekStart time.Weekday
}

// NewBucketer creates a bucketer; a nil location means UTC.
func NewBucketer(loc *time.Location, weekStart time.Weekday) *Bucketer {
	if loc == nil {
		loc = time.UTC
	}
	return &Bucketer{loc: loc, weekStart: weekStart}
}

// Location returns the calendar location.
func (b *Bucketer) Location() *time.Location {
	return b.loc
}

// StartOfDay returns local midnight of the day containing t.
func (b *Bucketer) StartOfDay(t time.Time) time.Time {
	t = t.In(b.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, b.loc)
}

// EndOfDay returns the last instant of the day containing t.
func (b *Bucketer) EndOfDay(t time.Time) time.Time {
	return b.addDays(b.StartOfDay(t), 1).Add(-time.Nanosecond)
}

// StartOfWeek returns local midnight of the first day of the week containing t.
func (b *Bucketer) StartOfWeek(t time.Time) time.Time {
	day := b.StartOfDay(t)
	offset := (int(day.Weekday()) - int(b.weekStart) + 7) % 7
	return b.addDays(day, -offset)
}

// addDays moves by calendar days so DST transitions keep midnight aligned.
func (b *Bucketer) addDays(t time.Time, n int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+n, 0, 0, 0, 0, b.loc)
}

// DateRange widens start and end to whole days.
func (b *Bucketer) DateRange(start, end time.Time) Period {
	p := Period{Start: b.StartOfDay(start), End: b.EndOfDay(end)}
	p.Label = rangeLabel(p.Start, p.End)
	return p
}

// DayRange returns the last n days ending with the day containing now.
func (b *Bucketer) DayRange(now time.Time, days int) Period {
	if days < 1 {
		days = 1
	}
	return b.DateRange(b.addDays(b.StartOfDay(now), -(days-1)), now)
}

// WeekWindows returns n whole weeks, newest first, the first one being the
// week containing now.
func (b *Bucketer) WeekWindows(now time.Time, n int) []Period {
	current := b.StartOfWeek(now)
	windows := make([]Period, 0, max(n, 0))
	for i := 0; i < n; i++ {
		start := b.addDays(current, -7*i)
		windows = append(windows, b.DateRange(start, b.addDays(start, 6)))
	}
	return windows
}

// Daily returns one bucket per calendar day from start to end inclusive, empty
// days included. An end before start yields no buckets.
func (b *Bucketer) Daily(rides []EnrichedRide, start, end time.Time) []TimeBucket {
	first, last := b.StartOfDay(start), b.StartOfDay(end)
	buckets := []TimeBucket{}
	index := make(map[string]int)

	for d := first; !d.After(last); d = b.addDays(d, 1) {
		key := d.Format(dateKeyLayout)
		index[key] = len(buckets)
		buckets = append(buckets, TimeBucket{
			Key:   key,
			Label: d.Format("Jan 02"),
			Start: d,
			End:   b.addDays(d, 1).Add(-time.Nanosecond),
		})
	}

	b.fill(buckets, rides, func(r EnrichedRide) (int, bool) {
		i, ok := index[r.DateBooked.In(b.loc).Format(dateKeyLayout)]
		return i, ok
	})
	return buckets
}

// Weekly returns one bucket per calendar week touching [start, end], empty
// weeks included. Buckets span whole weeks but only rides booked inside the
// requested range are counted.
func (b *Bucketer) Weekly(rides []EnrichedRide, start, end time.Time) []TimeBucket {
	buckets := []TimeBucket{}
	if b.StartOfDay(end).Before(b.StartOfDay(start)) {
		return buckets
	}

	bounds := b.DateRange(start, end)
	index := make(map[string]int)
	for w := b.StartOfWeek(start); !w.After(bounds.End); w = b.addDays(w, 7) {
		weekEnd := b.addDays(w, 7).Add(-time.Nanosecond)
		key := w.Format(dateKeyLayout)
		index[key] = len(buckets)
		buckets = append(buckets, TimeBucket{
			Key:   key,
			Label: rangeLabel(w, weekEnd),
			Start: w,
			End:   weekEnd,
		})
	}

	b.fill(buckets, rides, func(r EnrichedRide) (int, bool) {
		if !bounds.Contains(r.DateBooked) {
			return 0, false
		}
		i, ok := index[b.StartOfWeek(r.DateBooked).Format(dateKeyLayout)]
		return i, ok
	})
	return buckets
}

// HourOfDay counts bookings per local hour. It always returns 24 buckets.
func (b *Bucketer) HourOfDay(rides []EnrichedRide) []HourBucket {
	hours := make([]HourBucket, 24)
	for h := range hours {
		hours[h] = HourBucket{Hour: h, Label: time.Date(2000, 1, 1, h, 0, 0, 0, time.UTC).Format("3 PM")}
	}
	for _, r := range rides {
		if !r.HasBookingTime() {
			continue
		}
		hours[r.DateBooked.In(b.loc).Hour()].Count++
	}
	return hours
}

func (b *Bucketer) fill(buckets []TimeBucket, rides []EnrichedRide, locate func(EnrichedRide) (int, bool)) {
	sums := make([]tally, len(buckets))
	for _, r := range rides {
		if !r.HasBookingTime() {
			continue
		}
		i, ok := locate(r)
		if !ok {
			continue
		}

		buckets[i].RideCount++
		switch r.Status {
		case StatusCompleted:
			buckets[i].CompletedCount++
			sums[i].add(r.Fare)
		case StatusCancelled:
			buckets[i].CancelledCount++
		}
	}

	for i := range buckets {
		buckets[i].TotalRevenue = cents(sums[i].total)
		buckets[i].CompanyRevenue = cents(sums[i].company)
		buckets[i].DriverRevenue = cents(sums[i].driver)
	}
}
