package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"revenue-service/internal/metrics"
	"revenue-service/internal/reporting"
	"revenue-service/internal/roster"
	"revenue-service/internal/storage"

	"golang.org/x/sync/errgroup"
)

// Common errors
var (
	ErrInvalidRange = errors.New("invalid date range")
)

// Clock supplies the current instant for relative ranges.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// Settings configures report computation.
type Settings struct {
	Pricing        *reporting.PricingConfig
	Location       *time.Location
	WeekStart      time.Weekday
	TopRoutesLimit int
}

// ReportService loads ride snapshots and runs the reporting core over them.
// Every call reads a fresh snapshot; nothing is cached between requests.
type ReportService struct {
	storage    storage.SnapshotReader
	directory  roster.Directory
	calculator *reporting.FareCalculator
	bucketer   *reporting.Bucketer
	clock      Clock
	metrics    *metrics.Recorder
	topRoutes  int
}

// NewReportService creates a new report service
func NewReportService(store storage.SnapshotReader, settings Settings) *ReportService {
	return &ReportService{
		storage:    store,
		calculator: reporting.NewFareCalculator(settings.Pricing),
		bucketer:   reporting.NewBucketer(settings.Location, settings.WeekStart),
		clock:      ClockFunc(time.Now),
		topRoutes:  settings.TopRoutesLimit,
	}
}

// SetRosterDirectory resolves driver names from an external directory
// instead of the snapshot store.
func (s *ReportService) SetRosterDirectory(directory roster.Directory) {
	s.directory = directory
}

// SetMetrics enables report instrumentation.
func (s *ReportService) SetMetrics(recorder *metrics.Recorder) {
	s.metrics = recorder
}

// SetClock replaces the wall clock.
func (s *ReportService) SetClock(clock Clock) {
	s.clock = clock
}

// Now returns the service's current instant.
func (s *ReportService) Now() time.Time {
	return s.clock.Now()
}

// Calendar exposes the bucketer so callers can build periods in the report
// location.
func (s *ReportService) Calendar() *reporting.Bucketer {
	return s.bucketer
}

// LastDays returns the trailing range of n days ending today.
func (s *ReportService) LastDays(days int) reporting.Period {
	return s.bucketer.DayRange(s.clock.Now(), days)
}

// DateRange widens two dates to whole days in the report location.
func (s *ReportService) DateRange(start, end time.Time) reporting.Period {
	return s.bucketer.DateRange(start, end)
}

type snapshotParts uint8

const (
	withRoster snapshotParts = 1 << iota
	withRatings
	// completedOnly loads just Completed rides, for views that ignore the rest.
	completedOnly
)

type snapshot struct {
	rides   []reporting.EnrichedRide
	roster  []reporting.Driver
	ratings []reporting.RatingRecord
}

// load fetches the requested collections concurrently and prices every ride
// once all of them are in.
func (s *ReportService) load(ctx context.Context, parts snapshotParts) (*snapshot, error) {
	var (
		rides   []reporting.RideRecord
		drivers []reporting.DriverRecord
		ratings []reporting.RatingRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if parts&completedOnly != 0 {
			rides, err = s.storage.GetRidesByStatus(gctx, string(reporting.StatusCompleted))
		} else {
			rides, err = s.storage.GetAllRides(gctx)
		}
		if err != nil {
			return fmt.Errorf("failed to load rides: %w", err)
		}
		return nil
	})
	if parts&withRoster != 0 {
		g.Go(func() error {
			var err error
			drivers, err = s.loadRoster(gctx)
			return err
		})
	}
	if parts&withRatings != 0 {
		g.Go(func() error {
			var err error
			ratings, err = s.storage.GetAllRatings(gctx)
			if err != nil {
				return fmt.Errorf("failed to load ratings: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &snapshot{
		rides:   s.calculator.Enrich(reporting.NormalizeRides(rides)),
		roster:  reporting.NormalizeRoster(drivers),
		ratings: ratings,
	}, nil
}

// loadRoster prefers the external directory and falls back to the store when
// the directory is unreachable.
func (s *ReportService) loadRoster(ctx context.Context) ([]reporting.DriverRecord, error) {
	if s.directory != nil {
		drivers, err := s.directory.GetAllDrivers(ctx)
		if err == nil {
			return drivers, nil
		}
		slog.Warn("Driver directory unavailable, using stored roster", "error", err)
	}

	drivers, err := s.storage.GetAllDrivers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load drivers: %w", err)
	}
	return drivers, nil
}

func (s *ReportService) observe(report string, started time.Time, snap *snapshot, err error) {
	rides := 0
	if snap != nil {
		rides = len(snap.rides)
	}
	s.metrics.ObserveReport(report, started, rides, err)
	if err != nil {
		slog.Error("Failed to build report", "report", report, "error", err)
	}
}

// FareQuote describes a hypothetical ride to price.
type FareQuote struct {
	DistanceMeters float64 `json:"distance_meters"`
	PriorityType   string  `json:"priority_type"`
	SpecialAmount  float64 `json:"special_amount"`
}

// QuoteFare prices a ride that has not been booked.
func (s *ReportService) QuoteFare(q FareQuote) reporting.FareBreakdown {
	return s.calculator.Calculate(reporting.NormalizeRide(reporting.RideRecord{
		DistanceMeters: q.DistanceMeters,
		PriorityType:   q.PriorityType,
		SpecialAmount:  q.SpecialAmount,
	}))
}

// RideFare reconciles a stored ride's fare against the computed one.
type RideFare struct {
	Ride     reporting.Ride          `json:"ride"`
	Driver   *reporting.Driver       `json:"driver,omitempty"`
	Fare     reporting.FareBreakdown `json:"fare"`
	Variance *float64                `json:"variance,omitempty"`
}

// GetRideFare prices a stored ride.
func (s *ReportService) GetRideFare(ctx context.Context, rideID string) (*RideFare, error) {
	rec, err := s.storage.GetRide(ctx, rideID)
	if err != nil {
		return nil, err
	}

	ride := reporting.NormalizeRide(*rec)
	result := &RideFare{Ride: ride, Fare: s.calculator.Calculate(ride)}
	if ride.PersistedFare != nil {
		v := reporting.Round2(*ride.PersistedFare - result.Fare.TotalFare)
		result.Variance = &v
	}
	if ride.AssignedDriverID != "" {
		driver, err := s.resolveDriver(ctx, ride.AssignedDriverID)
		if err != nil {
			return nil, err
		}
		result.Driver = &driver
	}
	return result, nil
}

// resolveDriver looks one driver up, preferring the directory. Unknown ids get
// the ledger placeholder name.
func (s *ReportService) resolveDriver(ctx context.Context, driverID string) (reporting.Driver, error) {
	placeholder := reporting.Driver{ID: driverID, Name: reporting.PlaceholderName(driverID)}

	if s.directory != nil {
		rec, err := s.directory.GetDriver(ctx, driverID)
		switch {
		case err == nil:
			driver := reporting.NormalizeDriver(*rec)
			driver.ID = driverID
			return driver, nil
		case errors.Is(err, roster.ErrDriverNotFound):
			return placeholder, nil
		default:
			slog.Warn("Driver directory unavailable, using stored roster", "driver_id", driverID, "error", err)
		}
	}

	drivers, err := s.storage.GetAllDrivers(ctx)
	if err != nil {
		return reporting.Driver{}, fmt.Errorf("failed to load drivers: %w", err)
	}
	for _, d := range reporting.NormalizeRoster(drivers) {
		if d.ID == driverID {
			return d, nil
		}
	}
	return placeholder, nil
}

// ridesIn returns the snapshot rides, restricted to period when one is given.
func (snap *snapshot) ridesIn(period *reporting.Period) []reporting.EnrichedRide {
	if period == nil {
		return snap.rides
	}
	return reporting.FilterRides(snap.rides, *period)
}

// GetSummary aggregates rides booked in period, or every ride when period is
// nil.
func (s *ReportService) GetSummary(ctx context.Context, period *reporting.Period) (summary reporting.Summary, err error) {
	started := time.Now()
	snap, err := s.load(ctx, 0)
	defer func() { s.observe("summary", started, snap, err) }()
	if err != nil {
		return reporting.Summary{}, err
	}

	summary = reporting.Summarize(snap.ridesIn(period))
	s.metrics.SetSummaryRevenue(summary.TotalRevenue)
	return summary, nil
}

// GetDailyRevenue returns one bucket per day of period.
func (s *ReportService) GetDailyRevenue(ctx context.Context, period reporting.Period) (buckets []reporting.TimeBucket, err error) {
	started := time.Now()
	snap, err := s.load(ctx, 0)
	defer func() { s.observe("daily", started, snap, err) }()
	if err != nil {
		return nil, err
	}

	return s.bucketer.Daily(snap.rides, period.Start, period.End), nil
}

// GetWeeklyRevenue returns one bucket per calendar week touching period.
func (s *ReportService) GetWeeklyRevenue(ctx context.Context, period reporting.Period) (buckets []reporting.TimeBucket, err error) {
	started := time.Now()
	snap, err := s.load(ctx, 0)
	defer func() { s.observe("weekly", started, snap, err) }()
	if err != nil {
		return nil, err
	}

	return s.bucketer.Weekly(snap.rides, period.Start, period.End), nil
}

// GetPeakHours returns the 24-slot booking histogram.
func (s *ReportService) GetPeakHours(ctx context.Context, period *reporting.Period) (hours []reporting.HourBucket, err error) {
	started := time.Now()
	snap, err := s.load(ctx, 0)
	defer func() { s.observe("peak_hours", started, snap, err) }()
	if err != nil {
		return nil, err
	}

	return s.bucketer.HourOfDay(snap.ridesIn(period)), nil
}

// GetTopRoutes ranks routes by completed revenue. A non-positive limit uses
// the configured default.
func (s *ReportService) GetTopRoutes(ctx context.Context, period *reporting.Period, limit int) (routes []reporting.RouteAggregate, err error) {
	started := time.Now()
	snap, err := s.load(ctx, 0)
	defer func() { s.observe("top_routes", started, snap, err) }()
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = s.topRoutes
	}
	return reporting.TopRoutes(snap.ridesIn(period), limit), nil
}

// GetDriverLedger settles drivers over period, or over all time when period
// is nil.
func (s *ReportService) GetDriverLedger(ctx context.Context, period *reporting.Period) (ledger reporting.Ledger, err error) {
	started := time.Now()
	snap, err := s.load(ctx, withRoster|completedOnly)
	defer func() { s.observe("driver_ledger", started, snap, err) }()
	if err != nil {
		return reporting.Ledger{}, err
	}

	if period == nil {
		return reporting.AllTimeLedger(snap.rides, snap.roster), nil
	}
	return reporting.PeriodLedger(snap.rides, snap.roster, *period), nil
}

// GetWeeklyDriverLedgers settles each of the last n weeks independently,
// newest first.
func (s *ReportService) GetWeeklyDriverLedgers(ctx context.Context, weeks int) (ledgers []reporting.Ledger, err error) {
	if weeks < 1 {
		return nil, fmt.Errorf("%w: weeks must be positive", ErrInvalidRange)
	}

	started := time.Now()
	snap, err := s.load(ctx, withRoster|completedOnly)
	defer func() { s.observe("weekly_driver_ledgers", started, snap, err) }()
	if err != nil {
		return nil, err
	}

	windows := s.bucketer.WeekWindows(s.clock.Now(), weeks)
	return reporting.WeeklyLedgers(snap.rides, snap.roster, windows), nil
}

// GetDriverRatings averages passenger ratings per driver.
func (s *ReportService) GetDriverRatings(ctx context.Context) (ratings []reporting.DriverRating, err error) {
	started := time.Now()
	snap, err := s.load(ctx, withRoster|withRatings)
	defer func() { s.observe("driver_ratings", started, snap, err) }()
	if err != nil {
		return nil, err
	}

	return reporting.AverageRatings(snap.ratings, snap.roster), nil
}

// Dashboard bundles the reports shown on the overview page, all computed
// from one snapshot.
type Dashboard struct {
	Period    reporting.Period           `json:"period"`
	Summary   reporting.Summary          `json:"summary"`
	Daily     []reporting.TimeBucket     `json:"daily"`
	PeakHours []reporting.HourBucket     `json:"peak_hours"`
	TopRoutes []reporting.RouteAggregate `json:"top_routes"`
	Drivers   reporting.Ledger           `json:"drivers"`
	AllTime   reporting.Summary          `json:"all_time"`
}

// GetDashboard computes every overview report for period.
func (s *ReportService) GetDashboard(ctx context.Context, period reporting.Period) (dash *Dashboard, err error) {
	started := time.Now()
	snap, err := s.load(ctx, withRoster)
	defer func() { s.observe("dashboard", started, snap, err) }()
	if err != nil {
		return nil, err
	}

	inPeriod := reporting.FilterRides(snap.rides, period)

	return &Dashboard{
		Period:    period,
		Summary:   reporting.Summarize(inPeriod),
		Daily:     s.bucketer.Daily(snap.rides, period.Start, period.End),
		PeakHours: s.bucketer.HourOfDay(inPeriod),
		TopRoutes: reporting.TopRoutes(inPeriod, s.topRoutes),
		Drivers:   reporting.PeriodLedger(snap.rides, snap.roster, period),
		AllTime:   reporting.Summarize(snap.rides),
	}, nil
}
