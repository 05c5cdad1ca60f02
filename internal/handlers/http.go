package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"revenue-service/internal/export"
	"revenue-service/internal/reporting"
	"revenue-service/internal/service"
	"revenue-service/internal/storage"

	"github.com/gorilla/mux"
)

const (
	dateLayout        = "2006-01-02"
	defaultRecentDays = 7
	defaultWeeks      = 4

	// Upper bounds on requested spans; each day or week becomes a bucket or
	// ledger in the response.
	maxRangeDays = 366
	maxWeeks     = 104
)

// HTTPHandler serves the revenue reports
type HTTPHandler struct {
	reports    *service.ReportService
	statements *export.StatementGenerator
}

// NewHTTPHandler creates a new HTTP handler. Amounts in PDF statements are
// prefixed with currency.
func NewHTTPHandler(reports *service.ReportService, currency string) *HTTPHandler {
	return &HTTPHandler{
		reports:    reports,
		statements: export.NewStatementGenerator("", currency),
	}
}

// RegisterRoutes sets up HTTP routes
func (h *HTTPHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.Health).Methods("GET")
	router.HandleFunc("/fare", h.QuoteFare).Methods("GET")
	router.HandleFunc("/rides/{id}/fare", h.GetRideFare).Methods("GET")
	router.HandleFunc("/reports/dashboard", h.GetDashboard).Methods("GET")
	router.HandleFunc("/reports/summary", h.GetSummary).Methods("GET")
	router.HandleFunc("/reports/daily", h.GetDailyRevenue).Methods("GET")
	router.HandleFunc("/reports/weekly", h.GetWeeklyRevenue).Methods("GET")
	router.HandleFunc("/reports/peak-hours", h.GetPeakHours).Methods("GET")
	router.HandleFunc("/reports/routes/top", h.GetTopRoutes).Methods("GET")
	router.HandleFunc("/reports/drivers", h.GetDriverLedger).Methods("GET")
	router.HandleFunc("/reports/drivers/weekly", h.GetWeeklyDriverLedgers).Methods("GET")
	router.HandleFunc("/reports/drivers/export", h.ExportDriverLedger).Methods("GET")
	router.HandleFunc("/reports/income/weekly", h.GetWeeklyIncome).Methods("GET")
	router.HandleFunc("/reports/ratings", h.GetDriverRatings).Methods("GET")
}

// Health returns service health status
func (h *HTTPHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

// QuoteFare prices a hypothetical ride from query parameters
func (h *HTTPHandler) QuoteFare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	distance, err := floatParam(q.Get("distance_meters"))
	if err != nil {
		http.Error(w, "Invalid distance_meters", http.StatusBadRequest)
		return
	}
	special, err := floatParam(q.Get("special_amount"))
	if err != nil {
		http.Error(w, "Invalid special_amount", http.StatusBadRequest)
		return
	}

	writeJSON(w, h.reports.QuoteFare(service.FareQuote{
		DistanceMeters: distance,
		PriorityType:   q.Get("priority_type"),
		SpecialAmount:  special,
	}))
}

// GetRideFare returns the fare breakdown of a stored ride
func (h *HTTPHandler) GetRideFare(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	rideID := vars["id"]

	fare, err := h.reports.GetRideFare(r.Context(), rideID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, fare)
}

// GetDashboard returns every overview report for one period, the last 7
// days unless start/end or days is given
func (h *HTTPHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodFromQuery(r, defaultRecentDays)
	if err != nil {
		writeError(w, err)
		return
	}

	dashboard, err := h.reports.GetDashboard(r.Context(), *period)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, dashboard)
}

// GetSummary returns revenue statistics, over all time unless a range is given
func (h *HTTPHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodFromQuery(r, 0)
	if err != nil {
		writeError(w, err)
		return
	}

	summary, err := h.reports.GetSummary(r.Context(), period)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, summary)
}

// GetDailyRevenue returns one bucket per day
func (h *HTTPHandler) GetDailyRevenue(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodFromQuery(r, defaultRecentDays)
	if err != nil {
		writeError(w, err)
		return
	}

	buckets, err := h.reports.GetDailyRevenue(r.Context(), *period)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, buckets)
}

// GetWeeklyRevenue returns one bucket per week
func (h *HTTPHandler) GetWeeklyRevenue(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodFromQuery(r, defaultWeeks*7)
	if err != nil {
		writeError(w, err)
		return
	}

	buckets, err := h.reports.GetWeeklyRevenue(r.Context(), *period)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, buckets)
}

// GetPeakHours returns the booking count per hour of day
func (h *HTTPHandler) GetPeakHours(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodFromQuery(r, 0)
	if err != nil {
		writeError(w, err)
		return
	}

	hours, err := h.reports.GetPeakHours(r.Context(), period)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, hours)
}

// GetTopRoutes returns the highest-revenue routes
func (h *HTTPHandler) GetTopRoutes(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodFromQuery(r, 0)
	if err != nil {
		writeError(w, err)
		return
	}
	limit, err := intParam(r.URL.Query().Get("limit"), 0)
	if err != nil || limit < 0 {
		http.Error(w, "Invalid limit", http.StatusBadRequest)
		return
	}

	routes, err := h.reports.GetTopRoutes(r.Context(), period, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, routes)
}

// GetDriverLedger returns driver earnings and service fees owed
func (h *HTTPHandler) GetDriverLedger(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodFromQuery(r, 0)
	if err != nil {
		writeError(w, err)
		return
	}

	ledger, err := h.reports.GetDriverLedger(r.Context(), period)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, ledger)
}

// GetWeeklyDriverLedgers returns one driver ledger per week, newest first
func (h *HTTPHandler) GetWeeklyDriverLedgers(w http.ResponseWriter, r *http.Request) {
	ledgers, err := h.weeklyLedgers(r)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, ledgers)
}

// ExportDriverLedger downloads the driver ledger as CSV or PDF
func (h *HTTPHandler) ExportDriverLedger(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodFromQuery(r, 0)
	if err != nil {
		writeError(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "pdf" {
		http.Error(w, "Invalid format. Must be 'csv' or 'pdf'", http.StatusBadRequest)
		return
	}

	ledger, err := h.reports.GetDriverLedger(r.Context(), period)
	if err != nil {
		writeError(w, err)
		return
	}

	filename := "driver-ledger-" + h.reports.Now().Format(dateLayout)
	switch format {
	case "pdf":
		doc, err := h.statements.LedgerStatement(ledger, h.reports.Now())
		if err != nil {
			writeError(w, err)
			return
		}
		attachment(w, "application/pdf", filename+".pdf")
		w.Write(doc)
	default:
		attachment(w, "text/csv", filename+".csv")
		if err := export.WriteLedgerCSV(w, ledger); err != nil {
			slog.Error("Failed to write ledger CSV", "error", err)
		}
	}
}

// GetWeeklyIncome returns per-week ledger totals as JSON or CSV
func (h *HTTPHandler) GetWeeklyIncome(w http.ResponseWriter, r *http.Request) {
	ledgers, err := h.weeklyLedgers(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		attachment(w, "text/csv", "weekly-income-"+h.reports.Now().Format(dateLayout)+".csv")
		if err := export.WriteWeeklyIncomeCSV(w, ledgers); err != nil {
			slog.Error("Failed to write weekly income CSV", "error", err)
		}
		return
	}

	type weeklyIncome struct {
		Period reporting.Period       `json:"period"`
		Totals reporting.LedgerTotals `json:"totals"`
	}
	income := make([]weeklyIncome, 0, len(ledgers))
	for _, l := range ledgers {
		income = append(income, weeklyIncome{Period: *l.Period, Totals: l.Totals})
	}
	writeJSON(w, income)
}

// GetDriverRatings returns average passenger ratings per driver
func (h *HTTPHandler) GetDriverRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.reports.GetDriverRatings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, ratings)
}

func (h *HTTPHandler) weeklyLedgers(r *http.Request) ([]reporting.Ledger, error) {
	weeks, err := intParam(r.URL.Query().Get("weeks"), defaultWeeks)
	if err != nil {
		return nil, fmt.Errorf("%w: weeks must be a number", service.ErrInvalidRange)
	}
	if weeks > maxWeeks {
		return nil, fmt.Errorf("%w: at most %d weeks", service.ErrInvalidRange, maxWeeks)
	}
	return h.reports.GetWeeklyDriverLedgers(r.Context(), weeks)
}

// periodFromQuery reads start and end (YYYY-MM-DD) or days. Without either it
// falls back to the last defaultDays days, or to all time (nil) when
// defaultDays is 0.
func (h *HTTPHandler) periodFromQuery(r *http.Request, defaultDays int) (*reporting.Period, error) {
	q := r.URL.Query()
	startParam, endParam, daysParam := q.Get("start"), q.Get("end"), q.Get("days")

	switch {
	case startParam != "" || endParam != "":
		if startParam == "" || endParam == "" {
			return nil, fmt.Errorf("%w: start and end must be given together", service.ErrInvalidRange)
		}
		loc := h.reports.Calendar().Location()
		start, err := time.ParseInLocation(dateLayout, startParam, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: start must be YYYY-MM-DD", service.ErrInvalidRange)
		}
		end, err := time.ParseInLocation(dateLayout, endParam, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: end must be YYYY-MM-DD", service.ErrInvalidRange)
		}
		if end.After(start.AddDate(0, 0, maxRangeDays-1)) {
			return nil, fmt.Errorf("%w: range spans more than %d days", service.ErrInvalidRange, maxRangeDays)
		}
		period := h.reports.DateRange(start, end)
		return &period, nil
	case daysParam != "":
		days, err := strconv.Atoi(daysParam)
		if err != nil || days < 1 || days > maxRangeDays {
			return nil, fmt.Errorf("%w: days must be between 1 and %d", service.ErrInvalidRange, maxRangeDays)
		}
		period := h.reports.LastDays(days)
		return &period, nil
	case defaultDays > 0:
		period := h.reports.LastDays(defaultDays)
		return &period, nil
	default:
		return nil, nil
	}
}

func floatParam(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func intParam(s string, fallback int) (int, error) {
	if s == "" {
		return fallback, nil
	}
	return strconv.Atoi(s)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, storage.ErrRideNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}
