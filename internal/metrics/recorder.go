package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Report outcomes used as label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Recorder tracks report generation and ledger publishing. A nil *Recorder is
// valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	reportsTotal     *prometheus.CounterVec
	reportDuration   *prometheus.HistogramVec
	ridesProcessed   *prometheus.CounterVec
	ledgerPublishes  *prometheus.CounterVec
	lastRevenueTotal prometheus.Gauge
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()

	r := &Recorder{
		registry: registry,
		reportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "revenue_reports_total",
			Help: "Reports generated, by report and outcome.",
		}, []string{"report", "outcome"}),
		reportDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "revenue_report_duration_seconds",
			Help:    "Time spent loading snapshots and computing a report.",
			Buckets: prometheus.DefBuckets,
		}, []string{"report"}),
		ridesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "revenue_rides_processed_total",
			Help: "Rides read from snapshots while building reports.",
		}, []string{"report"}),
		ledgerPublishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "revenue_ledger_publishes_total",
			Help: "Ledger snapshots published to the event stream, by outcome.",
		}, []string{"outcome"}),
		lastRevenueTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "revenue_last_summary_total",
			Help: "Total completed revenue from the most recent summary report.",
		}),
	}

	registry.MustRegister(
		r.reportsTotal,
		r.reportDuration,
		r.ridesProcessed,
		r.ledgerPublishes,
		r.lastRevenueTotal,
	)

	return r
}

// ObserveReport records one report computation.
func (r *Recorder) ObserveReport(report string, started time.Time, rides int, err error) {
	if r == nil {
		return
	}

	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	r.reportsTotal.WithLabelValues(report, outcome).Inc()
	r.reportDuration.WithLabelValues(report).Observe(time.Since(started).Seconds())
	if rides > 0 {
		r.ridesProcessed.WithLabelValues(report).Add(float64(rides))
	}
}

// SetSummaryRevenue exposes the headline revenue of the latest summary.
func (r *Recorder) SetSummaryRevenue(total float64) {
	if r == nil {
		return
	}
	r.lastRevenueTotal.Set(total)
}

// ObserveLedgerPublish records one ledger publishing attempt.
func (r *Recorder) ObserveLedgerPublish(err error) {
	if r == nil {
		return
	}

	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	r.ledgerPublishes.WithLabelValues(outcome).Inc()
}

// Handler serves the recorder's registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
