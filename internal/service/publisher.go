package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"revenue-service/internal/metrics"
	"revenue-service/internal/reporting"
)

// LedgerStreamer ships a ledger to a downstream consumer.
type LedgerStreamer interface {
	PublishLedger(ctx context.Context, ledger reporting.Ledger) error
}

// LedgerPublisher periodically publishes the current week's driver ledger
type LedgerPublisher struct {
	reports  *ReportService
	streamer LedgerStreamer
	metrics  *metrics.Recorder
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewLedgerPublisher creates a new ledger publisher
func NewLedgerPublisher(reports *ReportService, streamer LedgerStreamer, interval time.Duration) *LedgerPublisher {
	return &LedgerPublisher{
		reports:  reports,
		streamer: streamer,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// SetMetrics enables publish instrumentation.
func (lp *LedgerPublisher) SetMetrics(recorder *metrics.Recorder) {
	lp.metrics = recorder
}

// Start begins publishing in the background
func (lp *LedgerPublisher) Start() {
	go lp.publishLoop()
	slog.Info("Ledger publisher started", "interval", lp.interval)
}

// Stop stops publishing
func (lp *LedgerPublisher) Stop() {
	lp.stopOnce.Do(func() {
		close(lp.stopChan)
		slog.Info("Ledger publisher stopped")
	})
}

func (lp *LedgerPublisher) publishLoop() {
	ticker := time.NewTicker(lp.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), lp.interval)
			if err := lp.PublishCurrentWeek(ctx); err != nil {
				slog.Error("Error publishing driver ledger", "error", err)
			}
			cancel()
		case <-lp.stopChan:
			return
		}
	}
}

// PublishCurrentWeek computes the ledger of the week in progress and streams it.
func (lp *LedgerPublisher) PublishCurrentWeek(ctx context.Context) error {
	ledgers, err := lp.reports.GetWeeklyDriverLedgers(ctx, 1)
	if err != nil {
		lp.metrics.ObserveLedgerPublish(err)
		return err
	}

	err = lp.streamer.PublishLedger(ctx, ledgers[0])
	lp.metrics.ObserveLedgerPublish(err)
	if err != nil {
		return err
	}

	slog.Info("Published driver ledger",
		"period", ledgers[0].Period.Label,
		"drivers", len(ledgers[0].Entries),
		"total_service_fee", ledgers[0].Totals.TotalServiceFee)
	return nil
}
