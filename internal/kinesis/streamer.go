package kinesis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"revenue-service/internal/reporting"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/aws/aws-sdk-go-v2/service/kinesis/types"
	"github.com/google/uuid"
)

// maxRecordsPerBatch is the PutRecords request limit.
const maxRecordsPerBatch = 500

// KinesisAPI interface for mocking
type KinesisAPI interface {
	PutRecords(ctx context.Context, params *kinesis.PutRecordsInput, optFns ...func(*kinesis.Options)) (*kinesis.PutRecordsOutput, error)
}

type Streamer struct {
	client     KinesisAPI
	streamName string
	now        func() time.Time
}

// LedgerEvent carries one driver's settlement for a period.
type LedgerEvent struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	Timestamp      time.Time `json:"timestamp"`
	PeriodStart    time.Time `json:"period_start"`
	PeriodEnd      time.Time `json:"period_end"`
	DriverID       string    `json:"driver_id"`
	DisplayName    string    `json:"display_name"`
	Placeholder    bool      `json:"placeholder"`
	TotalRides     int       `json:"total_rides"`
	TotalEarnings  float64   `json:"total_earnings"`
	ServiceFeeOwed float64   `json:"service_fee_owed"`
	NetEarnings    float64   `json:"net_earnings"`
	FareVariance   float64   `json:"fare_variance"`
}

// EventTypeLedgerSnapshot marks a periodic ledger publication.
const EventTypeLedgerSnapshot = "ledger_snapshot"

func NewStreamer(client KinesisAPI, streamName string) *Streamer {
	return &Streamer{
		client:     client,
		streamName: streamName,
		now:        time.Now,
	}
}

// PublishLedger writes one record per ledger entry, partitioned by driver.
func (s *Streamer) PublishLedger(ctx context.Context, ledger reporting.Ledger) error {
	if s.client == nil {
		return nil // Kinesis not enabled
	}

	var period reporting.Period
	if ledger.Period != nil {
		period = *ledger.Period
	}

	records := make([]types.PutRecordsRequestEntry, 0, len(ledger.Entries))
	for _, entry := range ledger.Entries {
		event := LedgerEvent{
			EventID:        uuid.NewString(),
			EventType:      EventTypeLedgerSnapshot,
			Timestamp:      s.now().UTC(),
			PeriodStart:    period.Start,
			PeriodEnd:      period.End,
			DriverID:       entry.DriverID,
			DisplayName:    entry.DisplayName,
			Placeholder:    entry.Placeholder,
			TotalRides:     entry.TotalRides,
			TotalEarnings:  entry.TotalEarnings,
			ServiceFeeOwed: entry.ServiceFeeOwed,
			NetEarnings:    entry.NetEarnings,
			FareVariance:   entry.FareVariance,
		}

		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal ledger event: %w", err)
		}

		records = append(records, types.PutRecordsRequestEntry{
			Data:         data,
			PartitionKey: aws.String(entry.DriverID),
		})
	}

	for start := 0; start < len(records); start += maxRecordsPerBatch {
		end := min(start+maxRecordsPerBatch, len(records))
		if err := s.putBatch(ctx, records[start:end]); err != nil {
			return err
		}
	}

	slog.Debug("Streamed ledger snapshot", "stream", s.streamName, "entries", len(records))
	return nil
}

func (s *Streamer) putBatch(ctx context.Context, records []types.PutRecordsRequestEntry) error {
	out, err := s.client.PutRecords(ctx, &kinesis.PutRecordsInput{
		StreamName: aws.String(s.streamName),
		Records:    records,
	})
	if err != nil {
		return fmt.Errorf("failed to put ledger records: %w", err)
	}

	if failed := aws.ToInt32(out.FailedRecordCount); failed > 0 {
		return fmt.Errorf("failed to put %d of %d ledger records", failed, len(records))
	}
	return nil
}
