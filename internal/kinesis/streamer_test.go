package kinesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"revenue-service/internal/reporting"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockKinesisClient mocks the Kinesis client
type MockKinesisClient struct {
	mock.Mock
}

func (m *MockKinesisClient) PutRecords(ctx context.Context, params *kinesis.PutRecordsInput, optFns ...func(*kinesis.Options)) (*kinesis.PutRecordsOutput, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*kinesis.PutRecordsOutput), args.Error(1)
}

func testLedger(entries int) reporting.Ledger {
	period := reporting.Period{
		Start: time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 13, 23, 59, 59, 0, time.UTC),
	}
	ledger := reporting.Ledger{Period: &period}
	for i := 0; i < entries; i++ {
		ledger.Entries = append(ledger.Entries, reporting.LedgerEntry{
			DriverID:       fmt.Sprintf("driver-%d", i),
			DisplayName:    "juan",
			TotalRides:     2,
			TotalEarnings:  41.45,
			ServiceFeeOwed: 3.45,
			NetEarnings:    38.00,
		})
	}
	return ledger
}

func TestStreamer_PublishLedger(t *testing.T) {
	mockClient := new(MockKinesisClient)
	streamer := NewStreamer(mockClient, "ledger-stream")
	streamer.now = func() time.Time { return time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC) }

	mockClient.On("PutRecords", mock.Anything, mock.MatchedBy(func(input *kinesis.PutRecordsInput) bool {
		if *input.StreamName != "ledger-stream" || len(input.Records) != 2 {
			return false
		}
		var event LedgerEvent
		if err := json.Unmarshal(input.Records[0].Data, &event); err != nil {
			return false
		}
		return event.DriverID == "driver-0" &&
			event.EventType == EventTypeLedgerSnapshot &&
			event.EventID != "" &&
			event.ServiceFeeOwed == 3.45 &&
			*input.Records[0].PartitionKey == "driver-0"
	})).Return(&kinesis.PutRecordsOutput{FailedRecordCount: aws.Int32(0)}, nil)

	err := streamer.PublishLedger(context.Background(), testLedger(2))

	require.NoError(t, err)
	mockClient.AssertExpectations(t)
}

func TestStreamer_PublishLedger_Batches(t *testing.T) {
	mockClient := new(MockKinesisClient)
	streamer := NewStreamer(mockClient, "ledger-stream")

	mockClient.On("PutRecords", mock.Anything, mock.MatchedBy(func(input *kinesis.PutRecordsInput) bool {
		return len(input.Records) == maxRecordsPerBatch
	})).Return(&kinesis.PutRecordsOutput{}, nil).Once()
	mockClient.On("PutRecords", mock.Anything, mock.MatchedBy(func(input *kinesis.PutRecordsInput) bool {
		return len(input.Records) == 20
	})).Return(&kinesis.PutRecordsOutput{}, nil).Once()

	err := streamer.PublishLedger(context.Background(), testLedger(520))

	require.NoError(t, err)
	mockClient.AssertNumberOfCalls(t, "PutRecords", 2)
}

func TestStreamer_PublishLedger_PartialFailure(t *testing.T) {
	mockClient := new(MockKinesisClient)
	streamer := NewStreamer(mockClient, "ledger-stream")

	mockClient.On("PutRecords", mock.Anything, mock.Anything).
		Return(&kinesis.PutRecordsOutput{FailedRecordCount: aws.Int32(1)}, nil)

	err := streamer.PublishLedger(context.Background(), testLedger(3))

	assert.ErrorContains(t, err, "1 of 3")
}

func TestStreamer_PublishLedger_Error(t *testing.T) {
	mockClient := new(MockKinesisClient)
	streamer := NewStreamer(mockClient, "ledger-stream")

	mockClient.On("PutRecords", mock.Anything, mock.Anything).
		Return((*kinesis.PutRecordsOutput)(nil), errors.New("stream not found"))

	err := streamer.PublishLedger(context.Background(), testLedger(1))

	assert.ErrorContains(t, err, "failed to put ledger records")
}

func TestStreamer_EmptyLedgerSendsNothing(t *testing.T) {
	mockClient := new(MockKinesisClient)
	streamer := NewStreamer(mockClient, "ledger-stream")

	err := streamer.PublishLedger(context.Background(), reporting.Ledger{})

	assert.NoError(t, err)
	mockClient.AssertNotCalled(t, "PutRecords", mock.Anything, mock.Anything)
}
