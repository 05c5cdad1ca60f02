package storage

import (
	"context"
	"fmt"

	"revenue-service/internal/reporting"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDBAPI interface for mocking
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoDBTables names the tables holding each collection.
type DynamoDBTables struct {
	Rides   string
	Drivers string
	Ratings string
}

// StatusIndex is the global secondary index on the rides table keyed by status.
const StatusIndex = "status-index"

type DynamoDBStorage struct {
	client DynamoDBAPI
	tables DynamoDBTables
}

func NewDynamoDBStorage(client DynamoDBAPI, tables DynamoDBTables) *DynamoDBStorage {
	return &DynamoDBStorage{
		client: client,
		tables: tables,
	}
}

func (d *DynamoDBStorage) GetRide(ctx context.Context, rideID string) (*reporting.RideRecord, error) {
	result, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tables.Rides),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: rideID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("ride %s: %w", rideID, ErrRideNotFound)
	}

	var ride reporting.RideRecord
	if err := attributevalue.UnmarshalMap(result.Item, &ride); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ride: %w", err)
	}

	return &ride, nil
}

func (d *DynamoDBStorage) GetAllRides(ctx context.Context) ([]reporting.RideRecord, error) {
	items, err := d.scanAll(ctx, d.tables.Rides)
	if err != nil {
		return nil, fmt.Errorf("failed to scan rides: %w", err)
	}

	rides := []reporting.RideRecord{}
	if err := attributevalue.UnmarshalListOfMaps(items, &rides); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rides: %w", err)
	}

	return rides, nil
}

func (d *DynamoDBStorage) GetRidesByStatus(ctx context.Context, status string) ([]reporting.RideRecord, error) {
	var items []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue

	for {
		result, err := d.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(d.tables.Rides),
			IndexName:              aws.String(StatusIndex),
			KeyConditionExpression: aws.String("#status = :status"),
			ExpressionAttributeNames: map[string]string{
				"#status": "status",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":status": &types.AttributeValueMemberS{Value: status},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query rides by status: %w", err)
		}

		items = append(items, result.Items...)
		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	rides := []reporting.RideRecord{}
	if err := attributevalue.UnmarshalListOfMaps(items, &rides); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rides: %w", err)
	}

	return rides, nil
}

func (d *DynamoDBStorage) GetAllDrivers(ctx context.Context) ([]reporting.DriverRecord, error) {
	items, err := d.scanAll(ctx, d.tables.Drivers)
	if err != nil {
		return nil, fmt.Errorf("failed to scan drivers: %w", err)
	}

	drivers := []reporting.DriverRecord{}
	if err := attributevalue.UnmarshalListOfMaps(items, &drivers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal drivers: %w", err)
	}

	return drivers, nil
}

func (d *DynamoDBStorage) GetAllRatings(ctx context.Context) ([]reporting.RatingRecord, error) {
	if d.tables.Ratings == "" {
		return []reporting.RatingRecord{}, nil
	}

	items, err := d.scanAll(ctx, d.tables.Ratings)
	if err != nil {
		return nil, fmt.Errorf("failed to scan ratings: %w", err)
	}

	ratings := []reporting.RatingRecord{}
	if err := attributevalue.UnmarshalListOfMaps(items, &ratings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ratings: %w", err)
	}

	return ratings, nil
}

// scanAll reads every page of a table.
func (d *DynamoDBStorage) scanAll(ctx context.Context, table string) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue

	for {
		result, err := d.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(table),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}

		items = append(items, result.Items...)
		if len(result.LastEvaluatedKey) == 0 {
			return items, nil
		}
		startKey = result.LastEvaluatedKey
	}
}
