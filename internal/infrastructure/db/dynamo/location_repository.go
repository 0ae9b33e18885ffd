package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"

	"github.com/99minutos/dropoff-location/internal/core/domain"
)

// putItemAPI is the subset of *dynamodb.Client the repository uses.
type putItemAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// LocationRepository appends positions to a DynamoDB table keyed by a
// generated UUID.
type LocationRepository struct {
	client putItemAPI
	table  string
	newID  func() string
	now    func() time.Time
}

func NewLocationRepository(client putItemAPI, table string) *LocationRepository {
	return &LocationRepository{
		client: client,
		table:  table,
		newID:  uuid.NewString,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type locationItem struct {
	ID         string  `dynamodbav:"id"`
	Latitude   float64 `dynamodbav:"latitude"`
	Longitude  float64 `dynamodbav:"longitude"`
	Accuracy   float64 `dynamodbav:"accuracy"`
	Timestamp  int64   `dynamodbav:"timestamp"`
	ReceivedAt string  `dynamodbav:"received_at"`
}

// Append stores pos under a new key. The conditional put guarantees a key is
// never overwritten.
func (r *LocationRepository) Append(ctx context.Context, pos domain.Position) (string, error) {
	if r.client == nil {
		return "", errors.New("dynamodb client not initialized")
	}

	item := locationItem{
		ID:         r.newID(),
		Latitude:   pos.Latitude,
		Longitude:  pos.Longitude,
		Accuracy:   pos.Accuracy,
		Timestamp:  pos.Timestamp,
		ReceivedAt: r.now().Format(time.RFC3339Nano),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return "", fmt.Errorf("marshal location: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return "", fmt.Errorf("put location: %w", err)
	}
	return item.ID, nil
}
