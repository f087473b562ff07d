package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/otp-notify-api/internal/domain"
)

// MessageLogRepo provides typed DynamoDB operations for the dispatch audit
// log. Writes happen asynchronously off the request path; a lost entry is a
// logged warning, never a failed dispatch.
type MessageLogRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewMessageLogRepo(client *dynamodb.Client, tableName string) *MessageLogRepo {
	return &MessageLogRepo{client: client, tableName: tableName}
}

func (r *MessageLogRepo) Put(ctx context.Context, entry *domain.MessageLog) error {
	item, err := attributevalue.MarshalMap(entry)
	if err != nil {
		return fmt.Errorf("marshal message log entry: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListByPhone queries the phone-created_at GSI, newest first.
func (r *MessageLogRepo) ListByPhone(ctx context.Context, phone string, limit int32) ([]domain.MessageLog, error) {
	if limit <= 0 {
		limit = 50
	}
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("phone-created_at-index"),
		KeyConditionExpression: aws.String("phone = :p"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":p": &types.AttributeValueMemberS{Value: phone},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	})
	if err != nil {
		return nil, err
	}
	var entries []domain.MessageLog
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
