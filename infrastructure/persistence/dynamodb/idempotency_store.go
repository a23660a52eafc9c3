// Package dynamodb deduplicates webhook deliveries with conditional writes.
package dynamodb

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	pkgerrors "plotbot/pkg/errors"
)

// PutItemAPI is the subset of the DynamoDB client the store uses.
type PutItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// idempotencyItem is one claimed webhook event. TTL is the table's
// time-to-live attribute, in Unix seconds.
type idempotencyItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	CreatedAt string `dynamodbav:"CreatedAt"`
	TTL       int64  `dynamodbav:"TTL"`
}

// IdempotencyStore implements ports.IdempotencyStore on DynamoDB.
type IdempotencyStore struct {
	client    PutItemAPI
	tableName string
	ttl       time.Duration
	now       func() time.Time
}

// NewIdempotencyStore creates a new DynamoDB-based idempotency store
func NewIdempotencyStore(client PutItemAPI, tableName string, ttl time.Duration) *IdempotencyStore {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{
		client:    client,
		tableName: tableName,
		ttl:       ttl,
		now:       time.Now,
	}
}

// Claim writes the key unless a live item already holds it. DynamoDB removes
// expired items lazily, so an item whose TTL has passed counts as absent.
func (s *IdempotencyStore) Claim(ctx context.Context, key string) (bool, error) {
	now := s.now().UTC()

	item, err := attributevalue.MarshalMap(idempotencyItem{
		PK:        "EVENT#" + key,
		SK:        "CLAIM",
		CreatedAt: now.Format(time.RFC3339),
		TTL:       now.Add(s.ttl).Unix(),
	})
	if err != nil {
		return false, pkgerrors.Wrap(err, "failed to marshal idempotency item")
	}

	cond := expression.Or(
		expression.AttributeNotExists(expression.Name("PK")),
		expression.Name("TTL").LessThan(expression.Value(now.Unix())),
	)
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return false, pkgerrors.Wrap(err, "failed to build idempotency condition")
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(s.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, pkgerrors.NewStorageError("dynamodb PutItem", err)
	}
	return true, nil
}
