package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// dedupTTL is how long a processed-event marker blocks redelivery.
const dedupTTL = 60 * time.Second

// dedupAPI is the minimal DynamoDB interface required by Dedup.
type dedupAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Dedup records processed event ids with a conditional put, which makes
// the first-writer-wins decision atomic across concurrent instances.
// DynamoDB's physical TTL reaping can lag, so the condition also admits
// markers whose logical expiry has passed.
type Dedup struct {
	api       dedupAPI
	tableName string
	now       func() time.Time
}

func NewDedup(api dedupAPI, tableName string) (*Dedup, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Dedup{api: api, tableName: tableName, now: time.Now}, nil
}

// ShouldProcess returns true exactly once per event id within the TTL
// window; a retried delivery inside the window returns false.
func (d *Dedup) ShouldProcess(ctx context.Context, eventID string) (bool, error) {
	now := d.now()
	expires := now.Add(dedupTTL).Unix()

	_, err := d.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item: map[string]types.AttributeValue{
			"PK":        &types.AttributeValueMemberS{Value: "EVENT#" + eventID},
			"SK":        &types.AttributeValueMemberS{Value: "MARKER#"},
			"expiresAt": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expires)},
			"ttl":       &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expires)},
		},
		ConditionExpression: aws.String("attribute_not_exists(PK) OR expiresAt < :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now.Unix())},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, fmt.Errorf("repository: ShouldProcess: %w", err)
	}
	return true, nil
}
