package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"innovators-bot/internal/domain"
)

const (
	skSession = "SESSION#"

	// sessionTTL is the sliding inactivity window; every write pushes
	// expiry out again.
	sessionTTL = 30 * time.Minute
)

// sessionAPI is the minimal DynamoDB interface required by Sessions.
// Defined here for testability.
type sessionAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// sessionItem is the stored row shape. expiresAt is the contract-level
// sliding expiry checked on read; ttl lets DynamoDB physically reap the
// row later.
type sessionItem struct {
	PK        string          `dynamodbav:"PK"`
	SK        string          `dynamodbav:"SK"`
	Session   *domain.Session `dynamodbav:"session"`
	ExpiresAt int64           `dynamodbav:"expiresAt"`
	TTL       int64           `dynamodbav:"ttl"`
}

// Sessions is the durable Session Store over a DynamoDB table.
type Sessions struct {
	api       sessionAPI
	tableName string
	now       func() time.Time
}

// NewSessions creates the store. The clock is injectable for TTL tests.
func NewSessions(api sessionAPI, tableName string) (*Sessions, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Sessions{api: api, tableName: tableName, now: time.Now}, nil
}

func userPK(userID string) string {
	return "USER#" + userID
}

// Get returns the user's session, or (nil, nil) when none exists or the
// stored one has passed its expiry.
func (s *Sessions) Get(ctx context.Context, userID string) (*domain.Session, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: skSession},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("repository: Get session: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return nil, nil
	}

	var item sessionItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("repository: Get session unmarshal: %w", err)
	}
	if item.Session == nil || s.now().Unix() >= item.ExpiresAt {
		return nil, nil
	}
	return item.Session, nil
}

// Put creates or replaces the user's session and resets the sliding TTL.
func (s *Sessions) Put(ctx context.Context, userID string, sess *domain.Session) error {
	if err := sess.Validate(); err != nil {
		return fmt.Errorf("repository: Put session: %w", err)
	}

	expires := s.now().Add(sessionTTL).Unix()
	item, err := attributevalue.MarshalMap(sessionItem{
		PK:        userPK(userID),
		SK:        skSession,
		Session:   sess,
		ExpiresAt: expires,
		TTL:       expires,
	})
	if err != nil {
		return fmt.Errorf("repository: Put session marshal: %w", err)
	}

	if _, err := s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("repository: Put session: %w", err)
	}
	return nil
}

// Delete removes the user's session unconditionally.
func (s *Sessions) Delete(ctx context.Context, userID string) error {
	if _, err := s.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: skSession},
		},
	}); err != nil {
		return fmt.Errorf("repository: Delete session: %w", err)
	}
	return nil
}

// AppendChatHistory appends turns to a chat session's history with a
// server-side list append, so two near-simultaneous writers can't stomp
// each other's turns. Appending to a missing or non-chat session is a
// no-op, mirroring update-on-absent semantics.
func (s *Sessions) AppendChatHistory(ctx context.Context, userID string, msgs ...domain.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	turns, err := attributevalue.MarshalList(msgs)
	if err != nil {
		return fmt.Errorf("repository: AppendChatHistory marshal: %w", err)
	}

	expires := s.now().Add(sessionTTL).Unix()
	_, err = s.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: skSession},
		},
		UpdateExpression: aws.String(
			"SET #s.#c.#h = list_append(if_not_exists(#s.#c.#h, :empty), :turns), expiresAt = :exp, #ttl = :exp"),
		ConditionExpression: aws.String("attribute_exists(PK) AND #s.#m = :chat"),
		ExpressionAttributeNames: map[string]string{
			"#s":   "session",
			"#c":   "chat",
			"#h":   "history",
			"#m":   "mode",
			"#ttl": "ttl",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":turns": &types.AttributeValueMemberL{Value: turns},
			":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
			":chat":  &types.AttributeValueMemberS{Value: string(domain.ModeChat)},
			":exp":   &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expires)},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil
		}
		return fmt.Errorf("repository: AppendChatHistory: %w", err)
	}
	return nil
}
