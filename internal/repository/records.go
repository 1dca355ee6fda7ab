package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"innovators-bot/internal/domain"
)

const (
	pkSubmission = "SUBMISSION"
	pkHelpReq    = "HELPREQ"
	pkWorkflow   = "WORKFLOW"

	skCounter   = "COUNTER#"
	skPrefixRow = "ROW#"
	skPrefixLog = "LOG#"
	skPrefixTm  = "TEAM#"

	// approvedCacheTTL bounds how often the approved list is re-read;
	// prompts and the hall of fame tolerate five minutes of staleness.
	approvedCacheTTL = 5 * time.Minute
)

// recordsAPI is the minimal DynamoDB interface required by Records.
type recordsAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// Records stores submissions, help-request logs, and the workflow
// catalog in one DynamoDB table.
type Records struct {
	api       recordsAPI
	tableName string
	now       func() time.Time

	cacheMu     sync.Mutex
	approved    []domain.Submission
	approvedAt  time.Time
	cacheLoaded bool
}

func NewRecords(api recordsAPI, tableName string) (*Records, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Records{api: api, tableName: tableName, now: time.Now}, nil
}

func rowSK(row int) string {
	return fmt.Sprintf("%s%08d", skPrefixRow, row)
}

// nextRow atomically allocates the next admin-facing row number.
func (r *Records) nextRow(ctx context.Context) (int, error) {
	out, err := r.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pkSubmission},
			"SK": &types.AttributeValueMemberS{Value: skCounter},
		},
		UpdateExpression: aws.String("ADD seq :one"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("repository: nextRow: %w", err)
	}
	n, ok := out.Attributes["seq"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, errors.New("repository: nextRow: counter attribute missing")
	}
	row, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("repository: nextRow parse: %w", err)
	}
	return row, nil
}

// AppendSubmission persists a new submission and returns its row number.
func (r *Records) AppendSubmission(ctx context.Context, s domain.Submission) (int, error) {
	row, err := r.nextRow(ctx)
	if err != nil {
		return 0, err
	}

	_, err = r.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                submissionItem(row, s),
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		return 0, fmt.Errorf("repository: AppendSubmission: %w", err)
	}

	r.invalidateApprovedCache()
	return row, nil
}

// AppendHelpRequest writes one append-only help-request log record.
func (r *Records) AppendHelpRequest(ctx context.Context, h domain.HelpRequest) error {
	created := h.CreatedAt
	if created.IsZero() {
		created = r.now().UTC()
	}
	_, err := r.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item: map[string]types.AttributeValue{
			"PK":         &types.AttributeValueMemberS{Value: pkHelpReq},
			"SK":         &types.AttributeValueMemberS{Value: skPrefixLog + created.Format(time.RFC3339Nano) + "#" + h.ID},
			"id":         &types.AttributeValueMemberS{Value: h.ID},
			"userId":     &types.AttributeValueMemberS{Value: h.UserID},
			"userName":   &types.AttributeValueMemberS{Value: h.UserName},
			"department": &types.AttributeValueMemberS{Value: h.Department},
			"challenge":  &types.AttributeValueMemberS{Value: h.Challenge},
			"createdAt":  &types.AttributeValueMemberS{Value: created.Format(time.RFC3339)},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: AppendHelpRequest: %w", err)
	}
	return nil
}

// ApprovedSubmissions returns approved submissions oldest-first, served
// from a five-minute cache. On a read failure the stale cache is
// returned when one exists.
func (r *Records) ApprovedSubmissions(ctx context.Context) ([]domain.Submission, error) {
	r.cacheMu.Lock()
	if r.cacheLoaded && r.now().Sub(r.approvedAt) < approvedCacheTTL {
		cached := append([]domain.Submission(nil), r.approved...)
		r.cacheMu.Unlock()
		return cached, nil
	}
	r.cacheMu.Unlock()

	all, err := r.querySubmissions(ctx)
	if err != nil {
		r.cacheMu.Lock()
		defer r.cacheMu.Unlock()
		if r.cacheLoaded {
			return append([]domain.Submission(nil), r.approved...), nil
		}
		return nil, err
	}

	approved := all[:0:0]
	for _, s := range all {
		if s.Status == domain.StatusApproved {
			approved = append(approved, s)
		}
	}

	r.cacheMu.Lock()
	r.approved = approved
	r.approvedAt = r.now()
	r.cacheLoaded = true
	r.cacheMu.Unlock()
	return append([]domain.Submission(nil), approved...), nil
}

// PendingSubmissions returns submissions still awaiting review.
func (r *Records) PendingSubmissions(ctx context.Context) ([]domain.Submission, error) {
	all, err := r.querySubmissions(ctx)
	if err != nil {
		return nil, err
	}
	pending := all[:0:0]
	for _, s := range all {
		if s.Status == domain.StatusPending || s.Status == "" {
			pending = append(pending, s)
		}
	}
	return pending, nil
}

// SubmissionByRow fetches one submission, (nil, nil) when absent.
func (r *Records) SubmissionByRow(ctx context.Context, row int) (*domain.Submission, error) {
	out, err := r.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pkSubmission},
			"SK": &types.AttributeValueMemberS{Value: rowSK(row)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("repository: SubmissionByRow: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return nil, nil
	}
	s, err := itemToSubmission(out.Item)
	if err != nil {
		return nil, fmt.Errorf("repository: SubmissionByRow decode: %w", err)
	}
	return &s, nil
}

// UpdateSubmissionStatus transitions a submission's review status. It
// fails when the row doesn't exist.
func (r *Records) UpdateSubmissionStatus(ctx context.Context, row int, status string) error {
	_, err := r.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pkSubmission},
			"SK": &types.AttributeValueMemberS{Value: rowSK(row)},
		},
		UpdateExpression:    aws.String("SET #st = :status"),
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ExpressionAttributeNames: map[string]string{
			"#st": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: status},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: UpdateSubmissionStatus row %d: %w", row, err)
	}
	r.invalidateApprovedCache()
	return nil
}

// Workflows returns the seeded per-team workflow catalog.
func (r *Records) Workflows(ctx context.Context) ([]domain.Workflow, error) {
	out, err := r.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: pkWorkflow},
			":prefix": &types.AttributeValueMemberS{Value: skPrefixTm},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("repository: Workflows query: %w", err)
	}

	ws := make([]domain.Workflow, 0, len(out.Items))
	for _, item := range out.Items {
		team, err := strAttr(item, "team")
		if err != nil {
			return nil, fmt.Errorf("repository: Workflows decode: %w", err)
		}
		items, err := strListAttr(item, "items")
		if err != nil {
			return nil, fmt.Errorf("repository: Workflows decode: %w", err)
		}
		ws = append(ws, domain.Workflow{Team: team, Items: items})
	}
	return ws, nil
}

// SeedWorkflows writes or replaces the catalog, one item per team.
func (r *Records) SeedWorkflows(ctx context.Context, ws []domain.Workflow) error {
	for _, w := range ws {
		items := make([]types.AttributeValue, 0, len(w.Items))
		for _, it := range w.Items {
			items = append(items, &types.AttributeValueMemberS{Value: it})
		}
		_, err := r.api.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(r.tableName),
			Item: map[string]types.AttributeValue{
				"PK":    &types.AttributeValueMemberS{Value: pkWorkflow},
				"SK":    &types.AttributeValueMemberS{Value: skPrefixTm + w.Team},
				"team":  &types.AttributeValueMemberS{Value: w.Team},
				"items": &types.AttributeValueMemberL{Value: items},
			},
		})
		if err != nil {
			return fmt.Errorf("repository: SeedWorkflows %q: %w", w.Team, err)
		}
	}
	return nil
}

func (r *Records) querySubmissions(ctx context.Context) ([]domain.Submission, error) {
	out, err := r.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: pkSubmission},
			":prefix": &types.AttributeValueMemberS{Value: skPrefixRow},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("repository: submissions query: %w", err)
	}
	subs := make([]domain.Submission, 0, len(out.Items))
	for _, item := range out.Items {
		s, err := itemToSubmission(item)
		if err != nil {
			return nil, fmt.Errorf("repository: submissions decode: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, nil
}

func (r *Records) invalidateApprovedCache() {
	r.cacheMu.Lock()
	r.cacheLoaded = false
	r.approved = nil
	r.cacheMu.Unlock()
}

func submissionItem(row int, s domain.Submission) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":         &types.AttributeValueMemberS{Value: pkSubmission},
		"SK":         &types.AttributeValueMemberS{Value: rowSK(row)},
		"row":        &types.AttributeValueMemberN{Value: strconv.Itoa(row)},
		"userId":     &types.AttributeValueMemberS{Value: s.UserID},
		"userName":   &types.AttributeValueMemberS{Value: s.UserName},
		"problem":    &types.AttributeValueMemberS{Value: s.Answers.Problem},
		"solution":   &types.AttributeValueMemberS{Value: s.Answers.Solution},
		"timeSaved":  &types.AttributeValueMemberS{Value: s.Answers.TimeSaved},
		"reusableBy": &types.AttributeValueMemberS{Value: s.Answers.ReusableBy},
		"howToReuse": &types.AttributeValueMemberS{Value: s.Answers.HowToReuse},
		"summary":    &types.AttributeValueMemberS{Value: s.Summary},
		"status":     &types.AttributeValueMemberS{Value: s.Status},
		"createdAt":  &types.AttributeValueMemberS{Value: s.CreatedAt.UTC().Format(time.RFC3339)},
	}
}

func itemToSubmission(item map[string]types.AttributeValue) (domain.Submission, error) {
	row, err := intAttr(item, "row")
	if err != nil {
		return domain.Submission{}, err
	}
	userID, err := strAttr(item, "userId")
	if err != nil {
		return domain.Submission{}, err
	}

	s := domain.Submission{Row: row, UserID: userID}
	s.UserName, _ = strAttr(item, "userName")
	s.Answers.Problem, _ = strAttr(item, "problem")
	s.Answers.Solution, _ = strAttr(item, "solution")
	s.Answers.TimeSaved, _ = strAttr(item, "timeSaved")
	s.Answers.ReusableBy, _ = strAttr(item, "reusableBy")
	s.Answers.HowToReuse, _ = strAttr(item, "howToReuse")
	s.Summary, _ = strAttr(item, "summary")
	status, _ := strAttr(item, "status")
	s.Status = strings.ToLower(status)
	if ts, err := strAttr(item, "createdAt"); err == nil {
		if t, perr := time.Parse(time.RFC3339, ts); perr == nil {
			s.CreatedAt = t
		}
	}
	return s, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func intAttr(item map[string]types.AttributeValue, key string) (int, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}

func strListAttr(item map[string]types.AttributeValue, key string) ([]string, error) {
	v, ok := item[key]
	if !ok {
		return nil, fmt.Errorf("repository: missing attribute %q", key)
	}
	l, ok := v.(*types.AttributeValueMemberL)
	if !ok {
		return nil, fmt.Errorf("repository: attribute %q is not a list", key)
	}
	out := make([]string, 0, len(l.Value))
	for _, e := range l.Value {
		s, ok := e.(*types.AttributeValueMemberS)
		if !ok {
			return nil, fmt.Errorf("repository: attribute %q has a non-string element", key)
		}
		out = append(out, s.Value)
	}
	return out, nil
}
