package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"innovators-bot/internal/domain"
)

type fakeRecordsAPI struct {
	getOut *dynamodb.GetItemOutput
	getErr error

	putErr   error
	puts     []*dynamodb.PutItemInput
	queryOut *dynamodb.QueryOutput
	queryErr error
	queries  int

	updateOut  *dynamodb.UpdateItemOutput
	updateErr  error
	lastUpdate *dynamodb.UpdateItemInput
}

func (f *fakeRecordsAPI) GetItem(_ context.Context, _ *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.getOut == nil {
		return &dynamodb.GetItemOutput{}, nil
	}
	return f.getOut, nil
}

func (f *fakeRecordsAPI) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.puts = append(f.puts, in)
	return &dynamodb.PutItemOutput{}, f.putErr
}

func (f *fakeRecordsAPI) Query(_ context.Context, _ *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queries++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if f.queryOut == nil {
		return &dynamodb.QueryOutput{}, nil
	}
	return f.queryOut, nil
}

func (f *fakeRecordsAPI) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.lastUpdate = in
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.updateOut == nil {
		return &dynamodb.UpdateItemOutput{}, nil
	}
	return f.updateOut, nil
}

func counterResult(n string) *dynamodb.UpdateItemOutput {
	return &dynamodb.UpdateItemOutput{Attributes: map[string]types.AttributeValue{
		"seq": &types.AttributeValueMemberN{Value: n},
	}}
}

func submissionRow(row, userID, status, problem string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"row":      &types.AttributeValueMemberN{Value: row},
		"userId":   &types.AttributeValueMemberS{Value: userID},
		"status":   &types.AttributeValueMemberS{Value: status},
		"problem":  &types.AttributeValueMemberS{Value: problem},
		"userName": &types.AttributeValueMemberS{Value: "Dana"},
	}
}

func TestRecords_AppendSubmissionAllocatesRow(t *testing.T) {
	api := &fakeRecordsAPI{updateOut: counterResult("7")}
	r, err := NewRecords(api, "data")
	require.NoError(t, err)

	row, err := r.AppendSubmission(context.Background(), domain.Submission{
		UserID:   "U1",
		UserName: "Dana",
		Answers:  domain.SubmitAnswers{Problem: "slow reports"},
		Status:   domain.StatusPending,
	})
	require.NoError(t, err)
	require.Equal(t, 7, row)

	// The counter bump and the item write.
	require.Contains(t, *api.lastUpdate.UpdateExpression, "ADD seq")
	require.Len(t, api.puts, 1)
	sk := api.puts[0].Item["SK"].(*types.AttributeValueMemberS)
	require.Equal(t, "ROW#00000007", sk.Value)
	status := api.puts[0].Item["status"].(*types.AttributeValueMemberS)
	require.Equal(t, domain.StatusPending, status.Value)
}

func TestRecords_AppendSubmissionCounterFailure(t *testing.T) {
	api := &fakeRecordsAPI{updateErr: errors.New("throttled")}
	r, err := NewRecords(api, "data")
	require.NoError(t, err)

	_, err = r.AppendSubmission(context.Background(), domain.Submission{UserID: "U1"})
	require.Error(t, err)
	require.Empty(t, api.puts)
}

func TestRecords_ApprovedSubmissionsFiltersAndCaches(t *testing.T) {
	api := &fakeRecordsAPI{queryOut: &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{
		submissionRow("1", "U1", "approved", "a"),
		submissionRow("2", "U2", "pending", "b"),
		submissionRow("3", "U3", "approved", "c"),
	}}}
	r, err := NewRecords(api, "data")
	require.NoError(t, err)
	clock := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	got, err := r.ApprovedSubmissions(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, 1, got[0].Row)
	require.Equal(t, 3, got[1].Row)
	require.Equal(t, 1, api.queries)

	// Inside the window the cache answers.
	clock = clock.Add(4 * time.Minute)
	_, err = r.ApprovedSubmissions(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, api.queries)

	// Past the window it re-reads.
	clock = clock.Add(2 * time.Minute)
	_, err = r.ApprovedSubmissions(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, api.queries)
}

func TestRecords_ApprovedSubmissionsStaleOnError(t *testing.T) {
	api := &fakeRecordsAPI{queryOut: &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{
		submissionRow("1", "U1", "approved", "a"),
	}}}
	r, err := NewRecords(api, "data")
	require.NoError(t, err)
	clock := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	first, err := r.ApprovedSubmissions(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	// A later failure serves the stale cache instead of erroring.
	clock = clock.Add(10 * time.Minute)
	api.queryErr = errors.New("query failed")
	stale, err := r.ApprovedSubmissions(context.Background())
	require.NoError(t, err)
	require.Equal(t, first, stale)

	// With no cache at all the error surfaces.
	cold, err := NewRecords(&fakeRecordsAPI{queryErr: errors.New("query failed")}, "data")
	require.NoError(t, err)
	_, err = cold.ApprovedSubmissions(context.Background())
	require.Error(t, err)
}

func TestRecords_PendingSubmissionsIncludesUnsetStatus(t *testing.T) {
	api := &fakeRecordsAPI{queryOut: &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{
		submissionRow("1", "U1", "pending", "a"),
		submissionRow("2", "U2", "approved", "b"),
		submissionRow("3", "U3", "", "c"),
	}}}
	r, err := NewRecords(api, "data")
	require.NoError(t, err)

	got, err := r.PendingSubmissions(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestRecords_SubmissionByRow(t *testing.T) {
	api := &fakeRecordsAPI{getOut: &dynamodb.GetItemOutput{Item: submissionRow("5", "U1", "pending", "slow reports")}}
	r, err := NewRecords(api, "data")
	require.NoError(t, err)

	got, err := r.SubmissionByRow(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, 5, got.Row)
	require.Equal(t, "slow reports", got.Answers.Problem)

	// Absent rows are (nil, nil), not an error.
	missing, err := NewRecords(&fakeRecordsAPI{}, "data")
	require.NoError(t, err)
	got, err = missing.SubmissionByRow(context.Background(), 99)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestRecords_UpdateSubmissionStatus(t *testing.T) {
	api := &fakeRecordsAPI{}
	r, err := NewRecords(api, "data")
	require.NoError(t, err)

	require.NoError(t, r.UpdateSubmissionStatus(context.Background(), 5, domain.StatusApproved))
	require.Contains(t, *api.lastUpdate.ConditionExpression, "attribute_exists(PK)")
	sk := api.lastUpdate.Key["SK"].(*types.AttributeValueMemberS)
	require.Equal(t, "ROW#00000005", sk.Value)
}

func TestRecords_WorkflowsRoundTrip(t *testing.T) {
	api := &fakeRecordsAPI{queryOut: &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{
		{
			"team": &types.AttributeValueMemberS{Value: "Sales"},
			"items": &types.AttributeValueMemberL{Value: []types.AttributeValue{
				&types.AttributeValueMemberS{Value: "Drafting outreach emails"},
			}},
		},
	}}}
	r, err := NewRecords(api, "data")
	require.NoError(t, err)

	ws, err := r.Workflows(context.Background())
	require.NoError(t, err)
	require.Equal(t, []domain.Workflow{{Team: "Sales", Items: []string{"Drafting outreach emails"}}}, ws)
}

func TestRecords_SeedWorkflows(t *testing.T) {
	api := &fakeRecordsAPI{}
	r, err := NewRecords(api, "data")
	require.NoError(t, err)

	require.NoError(t, r.SeedWorkflows(context.Background(), []domain.Workflow{
		{Team: "Sales", Items: []string{"a", "b"}},
		{Team: "HR", Items: []string{"c"}},
	}))
	require.Len(t, api.puts, 2)
	sk := api.puts[0].Item["SK"].(*types.AttributeValueMemberS)
	require.Equal(t, "TEAM#Sales", sk.Value)
}
