package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"innovators-bot/internal/usecase"
)

type stubRouter struct {
	err      error
	panicMsg string
	calls    []struct{ userID, text string }
}

func (s *stubRouter) HandleMessage(_ context.Context, userID, text string) error {
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	s.calls = append(s.calls, struct{ userID, text string }{userID, text})
	return s.err
}

type stubDispatcher struct {
	res  usecase.Result
	err  error
	last usecase.Command
}

func (s *stubDispatcher) Dispatch(_ context.Context, cmd usecase.Command) (usecase.Result, error) {
	s.last = cmd
	return s.res, s.err
}

type stubVerifier struct {
	ok       bool
	lastTS   string
	lastSig  string
	lastBody string
}

func (s *stubVerifier) Verify(timestamp, signature, body string) bool {
	s.lastTS, s.lastSig, s.lastBody = timestamp, signature, body
	return s.ok
}

type stubDedup struct {
	ok   bool
	err  error
	seen []string
}

func (s *stubDedup) ShouldProcess(_ context.Context, eventID string) (bool, error) {
	s.seen = append(s.seen, eventID)
	return s.ok, s.err
}

type stubReactor struct {
	added   []string
	removed []string
}

func (s *stubReactor) AddReaction(_ context.Context, _, _, emoji string) error {
	s.added = append(s.added, emoji)
	return nil
}

func (s *stubReactor) RemoveReaction(_ context.Context, _, _, emoji string) error {
	s.removed = append(s.removed, emoji)
	return nil
}

type stubReminder struct {
	count int
	sent  bool
	err   error
}

func (s *stubReminder) SendPendingReminder(_ context.Context) (int, bool, error) {
	return s.count, s.sent, s.err
}

type stubTips struct {
	tip   string
	err   error
	calls int
}

func (s *stubTips) PostWeeklyTip(_ context.Context) (string, error) {
	s.calls++
	return s.tip, s.err
}

type fixture struct {
	h          *Handler
	router     *stubRouter
	dispatcher *stubDispatcher
	verifier   *stubVerifier
	dedup      *stubDedup
	reactor    *stubReactor
	reminder   *stubReminder
	tips       *stubTips
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	f := &fixture{
		router:     &stubRouter{},
		dispatcher: &stubDispatcher{},
		verifier:   &stubVerifier{ok: true},
		dedup:      &stubDedup{ok: true},
		reactor:    &stubReactor{},
		reminder:   &stubReminder{},
		tips:       &stubTips{tip: "tip"},
	}
	h, err := NewHandler(f.router, f.dispatcher, f.verifier, f.dedup, f.reactor, f.reminder, f.tips, cfg)
	require.NoError(t, err)
	f.h = h
	return f
}

func eventBody(t *testing.T, env envelope) string {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"type":     env.Type,
		"event_id": env.EventID,
		"event": map[string]any{
			"type":          env.Event.Type,
			"subtype":       env.Event.Subtype,
			"bot_id":        env.Event.BotID,
			"channel_type":  env.Event.ChannelType,
			"channel":       env.Event.Channel,
			"user":          env.Event.User,
			"text":          env.Event.Text,
			"ts":            env.Event.TS,
			"client_msg_id": env.Event.ClientMsgID,
		},
	})
	require.NoError(t, err)
	return string(b)
}

func dmEnvelope() envelope {
	return envelope{
		Type:    "event_callback",
		EventID: "Ev123",
		Event: innerEvent{
			Type:        "message",
			ChannelType: "im",
			Channel:     "D1",
			User:        "U1",
			Text:        "hello",
			TS:          "111.222",
			ClientMsgID: "msg-1",
		},
	}
}

func makeEvent(path, body string, headers map[string]string) events.APIGatewayProxyRequest {
	if headers == nil {
		headers = map[string]string{"Content-Type": "application/json"}
	}
	return events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       path,
		Headers:    headers,
		Body:       body,
	}
}

func TestNewHandler_ValidatesDependencies(t *testing.T) {
	_, err := NewHandler(nil, nil, nil, nil, nil, nil, nil, Config{})
	require.Error(t, err)
}

func TestHandle_MethodNotAllowed(t *testing.T) {
	f := newFixture(t, Config{})
	req := makeEvent("/slack", "", nil)
	req.HTTPMethod = http.MethodGet

	resp, err := f.h.Handle(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHandle_UnknownPath(t *testing.T) {
	f := newFixture(t, Config{})
	resp, err := f.h.Handle(context.Background(), makeEvent("/nope", "{}", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandle_URLVerificationEchoesChallenge(t *testing.T) {
	f := newFixture(t, Config{})
	f.verifier.ok = false // the handshake must not require a signature

	resp, err := f.h.Handle(context.Background(), makeEvent("/slack",
		`{"type":"url_verification","challenge":"abc123"}`, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &out))
	require.Equal(t, "abc123", out["challenge"])
}

func TestHandle_InvalidSignature(t *testing.T) {
	f := newFixture(t, Config{})
	f.verifier.ok = false

	resp, err := f.h.Handle(context.Background(), makeEvent("/slack", eventBody(t, dmEnvelope()), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Empty(t, f.router.calls)
}

func TestHandle_DMProcessedWithReactions(t *testing.T) {
	f := newFixture(t, Config{})
	headers := map[string]string{
		"Content-Type":              "application/json",
		"x-slack-request-timestamp": "123",
		"x-slack-signature":         "v0=abc",
	}

	resp, err := f.h.Handle(context.Background(), makeEvent("/slack", eventBody(t, dmEnvelope()), headers))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Lowercased headers still reach the verifier.
	require.Equal(t, "123", f.verifier.lastTS)
	require.Equal(t, "v0=abc", f.verifier.lastSig)

	require.Equal(t, []string{"msg-1"}, f.dedup.seen)
	require.Len(t, f.router.calls, 1)
	require.Equal(t, "U1", f.router.calls[0].userID)
	require.Equal(t, "hello", f.router.calls[0].text)
	require.Equal(t, []string{"eyes"}, f.reactor.added)
	require.Equal(t, []string{"eyes"}, f.reactor.removed)
}

func TestHandle_DuplicateEventSkipped(t *testing.T) {
	f := newFixture(t, Config{})
	f.dedup.ok = false

	resp, err := f.h.Handle(context.Background(), makeEvent("/slack", eventBody(t, dmEnvelope()), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, f.router.calls)
	require.Empty(t, f.reactor.added)
}

func TestHandle_DedupFailureStillProcesses(t *testing.T) {
	f := newFixture(t, Config{})
	f.dedup.ok = false
	f.dedup.err = errors.New("marker store down")

	resp, err := f.h.Handle(context.Background(), makeEvent("/slack", eventBody(t, dmEnvelope()), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, f.router.calls, 1)
}

func TestHandle_DedupKeyFallsBackToTimestamp(t *testing.T) {
	f := newFixture(t, Config{})
	env := dmEnvelope()
	env.Event.ClientMsgID = ""

	_, err := f.h.Handle(context.Background(), makeEvent("/slack", eventBody(t, env), nil))
	require.NoError(t, err)
	require.Equal(t, []string{"111.222"}, f.dedup.seen)
}

func TestHandle_IgnoresNonDMShapes(t *testing.T) {
	f := newFixture(t, Config{})

	cases := []struct {
		name   string
		mutate func(*envelope)
	}{
		{name: "bot message", mutate: func(e *envelope) { e.Event.BotID = "B1" }},
		{name: "edited message", mutate: func(e *envelope) { e.Event.Subtype = "message_changed" }},
		{name: "channel message", mutate: func(e *envelope) { e.Event.ChannelType = "channel" }},
		{name: "non-message event", mutate: func(e *envelope) { e.Event.Type = "reaction_added" }},
		{name: "not an event callback", mutate: func(e *envelope) { e.Type = "app_rate_limited" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := dmEnvelope()
			tc.mutate(&env)

			resp, err := f.h.Handle(context.Background(), makeEvent("/slack", eventBody(t, env), nil))
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.Empty(t, f.router.calls)
		})
	}
}

func TestHandle_RouterFailureStillAcks(t *testing.T) {
	f := newFixture(t, Config{})
	f.router.err = errors.New("downstream exploded")

	resp, err := f.h.Handle(context.Background(), makeEvent("/slack", eventBody(t, dmEnvelope()), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	// The reaction is still cleaned up.
	require.Equal(t, []string{"eyes"}, f.reactor.removed)
}

func TestHandle_PanicRecoversTo500(t *testing.T) {
	f := newFixture(t, Config{})
	f.router.panicMsg = "nil map write"

	resp, err := f.h.Handle(context.Background(), makeEvent("/slack", eventBody(t, dmEnvelope()), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestHandle_Base64Body(t *testing.T) {
	f := newFixture(t, Config{})
	req := makeEvent("/slack", base64.StdEncoding.EncodeToString([]byte(eventBody(t, dmEnvelope()))), nil)
	req.IsBase64Encoded = true

	resp, err := f.h.Handle(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, f.router.calls, 1)
	// The verifier saw the decoded body, the one Slack signed.
	require.Equal(t, eventBody(t, dmEnvelope()), f.verifier.lastBody)
}

func commandBody(name, text, userID string) string {
	form := url.Values{}
	form.Set("command", name)
	form.Set("text", text)
	form.Set("user_id", userID)
	return form.Encode()
}

func formHeaders() map[string]string {
	return map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
}

func TestHandle_SlashCommand(t *testing.T) {
	f := newFixture(t, Config{})
	f.dispatcher.res = usecase.Result{Ack: "on it"}

	resp, err := f.h.Handle(context.Background(), makeEvent("/slack", commandBody("/tools", "writing", "U1"), formHeaders()))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "on it", resp.Body)
	require.Equal(t, usecase.Command{Name: "/tools", Text: "writing", UserID: "U1"}, f.dispatcher.last)
}

func TestHandle_SlashCommandFollowUpRuns(t *testing.T) {
	f := newFixture(t, Config{})
	ran := false
	f.dispatcher.res = usecase.Result{
		Ack:      "working...",
		FollowUp: func(ctx context.Context) { ran = true },
	}

	resp, err := f.h.Handle(context.Background(), makeEvent("/slack", commandBody("/tip", "", "U1"), formHeaders()))
	require.NoError(t, err)
	require.Equal(t, "working...", resp.Body)
	require.True(t, ran)
}

func TestHandle_SlashCommandDispatchFailureAcksApology(t *testing.T) {
	f := newFixture(t, Config{})
	f.dispatcher.err = errors.New("boom")

	resp, err := f.h.Handle(context.Background(), makeEvent("/slack", commandBody("/tools", "", "U1"), formHeaders()))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Body, "Something went wrong")
}

func TestHandle_CronAuth(t *testing.T) {
	cfg := Config{CronSecret: "cron-secret", AdminSecret: "admin-secret"}

	cases := []struct {
		name    string
		headers map[string]string
		status  int
	}{
		{name: "no auth", headers: map[string]string{}, status: http.StatusUnauthorized},
		{name: "wrong bearer", headers: map[string]string{"Authorization": "Bearer nope"}, status: http.StatusUnauthorized},
		{name: "bare secret without scheme", headers: map[string]string{"Authorization": "cron-secret"}, status: http.StatusUnauthorized},
		{name: "bearer token", headers: map[string]string{"Authorization": "Bearer cron-secret"}, status: http.StatusOK},
		{name: "admin header", headers: map[string]string{"X-Admin-Secret": "admin-secret"}, status: http.StatusOK},
		{name: "lowercased admin header", headers: map[string]string{"x-admin-secret": "admin-secret"}, status: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, cfg)
			resp, err := f.h.Handle(context.Background(), makeEvent("/cron/weekly-tip", "", tc.headers))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestHandle_CronReminder(t *testing.T) {
	f := newFixture(t, Config{CronSecret: "cron-secret"})
	f.reminder.count = 3
	f.reminder.sent = true

	resp, err := f.h.Handle(context.Background(), makeEvent("/cron/reminder", "",
		map[string]string{"Authorization": "Bearer cron-secret"}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out reminderResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &out))
	require.True(t, out.Success)
	require.Equal(t, 3, out.PendingCount)
	require.True(t, out.ReminderSent)
}

func TestHandle_CronReminderFailure(t *testing.T) {
	f := newFixture(t, Config{CronSecret: "cron-secret"})
	f.reminder.err = errors.New("query failed")

	resp, err := f.h.Handle(context.Background(), makeEvent("/cron/reminder", "",
		map[string]string{"Authorization": "Bearer cron-secret"}))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestHandle_CronWeeklyTip(t *testing.T) {
	f := newFixture(t, Config{AdminSecret: "admin-secret"})

	resp, err := f.h.Handle(context.Background(), makeEvent("/cron/weekly-tip", "",
		map[string]string{"X-Admin-Secret": "admin-secret"}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, f.tips.calls)

	var out tipResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &out))
	require.True(t, out.Success)
}

func TestHandle_CronWeeklyTipFailure(t *testing.T) {
	f := newFixture(t, Config{AdminSecret: "admin-secret"})
	f.tips.err = errors.New("upstream 500")

	resp, err := f.h.Handle(context.Background(), makeEvent("/cron/weekly-tip", "",
		map[string]string{"X-Admin-Secret": "admin-secret"}))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
