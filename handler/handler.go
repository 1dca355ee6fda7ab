package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"innovators-bot/internal/usecase"
)

// MessageRouter routes one direct message through the conversation
// state machine.
type MessageRouter interface {
	HandleMessage(ctx context.Context, userID, text string) error
}

// CommandDispatcher runs one slash command.
type CommandDispatcher interface {
	Dispatch(ctx context.Context, cmd usecase.Command) (usecase.Result, error)
}

// RequestVerifier authenticates inbound webhook requests.
type RequestVerifier interface {
	Verify(timestamp, signature, body string) bool
}

// EventDedup decides whether an event id has been seen recently.
type EventDedup interface {
	ShouldProcess(ctx context.Context, eventID string) (bool, error)
}

// Reactor adds and removes emoji reactions on messages.
type Reactor interface {
	AddReaction(ctx context.Context, channel, timestamp, emoji string) error
	RemoveReaction(ctx context.Context, channel, timestamp, emoji string) error
}

// Reminder sends the pending-review nudge.
type Reminder interface {
	SendPendingReminder(ctx context.Context) (pendingCount int, sent bool, err error)
}

// TipPoster generates and posts the scheduled channel tip.
type TipPoster interface {
	PostWeeklyTip(ctx context.Context) (string, error)
}

// Config carries the shared secrets for the scheduled-trigger endpoints.
type Config struct {
	CronSecret  string
	AdminSecret string
}

// Handler is the API Gateway entry point: webhook verification, payload
// parsing, dedup, and routing to the use cases.
type Handler struct {
	router   MessageRouter
	commands CommandDispatcher
	verifier RequestVerifier
	dedup    EventDedup
	reactor  Reactor
	reminder Reminder
	tips     TipPoster
	cfg      Config
	spawn    func(func(ctx context.Context))
	log      *slog.Logger
}

type Option func(*Handler)

// WithSpawn overrides how slow command follow-ups are run. The default
// runs them before the response is returned, which is the only safe
// choice on a runtime that freezes after responding; the cost is that
// the ack is delayed until the follow-up finishes. A deployment that
// needs the ack flushed first should spawn onto a goroutine here, or
// hand the follow-up to a queue and a second invocation.
func WithSpawn(spawn func(func(ctx context.Context))) Option {
	return func(h *Handler) {
		h.spawn = spawn
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(h *Handler) {
		h.log = log
	}
}

func NewHandler(router MessageRouter, commands CommandDispatcher, verifier RequestVerifier, dedup EventDedup, reactor Reactor, reminder Reminder, tips TipPoster, cfg Config, opts ...Option) (*Handler, error) {
	if router == nil || commands == nil || verifier == nil || dedup == nil {
		return nil, errors.New("handler: dependencies must not be nil")
	}
	if reactor == nil || reminder == nil || tips == nil {
		return nil, errors.New("handler: dependencies must not be nil")
	}
	h := &Handler{
		router:   router,
		commands: commands,
		verifier: verifier,
		dedup:    dedup,
		reactor:  reactor,
		reminder: reminder,
		tips:     tips,
		cfg:      cfg,
		log:      slog.Default(),
	}
	h.spawn = func(f func(ctx context.Context)) { f(context.Background()) }
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Handle routes one API Gateway proxy event.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (resp events.APIGatewayProxyResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("panic in handler", "path", req.Path, "panic", r)
			resp = jsonResponse(http.StatusInternalServerError, map[string]string{"error": "internal error"})
			err = nil
		}
	}()

	if req.HTTPMethod != http.MethodPost {
		return textResponse(http.StatusMethodNotAllowed, "method not allowed"), nil
	}

	switch {
	case strings.HasSuffix(req.Path, "/cron/reminder"):
		return h.handleReminder(ctx, req), nil
	case strings.HasSuffix(req.Path, "/cron/weekly-tip"):
		return h.handleWeeklyTip(ctx, req), nil
	case strings.HasSuffix(req.Path, "/slack"):
		return h.handleSlack(ctx, req), nil
	default:
		return textResponse(http.StatusNotFound, "not found"), nil
	}
}

// handleSlack processes one webhook delivery. Slack retries on non-200
// and on slow responses, so every recognized payload answers 200 even
// when downstream work fails; failures are logged, not surfaced.
func (h *Handler) handleSlack(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	body, err := rawBody(req)
	if err != nil {
		h.log.Error("bad request body", "err", err)
		return textResponse(http.StatusBadRequest, "bad request")
	}

	// The one-time URL handshake happens before signing is configured,
	// so it is answered before signature verification.
	if !isFormEncoded(req.Headers) {
		if env, err := parseEnvelope(body); err == nil && env.Type == "url_verification" {
			return jsonResponse(http.StatusOK, map[string]string{"challenge": env.Challenge})
		}
	}

	timestamp := header(req.Headers, "X-Slack-Request-Timestamp")
	signature := header(req.Headers, "X-Slack-Signature")
	if !h.verifier.Verify(timestamp, signature, body) {
		return textResponse(http.StatusUnauthorized, "invalid signature")
	}

	if isFormEncoded(req.Headers) {
		return h.handleCommand(ctx, body)
	}
	return h.handleEvent(ctx, body)
}

func (h *Handler) handleCommand(ctx context.Context, body string) events.APIGatewayProxyResponse {
	cmd, err := parseCommand(body)
	if err != nil {
		h.log.Error("unparseable command payload", "err", err)
		return textResponse(http.StatusOK, "")
	}

	res, err := h.commands.Dispatch(ctx, cmd)
	if err != nil {
		h.log.Error("command failed", "command", cmd.Name, "user", cmd.UserID, "err", err)
		return textResponse(http.StatusOK, "Something went wrong. Please try again.")
	}
	if res.FollowUp != nil {
		h.spawn(res.FollowUp)
	}
	return textResponse(http.StatusOK, res.Ack)
}

func (h *Handler) handleEvent(ctx context.Context, body string) events.APIGatewayProxyResponse {
	env, err := parseEnvelope(body)
	if err != nil {
		h.log.Error("unparseable event payload", "err", err)
		return textResponse(http.StatusOK, "")
	}
	if env.Type != "event_callback" || !env.isUserDM() {
		return textResponse(http.StatusOK, "")
	}

	ok, err := h.dedup.ShouldProcess(ctx, env.dedupKey())
	if err != nil {
		// Dedup is best-effort: a marker-store failure must not drop the
		// message, at worst it is processed twice.
		h.log.Warn("dedup check failed", "event", env.dedupKey(), "err", err)
		ok = true
	}
	if !ok {
		return textResponse(http.StatusOK, "")
	}

	ev := env.Event
	if err := h.reactor.AddReaction(ctx, ev.Channel, ev.TS, "eyes"); err != nil {
		h.log.Warn("add reaction failed", "err", err)
	}

	if err := h.router.HandleMessage(ctx, ev.User, ev.Text); err != nil {
		h.log.Error("message handling failed", "user", ev.User, "err", err)
	}

	if err := h.reactor.RemoveReaction(ctx, ev.Channel, ev.TS, "eyes"); err != nil {
		h.log.Warn("remove reaction failed", "err", err)
	}
	return textResponse(http.StatusOK, "")
}

func jsonResponse(status int, v any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"error":"internal error"}`,
		}
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

func textResponse(status int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "text/plain"},
		Body:       body,
	}
}
