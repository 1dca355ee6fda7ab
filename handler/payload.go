package handler

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"innovators-bot/internal/usecase"
)

// envelope is the outer shape of a Slack Events API request.
type envelope struct {
	Type      string     `json:"type"`
	Challenge string     `json:"challenge"`
	EventID   string     `json:"event_id"`
	Event     innerEvent `json:"event"`
}

// innerEvent is the message event inside an event_callback envelope.
type innerEvent struct {
	Type        string `json:"type"`
	Subtype     string `json:"subtype"`
	BotID       string `json:"bot_id"`
	ChannelType string `json:"channel_type"`
	Channel     string `json:"channel"`
	User        string `json:"user"`
	Text        string `json:"text"`
	TS          string `json:"ts"`
	ClientMsgID string `json:"client_msg_id"`
}

// dedupKey picks the identifier used for idempotent processing. Slack's
// client_msg_id is stable across redeliveries; the message timestamp is
// the fallback, the envelope event id a last resort.
func (e envelope) dedupKey() string {
	switch {
	case e.Event.ClientMsgID != "":
		return e.Event.ClientMsgID
	case e.Event.TS != "":
		return e.Event.TS
	default:
		return e.EventID
	}
}

// isUserDM reports whether the event is a direct message typed by a
// human. Bot echoes and edited/system subtypes are filtered here.
func (e envelope) isUserDM() bool {
	ev := e.Event
	return ev.Type == "message" &&
		ev.ChannelType == "im" &&
		ev.BotID == "" &&
		ev.Subtype == "" &&
		ev.User != ""
}

// rawBody returns the request body exactly as Slack signed it,
// reversing API Gateway's base64 transport encoding when present.
func rawBody(req events.APIGatewayProxyRequest) (string, error) {
	if !req.IsBase64Encoded {
		return req.Body, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(req.Body)
	if err != nil {
		return "", fmt.Errorf("handler: decode base64 body: %w", err)
	}
	return string(decoded), nil
}

// header looks up a request header case-insensitively. API Gateway
// lowercases header names in some configurations.
func header(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// parseCommand decodes a form-encoded slash-command payload.
func parseCommand(body string) (usecase.Command, error) {
	form, err := url.ParseQuery(body)
	if err != nil {
		return usecase.Command{}, fmt.Errorf("handler: parse command form: %w", err)
	}
	cmd := usecase.Command{
		Name:   form.Get("command"),
		Text:   form.Get("text"),
		UserID: form.Get("user_id"),
	}
	if cmd.Name == "" {
		return usecase.Command{}, fmt.Errorf("handler: command payload missing command field")
	}
	return cmd, nil
}

// parseEnvelope decodes a JSON Events API payload.
func parseEnvelope(body string) (envelope, error) {
	var env envelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return envelope{}, fmt.Errorf("handler: parse event envelope: %w", err)
	}
	return env, nil
}

// isFormEncoded reports whether the payload is a slash command rather
// than an Events API callback.
func isFormEncoded(headers map[string]string) bool {
	ct := header(headers, "Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded")
}
