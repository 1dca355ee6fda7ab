package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"innovators-bot/internal/company"
	"innovators-bot/internal/domain"
)

// chatRequest is the minimal request shape for the Chat Completions endpoint.
type chatRequest struct {
	Model       string               `json:"model"`
	Messages    []domain.ChatMessage `json:"messages"`
	Temperature *float64             `json:"temperature,omitempty"`
}

// chatResponse is the minimal response shape returned by the Chat Completions endpoint.
type chatResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Choices []struct {
		Index   int                `json:"index"`
		Message domain.ChatMessage `json:"message"`
	} `json:"choices"`
}

// tokenPayload is the expected JSON shape stored in SSM for the API token.
type tokenPayload struct {
	Token string `json:"token"`
}

type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// SubmissionsProvider supplies approved submissions for help-flow prompt
// context. Lookups that fail degrade to an empty list rather than blocking
// generation.
type SubmissionsProvider interface {
	ApprovedSubmissions(ctx context.Context) ([]domain.Submission, error)
}

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("openai: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client is a focused OpenAI-compatible client for chat completions.
type Client struct {
	baseURL     string
	model       string
	httpClient  *http.Client
	getter      Getter
	paramPrefix string
	company     *company.Context
	submissions SubmissionsProvider

	keyOnce sync.Once
	apiKey  string
	keyErr  error
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithModel(model string) Option {
	return func(c *Client) {
		c.model = strings.TrimSpace(model)
	}
}

// NewClient creates a new Client backed by the given paramstore.Getter for
// API key retrieval. The key is fetched from SSM on the first generation call
// and reused for the lifetime of the process. submissions may be nil, in
// which case help prompts carry no colleague solutions.
func NewClient(ps Getter, paramPrefix string, c *company.Context, submissions SubmissionsProvider, opts ...Option) (*Client, error) {
	if ps == nil {
		return nil, errors.New("openai: paramstore getter must not be nil")
	}
	if c == nil {
		return nil, errors.New("openai: company context must not be nil")
	}
	paramPrefix = strings.TrimRight(strings.TrimSpace(paramPrefix), "/")
	if paramPrefix == "" {
		return nil, errors.New("openai: parameter prefix must not be empty")
	}
	cl := &Client{
		baseURL:     "https://api.openai.com/v1",
		model:       "gpt-4o-mini",
		httpClient:  &http.Client{Timeout: 25 * time.Second},
		getter:      ps,
		paramPrefix: paramPrefix,
		company:     c,
		submissions: submissions,
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl, nil
}

// Polish turns raw submission answers into a formatted summary. editRequest,
// when non-empty, is a revision instruction from the user's review pass.
func (c *Client) Polish(ctx context.Context, answers domain.SubmitAnswers, editRequest string) (string, error) {
	return c.chat(ctx, []domain.ChatMessage{
		{Role: domain.RoleUser, Content: company.PolishPrompt(answers, editRequest)},
	})
}

// Converse continues a freeform brainstorming conversation.
func (c *Client) Converse(ctx context.Context, history []domain.ChatMessage) (string, error) {
	msgs := make([]domain.ChatMessage, 0, len(history)+1)
	msgs = append(msgs, domain.ChatMessage{Role: domain.RoleSystem, Content: c.company.ChatSystemPrompt()})
	msgs = append(msgs, history...)
	return c.chat(ctx, msgs)
}

// HelpConverse continues a help conversation anchored to the user's stated
// challenge and department.
func (c *Client) HelpConverse(ctx context.Context, history []domain.ChatMessage, challenge, department string) (string, error) {
	approved := c.approvedForPrompt(ctx)
	msgs := make([]domain.ChatMessage, 0, len(history)+1)
	msgs = append(msgs, domain.ChatMessage{Role: domain.RoleSystem, Content: c.company.HelpSystemPrompt(challenge, department, approved)})
	msgs = append(msgs, history...)
	return c.chat(ctx, msgs)
}

// WeeklyTip generates one channel-ready tip.
func (c *Client) WeeklyTip(ctx context.Context) (string, error) {
	return c.chat(ctx, []domain.ChatMessage{
		{Role: domain.RoleUser, Content: c.company.WeeklyTipPrompt()},
	})
}

func (c *Client) approvedForPrompt(ctx context.Context) []domain.Submission {
	if c.submissions == nil {
		return nil
	}
	approved, err := c.submissions.ApprovedSubmissions(ctx)
	if err != nil {
		return nil
	}
	return approved
}

// resolveAPIKey fetches the API key from SSM on the first call and returns the
// cached result on every subsequent call within the same process lifetime.
func (c *Client) resolveAPIKey(ctx context.Context) (string, error) {
	c.keyOnce.Do(func() {
		c.apiKey, c.keyErr = fetchAPIKeyFromParamStore(ctx, c.getter, c.tokenParameterName())
	})
	return c.apiKey, c.keyErr
}

func (c *Client) tokenParameterName() string {
	return c.paramPrefix + "/open-ai-token"
}

// resolvedHTTPClient returns the configured HTTP client, or a default with a
// timeout if none was set (e.g. in tests that nil out the field).
func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: 25 * time.Second}
}

func chatURL(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	if strings.HasSuffix(base, "/v1") {
		return base + "/chat/completions"
	}
	return base + "/v1/chat/completions"
}

func (c *Client) chat(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	apiKey, err := c.resolveAPIKey(ctx)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("openai: marshal request: %w", err)
	}

	url := chatURL(c.baseURL)

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if reqErr != nil {
		return "", fmt.Errorf("openai: create request: %w", reqErr)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	raw, err := c.doJSONRequest(req, url)
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", err)
	}

	var payload chatResponse
	if decErr := json.Unmarshal(raw, &payload); decErr != nil {
		return "", fmt.Errorf("openai: decode response: %w", decErr)
	}
	if len(payload.Choices) == 0 {
		return "", errors.New("openai: no choices in response")
	}
	return payload.Choices[0].Message.Content, nil
}

func (c *Client) doJSONRequest(req *http.Request, url string) ([]byte, error) {
	res, doErr := c.resolvedHTTPClient().Do(req)
	if doErr != nil {
		return nil, doErr
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        url,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}

func fetchAPIKeyFromParamStore(ctx context.Context, getter Getter, name string) (string, error) {
	if getter == nil {
		return "", errors.New("openai: paramstore getter is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("openai: token parameter name is empty")
	}

	raw, err := getter.GetParameter(ctx, name)
	if err != nil {
		return "", fmt.Errorf("openai: fetch token from paramstore: %w", err)
	}
	var tp tokenPayload
	if err := json.Unmarshal([]byte(raw), &tp); err != nil {
		return "", fmt.Errorf("openai: unmarshal paramstore token value as JSON: %w", err)
	}
	if tp.Token == "" {
		return "", fmt.Errorf("openai: API token is empty")
	}
	return tp.Token, nil
}
