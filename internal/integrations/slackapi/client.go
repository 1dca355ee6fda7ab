package slackapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/slack-go/slack"
)

type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// slackConn is the slice of the Slack Web API the messenger uses.
// *slack.Client satisfies it.
type slackConn interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	GetUserInfoContext(ctx context.Context, user string) (*slack.User, error)
	AddReactionContext(ctx context.Context, name string, item slack.ItemRef) error
	RemoveReactionContext(ctx context.Context, name string, item slack.ItemRef) error
}

// Client sends messages through the Slack Web API. The bot token is
// resolved from the parameter store on first use and reused for the
// lifetime of the process.
type Client struct {
	getter      Getter
	paramPrefix string
	channelID   string

	connOnce sync.Once
	conn     slackConn
	connErr  error

	newConn func(token string) slackConn
}

type Option func(*Client)

// WithConn injects a pre-built API connection, bypassing token resolution.
func WithConn(conn slackConn) Option {
	return func(c *Client) {
		c.conn = conn
	}
}

// NewClient creates a Client. channelID is the public channel used by
// PostToChannel (announcements, weekly tips).
func NewClient(ps Getter, paramPrefix, channelID string, opts ...Option) (*Client, error) {
	if ps == nil {
		return nil, errors.New("slackapi: paramstore getter must not be nil")
	}
	paramPrefix = strings.TrimRight(strings.TrimSpace(paramPrefix), "/")
	if paramPrefix == "" {
		return nil, errors.New("slackapi: parameter prefix must not be empty")
	}
	c := &Client{
		getter:      ps,
		paramPrefix: paramPrefix,
		channelID:   channelID,
		newConn:     func(token string) slackConn { return slack.New(token) },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) tokenParameterName() string {
	return c.paramPrefix + "/slack-bot-token"
}

func (c *Client) resolveConn(ctx context.Context) (slackConn, error) {
	c.connOnce.Do(func() {
		if c.conn != nil {
			return
		}
		token, err := c.getter.GetParameter(ctx, c.tokenParameterName())
		if err != nil {
			c.connErr = fmt.Errorf("slackapi: fetch bot token: %w", err)
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.connErr = errors.New("slackapi: bot token is empty")
			return
		}
		c.conn = c.newConn(token)
	})
	return c.conn, c.connErr
}

// SendDM posts a message to a user's DM conversation. Posting to the user
// id opens (or reuses) the DM channel.
func (c *Client) SendDM(ctx context.Context, userID, text string) error {
	conn, err := c.resolveConn(ctx)
	if err != nil {
		return err
	}
	_, _, err = conn.PostMessageContext(ctx, userID, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("slackapi: send dm to %s: %w", userID, err)
	}
	return nil
}

// PostToChannel posts to the configured announcement channel.
func (c *Client) PostToChannel(ctx context.Context, text string) error {
	if c.channelID == "" {
		return errors.New("slackapi: no channel configured")
	}
	conn, err := c.resolveConn(ctx)
	if err != nil {
		return err
	}
	_, _, err = conn.PostMessageContext(ctx, c.channelID, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("slackapi: post to channel %s: %w", c.channelID, err)
	}
	return nil
}

// UserDisplayName resolves a human-readable name for the user.
func (c *Client) UserDisplayName(ctx context.Context, userID string) (string, error) {
	conn, err := c.resolveConn(ctx)
	if err != nil {
		return "", err
	}
	u, err := conn.GetUserInfoContext(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("slackapi: user info %s: %w", userID, err)
	}
	switch {
	case u.Profile.DisplayName != "":
		return u.Profile.DisplayName, nil
	case u.RealName != "":
		return u.RealName, nil
	default:
		return u.Name, nil
	}
}

// AddReaction adds an emoji reaction to a message.
func (c *Client) AddReaction(ctx context.Context, channel, timestamp, emoji string) error {
	conn, err := c.resolveConn(ctx)
	if err != nil {
		return err
	}
	if err := conn.AddReactionContext(ctx, emoji, slack.NewRefToMessage(channel, timestamp)); err != nil {
		return fmt.Errorf("slackapi: add reaction %q: %w", emoji, err)
	}
	return nil
}

// RemoveReaction removes an emoji reaction from a message.
func (c *Client) RemoveReaction(ctx context.Context, channel, timestamp, emoji string) error {
	conn, err := c.resolveConn(ctx)
	if err != nil {
		return err
	}
	if err := conn.RemoveReactionContext(ctx, emoji, slack.NewRefToMessage(channel, timestamp)); err != nil {
		return fmt.Errorf("slackapi: remove reaction %q: %w", emoji, err)
	}
	return nil
}
