package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"innovators-bot/internal/company"
	"innovators-bot/internal/domain"
)

// SessionStore is the per-user conversation state contract. Get returns
// (nil, nil) for a user with no live session; every write resets the
// sliding TTL.
type SessionStore interface {
	Get(ctx context.Context, userID string) (*domain.Session, error)
	Put(ctx context.Context, userID string, s *domain.Session) error
	Delete(ctx context.Context, userID string) error
	// AppendChatHistory appends turns to a chat-mode session's history
	// without rewriting the rest of the session.
	AppendChatHistory(ctx context.Context, userID string, msgs ...domain.ChatMessage) error
}

// Messenger is the outbound messaging sink. Delivery failures are the
// caller's to log; nothing here retries.
type Messenger interface {
	SendDM(ctx context.Context, userID, text string) error
	PostToChannel(ctx context.Context, text string) error
	UserDisplayName(ctx context.Context, userID string) (string, error)
	AddReaction(ctx context.Context, channel, timestamp, emoji string) error
	RemoveReaction(ctx context.Context, channel, timestamp, emoji string) error
}

// Generator produces natural-language text from prompts and history.
type Generator interface {
	Polish(ctx context.Context, answers domain.SubmitAnswers, editRequest string) (string, error)
	Converse(ctx context.Context, history []domain.ChatMessage) (string, error)
	HelpConverse(ctx context.Context, history []domain.ChatMessage, challenge, department string) (string, error)
	WeeklyTip(ctx context.Context) (string, error)
}

// Records is the submission/help-request/workflow persistence contract.
type Records interface {
	AppendSubmission(ctx context.Context, s domain.Submission) (row int, err error)
	AppendHelpRequest(ctx context.Context, r domain.HelpRequest) error
	ApprovedSubmissions(ctx context.Context) ([]domain.Submission, error)
	PendingSubmissions(ctx context.Context) ([]domain.Submission, error)
	SubmissionByRow(ctx context.Context, row int) (*domain.Submission, error)
	UpdateSubmissionStatus(ctx context.Context, row int, status string) error
	Workflows(ctx context.Context) ([]domain.Workflow, error)
	SeedWorkflows(ctx context.Context, ws []domain.Workflow) error
}

// Config carries the access-control knobs that were ambient globals in
// earlier incarnations of this bot.
type Config struct {
	AdminUserID  string
	PrivateMode  bool
	AllowedUsers []string
}

// Allowed reports whether userID may talk to the bot. The admin always may.
func (c Config) Allowed(userID string) bool {
	if !c.PrivateMode || userID == c.AdminUserID {
		return true
	}
	for _, u := range c.AllowedUsers {
		if u == userID {
			return true
		}
	}
	return false
}

// Router owns per-user conversation dispatch: it loads or creates the
// session for a user and hands the message to the mode handler.
type Router struct {
	sessions SessionStore
	msgr     Messenger
	gen      Generator
	records  Records
	company  *company.Context
	cfg      Config
	log      *slog.Logger
}

func NewRouter(sessions SessionStore, msgr Messenger, gen Generator, records Records, c *company.Context, cfg Config, log *slog.Logger) (*Router, error) {
	if sessions == nil || msgr == nil || gen == nil || records == nil {
		return nil, errors.New("usecase: router dependencies must not be nil")
	}
	if c == nil {
		return nil, errors.New("usecase: company context must not be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Router{sessions: sessions, msgr: msgr, gen: gen, records: records, company: c, cfg: cfg, log: log}, nil
}

// maxHops bounds the transition loop. Two hops cover every legal rerun
// (mode selection into help, department skip into challenge).
const maxHops = 3

// HandleMessage routes one direct message. Handlers signal "process the
// same text again under the new state" by returning rerun=true; the loop
// reloads the session each pass instead of handlers calling each other.
func (r *Router) HandleMessage(ctx context.Context, userID, text string) error {
	if !r.cfg.Allowed(userID) {
		r.dm(ctx, userID, notAllowedMessage)
		return nil
	}

	for hop := 0; hop < maxHops; hop++ {
		sess, err := r.sessions.Get(ctx, userID)
		if err != nil {
			return newError(ErrorInternal, "session_load_error", err)
		}

		var rerun bool
		switch {
		case sess == nil:
			rerun, err = r.selectMode(ctx, userID, text)
		case sess.Mode == domain.ModeSubmit:
			err = r.handleSubmit(ctx, userID, text, sess)
		case sess.Mode == domain.ModeHelp:
			rerun, err = r.handleHelp(ctx, userID, text, sess)
		case sess.Mode == domain.ModeChat:
			err = r.handleChat(ctx, userID, text, sess)
		default:
			err = newError(ErrorInternal, "unknown_mode", fmt.Errorf("mode %q", sess.Mode))
		}
		if err != nil || !rerun {
			return err
		}
	}
	return newError(ErrorInternal, "transition_loop", fmt.Errorf("no settled state after %d hops", maxHops))
}

// selectMode handles a message from a user with no session. The three
// recognized choices start that mode; anything else becomes an implicit
// help request with the text as the challenge, so a user's first message
// can double as their challenge statement.
func (r *Router) selectMode(ctx context.Context, userID, text string) (rerun bool, err error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "submit", "1":
		return false, r.startSubmit(ctx, userID, submitWelcome)
	case "help", "2":
		return false, r.startHelp(ctx, userID)
	case "chat", "3":
		if err := r.sessions.Put(ctx, userID, domain.NewChatSession()); err != nil {
			return false, newError(ErrorInternal, "session_create_error", err)
		}
		r.dm(ctx, userID, chatWelcome)
		return false, nil
	default:
		sess := domain.NewHelpSession()
		sess.Help.Step = domain.StepChallenge
		if err := r.sessions.Put(ctx, userID, sess); err != nil {
			return false, newError(ErrorInternal, "session_create_error", err)
		}
		return true, nil
	}
}

// startSubmit replaces any existing session with a fresh submit session
// and prompts the first question. prefix distinguishes a fresh start
// from a mode switch.
func (r *Router) startSubmit(ctx context.Context, userID, prefix string) error {
	if err := r.sessions.Delete(ctx, userID); err != nil {
		return newError(ErrorInternal, "session_delete_error", err)
	}
	if err := r.sessions.Put(ctx, userID, domain.NewSubmitSession()); err != nil {
		return newError(ErrorInternal, "session_create_error", err)
	}
	r.dm(ctx, userID, prefix+questions[domain.StepProblem])
	return nil
}

// startHelp replaces any existing session with a fresh help session at
// the department question.
func (r *Router) startHelp(ctx context.Context, userID string) error {
	if err := r.sessions.Delete(ctx, userID); err != nil {
		return newError(ErrorInternal, "session_delete_error", err)
	}
	if err := r.sessions.Put(ctx, userID, domain.NewHelpSession()); err != nil {
		return newError(ErrorInternal, "session_create_error", err)
	}
	r.dm(ctx, userID, helpWelcome)
	return nil
}

// dm sends a direct message, logging delivery failures instead of
// propagating them.
func (r *Router) dm(ctx context.Context, userID, text string) {
	if err := r.msgr.SendDM(ctx, userID, text); err != nil {
		r.log.Error("send dm failed", "user", userID, "err", err)
	}
}

// displayName resolves the user's display name, falling back to the user
// id when the lookup fails.
func (r *Router) displayName(ctx context.Context, userID string) string {
	name, err := r.msgr.UserDisplayName(ctx, userID)
	if err != nil || name == "" {
		if err != nil {
			r.log.Warn("user display name lookup failed", "user", userID, "err", err)
		}
		return userID
	}
	return name
}
