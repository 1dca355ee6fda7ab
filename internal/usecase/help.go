package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"innovators-bot/internal/company"
	"innovators-bot/internal/domain"
)

// handleHelp advances the help flow by one message. rerun=true tells the
// router to feed the same text back in under the updated state; the
// department step uses it when the input turns out to be the challenge
// itself.
func (r *Router) handleHelp(ctx context.Context, userID, text string, sess *domain.Session) (rerun bool, err error) {
	trimmed := strings.ToLower(strings.TrimSpace(text))
	if trimmed == "cancel" {
		if err := r.sessions.Delete(ctx, userID); err != nil {
			return false, newError(ErrorInternal, "session_delete_error", err)
		}
		r.dm(ctx, userID, helpCancelled)
		return false, nil
	}
	if trimmed == "submit" {
		return false, r.startSubmit(ctx, userID, submitSwitch)
	}

	switch sess.Help.Step {
	case domain.StepDepartment:
		return r.helpDepartment(ctx, userID, text, sess)
	case domain.StepChallenge:
		return false, r.helpChallenge(ctx, userID, text, sess)
	case domain.StepConversation:
		return false, r.helpConversation(ctx, userID, text, sess)
	default:
		return false, newError(ErrorInternal, "invalid_help_step", nil)
	}
}

// helpDepartment resolves the user's team. Unmatchable input that reads
// like a question skips the step entirely; the text is the challenge.
func (r *Router) helpDepartment(ctx context.Context, userID, text string, sess *domain.Session) (rerun bool, err error) {
	if team := r.company.MatchTeam(text); team != "" {
		sess.Help.Department = team
		sess.Help.Step = domain.StepChallenge
		if err := r.sessions.Put(ctx, userID, sess); err != nil {
			return false, newError(ErrorInternal, "session_save_error", err)
		}
		r.dm(ctx, userID, helpChallengePrompt)
		return false, nil
	}

	if company.LooksLikeQuestion(text) {
		sess.Help.Step = domain.StepChallenge
		if err := r.sessions.Put(ctx, userID, sess); err != nil {
			return false, newError(ErrorInternal, "session_save_error", err)
		}
		return true, nil
	}

	examples := strings.Join(r.company.ExampleTeams(4), ", ")
	r.dm(ctx, userID, "I didn't recognize that team. Try one like "+examples+" — or just describe your challenge.")
	return false, nil
}

// helpChallenge captures the first challenge statement, logs the help
// request, and seeds the conversation with one exchange.
func (r *Router) helpChallenge(ctx context.Context, userID, text string, sess *domain.Session) error {
	sess.Help.Challenge = text
	sess.Help.Step = domain.StepConversation
	if err := r.sessions.Put(ctx, userID, sess); err != nil {
		return newError(ErrorInternal, "session_save_error", err)
	}

	req := domain.HelpRequest{
		ID:         uuid.NewString(),
		UserID:     userID,
		Department: sess.Help.Department,
		Challenge:  text,
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.records.AppendHelpRequest(ctx, req); err != nil {
		r.log.Error("append help request failed", "user", userID, "err", err)
	}

	r.dm(ctx, userID, thinkingMessage)

	history := []domain.ChatMessage{{Role: domain.RoleUser, Content: text}}
	reply, err := r.gen.HelpConverse(ctx, history, sess.Help.Challenge, sess.Help.Department)
	if err != nil {
		r.log.Error("help generation failed", "user", userID, "err", err)
		r.dm(ctx, userID, retryMessage)
		return nil
	}

	sess.Help.History = append(history, domain.ChatMessage{Role: domain.RoleAssistant, Content: reply})
	if err := r.sessions.Put(ctx, userID, sess); err != nil {
		return newError(ErrorInternal, "session_save_error", err)
	}
	r.dm(ctx, userID, reply)
	return nil
}

// helpConversation runs the open-ended loop: append the turn, generate
// with full history and the original challenge context, append the reply.
// A failed generation saves nothing, so the turn can simply be resent.
func (r *Router) helpConversation(ctx context.Context, userID, text string, sess *domain.Session) error {
	history := append(append([]domain.ChatMessage(nil), sess.Help.History...),
		domain.ChatMessage{Role: domain.RoleUser, Content: text})

	reply, err := r.gen.HelpConverse(ctx, history, sess.Help.Challenge, sess.Help.Department)
	if err != nil {
		r.log.Error("help generation failed", "user", userID, "err", err)
		r.dm(ctx, userID, retryMessage)
		return nil
	}

	sess.Help.History = append(history, domain.ChatMessage{Role: domain.RoleAssistant, Content: reply})
	if err := r.sessions.Put(ctx, userID, sess); err != nil {
		return newError(ErrorInternal, "session_save_error", err)
	}
	r.dm(ctx, userID, reply)
	return nil
}
