package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"innovators-bot/internal/domain"
)

// reviewAffirmatives confirm the polished summary at the review step.
var reviewAffirmatives = map[string]bool{
	"submit":  true,
	"yes":     true,
	"y":       true,
	"confirm": true,
	"ok":      true,
}

// handleSubmit advances the submission state machine by one message.
func (r *Router) handleSubmit(ctx context.Context, userID, text string, sess *domain.Session) error {
	if strings.EqualFold(strings.TrimSpace(text), "cancel") {
		if err := r.sessions.Delete(ctx, userID); err != nil {
			return newError(ErrorInternal, "session_delete_error", err)
		}
		r.dm(ctx, userID, submitCancelled)
		return nil
	}

	if sess.Submit.Step == domain.StepReview {
		return r.handleReview(ctx, userID, text, sess)
	}

	step := sess.Submit.Step
	if err := sess.Submit.Answers.Set(step, text); err != nil {
		return newError(ErrorInternal, "invalid_submit_step", err)
	}

	next, err := domain.NextSubmitStep(step)
	if err != nil {
		return newError(ErrorInternal, "invalid_submit_step", err)
	}

	if next != domain.StepReview {
		sess.Submit.Step = next
		if err := r.sessions.Put(ctx, userID, sess); err != nil {
			return newError(ErrorInternal, "session_save_error", err)
		}
		r.dm(ctx, userID, "Got it! ✅\n\n"+questions[next])
		return nil
	}

	// Persist the final answer before the slow polish call so a crash
	// mid-generation doesn't lose it.
	if err := r.sessions.Put(ctx, userID, sess); err != nil {
		return newError(ErrorInternal, "session_save_error", err)
	}
	r.dm(ctx, userID, polishingMessage)

	summary, err := r.gen.Polish(ctx, sess.Submit.Answers, "")
	if err != nil {
		return r.failSubmitGeneration(ctx, userID, err)
	}

	sess.Submit.Step = domain.StepReview
	sess.Submit.Summary = summary
	if err := r.sessions.Put(ctx, userID, sess); err != nil {
		return newError(ErrorInternal, "session_save_error", err)
	}
	r.dm(ctx, userID, reviewPrompt(summary))
	return nil
}

// handleReview accepts a confirmation or treats the text as an edit
// request for another polish pass over the unchanged answers.
func (r *Router) handleReview(ctx context.Context, userID, text string, sess *domain.Session) error {
	if reviewAffirmatives[strings.ToLower(strings.TrimSpace(text))] {
		return r.confirmSubmission(ctx, userID, sess)
	}

	summary, err := r.gen.Polish(ctx, sess.Submit.Answers, text)
	if err != nil {
		return r.failSubmitGeneration(ctx, userID, err)
	}
	sess.Submit.Summary = summary
	if err := r.sessions.Put(ctx, userID, sess); err != nil {
		return newError(ErrorInternal, "session_save_error", err)
	}
	r.dm(ctx, userID, reviewPrompt(summary))
	return nil
}

// confirmSubmission persists the record, notifies the admin, and ends
// the session. A failed write keeps the session at review so the user
// can confirm again without re-answering.
func (r *Router) confirmSubmission(ctx context.Context, userID string, sess *domain.Session) error {
	sub := domain.Submission{
		UserID:    userID,
		UserName:  r.displayName(ctx, userID),
		Answers:   sess.Submit.Answers,
		Summary:   sess.Submit.Summary,
		Status:    domain.StatusPending,
		CreatedAt: time.Now().UTC(),
	}

	row, err := r.records.AppendSubmission(ctx, sub)
	if err != nil {
		r.log.Error("append submission failed", "user", userID, "err", err)
		r.dm(ctx, userID, submissionErrorMessage)
		return nil
	}

	r.notifyAdmin(ctx, userID, sess.Submit.Summary, row)

	if err := r.sessions.Delete(ctx, userID); err != nil {
		return newError(ErrorInternal, "session_delete_error", err)
	}
	r.dm(ctx, userID, submissionConfirmed)
	return nil
}

// failSubmitGeneration applies the fail-closed policy: apologize and
// discard the session rather than leave half-collected answers behind.
func (r *Router) failSubmitGeneration(ctx context.Context, userID string, cause error) error {
	r.log.Error("submit polish failed", "user", userID, "err", cause)
	r.dm(ctx, userID, submissionErrorMessage)
	if err := r.sessions.Delete(ctx, userID); err != nil {
		return newError(ErrorInternal, "session_delete_error", err)
	}
	return nil
}

func (r *Router) notifyAdmin(ctx context.Context, userID, summary string, row int) {
	if r.cfg.AdminUserID == "" {
		return
	}
	msg := fmt.Sprintf("🎉 *New Innovators Circle Submission!* (Row %d)\n\nSubmitted by: <@%s>\n\n%s\n\n_Use `/pending` to review and approve/decline._",
		row, userID, summary)
	if err := r.msgr.SendDM(ctx, r.cfg.AdminUserID, msg); err != nil {
		r.log.Error("admin notification failed", "err", err)
	}
}

func reviewPrompt(summary string) string {
	return "🎉 Here's your polished submission:\n\n" + summary +
		"\n\nReply *submit* to confirm, or tell me what you'd like changed. Type *cancel* to discard."
}
