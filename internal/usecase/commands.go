package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"innovators-bot/internal/company"
	"innovators-bot/internal/domain"
)

// Command is one slash-command invocation.
type Command struct {
	Name   string // including the leading slash
	Text   string // argument text, may be empty
	UserID string
}

// Result is what a dispatched command hands back to the entry point.
// Ack is the immediate response body; FollowUp, when set, is slow work to
// run after the ack has been flushed (the platform gives commands a
// short response budget).
type Result struct {
	Ack      string
	FollowUp func(ctx context.Context)
}

// Dispatcher maps slash commands to stateless lookups or
// session-initiating actions.
type Dispatcher struct {
	r   *Router
	rng *rand.Rand
}

func NewDispatcher(r *Router, rng *rand.Rand) (*Dispatcher, error) {
	if r == nil {
		return nil, errors.New("usecase: router must not be nil")
	}
	if rng == nil {
		return nil, errors.New("usecase: rng must not be nil")
	}
	return &Dispatcher{r: r, rng: rng}, nil
}

// Dispatch runs one command. Unrecognized commands are acknowledged with
// no action.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	r := d.r
	arg := strings.TrimSpace(cmd.Text)

	switch cmd.Name {
	case "/innovators":
		r.dm(ctx, cmd.UserID, welcomeMessage)

	case "/commands":
		r.dm(ctx, cmd.UserID, commandsHelp)

	case "/help":
		if !r.cfg.Allowed(cmd.UserID) {
			r.dm(ctx, cmd.UserID, notAllowedMessage)
			return Result{}, nil
		}
		return Result{}, r.startHelp(ctx, cmd.UserID)

	case "/submit":
		if !r.cfg.Allowed(cmd.UserID) {
			r.dm(ctx, cmd.UserID, notAllowedMessage)
			return Result{}, nil
		}
		return Result{}, r.startSubmit(ctx, cmd.UserID, submitWelcome)

	case "/new":
		if err := r.sessions.Delete(ctx, cmd.UserID); err != nil {
			return Result{}, newError(ErrorInternal, "session_delete_error", err)
		}
		r.dm(ctx, cmd.UserID, "✨ Fresh start! What can I help you with?")

	case "/tools":
		r.dm(ctx, cmd.UserID, r.company.FormatToolsList(arg))

	case "/workflows":
		ws, err := r.records.Workflows(ctx)
		if err != nil {
			// Read failures degrade to the empty catalog rather than
			// surfacing an error to the user.
			r.log.Error("workflow read failed", "err", err)
			ws = nil
		}
		r.dm(ctx, cmd.UserID, company.FormatWorkflows(ws, arg))

	case "/innovators-circle":
		approved := d.approved(ctx)
		r.dm(ctx, cmd.UserID, company.HallOfFame(approved))

	case "/tip":
		return Result{
			Ack: "💡 Finding you a tip...",
			FollowUp: func(ctx context.Context) {
				approved := d.approved(ctx)
				r.dm(ctx, cmd.UserID, company.RandomTip(approved, d.rng))
			},
		}, nil

	case "/pending":
		if !d.requireAdmin(ctx, cmd.UserID) {
			return Result{}, nil
		}
		pending, err := r.records.PendingSubmissions(ctx)
		if err != nil {
			r.log.Error("pending read failed", "err", err)
			pending = nil
		}
		r.dm(ctx, cmd.UserID, company.PendingList(pending))

	case "/approve":
		return Result{}, d.review(ctx, cmd, domain.StatusApproved)

	case "/decline":
		return Result{}, d.review(ctx, cmd, domain.StatusDeclined)

	case "/seed":
		if !d.requireAdmin(ctx, cmd.UserID) {
			return Result{}, nil
		}
		ws := make([]domain.Workflow, 0, len(r.company.Workflows))
		for team, items := range r.company.Workflows {
			ws = append(ws, domain.Workflow{Team: team, Items: items})
		}
		if err := r.records.SeedWorkflows(ctx, ws); err != nil {
			r.log.Error("seed workflows failed", "err", err)
			r.dm(ctx, cmd.UserID, "❌ Failed to seed workflows. Please try again.")
			return Result{}, nil
		}
		r.dm(ctx, cmd.UserID, fmt.Sprintf("🌱 Seeded workflows for %d teams.", len(ws)))

	default:
		// Unknown commands are not errors; acknowledge and move on.
	}
	return Result{}, nil
}

// review handles the row-addressed approve/decline commands.
func (d *Dispatcher) review(ctx context.Context, cmd Command, status string) error {
	r := d.r
	if !d.requireAdmin(ctx, cmd.UserID) {
		return nil
	}

	verb := "approve"
	if status == domain.StatusDeclined {
		verb = "decline"
	}

	row, err := strconv.Atoi(strings.TrimSpace(cmd.Text))
	if err != nil || row <= 0 {
		r.dm(ctx, cmd.UserID, fmt.Sprintf("Usage: `/%s [row number]`\n\nUse `/pending` to see submissions awaiting review.", verb))
		return nil
	}

	sub, err := r.records.SubmissionByRow(ctx, row)
	if err != nil {
		r.log.Error("submission lookup failed", "row", row, "err", err)
		sub = nil
	}
	if sub == nil {
		r.dm(ctx, cmd.UserID, fmt.Sprintf("❌ No submission found at row %d", row))
		return nil
	}

	if err := r.records.UpdateSubmissionStatus(ctx, row, status); err != nil {
		r.log.Error("status update failed", "row", row, "status", status, "err", err)
		r.dm(ctx, cmd.UserID, fmt.Sprintf("❌ Failed to %s submission. Please try again.", verb))
		return nil
	}

	if status == domain.StatusApproved {
		r.dm(ctx, cmd.UserID, fmt.Sprintf("✅ Approved submission from *%s*!\n\nThey've been notified and added to the Innovators Circle.", sub.UserName))
		if sub.UserID != "" {
			r.dm(ctx, sub.UserID,
				"🎉 *Congratulations!* Your submission has been approved!\n\n"+
					"You're now officially part of the *Innovators Circle* hall of fame! 🏆\n\n"+
					"Your solution:\n_"+sub.Answers.Problem+"_\n\n"+
					"We'll be in touch about your reward — a night out on us! 🍽️\n\n"+
					"Keep those innovative ideas coming!")
		}
		return nil
	}

	r.dm(ctx, cmd.UserID, fmt.Sprintf("✅ Declined submission from *%s*.", sub.UserName))
	if sub.UserID != "" {
		r.dm(ctx, sub.UserID,
			"Thanks for your submission! 🙏\n\n"+
				"After review, this particular solution wasn't quite the right fit for the Innovators Circle — "+
				"but we really appreciate you thinking about ways to improve how we work!\n\n"+
				"Keep experimenting with AI and submit again when you find another win. "+
				"Every problem solved is a step forward! 💪")
	}
	return nil
}

func (d *Dispatcher) requireAdmin(ctx context.Context, userID string) bool {
	if userID == d.r.cfg.AdminUserID && userID != "" {
		return true
	}
	d.r.dm(ctx, userID, adminOnlyMessage)
	return false
}

// approved fetches approved submissions, degrading to an empty list on
// read failure per the stale-read policy.
func (d *Dispatcher) approved(ctx context.Context) []domain.Submission {
	subs, err := d.r.records.ApprovedSubmissions(ctx)
	if err != nil {
		d.r.log.Error("approved read failed", "err", err)
		return nil
	}
	return subs
}
