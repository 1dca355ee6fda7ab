package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ReminderService nudges the admin about submissions awaiting review.
// It runs from the scheduled-trigger endpoint, outside the webhook path.
type ReminderService struct {
	records Records
	msgr    Messenger
	admin   string
	log     *slog.Logger
}

func NewReminderService(records Records, msgr Messenger, adminUserID string, log *slog.Logger) (*ReminderService, error) {
	if records == nil || msgr == nil {
		return nil, errors.New("usecase: reminder dependencies must not be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &ReminderService{records: records, msgr: msgr, admin: adminUserID, log: log}, nil
}

// SendPendingReminder fetches pending submissions and, if any exist, DMs
// the admin a summary. It reports the pending count and whether a
// reminder went out.
func (s *ReminderService) SendPendingReminder(ctx context.Context) (pendingCount int, sent bool, err error) {
	pending, err := s.records.PendingSubmissions(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("usecase: fetch pending submissions: %w", err)
	}
	if len(pending) == 0 || s.admin == "" {
		return len(pending), false, nil
	}

	plural := ""
	if len(pending) > 1 {
		plural = "s"
	}
	msg := fmt.Sprintf("📬 *Reminder: %d submission%s awaiting review*\n\nUse `/pending` to see them and `/approve` or `/decline` to process.",
		len(pending), plural)
	if err := s.msgr.SendDM(ctx, s.admin, msg); err != nil {
		return len(pending), false, fmt.Errorf("usecase: send reminder: %w", err)
	}
	return len(pending), true, nil
}

// TipService posts one generated tip to the announcements channel.
type TipService struct {
	gen  Generator
	msgr Messenger
}

func NewTipService(gen Generator, msgr Messenger) (*TipService, error) {
	if gen == nil || msgr == nil {
		return nil, errors.New("usecase: tip dependencies must not be nil")
	}
	return &TipService{gen: gen, msgr: msgr}, nil
}

// PostWeeklyTip generates the tip and posts it, returning the posted text.
func (s *TipService) PostWeeklyTip(ctx context.Context) (string, error) {
	tip, err := s.gen.WeeklyTip(ctx)
	if err != nil {
		return "", fmt.Errorf("usecase: generate weekly tip: %w", err)
	}
	if err := s.msgr.PostToChannel(ctx, tip); err != nil {
		return "", fmt.Errorf("usecase: post weekly tip: %w", err)
	}
	return tip, nil
}
