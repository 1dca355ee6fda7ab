package usecase

import (
	"context"
	"strings"

	"innovators-bot/internal/domain"
)

// handleChat runs the single-state brainstorming loop. History writes go
// through the store's append operation so two near-simultaneous
// deliveries can't overwrite each other's turns.
func (r *Router) handleChat(ctx context.Context, userID, text string, sess *domain.Session) error {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "submit":
		return r.startSubmit(ctx, userID, submitSwitch)
	case "reset", "cancel":
		if err := r.sessions.Delete(ctx, userID); err != nil {
			return newError(ErrorInternal, "session_delete_error", err)
		}
		r.dm(ctx, userID, chatCleared)
		return nil
	}

	userTurn := domain.ChatMessage{Role: domain.RoleUser, Content: text}
	if err := r.sessions.AppendChatHistory(ctx, userID, userTurn); err != nil {
		return newError(ErrorInternal, "session_save_error", err)
	}

	current, err := r.sessions.Get(ctx, userID)
	if err != nil {
		return newError(ErrorInternal, "session_load_error", err)
	}
	history := append([]domain.ChatMessage(nil), userTurn)
	if current != nil && current.Chat != nil {
		history = current.Chat.History
	}

	reply, err := r.gen.Converse(ctx, history)
	if err != nil {
		r.log.Error("chat generation failed", "user", userID, "err", err)
		r.dm(ctx, userID, retryMessage)
		return nil
	}

	if err := r.sessions.AppendChatHistory(ctx, userID, domain.ChatMessage{Role: domain.RoleAssistant, Content: reply}); err != nil {
		return newError(ErrorInternal, "session_save_error", err)
	}
	r.dm(ctx, userID, reply)
	return nil
}
