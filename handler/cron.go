package handler

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

type reminderResponse struct {
	Success      bool `json:"success"`
	PendingCount int  `json:"pendingCount"`
	ReminderSent bool `json:"reminderSent"`
}

type tipResponse struct {
	Success bool `json:"success"`
}

// cronAuthorized accepts either the scheduler's bearer token or the
// admin shared secret, so the endpoints stay manually invokable.
func (h *Handler) cronAuthorized(req events.APIGatewayProxyRequest) bool {
	if h.cfg.CronSecret != "" {
		if header(req.Headers, "Authorization") == "Bearer "+h.cfg.CronSecret {
			return true
		}
	}
	if h.cfg.AdminSecret != "" && header(req.Headers, "X-Admin-Secret") == h.cfg.AdminSecret {
		return true
	}
	return false
}

func (h *Handler) handleReminder(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	if !h.cronAuthorized(req) {
		return jsonResponse(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}

	count, sent, err := h.reminder.SendPendingReminder(ctx)
	if err != nil {
		h.log.Error("reminder failed", "err", err)
		return jsonResponse(http.StatusInternalServerError, map[string]any{"success": false, "error": "reminder failed"})
	}
	return jsonResponse(http.StatusOK, reminderResponse{Success: true, PendingCount: count, ReminderSent: sent})
}

func (h *Handler) handleWeeklyTip(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	if !h.cronAuthorized(req) {
		return jsonResponse(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}

	if _, err := h.tips.PostWeeklyTip(ctx); err != nil {
		h.log.Error("weekly tip failed", "err", err)
		return jsonResponse(http.StatusInternalServerError, map[string]any{"success": false, "error": "tip failed"})
	}
	return jsonResponse(http.StatusOK, tipResponse{Success: true})
}
