package response

import (
	"errors"
	"net/http"
	"reminderengine/internal/core/domain/notification"
	"reminderengine/internal/core/domain/permission"
	ratelimiter "reminderengine/internal/core/domain/rate_limiter"
	"reminderengine/internal/core/domain/reminder"

	"github.com/goccy/go-json"
)

type errorResponse struct {
	Error string `json:"error"`
}

func RenderInternalError(rw http.ResponseWriter) {
	RenderError(rw, "internal error", http.StatusInternalServerError)
}

func RenderRateLimitExceeded(rw http.ResponseWriter) {
	RenderError(rw, "rate limit exceeded", http.StatusTooManyRequests)
}

// RenderActionError maps errors of snooze, dismiss and permission updates to
// the matching status.
func RenderActionError(rw http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, notification.ErrInvalidSnoozeDuration),
		errors.Is(err, permission.ErrParseKind),
		errors.Is(err, permission.ErrParseState):
		RenderError(rw, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, notification.ErrNotificationDoesNotExist),
		errors.Is(err, reminder.ErrReminderDoesNotExist):
		RenderError(rw, err.Error(), http.StatusNotFound)
	case errors.Is(err, notification.ErrNotificationDismissed),
		errors.Is(err, reminder.ErrReminderIsNotActive):
		RenderError(rw, err.Error(), http.StatusConflict)
	case errors.Is(err, ratelimiter.ErrRateLimitExceeded):
		RenderRateLimitExceeded(rw)
	default:
		RenderInternalError(rw)
	}
}

func RenderError(rw http.ResponseWriter, msg string, status int) {
	Render(rw, errorResponse{Error: msg}, status)
}

func Render(rw http.ResponseWriter, res interface{}, status int) {
	rw.Header().Set("Content-Type", "application/json")

	content, err := json.Marshal(res)
	if err != nil {
		rw.WriteHeader(http.StatusInternalServerError)
		return
	}

	rw.WriteHeader(status)
	rw.Write(content) //nolint:errcheck
}
