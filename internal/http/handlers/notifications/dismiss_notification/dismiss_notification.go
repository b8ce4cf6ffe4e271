package dismissnotification

import (
	"context"
	"net/http"
	e "reminderengine/internal/core/domain/errors"
	"reminderengine/internal/core/domain/notification"
	service "reminderengine/internal/core/services/dismiss_notification"
	"reminderengine/internal/http/handlers/response"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type Dismisser interface {
	Dismiss(ctx context.Context, id notification.ID) (service.Result, error)
}

type Handler struct {
	dismisser Dismisser
}

func New(dismisser Dismisser) *Handler {
	if dismisser == nil {
		panic(e.NewNilArgumentError("dismisser"))
	}
	return &Handler{dismisser: dismisser}
}

type Result struct {
	Reminder         response.Reminder     `json:"reminder"`
	Notification     response.Notification `json:"notification"`
	AlreadyDismissed bool                  `json:"already_dismissed"`
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	notificationID, err := strconv.ParseInt(chi.URLParam(r, "notificationID"), 10, 64)
	if err != nil {
		response.RenderError(rw, "invalid notification ID", http.StatusBadRequest)
		return
	}

	result, err := h.dismisser.Dismiss(r.Context(), notification.ID(notificationID))
	if err != nil {
		response.RenderActionError(rw, err)
		return
	}

	res := Result{AlreadyDismissed: result.AlreadyDismissed}
	res.Reminder.FromDomainType(result.Reminder)
	res.Notification.FromDomainType(result.Notification)
	response.Render(rw, res, http.StatusOK)
}
