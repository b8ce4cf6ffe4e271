package snoozenotification

import (
	"context"
	"io"
	"net/http"
	e "reminderengine/internal/core/domain/errors"
	"reminderengine/internal/core/domain/notification"
	service "reminderengine/internal/core/services/snooze_notification"
	"reminderengine/internal/http/handlers/response"
	"strconv"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goccy/go-json"
)

const MaxMinutes = notification.MaxSnoozeMinutes

type Snoozer interface {
	Snooze(ctx context.Context, id notification.ID, minutes int) (service.Result, error)
}

type Handler struct {
	snoozer Snoozer
}

func New(snoozer Snoozer) *Handler {
	if snoozer == nil {
		panic(e.NewNilArgumentError("snoozer"))
	}
	return &Handler{snoozer: snoozer}
}

type Input struct {
	Minutes *int `json:"minutes"`
}

func (i *Input) FromJSON(r io.Reader) error {
	return json.NewDecoder(r).Decode(i)
}

// Validate leaves non-positive values to the snooze service.
func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Minutes, validation.NotNil, validation.Max(MaxMinutes)),
	)
}

type Result struct {
	Reminder     response.Reminder     `json:"reminder"`
	Notification response.Notification `json:"notification"`
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	notificationID, err := strconv.ParseInt(chi.URLParam(r, "notificationID"), 10, 64)
	if err != nil {
		response.RenderError(rw, "invalid notification ID", http.StatusBadRequest)
		return
	}

	input := Input{}
	if err := input.FromJSON(r.Body); err != nil {
		response.RenderError(rw, "invalid request data", http.StatusBadRequest)
		return
	}
	if err := input.Validate(); err != nil {
		response.RenderError(rw, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.snoozer.Snooze(r.Context(), notification.ID(notificationID), *input.Minutes)
	if err != nil {
		response.RenderActionError(rw, err)
		return
	}

	res := Result{}
	res.Reminder.FromDomainType(result.Reminder)
	res.Notification.FromDomainType(result.Notification)
	response.Render(rw, res, http.StatusOK)
}
