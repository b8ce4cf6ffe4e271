package setchannelenabled

import (
	"errors"
	"io"
	"net/http"
	"reminderengine/internal/core/dispatcher"
	"reminderengine/internal/core/domain/delivery"
	e "reminderengine/internal/core/domain/errors"
	"reminderengine/internal/http/handlers/response"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goccy/go-json"
)

type Switch interface {
	SetChannelEnabled(name delivery.ChannelName, enabled bool) error
}

type Handler struct {
	channels Switch
}

func New(channels Switch) *Handler {
	if channels == nil {
		panic(e.NewNilArgumentError("channels"))
	}
	return &Handler{channels: channels}
}

type Input struct {
	Enabled *bool `json:"enabled"`
}

func (i *Input) FromJSON(r io.Reader) error {
	return json.NewDecoder(r).Decode(i)
}

func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Enabled, validation.NotNil),
	)
}

type Result struct {
	Channel string `json:"channel"`
	Enabled bool   `json:"enabled"`
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	input := Input{}
	if err := input.FromJSON(r.Body); err != nil {
		response.RenderError(rw, "invalid request data", http.StatusBadRequest)
		return
	}
	if err := input.Validate(); err != nil {
		response.RenderError(rw, err.Error(), http.StatusBadRequest)
		return
	}

	name := delivery.ChannelName(chi.URLParam(r, "channel"))
	if err := h.channels.SetChannelEnabled(name, *input.Enabled); err != nil {
		if errors.Is(err, dispatcher.ErrUnknownChannel) {
			response.RenderError(rw, err.Error(), http.StatusNotFound)
			return
		}
		response.RenderInternalError(rw)
		return
	}
	response.Render(rw, Result{Channel: string(name), Enabled: *input.Enabled}, http.StatusOK)
}
