package updatepermission

import (
	"io"
	"net/http"
	e "reminderengine/internal/core/domain/errors"
	"reminderengine/internal/core/domain/logging"
	"reminderengine/internal/core/domain/permission"
	"reminderengine/internal/core/domain/reminder"
	"reminderengine/internal/http/handlers/response"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goccy/go-json"
)

type Handler struct {
	log         logging.Logger
	permissions permission.Service
	owner       reminder.OwnerID
}

func New(log logging.Logger, permissions permission.Service, owner reminder.OwnerID) *Handler {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if permissions == nil {
		panic(e.NewNilArgumentError("permissions"))
	}
	return &Handler{log: log, permissions: permissions, owner: owner}
}

type Input struct {
	State string `json:"state"`
}

func (i *Input) FromJSON(r io.Reader) error {
	return json.NewDecoder(r).Decode(i)
}

func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(
			&i.State,
			validation.Required,
			validation.In(
				permission.StatePrompt.String(),
				permission.StateGranted.String(),
				permission.StateDenied.String(),
			),
		),
	)
}

type Result struct {
	Kind  string `json:"kind"`
	State string `json:"state"`
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	kind, err := permission.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		response.RenderError(rw, err.Error(), http.StatusNotFound)
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
	state, err := permission.ParseState(input.State)
	if err != nil {
		response.RenderActionError(rw, err)
		return
	}

	if err := h.permissions.Update(r.Context(), h.owner, kind, state); err != nil {
		logging.Error(r.Context(), h.log, err, logging.Entry("kind", kind.String()))
		response.RenderActionError(rw, err)
		return
	}

	h.log.Info(
		r.Context(),
		"Permission updated.",
		logging.Entry("owner", h.owner),
		logging.Entry("kind", kind.String()),
		logging.Entry("state", state.String()),
	)
	response.Render(rw, Result{Kind: kind.String(), State: state.String()}, http.StatusOK)
}
