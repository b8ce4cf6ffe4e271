package getpermission

import (
	"net/http"
	e "reminderengine/internal/core/domain/errors"
	"reminderengine/internal/core/domain/permission"
	"reminderengine/internal/core/domain/reminder"
	"reminderengine/internal/http/handlers/response"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	permissions permission.Service
	owner       reminder.OwnerID
}

func New(permissions permission.Service, owner reminder.OwnerID) *Handler {
	if permissions == nil {
		panic(e.NewNilArgumentError("permissions"))
	}
	return &Handler{permissions: permissions, owner: owner}
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

	state, err := h.permissions.Query(r.Context(), h.owner, kind)
	if err != nil {
		response.RenderInternalError(rw)
		return
	}
	response.Render(rw, Result{Kind: kind.String(), State: state.String()}, http.StatusOK)
}
