package events

import (
	"net/http"
	e "reminderengine/internal/core/domain/errors"
	"reminderengine/internal/core/domain/logging"
	"reminderengine/internal/core/domain/reminder"
	"reminderengine/internal/http/handlers/response"
	"reminderengine/internal/implementations/prompt"
)

// Handler streams the owner's prompt events. The SSE server is expected to
// create streams on subscription.
type Handler struct {
	log       logging.Logger
	sseServer http.Handler
	owner     reminder.OwnerID
}

func New(log logging.Logger, sseServer http.Handler, owner reminder.OwnerID) *Handler {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if sseServer == nil {
		panic(e.NewNilArgumentError("sseServer"))
	}
	return &Handler{log: log, sseServer: sseServer, owner: owner}
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	streamID := r.URL.Query().Get("stream")
	if streamID != prompt.StreamID(h.owner) {
		response.RenderError(rw, "invalid stream", http.StatusBadRequest)
		return
	}

	h.log.Info(r.Context(), "Subscribed to prompt events.", logging.Entry("streamID", streamID))
	h.sseServer.ServeHTTP(rw, r)
	h.log.Info(r.Context(), "Unsubscribed from prompt events.", logging.Entry("streamID", streamID))
}
