package delete_draft

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-StudioScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-StudioScheduler/internal/api/middleware"
	"github.com/m04kA/SMC-StudioScheduler/internal/usecase/draft_booking"
)

const (
	op = "DELETE /tenants/{id}/drafts/{key}"

	msgDraftNotFound = "черновик не найден"
	msgInvalidState  = "черновик уже сохранен или удален"
)

type Handler struct {
	registry handlers.SessionRegistry
	logger   Logger
}

func NewHandler(registry handlers.SessionRegistry, logger Logger) *Handler {
	return &Handler{
		registry: registry,
		logger:   logger,
	}
}

// Handle DELETE /api/v1/tenants/{tenantId}/drafts/{key}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	sessionID, _ := middleware.GetSessionID(r.Context())
	entry, ok := handlers.ResolveSession(w, r, h.registry, sessionID, h.logger, op)
	if !ok {
		return
	}

	if err := entry.Drafts.Delete(r.Context(), key); err != nil {
		switch {
		case errors.Is(err, draft_booking.ErrDraftNotFound):
			h.logger.Warn("%s - Draft not found: key=%s", op, key)
			handlers.RespondNotFound(w, msgDraftNotFound)

		case errors.Is(err, draft_booking.ErrInvalidState):
			h.logger.Warn("%s - Invalid state: key=%s, error=%v", op, key, err)
			handlers.RespondConflict(w, msgInvalidState)

		default:
			h.logger.Error("%s - Failed to delete draft: key=%s, error=%v", op, key, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("%s - Draft deleted: key=%s", op, key)
	w.WriteHeader(http.StatusNoContent)
}
