package save_draft

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-StudioScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-StudioScheduler/internal/api/middleware"
	"github.com/m04kA/SMC-StudioScheduler/internal/usecase/draft_booking"
)

const (
	op = "POST /tenants/{id}/drafts/{key}/save"

	msgDraftNotFound = "черновик не найден"
	msgInvalidState  = "черновик уже сохранен или удален"
	msgNoCapacity    = "нет свободных слотов"
	msgUnavailable   = "данные для расчета емкости временно недоступны"
)

// SaveResponse HTTP response model
type SaveResponse struct {
	State   string                   `json:"state"`
	Booking handlers.BookingResponse `json:"booking"`
}

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

// Handle POST /api/v1/tenants/{tenantId}/drafts/{key}/save
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	sessionID, _ := middleware.GetSessionID(r.Context())
	entry, ok := handlers.ResolveSession(w, r, h.registry, sessionID, h.logger, op)
	if !ok {
		return
	}

	result, err := entry.Drafts.Save(r.Context(), key)
	if err != nil {
		switch {
		case errors.Is(err, draft_booking.ErrDraftNotFound):
			h.logger.Warn("%s - Draft not found: key=%s", op, key)
			handlers.RespondNotFound(w, msgDraftNotFound)

		case errors.Is(err, draft_booking.ErrInvalidState):
			h.logger.Warn("%s - Invalid state: key=%s, error=%v", op, key, err)
			handlers.RespondConflict(w, msgInvalidState)

		case errors.Is(err, draft_booking.ErrNoCapacityRemaining):
			h.logger.Warn("%s - No capacity: key=%s, error=%v", op, key, err)
			handlers.RespondConflict(w, msgNoCapacity)

		case errors.Is(err, draft_booking.ErrCapacityUnavailable):
			h.logger.Warn("%s - Capacity unavailable: key=%s, error=%v", op, key, err)
			handlers.RespondServiceUnavailable(w, msgUnavailable)

		default:
			h.logger.Error("%s - Failed to save draft: key=%s, error=%v", op, key, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("%s - Draft saved: key=%s, booking_id=%d", op, key, result.Booking.ID)
	handlers.RespondJSON(w, http.StatusOK, SaveResponse{
		State:   string(result.State),
		Booking: handlers.FromBooking(*result.Booking, entry.Schedule.Location()),
	})
}
