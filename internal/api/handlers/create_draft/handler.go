package create_draft

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-StudioScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-StudioScheduler/internal/api/middleware"
	"github.com/m04kA/SMC-StudioScheduler/internal/usecase/draft_booking"
	"github.com/m04kA/SMC-StudioScheduler/pkg/validate"
)

const (
	op = "POST /tenants/{id}/drafts"

	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidTime        = "некорректное время, ожидается RFC3339"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNoCapacity         = "нет свободных слотов"
	msgInvalidGesture     = "некорректный интервал или тип слота"
	msgUnavailable        = "данные для расчета емкости временно недоступны"
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

// Handle POST /api/v1/tenants/{tenantId}/drafts
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	role := middleware.GetRole(r.Context())

	var req CreateDraftRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", op, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if err := validate.Struct(&req); err != nil {
		h.logger.Warn("%s - Validation failed: %v", op, err)
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	sessionID, _ := middleware.GetSessionID(r.Context())
	entry, ok := handlers.ResolveSession(w, r, h.registry, sessionID, h.logger, op)
	if !ok {
		return
	}

	var (
		result *draft_booking.Result
		err    error
	)
	switch req.Mode {
	case string(draft_booking.GesturePointer):
		pointer, perr := req.ToPointerRequest(userID, role)
		if perr != nil {
			handlers.RespondBadRequest(w, msgInvalidTime)
			return
		}
		result, err = entry.Drafts.OnPointerSelect(r.Context(), pointer)
	default:
		rng, perr := req.ToRangeRequest(userID, role)
		if perr != nil {
			handlers.RespondBadRequest(w, msgInvalidTime)
			return
		}
		result, err = entry.Drafts.OnRangeSelect(r.Context(), rng)
	}

	if err != nil {
		switch {
		case errors.Is(err, draft_booking.ErrNoCapacityRemaining):
			h.logger.Warn("%s - No capacity: user_id=%d, error=%v", op, userID, err)
			handlers.RespondConflict(w, msgNoCapacity)

		case errors.Is(err, draft_booking.ErrInvalidGesture):
			h.logger.Warn("%s - Invalid gesture: user_id=%d, error=%v", op, userID, err)
			handlers.RespondBadRequest(w, msgInvalidGesture)

		case errors.Is(err, draft_booking.ErrCapacityUnavailable):
			h.logger.Warn("%s - Capacity unavailable: user_id=%d, error=%v", op, userID, err)
			handlers.RespondServiceUnavailable(w, msgUnavailable)

		default:
			h.logger.Error("%s - Failed to create draft: user_id=%d, error=%v", op, userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	status := http.StatusCreated
	if result.Ignored {
		status = http.StatusOK
	}

	h.logger.Info("%s - Gesture handled: user_id=%d, mode=%s, state=%s, deferred=%t, ignored=%t",
		op, userID, req.Mode, result.State, result.Deferred, result.Ignored)
	handlers.RespondJSON(w, status, FromResult(result, entry.Schedule.Location()))
}
