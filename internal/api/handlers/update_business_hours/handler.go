package update_business_hours

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-StudioScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-StudioScheduler/internal/api/middleware"
	updateBusinessHours "github.com/m04kA/SMC-StudioScheduler/internal/usecase/update_business_hours"
)

const (
	op = "PUT /tenants/{id}/business-hours"

	msgInvalidTenantID    = "некорректный ID студии"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgForbidden          = "изменять настройки может только менеджер"
)

type Handler struct {
	useCase UpdateBusinessHoursUseCase
	logger  Logger
}

func NewHandler(useCase UpdateBusinessHoursUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PUT /api/v1/tenants/{tenantId}/business-hours
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, err := handlers.TenantID(r)
	if err != nil {
		h.logger.Warn("%s - Invalid tenant ID: %v", op, err)
		handlers.RespondBadRequest(w, msgInvalidTenantID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req updateBusinessHours.Request
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", op, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID
	req.Role = middleware.GetRole(r.Context())
	req.TenantID = tenantID

	result, err := h.useCase.Execute(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, updateBusinessHours.ErrAccessDenied):
			h.logger.Warn("%s - Access denied: tenant_id=%d, user_id=%d", op, tenantID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, updateBusinessHours.ErrInvalidInput):
			h.logger.Warn("%s - Invalid input: tenant_id=%d, error=%v", op, tenantID, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("%s - Failed to update settings: tenant_id=%d, error=%v", op, tenantID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("%s - Settings updated: tenant_id=%d, user_id=%d, published=%t, sessions=%d",
		op, tenantID, userID, result.Published, result.SessionsUpdated)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
