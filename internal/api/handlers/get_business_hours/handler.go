package get_business_hours

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-StudioScheduler/internal/api/handlers"
	settingsRepo "github.com/m04kA/SMC-StudioScheduler/internal/infra/storage/settings"
)

const (
	op = "GET /tenants/{id}/business-hours"

	msgInvalidTenantID = "некорректный ID студии"
	msgNotFound        = "настройки студии не найдены"
)

type Handler struct {
	repo   SettingsRepository
	logger Logger
}

func NewHandler(repo SettingsRepository, logger Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// Handle GET /api/v1/tenants/{tenantId}/business-hours
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, err := handlers.TenantID(r)
	if err != nil {
		h.logger.Warn("%s - Invalid tenant ID: %v", op, err)
		handlers.RespondBadRequest(w, msgInvalidTenantID)
		return
	}

	tenant, err := h.repo.Get(r.Context(), tenantID)
	if err != nil {
		if errors.Is(err, settingsRepo.ErrSettingsNotFound) {
			h.logger.Warn("%s - Settings not found: tenant_id=%d", op, tenantID)
			handlers.RespondNotFound(w, msgNotFound)
			return
		}
		h.logger.Error("%s - Failed to get settings: tenant_id=%d, error=%v", op, tenantID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromTenant(*tenant))
}
