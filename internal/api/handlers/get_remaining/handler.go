package get_remaining

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-StudioScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-StudioScheduler/internal/api/middleware"
	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
	"github.com/m04kA/SMC-StudioScheduler/internal/service/capacity"
	"github.com/m04kA/SMC-StudioScheduler/internal/service/rangecache"
	"github.com/m04kA/SMC-StudioScheduler/internal/service/schedule"
)

const (
	op = "GET /tenants/{id}/remaining"

	msgInvalidDate     = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidSlotType = "тип слота должен быть sunrise или dusk"
	msgDayNotResolved  = "время рассвета и заката для даты недоступно"
	msgUnavailable     = "данные для расчета емкости временно недоступны"
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

// Handle GET /api/v1/tenants/{tenantId}/remaining?date=YYYY-MM-DD&slotType=dusk
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	slotType, err := domain.ParseSlotType(query.Get("slotType"))
	if err != nil || !slotType.IsSun() {
		h.logger.Warn("%s - Invalid slot type %q", op, query.Get("slotType"))
		handlers.RespondBadRequest(w, msgInvalidSlotType)
		return
	}
	date := query.Get("date")

	sessionID, _ := middleware.GetSessionID(r.Context())
	entry, ok := handlers.ResolveSession(w, r, h.registry, sessionID, h.logger, op)
	if !ok {
		return
	}

	avail, err := entry.Schedule.Remaining(r.Context(), date, slotType)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidRange):
			h.logger.Warn("%s - Invalid date %q", op, date)
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, capacity.ErrNotSunSlot):
			handlers.RespondBadRequest(w, msgInvalidSlotType)

		case errors.Is(err, capacity.ErrDayNotResolved):
			h.logger.Warn("%s - Sun times not resolved: date=%s", op, date)
			handlers.RespondNotFound(w, msgDayNotResolved)

		case errors.Is(err, schedule.ErrSunDataUnavailable),
			errors.Is(err, rangecache.ErrRangeFetchFailed):
			h.logger.Warn("%s - Capacity unavailable: date=%s, error=%v", op, date, err)
			handlers.RespondServiceUnavailable(w, msgUnavailable)

		default:
			h.logger.Error("%s - Failed to compute remaining capacity: date=%s, error=%v", op, date, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("%s - Remaining capacity: date=%s, slot_type=%s, remaining=%d/%d",
		op, avail.Date, avail.SlotType, avail.Remaining, avail.Capacity)
	handlers.RespondJSON(w, http.StatusOK, handlers.FromAvailability(*avail))
}
