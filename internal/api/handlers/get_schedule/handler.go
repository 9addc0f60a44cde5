package get_schedule

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-StudioScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-StudioScheduler/internal/api/middleware"
	"github.com/m04kA/SMC-StudioScheduler/internal/service/schedule"
)

const (
	op = "GET /tenants/{id}/schedule"

	msgInvalidStart   = "некорректное начало диапазона, ожидается RFC3339"
	msgInvalidEnd     = "некорректный конец диапазона, ожидается RFC3339"
	msgInvalidRange   = "конец диапазона должен быть позже начала"
	msgRangeTooLong   = "диапазон слишком длинный"
	msgUnavailable    = "бронирования временно недоступны"
	warningStaleRange = "показаны последние загруженные данные: бронирования временно недоступны"
)

// MaxRange максимальная длина запрашиваемого диапазона
const MaxRange = 62 * 24 * time.Hour

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

// Handle GET /api/v1/tenants/{tenantId}/schedule?start=...&end=...[&refresh=true]
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	start, err := time.Parse(time.RFC3339, query.Get("start"))
	if err != nil {
		h.logger.Warn("%s - Invalid start: %v", op, err)
		handlers.RespondBadRequest(w, msgInvalidStart)
		return
	}
	end, err := time.Parse(time.RFC3339, query.Get("end"))
	if err != nil {
		h.logger.Warn("%s - Invalid end: %v", op, err)
		handlers.RespondBadRequest(w, msgInvalidEnd)
		return
	}
	if !end.After(start) {
		handlers.RespondBadRequest(w, msgInvalidRange)
		return
	}
	if end.Sub(start) > MaxRange {
		handlers.RespondBadRequest(w, msgRangeTooLong)
		return
	}

	sessionID, _ := middleware.GetSessionID(r.Context())
	entry, ok := handlers.ResolveSession(w, r, h.registry, sessionID, h.logger, op)
	if !ok {
		return
	}

	var sched *schedule.Schedule
	if query.Get("refresh") == "true" {
		sched, err = entry.Schedule.Refetch(r.Context(), start, end)
	} else {
		sched, err = entry.Schedule.Load(r.Context(), start, end)
	}
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidRange):
			handlers.RespondBadRequest(w, msgInvalidRange)
			return

		case sched == nil:
			h.logger.Error("%s - Failed to load schedule: %v", op, err)
			handlers.RespondServiceUnavailable(w, msgUnavailable)
			return

		default:
			// Последнее удачное представление отдается вместе с предупреждением
			h.logger.Warn("%s - Serving stale schedule: %v", op, err)
		}
	}

	response := FromSchedule(sched, entry.Schedule.Tenant().TimeZone, entry.Schedule.Location())
	if err != nil {
		response.Warning = warningStaleRange
	}

	h.logger.Info("%s - Schedule loaded: tenant_id=%d, bookings=%d, offerable=%d, stale=%t",
		op, entry.Schedule.Tenant().ID, len(response.Bookings), len(response.Offerable), response.Stale)
	handlers.RespondJSON(w, http.StatusOK, response)
}
