package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-StudioScheduler/internal/service/sessions"
)

const (
	msgInvalidTenantID = "некорректный ID студии"
	msgMissingSession  = "отсутствует ID сессии"
	msgTenantNotFound  = "студия не найдена"
)

// SessionRegistry открытые сессии планировщика
type SessionRegistry interface {
	Get(ctx context.Context, tenantID int64, sessionID string) (*sessions.Entry, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// TenantID извлекает {tenantId} из пути
func TenantID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["tenantId"], 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, strconv.ErrRange
	}
	return id, nil
}

// ResolveSession находит сессию запроса; при false ответ уже отправлен
func ResolveSession(w http.ResponseWriter, r *http.Request, registry SessionRegistry, sessionID string, logger Logger, op string) (*sessions.Entry, bool) {
	tenantID, err := TenantID(r)
	if err != nil {
		logger.Warn("%s - Invalid tenant ID: %v", op, err)
		RespondBadRequest(w, msgInvalidTenantID)
		return nil, false
	}
	if sessionID == "" {
		logger.Warn("%s - Missing session ID: tenant_id=%d", op, tenantID)
		RespondBadRequest(w, msgMissingSession)
		return nil, false
	}

	entry, err := registry.Get(r.Context(), tenantID, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, sessions.ErrTenantNotFound):
			logger.Warn("%s - Tenant not found: tenant_id=%d", op, tenantID)
			RespondNotFound(w, msgTenantNotFound)
		case errors.Is(err, sessions.ErrInvalidSession):
			RespondBadRequest(w, msgMissingSession)
		default:
			logger.Error("%s - Failed to open session: tenant_id=%d, error=%v", op, tenantID, err)
			RespondInternalError(w)
		}
		return nil, false
	}

	return entry, true
}
