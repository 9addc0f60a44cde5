package sessions

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
)

// SettingsRepository интерфейс хранилища настроек студий
type SettingsRepository interface {
	Get(ctx context.Context, tenantID int64) (*domain.Tenant, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
