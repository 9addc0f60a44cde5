package update_business_hours

import (
	"context"

	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
	"github.com/m04kA/SMC-StudioScheduler/internal/infra/notify"
	"github.com/m04kA/SMC-StudioScheduler/internal/usecase/regenerate_placeholders"
)

// SettingsRepository интерфейс хранилища настроек студий
type SettingsRepository interface {
	Get(ctx context.Context, tenantID int64) (*domain.Tenant, error)
	Upsert(ctx context.Context, tenant domain.Tenant) (*domain.Tenant, error)
}

// Publisher рассылка события об изменении настроек
type Publisher interface {
	PublishSettingsChanged(ctx context.Context, event notify.SettingsChangedEvent) (int64, error)
}

// Regenerator перегенерация плейсхолдеров студии
type Regenerator interface {
	Execute(ctx context.Context, req *regenerate_placeholders.Request) (*regenerate_placeholders.Response, error)
}

// SessionRegistry открытые сессии планировщика
type SessionRegistry interface {
	ApplySettings(tenant domain.Tenant) int
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
