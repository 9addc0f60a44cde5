package get_business_hours

import (
	"context"

	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
)

type SettingsRepository interface {
	Get(ctx context.Context, tenantID int64) (*domain.Tenant, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
