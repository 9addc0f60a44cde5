package regenerate_placeholders

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
	"github.com/m04kA/SMC-StudioScheduler/internal/service/suntime"
)

// BookingRepository интерфейс хранилища бронирований
type BookingRepository interface {
	LockPlaceholders(ctx context.Context, tenantID int64) error
	BatchDeletePlaceholders(ctx context.Context, tenantID int64, since time.Time) (int64, error)
	BatchCreate(ctx context.Context, fields []domain.BookingFields) (int, error)
}

// SettingsRepository интерфейс хранилища настроек студий
type SettingsRepository interface {
	Get(ctx context.Context, tenantID int64) (*domain.Tenant, error)
}

// SunResolver разрешение рассвета и заката
type SunResolver interface {
	Resolve(ctx context.Context, req suntime.Request) ([]domain.SunDay, error)
}

// CapacityEngine генерация окон по настроенной емкости
type CapacityEngine interface {
	Candidates(days []domain.SunDay, cfg domain.BusinessHoursConfig) []domain.SlotWindow
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics метрики перегенерации
type Metrics interface {
	PlaceholdersRegenerated(deleted int64, created int)
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
