package draft_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
	"github.com/m04kA/SMC-StudioScheduler/internal/service/schedule"
)

// BookingRepository интерфейс хранилища бронирований
type BookingRepository interface {
	Create(ctx context.Context, fields domain.BookingFields) (*domain.Booking, error)
	Update(ctx context.Context, id int64, fields domain.BookingFields) (*domain.Booking, error)
	Delete(ctx context.Context, tenantID, id int64) error
	GetByID(ctx context.Context, tenantID, id int64) (*domain.Booking, error)
}

// ScheduleSession представление планировщика текущей сессии
type ScheduleSession interface {
	Tenant() domain.Tenant
	RemainingAt(ctx context.Context, at time.Time, slotType domain.SlotType) (*domain.SlotAvailability, error)
	Merge(bookings ...domain.Booking)
	Remove(keys ...string)
	Lookup(key string) (domain.Booking, bool)
	Refetch(ctx context.Context, start, end time.Time) (*schedule.Schedule, error)
}

// Metrics метрики жестов
type Metrics interface {
	DraftGesture(outcome string)
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
