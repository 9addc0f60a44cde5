package schedule

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
	"github.com/m04kA/SMC-StudioScheduler/internal/service/suntime"
)

// BookingFinder загрузка бронирований студии за диапазон
type BookingFinder interface {
	FindInRange(ctx context.Context, tenantID int64, start, end time.Time) ([]domain.Booking, error)
}

// SunResolver разрешение рассвета и заката
type SunResolver interface {
	Resolve(ctx context.Context, req suntime.Request) ([]domain.SunDay, error)
}

// CapacityEngine расчет солнечных окон и емкости
type CapacityEngine interface {
	Offerable(days []domain.SunDay, cfg domain.BusinessHoursConfig, bookings []domain.Booking) []domain.SlotWindow
	Availability(days []domain.SunDay, cfg domain.BusinessHoursConfig, bookings []domain.Booking) []domain.SlotAvailability
	Remaining(days []domain.SunDay, cfg domain.BusinessHoursConfig, bookings []domain.Booking, date string, slotType domain.SlotType) (*domain.SlotAvailability, error)
}

// Metrics метрики кэшей сессии
type Metrics interface {
	CacheLookup(cache, outcome string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
