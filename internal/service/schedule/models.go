package schedule

import (
	"time"

	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
)

// Schedule объединенное представление видимого диапазона
type Schedule struct {
	Start time.Time
	End   time.Time

	// Реальные бронирования и черновики, пересекающие диапазон, без плейсхолдеров
	Bookings []domain.Booking

	// Солнечные окна, которые еще можно предложить
	Offerable []domain.SlotWindow

	// Занятость солнечных окон диапазона
	Availability []domain.SlotAvailability

	// Stale - данные взяты из последнего удачного состояния, загрузка не удалась
	Stale bool

	// SunDataMissing - рассвет и закат не получены, окна не показываются
	SunDataMissing bool
}

// Deps зависимости сессии
type Deps struct {
	Bookings BookingFinder
	Sun      SunResolver
	Engine   CapacityEngine
	Metrics  Metrics
	Logger   Logger
}
