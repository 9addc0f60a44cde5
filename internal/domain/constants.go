package domain

import "time"

const (
	// SlotWindowPadding окно солнечного слота - [событие - 30 минут, событие + 30 минут]
	SlotWindowPadding = 30 * time.Minute

	// MaxSlotCount максимальная емкость солнечного окна в день
	MaxSlotCount = 3

	// DefaultRollingWindowDays горизонт перегенерации плейсхолдеров
	DefaultRollingWindowDays = 30

	// DefaultDraftDuration длительность черновика по клику вне солнечного окна
	DefaultDraftDuration = time.Hour
)

// Форматы времени
const (
	TimeFormat          = "15:04"            // HH:MM
	DateFormat          = "2006-01-02"       // YYYY-MM-DD
	LocalDateTimeFormat = "2006-01-02T15:04" // локальное время без смещения
)

// InactiveStatuses статусы, не занимающие емкость
var InactiveStatuses = []BookingStatus{
	StatusCancelled,
	StatusDeclined,
}

// ActiveStatuses статусы, занимающие емкость
var ActiveStatuses = []BookingStatus{
	StatusRequested,
	StatusPencilled,
	StatusApproved,
	StatusBlocked,
}
