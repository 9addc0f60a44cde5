package capacity

import "errors"

var (
	// ErrNoCapacityRemaining возвращается, когда в солнечном окне не осталось мест
	ErrNoCapacityRemaining = errors.New("capacity: no capacity remaining")

	// ErrNotSunSlot возвращается при запросе емкости для типа слота, не связанного с солнцем
	ErrNotSunSlot = errors.New("capacity: slot type is not a sun slot")

	// ErrDayNotResolved возвращается, когда для даты нет рассвета и заката
	ErrDayNotResolved = errors.New("capacity: sun times not resolved for date")
)
