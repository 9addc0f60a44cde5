package schedule

import "errors"

var (
	// ErrInvalidRange возвращается, когда конец диапазона не позже начала
	ErrInvalidRange = errors.New("schedule: invalid range")

	// ErrSunDataUnavailable возвращается, когда для даты не удалось получить рассвет и закат
	ErrSunDataUnavailable = errors.New("schedule: sun data unavailable")
)
