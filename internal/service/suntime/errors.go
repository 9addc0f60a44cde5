package suntime

import "errors"

var (
	// ErrInvalidCoordinates возвращается при нечисловых или выходящих за пределы координатах
	ErrInvalidCoordinates = errors.New("suntime: invalid coordinates")

	// ErrInvalidTimeZone возвращается, когда часовой пояс не найден в базе IANA
	ErrInvalidTimeZone = errors.New("suntime: invalid time zone")

	// ErrInvalidDateRange возвращается при пустом или нераспознаваемом диапазоне дат
	ErrInvalidDateRange = errors.New("suntime: invalid date range")

	// ErrNoSunDataAvailable возвращается, когда ни для одной даты не удалось получить рассвет и закат
	ErrNoSunDataAvailable = errors.New("suntime: no sun data available")

	// ErrInvalidLocalTime возвращается, когда локальное время не распознано
	ErrInvalidLocalTime = errors.New("suntime: invalid local time")
)
