package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrCreateConflict возвращается, когда запись нарушает ограничение уникальности
	// или сериализуемая транзакция не прошла из-за конкурентной записи
	ErrCreateConflict = errors.New("booking.repository: create conflict")

	// ErrInvalidFields возвращается при некорректных полях бронирования
	ErrInvalidFields = errors.New("booking.repository: invalid booking fields")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)
