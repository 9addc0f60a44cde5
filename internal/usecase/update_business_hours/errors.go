package update_business_hours

import "errors"

var (
	// ErrAccessDenied возвращается, если настройки меняет не менеджер
	ErrAccessDenied = errors.New("update_business_hours: access denied")

	// ErrInvalidInput возвращается при некорректных настройках
	ErrInvalidInput = errors.New("update_business_hours: invalid input")

	// ErrInternal возвращается при внутренних ошибках
	ErrInternal = errors.New("update_business_hours: internal error")
)
