package sessions

import "errors"

var (
	// ErrTenantNotFound возвращается, когда настройки студии не найдены
	ErrTenantNotFound = errors.New("sessions: tenant not found")

	// ErrInvalidSession возвращается при пустом идентификаторе сессии
	ErrInvalidSession = errors.New("sessions: invalid session id")

	// ErrInternal возвращается при внутренних ошибках
	ErrInternal = errors.New("sessions: internal error")
)
