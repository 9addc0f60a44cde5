package openmeteo

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("openmeteo client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("openmeteo client: invalid response")

	// ErrInvalidRequest возвращается при некорректных параметрах запроса
	ErrInvalidRequest = errors.New("openmeteo client: invalid request")
)
