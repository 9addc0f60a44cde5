package regenerate_placeholders

import "errors"

var (
	// ErrFailed возвращается, когда не удалось получить ни одного солнечного дня; существующие плейсхолдеры не тронуты
	ErrFailed = errors.New("regenerate_placeholders: regeneration failed")

	// ErrPartial предупреждение: часть дней окна не разрешена, плейсхолдеры созданы для разрешенных
	ErrPartial = errors.New("regenerate_placeholders: regeneration partial")

	// ErrTenantNotFound возвращается, когда настройки студии не найдены
	ErrTenantNotFound = errors.New("regenerate_placeholders: tenant not found")

	// ErrInternal возвращается при внутренних ошибках
	ErrInternal = errors.New("regenerate_placeholders: internal error")
)
