package draft_booking

import (
	"errors"

	"github.com/m04kA/SMC-StudioScheduler/internal/service/capacity"
)

var (
	// ErrNoCapacityRemaining возвращается, когда в солнечном окне не осталось мест
	ErrNoCapacityRemaining = capacity.ErrNoCapacityRemaining

	// ErrCreateConflict возвращается, когда хранилище отклонило запись из-за конкурентного бронирования
	ErrCreateConflict = errors.New("draft_booking: create conflict")

	// ErrInvalidGesture возвращается при некорректном жесте (пустой интервал, неизвестный тип слота)
	ErrInvalidGesture = errors.New("draft_booking: invalid gesture")

	// ErrDraftNotFound возвращается, когда черновик с таким ключом неизвестен сессии
	ErrDraftNotFound = errors.New("draft_booking: draft not found")

	// ErrInvalidState возвращается при недопустимом переходе состояния
	ErrInvalidState = errors.New("draft_booking: invalid state transition")

	// ErrAnchorNotFound возвращается для неизвестного токена привязки
	ErrAnchorNotFound = errors.New("draft_booking: anchor not found")

	// ErrCapacityUnavailable возвращается, когда емкость окна не удалось посчитать (нет данных о солнце или бронированиях)
	ErrCapacityUnavailable = errors.New("draft_booking: capacity unavailable")

	// ErrInternal возвращается при внутренних ошибках
	ErrInternal = errors.New("draft_booking: internal error")
)
