package notify

import "errors"

var (
	// ErrPublish возвращается при ошибке публикации события
	ErrPublish = errors.New("notify: failed to publish event")

	// ErrDecode возвращается при некорректном сообщении в канале
	ErrDecode = errors.New("notify: failed to decode event")
)
