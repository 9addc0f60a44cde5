package rangecache

import "errors"

var (
	// ErrRangeFetchFailed возвращается, когда загрузка диапазона не удалась; результат не кэшируется
	ErrRangeFetchFailed = errors.New("rangecache: range fetch failed")
)
