package rangecache

// Metrics метрики кэша
type Metrics interface {
	CacheLookup(cache, outcome string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
