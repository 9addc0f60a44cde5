package suntime

import (
	"context"

	"github.com/m04kA/SMC-StudioScheduler/internal/integrations/openmeteo"
)

// ForecastSource источник прогноза рассвета и заката
type ForecastSource interface {
	FetchDaily(ctx context.Context, req openmeteo.DailyRequest) (*openmeteo.DailyResponse, error)
}

// Metrics метрики резолвера
type Metrics interface {
	ForecastFailed()
	FallbackDays(n int)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
