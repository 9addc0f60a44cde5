package update_business_hours

import (
	"context"

	updateBusinessHours "github.com/m04kA/SMC-StudioScheduler/internal/usecase/update_business_hours"
)

type UpdateBusinessHoursUseCase interface {
	Execute(ctx context.Context, req *updateBusinessHours.Request) (*updateBusinessHours.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
