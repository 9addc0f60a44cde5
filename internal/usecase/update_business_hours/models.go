package update_business_hours

import (
	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
	"github.com/m04kA/SMC-StudioScheduler/internal/usecase/regenerate_placeholders"
	"github.com/m04kA/SMC-StudioScheduler/pkg/types"
)

// DayInput настройки дня недели во входных данных
type DayInput struct {
	Open         bool   `json:"open"`
	Start        string `json:"start" validate:"required_if=Open true,omitempty,hhmm"`
	End          string `json:"end" validate:"required_if=Open true,omitempty,hhmm"`
	SunriseCount int    `json:"sunriseCount" validate:"min=0,max=3"`
	DuskCount    int    `json:"duskCount" validate:"min=0,max=3"`
}

// Request запрос на замену настроек студии
// TimeZone и координаты обязательны только при первом сохранении
type Request struct {
	UserID   int64       `json:"-"`
	Role     domain.Role `json:"-"`
	TenantID int64       `json:"-"`

	TimeZone  *string     `json:"timeZone" validate:"omitempty,min=1"`
	Latitude  *float64    `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64    `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Days      [7]DayInput `json:"days" validate:"dive"`
}

// BusinessHours преобразует входные данные в доменные настройки
func (r *Request) BusinessHours() domain.BusinessHoursConfig {
	var cfg domain.BusinessHoursConfig
	for i, d := range r.Days {
		cfg.Days[i] = domain.DaySchedule{
			Open:         d.Open,
			Start:        types.TimeString(d.Start),
			End:          types.TimeString(d.End),
			SunriseCount: d.SunriseCount,
			DuskCount:    d.DuskCount,
		}
	}
	return cfg
}

// Response результат обновления настроек
type Response struct {
	Tenant domain.Tenant

	// Published - событие получил хотя бы один подписчик
	Published bool

	// Regeneration пусто, если перегенерация завершилась ошибкой (она в Warnings)
	Regeneration *regenerate_placeholders.Response

	SessionsUpdated int
	Warnings        []error
}
