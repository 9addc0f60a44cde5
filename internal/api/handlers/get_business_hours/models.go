package get_business_hours

import (
	"time"

	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
)

// DayResponse настройки дня недели
type DayResponse struct {
	Weekday      string `json:"weekday"`
	Open         bool   `json:"open"`
	Start        string `json:"start,omitempty"`
	End          string `json:"end,omitempty"`
	SunriseCount int    `json:"sunriseCount"`
	DuskCount    int    `json:"duskCount"`
}

// BusinessHoursResponse HTTP response model
type BusinessHoursResponse struct {
	TenantID  int64         `json:"tenantId"`
	TimeZone  string        `json:"timeZone"`
	Latitude  float64       `json:"latitude"`
	Longitude float64       `json:"longitude"`
	Days      []DayResponse `json:"days"`
	UpdatedAt string        `json:"updatedAt,omitempty"`
}

// FromTenant конвертирует настройки студии в HTTP response
func FromTenant(t domain.Tenant) *BusinessHoursResponse {
	resp := &BusinessHoursResponse{
		TenantID:  t.ID,
		TimeZone:  t.TimeZone,
		Latitude:  t.Latitude,
		Longitude: t.Longitude,
		Days:      make([]DayResponse, 0, len(t.BusinessHours.Days)),
	}
	if !t.UpdatedAt.IsZero() {
		resp.UpdatedAt = t.UpdatedAt.UTC().Format(time.RFC3339)
	}

	for i, d := range t.BusinessHours.Days {
		resp.Days = append(resp.Days, DayResponse{
			Weekday:      time.Weekday(i).String(),
			Open:         d.Open,
			Start:        d.Start.String(),
			End:          d.End.String(),
			SunriseCount: d.SunriseCount,
			DuskCount:    d.DuskCount,
		})
	}
	return resp
}
