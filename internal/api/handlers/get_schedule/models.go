package get_schedule

import (
	"time"

	"github.com/m04kA/SMC-StudioScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
	"github.com/m04kA/SMC-StudioScheduler/internal/service/schedule"
)

// WindowResponse солнечное окно, которое можно предложить
type WindowResponse struct {
	Date     string `json:"date"`
	SlotType string `json:"slotType"`
	Index    int    `json:"index"`
	StartAt  string `json:"startAt"`
	EndAt    string `json:"endAt"`
}

// ScheduleResponse HTTP response model
type ScheduleResponse struct {
	Start          string                          `json:"start"`
	End            string                          `json:"end"`
	TimeZone       string                          `json:"timeZone"`
	Bookings       []handlers.BookingResponse      `json:"bookings"`
	Offerable      []WindowResponse                `json:"offerable"`
	Availability   []handlers.AvailabilityResponse `json:"availability"`
	Stale          bool                            `json:"stale"`
	SunDataMissing bool                            `json:"sunDataMissing"`
	Warning        string                          `json:"warning,omitempty"`
}

// FromSchedule конвертирует представление в HTTP response
func FromSchedule(s *schedule.Schedule, timeZone string, loc *time.Location) *ScheduleResponse {
	resp := &ScheduleResponse{
		Start:          s.Start.UTC().Format(time.RFC3339),
		End:            s.End.UTC().Format(time.RFC3339),
		TimeZone:       timeZone,
		Bookings:       make([]handlers.BookingResponse, 0, len(s.Bookings)),
		Offerable:      make([]WindowResponse, 0, len(s.Offerable)),
		Availability:   make([]handlers.AvailabilityResponse, 0, len(s.Availability)),
		Stale:          s.Stale,
		SunDataMissing: s.SunDataMissing,
	}

	for _, b := range s.Bookings {
		resp.Bookings = append(resp.Bookings, handlers.FromBooking(b, loc))
	}
	for _, w := range s.Offerable {
		resp.Offerable = append(resp.Offerable, fromWindow(w))
	}
	for _, a := range s.Availability {
		resp.Availability = append(resp.Availability, handlers.FromAvailability(a))
	}

	return resp
}

func fromWindow(w domain.SlotWindow) WindowResponse {
	return WindowResponse{
		Date:     w.Date,
		SlotType: string(w.SlotType),
		Index:    w.Index,
		StartAt:  w.StartAt.UTC().Format(time.RFC3339),
		EndAt:    w.EndAt.UTC().Format(time.RFC3339),
	}
}
