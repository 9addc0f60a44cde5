package handlers

import (
	"time"

	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
)

// BookingResponse бронирование в ответах API
type BookingResponse struct {
	Key          string  `json:"key"`
	ID           int64   `json:"id,omitempty"`
	TenantID     int64   `json:"tenantId"`
	StartAt      string  `json:"startAt"`
	EndAt        string  `json:"endAt"`
	Status       string  `json:"status"`
	SlotType     string  `json:"slotType"`
	SlotIndex    *int    `json:"slotIndex,omitempty"`
	IsDraft      bool    `json:"isDraft"`
	ClientID     *int64  `json:"clientId,omitempty"`
	Title        *string `json:"title,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	StartAtLocal string  `json:"startAtLocal"`
	EndAtLocal   string  `json:"endAtLocal"`
}

// FromBooking конвертирует бронирование, локальное время считается в поясе студии
func FromBooking(b domain.Booking, loc *time.Location) BookingResponse {
	if loc == nil {
		loc = time.UTC
	}
	return BookingResponse{
		Key:          b.Key(),
		ID:           b.ID,
		TenantID:     b.TenantID,
		StartAt:      b.StartAt.UTC().Format(time.RFC3339),
		EndAt:        b.EndAt.UTC().Format(time.RFC3339),
		Status:       string(b.Status),
		SlotType:     string(b.SlotType),
		SlotIndex:    b.SlotIndex,
		IsDraft:      b.IsDraft,
		ClientID:     b.ClientID,
		Title:        b.Title,
		Notes:        b.Notes,
		StartAtLocal: b.StartAt.In(loc).Format(domain.LocalDateTimeFormat),
		EndAtLocal:   b.EndAt.In(loc).Format(domain.LocalDateTimeFormat),
	}
}

// AvailabilityResponse занятость солнечного окна
type AvailabilityResponse struct {
	Date      string `json:"date"`
	SlotType  string `json:"slotType"`
	StartAt   string `json:"startAt"`
	EndAt     string `json:"endAt"`
	Capacity  int    `json:"capacity"`
	Booked    int    `json:"booked"`
	Remaining int    `json:"remaining"`
}

// FromAvailability конвертирует занятость окна
func FromAvailability(a domain.SlotAvailability) AvailabilityResponse {
	return AvailabilityResponse{
		Date:      a.Date,
		SlotType:  string(a.SlotType),
		StartAt:   a.StartAt.UTC().Format(time.RFC3339),
		EndAt:     a.EndAt.UTC().Format(time.RFC3339),
		Capacity:  a.Capacity,
		Booked:    a.Booked,
		Remaining: a.Remaining,
	}
}
