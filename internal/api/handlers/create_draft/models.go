package create_draft

import (
	"time"

	"github.com/m04kA/SMC-StudioScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
	"github.com/m04kA/SMC-StudioScheduler/internal/usecase/draft_booking"
)

// PointRequest координаты указателя
type PointRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CreateDraftRequest HTTP request model
// mode=pointer использует at, mode=range использует start и end
type CreateDraftRequest struct {
	Mode     string       `json:"mode" validate:"required,oneof=pointer range"`
	At       string       `json:"at" validate:"required_if=Mode pointer,omitempty"`
	Start    string       `json:"start" validate:"required_if=Mode range,omitempty"`
	End      string       `json:"end" validate:"required_if=Mode range,omitempty"`
	SlotType string       `json:"slotType" validate:"slottype"`
	Pointer  PointRequest `json:"pointer"`
}

// DraftResponse HTTP response model
type DraftResponse struct {
	Ignored     bool                      `json:"ignored"`
	Deferred    bool                      `json:"deferred"`
	State       string                    `json:"state"`
	Booking     *handlers.BookingResponse `json:"booking,omitempty"`
	AnchorToken string                    `json:"anchorToken,omitempty"`
}

// ToPointerRequest конвертирует HTTP запрос в клик
func (r *CreateDraftRequest) ToPointerRequest(userID int64, role domain.Role) (draft_booking.PointerRequest, error) {
	at, err := time.Parse(time.RFC3339, r.At)
	if err != nil {
		return draft_booking.PointerRequest{}, err
	}
	return draft_booking.PointerRequest{
		At:       at,
		SlotType: domain.SlotType(r.SlotType),
		Role:     role,
		UserID:   userID,
		Pointer:  draft_booking.Point{X: r.Pointer.X, Y: r.Pointer.Y},
	}, nil
}

// ToRangeRequest конвертирует HTTP запрос в выделение диапазона
func (r *CreateDraftRequest) ToRangeRequest(userID int64, role domain.Role) (draft_booking.RangeRequest, error) {
	start, err := time.Parse(time.RFC3339, r.Start)
	if err != nil {
		return draft_booking.RangeRequest{}, err
	}
	end, err := time.Parse(time.RFC3339, r.End)
	if err != nil {
		return draft_booking.RangeRequest{}, err
	}
	return draft_booking.RangeRequest{
		Start:    start,
		End:      end,
		SlotType: domain.SlotType(r.SlotType),
		Role:     role,
		UserID:   userID,
		Pointer:  draft_booking.Point{X: r.Pointer.X, Y: r.Pointer.Y},
	}, nil
}

// FromResult конвертирует результат жеста в HTTP response
func FromResult(res *draft_booking.Result, loc *time.Location) *DraftResponse {
	resp := &DraftResponse{
		Ignored:     res.Ignored,
		Deferred:    res.Deferred,
		State:       string(res.State),
		AnchorToken: res.AnchorToken,
	}
	if res.Booking != nil {
		b := handlers.FromBooking(*res.Booking, loc)
		resp.Booking = &b
	}
	return resp
}
