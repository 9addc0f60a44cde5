package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BookingStatus статус бронирования
type BookingStatus string

const (
	StatusRequested BookingStatus = "requested"
	StatusPencilled BookingStatus = "pencilled"
	StatusApproved  BookingStatus = "approved"
	StatusDeclined  BookingStatus = "declined"
	StatusCancelled BookingStatus = "cancelled"
	StatusBlocked   BookingStatus = "blocked"
)

// ParseBookingStatus проверяет и конвертирует строку в статус
func ParseBookingStatus(s string) (BookingStatus, error) {
	switch BookingStatus(s) {
	case StatusRequested, StatusPencilled, StatusApproved, StatusDeclined, StatusCancelled, StatusBlocked:
		return BookingStatus(s), nil
	}
	return "", fmt.Errorf("unknown booking status %q", s)
}

// Booking бронирование студии: реальное, плейсхолдер свободного слота или черновик
type Booking struct {
	ID       int64  // 0 - запись еще не сохранена
	LocalKey string // ключ несохраненной локальной копии (черновик клиента)
	TenantID int64

	StartAt time.Time // UTC
	EndAt   time.Time // UTC
	Status  BookingStatus

	SlotType  SlotType
	SlotIndex *int // номер единицы емкости внутри солнечного окна (1..capacity)

	IsPlaceholder bool
	IsDraft       bool

	ClientID *int64
	Title    *string
	Notes    *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive возвращает true, если бронирование занимает емкость
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelled && b.Status != StatusDeclined
}

// IsPersisted возвращает true, если запись есть в хранилище
func (b *Booking) IsPersisted() bool {
	return b.ID > 0
}

// HasValidInterval проверяет, что оба момента заданы и EndAt > StartAt
func (b *Booking) HasValidInterval() bool {
	return !b.StartAt.IsZero() && !b.EndAt.IsZero() && b.EndAt.After(b.StartAt)
}

// Overlaps проверяет пересечение полуоткрытых интервалов [StartAt, EndAt) и [start, end)
// Граничащие интервалы (конец одного равен началу другого) не пересекаются
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartAt.Before(end) && b.EndAt.After(start)
}

// Key ключ записи в объединенном представлении
func (b *Booking) Key() string {
	if b.ID > 0 {
		return "id:" + strconv.FormatInt(b.ID, 10)
	}
	return "local:" + b.LocalKey
}

// ParseBookingKey возвращает ID записи хранилища из ключа представления
func ParseBookingKey(key string) (int64, bool) {
	raw, ok := strings.CutPrefix(key, "id:")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Fields возвращает изменяемые поля записи
func (b *Booking) Fields() BookingFields {
	return BookingFields{
		TenantID:      b.TenantID,
		StartAt:       b.StartAt,
		EndAt:         b.EndAt,
		Status:        b.Status,
		SlotType:      b.SlotType,
		SlotIndex:     b.SlotIndex,
		IsPlaceholder: b.IsPlaceholder,
		IsDraft:       b.IsDraft,
		ClientID:      b.ClientID,
		Title:         b.Title,
		Notes:         b.Notes,
	}
}

// BookingFields поля для создания и обновления бронирования в хранилище
type BookingFields struct {
	TenantID      int64
	StartAt       time.Time
	EndAt         time.Time
	Status        BookingStatus
	SlotType      SlotType
	SlotIndex     *int
	IsPlaceholder bool
	IsDraft       bool
	ClientID      *int64
	Title         *string
	Notes         *string
}

// Validate проверяет инвариант EndAt > StartAt и корректность перечислений
func (f BookingFields) Validate() error {
	if f.StartAt.IsZero() || f.EndAt.IsZero() || !f.EndAt.After(f.StartAt) {
		return fmt.Errorf("booking interval [%s, %s) is empty", f.StartAt.Format(time.RFC3339), f.EndAt.Format(time.RFC3339))
	}
	if _, err := ParseBookingStatus(string(f.Status)); err != nil {
		return err
	}
	if _, err := ParseSlotType(string(f.SlotType)); err != nil {
		return err
	}
	return nil
}

// Booking собирает несохраненную запись из полей
func (f BookingFields) Booking() Booking {
	return Booking{
		TenantID:      f.TenantID,
		StartAt:       f.StartAt,
		EndAt:         f.EndAt,
		Status:        f.Status,
		SlotType:      f.SlotType,
		SlotIndex:     f.SlotIndex,
		IsPlaceholder: f.IsPlaceholder,
		IsDraft:       f.IsDraft,
		ClientID:      f.ClientID,
		Title:         f.Title,
		Notes:         f.Notes,
	}
}
