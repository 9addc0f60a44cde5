package booking

import (
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
)

const tableName = "bookings"

// batchSize максимальное количество строк в одном INSERT
const batchSize = 500

// columns колонки в порядке сканирования
var columns = []string{
	"id",
	"tenant_id",
	"start_at",
	"end_at",
	"status",
	"slot_type",
	"slot_index",
	"is_placeholder",
	"is_draft",
	"client_id",
	"title",
	"notes",
	"created_at",
	"updated_at",
}

// insertColumns колонки, задаваемые при вставке
var insertColumns = []string{
	"tenant_id",
	"start_at",
	"end_at",
	"status",
	"slot_type",
	"slot_index",
	"is_placeholder",
	"is_draft",
	"client_id",
	"title",
	"notes",
}

// Коды ошибок PostgreSQL, означающие конфликт конкурентных записей
const (
	pqUniqueViolation      = "23505"
	pqExclusionViolation   = "23P01"
	pqSerializationFailure = "40001"
	pqCheckViolation       = "23514"
)

// placeholderLockClass пространство advisory-блокировок перегенерации; второй ключ - ID студии
const placeholderLockClass int32 = 0x504c4348

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b         domain.Booking
		status    string
		slotType  string
		slotIndex sql.NullInt64
		clientID  sql.NullInt64
		title     sql.NullString
		notes     sql.NullString
		createdAt sql.NullTime
		updatedAt sql.NullTime
	)

	err := row.Scan(
		&b.ID,
		&b.TenantID,
		&b.StartAt,
		&b.EndAt,
		&status,
		&slotType,
		&slotIndex,
		&b.IsPlaceholder,
		&b.IsDraft,
		&clientID,
		&title,
		&notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.StartAt = b.StartAt.UTC()
	b.EndAt = b.EndAt.UTC()
	b.Status = domain.BookingStatus(status)
	b.SlotType = domain.SlotType(slotType).Normalize()
	if slotIndex.Valid {
		idx := int(slotIndex.Int64)
		b.SlotIndex = &idx
	}
	if clientID.Valid {
		id := clientID.Int64
		b.ClientID = &id
	}
	if title.Valid {
		b.Title = &title.String
	}
	if notes.Valid {
		b.Notes = &notes.String
	}
	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return &b, nil
}

func insertValues(f domain.BookingFields) []interface{} {
	var slotIndex sql.NullInt64
	if f.SlotIndex != nil {
		slotIndex = sql.NullInt64{Int64: int64(*f.SlotIndex), Valid: true}
	}
	var clientID sql.NullInt64
	if f.ClientID != nil {
		clientID = sql.NullInt64{Int64: *f.ClientID, Valid: true}
	}

	return []interface{}{
		f.TenantID,
		f.StartAt.UTC(),
		f.EndAt.UTC(),
		string(f.Status),
		string(f.SlotType.Normalize()),
		slotIndex,
		f.IsPlaceholder,
		f.IsDraft,
		clientID,
		nullString(f.Title),
		nullString(f.Notes),
	}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// isConflict проверяет, что ошибка PostgreSQL означает конфликт конкурентной записи
func isConflict(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code {
	case pqUniqueViolation, pqExclusionViolation, pqSerializationFailure:
		return true
	}
	return false
}

// isCheckViolation проверяет нарушение CHECK ограничения (например, end_at > start_at)
func isCheckViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqCheckViolation
}

func utc(t time.Time) time.Time {
	return t.UTC()
}
