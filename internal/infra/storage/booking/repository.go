package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
	"github.com/m04kA/SMC-StudioScheduler/pkg/dbmetrics"
	"github.com/m04kA/SMC-StudioScheduler/pkg/psqlbuilder"
)

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает бронирование
// Если в контексте передана активная транзакция, использует её
// Нарушение уникальности единицы емкости возвращается как ErrCreateConflict
func (r *Repository) Create(ctx context.Context, fields domain.BookingFields) (*domain.Booking, error) {
	if err := fields.Validate(); err != nil {
		return nil, fmt.Errorf("%w: Create - %v", ErrInvalidFields, err)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableName).
		Columns(insertColumns...).
		Values(insertValues(fields)...).
		Suffix("RETURNING " + joinColumns()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	created, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapWriteError("Create", err)
	}

	return created, nil
}

// Update обновляет изменяемые поля бронирования в пределах студии
func (r *Repository) Update(ctx context.Context, id int64, fields domain.BookingFields) (*domain.Booking, error) {
	if err := fields.Validate(); err != nil {
		return nil, fmt.Errorf("%w: Update - %v", ErrInvalidFields, err)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)
	values := insertValues(fields)

	update := psqlbuilder.Update(tableName)
	// tenant_id не меняется
	for i, col := range insertColumns[1:] {
		update = update.Set(col, values[i+1])
	}

	query, args, err := update.
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "tenant_id": fields.TenantID}).
		Suffix("RETURNING " + joinColumns()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	updated, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, mapWriteError("Update", err)
	}

	return updated, nil
}

// Delete удаляет бронирование студии
func (r *Repository) Delete(ctx context.Context, tenantID, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(tableName).
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	res, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - rows affected: %v", ErrExecQuery, err)
	}
	if affected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// GetByID получает бронирование студии по ID
func (r *Repository) GetByID(ctx context.Context, tenantID, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	b, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return b, nil
}

// FindInRange возвращает бронирования студии, пересекающие [start, end)
// Включает плейсхолдеры, черновики и неактивные статусы: фильтрация на стороне вызывающего
func (r *Repository) FindInRange(ctx context.Context, tenantID int64, start, end time.Time) ([]domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Lt{"start_at": utc(end)}).
		Where(squirrel.Gt{"end_at": utc(start)}).
		OrderBy("start_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindInRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FindInRange - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var result []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: FindInRange - scan booking: %v", ErrScanRow, err)
		}
		result = append(result, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: FindInRange - rows iteration: %v", ErrScanRow, err)
	}

	return result, nil
}

// BatchCreate создает бронирования многострочными INSERT, возвращает количество созданных
// Атомарность набора обеспечивает транзакция вызывающего
func (r *Repository) BatchCreate(ctx context.Context, fields []domain.BookingFields) (int, error) {
	if len(fields) == 0 {
		return 0, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	created := 0
	for start := 0; start < len(fields); start += batchSize {
		end := start + batchSize
		if end > len(fields) {
			end = len(fields)
		}

		insert := psqlbuilder.Insert(tableName).Columns(insertColumns...)
		for _, f := range fields[start:end] {
			if err := f.Validate(); err != nil {
				return created, fmt.Errorf("%w: BatchCreate - %v", ErrInvalidFields, err)
			}
			insert = insert.Values(insertValues(f)...)
		}

		query, args, err := insert.ToSql()
		if err != nil {
			return created, fmt.Errorf("%w: BatchCreate - build insert query: %v", ErrBuildQuery, err)
		}

		res, err := executor.ExecContext(ctx, query, args...)
		if err != nil {
			return created, mapWriteError("BatchCreate", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return created, fmt.Errorf("%w: BatchCreate - rows affected: %v", ErrExecQuery, err)
		}
		created += int(n)
	}

	return created, nil
}

// BatchDeletePlaceholders удаляет плейсхолдеры студии, начинающиеся не раньше since
func (r *Repository) BatchDeletePlaceholders(ctx context.Context, tenantID int64, since time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(tableName).
		Where(squirrel.Eq{"tenant_id": tenantID, "is_placeholder": true}).
		Where(squirrel.GtOrEq{"start_at": utc(since)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: BatchDeletePlaceholders - build delete query: %v", ErrBuildQuery, err)
	}

	res, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: BatchDeletePlaceholders - execute delete: %v", ErrExecQuery, err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: BatchDeletePlaceholders - rows affected: %v", ErrExecQuery, err)
	}

	return deleted, nil
}

// LockPlaceholders берет транзакционную advisory-блокировку перегенерации плейсхолдеров студии
// Вне транзакции блокировка снимается сразу же, поэтому вызывается внутри txmanager.Do
func (r *Repository) LockPlaceholders(ctx context.Context, tenantID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select().
		Column(squirrel.Expr("pg_advisory_xact_lock(?, ?)", placeholderLockClass, int32(tenantID))).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: LockPlaceholders - build lock query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: LockPlaceholders - execute lock: %v", ErrExecQuery, err)
	}

	return nil
}

func mapWriteError(op string, err error) error {
	switch {
	case isConflict(err):
		return fmt.Errorf("%w: %s - %v", ErrCreateConflict, op, err)
	case isCheckViolation(err):
		return fmt.Errorf("%w: %s - %v", ErrInvalidFields, op, err)
	default:
		return fmt.Errorf("%w: %s - execute: %v", ErrExecQuery, op, err)
	}
}

func joinColumns() string {
	return strings.Join(columns, ", ")
}
