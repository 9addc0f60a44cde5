package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
	"github.com/m04kA/SMC-StudioScheduler/pkg/dbmetrics"
	"github.com/m04kA/SMC-StudioScheduler/pkg/psqlbuilder"
)

const tableName = "tenant_settings"

// Repository репозиторий настроек студий
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория настроек
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Get получает настройки студии
func (r *Repository) Get(ctx context.Context, tenantID int64) (*domain.Tenant, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"tenant_id",
		"time_zone",
		"latitude",
		"longitude",
		"business_hours",
		"updated_at",
	).
		From(tableName).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	var (
		tenant    domain.Tenant
		hoursJSON []byte
		updatedAt sql.NullTime
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&tenant.ID,
		&tenant.TimeZone,
		&tenant.Latitude,
		&tenant.Longitude,
		&hoursJSON,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get - scan settings: %v", ErrScanRow, err)
	}

	if err := json.Unmarshal(hoursJSON, &tenant.BusinessHours); err != nil {
		return nil, fmt.Errorf("%w: Get - decode business hours: %v", ErrScanRow, err)
	}
	tenant.UpdatedAt = updatedAt.Time

	return &tenant, nil
}

// Upsert создает или полностью заменяет настройки студии
func (r *Repository) Upsert(ctx context.Context, tenant domain.Tenant) (*domain.Tenant, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	hoursJSON, err := json.Marshal(tenant.BusinessHours)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - %v", ErrEncode, err)
	}

	query, args, err := psqlbuilder.Insert(tableName).
		Columns("tenant_id", "time_zone", "latitude", "longitude", "business_hours", "updated_at").
		Values(tenant.ID, tenant.TimeZone, tenant.Latitude, tenant.Longitude, hoursJSON, squirrel.Expr("NOW()")).
		Suffix(`ON CONFLICT (tenant_id) DO UPDATE SET
			time_zone = EXCLUDED.time_zone,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			business_hours = EXCLUDED.business_hours,
			updated_at = EXCLUDED.updated_at
		RETURNING updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	var updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute upsert: %v", ErrExecQuery, err)
	}

	tenant.UpdatedAt = updatedAt.Time
	return &tenant, nil
}

// ListTenantIDs возвращает идентификаторы всех студий с настройками
func (r *Repository) ListTenantIDs(ctx context.Context) ([]int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("tenant_id").
		From(tableName).
		OrderBy("tenant_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListTenantIDs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListTenantIDs - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: ListTenantIDs - scan: %v", ErrScanRow, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListTenantIDs - rows iteration: %v", ErrScanRow, err)
	}

	return ids, nil
}
