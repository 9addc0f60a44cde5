package settings

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
)

func TestRepository_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	updated := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	hours := `{"days":[{"open":false,"start":"","end":"","sunriseCount":0,"duskCount":0},` +
		`{"open":true,"start":"09:00","end":"18:00","sunriseCount":2,"duskCount":1},` +
		`{},{},{},{},{}]}`

	mock.ExpectQuery(`SELECT tenant_id, time_zone, latitude, longitude, business_hours, updated_at FROM tenant_settings WHERE tenant_id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"tenant_id", "time_zone", "latitude", "longitude", "business_hours", "updated_at"}).
			AddRow(int64(7), "Australia/Sydney", -33.87, 151.21, []byte(hours), updated))

	tenant, err := NewRepository(db).Get(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, "Australia/Sydney", tenant.TimeZone)
	assert.Equal(t, 2, tenant.BusinessHours.SlotCount(time.Monday, domain.SlotTypeSunrise))
	assert.Equal(t, 1, tenant.BusinessHours.SlotCount(time.Monday, domain.SlotTypeDusk))
	assert.Equal(t, updated, tenant.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM tenant_settings`).
		WillReturnRows(sqlmock.NewRows([]string{"tenant_id"}))

	_, err = NewRepository(db).Get(context.Background(), 7)
	assert.ErrorIs(t, err, ErrSettingsNotFound)
}

func TestRepository_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	updated := time.Date(2026, 6, 2, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO tenant_settings .* ON CONFLICT \(tenant_id\) DO UPDATE SET`).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(updated))

	var cfg domain.BusinessHoursConfig
	cfg.Days[time.Tuesday].DuskCount = 1

	tenant, err := NewRepository(db).Upsert(context.Background(), domain.Tenant{
		ID:            7,
		TimeZone:      "Australia/Sydney",
		Latitude:      -33.87,
		Longitude:     151.21,
		BusinessHours: cfg,
	})
	require.NoError(t, err)
	assert.Equal(t, updated, tenant.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
