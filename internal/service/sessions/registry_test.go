package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
	settingsRepo "github.com/m04kA/SMC-StudioScheduler/internal/infra/storage/settings"
	"github.com/m04kA/SMC-StudioScheduler/internal/service/capacity"
	"github.com/m04kA/SMC-StudioScheduler/internal/service/schedule"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

type fakeSettings struct {
	tenants map[int64]domain.Tenant
	calls   int
}

func (s *fakeSettings) Get(_ context.Context, id int64) (*domain.Tenant, error) {
	s.calls++
	t, ok := s.tenants[id]
	if !ok {
		return nil, settingsRepo.ErrSettingsNotFound
	}
	return &t, nil
}

func newRegistry(settings *fakeSettings, c *clock) *Registry {
	return NewRegistry(settings, schedule.Deps{
		Engine: capacity.NewEngine(nopLogger{}),
		Logger: nopLogger{},
	}, DraftDeps{}, nopLogger{}).WithTimeProvider(c)
}

func TestRegistry_GetReusesSession(t *testing.T) {
	settings := &fakeSettings{tenants: map[int64]domain.Tenant{7: {ID: 7, TimeZone: "Australia/Sydney"}}}
	r := newRegistry(settings, &clock{now: time.Now()})

	a, err := r.Get(context.Background(), 7, "tab-1")
	require.NoError(t, err)
	b, err := r.Get(context.Background(), 7, "tab-1")
	require.NoError(t, err)
	c, err := r.Get(context.Background(), 7, "tab-2")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.NotNil(t, a.Drafts)
	assert.Equal(t, 2, settings.calls)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_Errors(t *testing.T) {
	r := newRegistry(&fakeSettings{tenants: map[int64]domain.Tenant{
		9: {ID: 9, TimeZone: "Nowhere/Zone"},
	}}, &clock{now: time.Now()})

	_, err := r.Get(context.Background(), 7, "tab")
	assert.ErrorIs(t, err, ErrTenantNotFound)

	_, err = r.Get(context.Background(), 7, "")
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = r.Get(context.Background(), 9, "tab")
	assert.ErrorIs(t, err, ErrInternal)
}

func TestRegistry_ApplySettingsAndEvict(t *testing.T) {
	c := &clock{now: time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)}
	settings := &fakeSettings{tenants: map[int64]domain.Tenant{
		7: {ID: 7, TimeZone: "Australia/Sydney"},
		8: {ID: 8, TimeZone: "UTC"},
	}}
	r := newRegistry(settings, c)

	e, err := r.Get(context.Background(), 7, "tab-1")
	require.NoError(t, err)
	_, err = r.Get(context.Background(), 8, "tab-1")
	require.NoError(t, err)

	updated := domain.Tenant{ID: 7, TimeZone: "Australia/Perth"}
	assert.Equal(t, 1, r.ApplySettings(updated))
	assert.Equal(t, "Australia/Perth", e.Schedule.Tenant().TimeZone)

	c.now = c.now.Add(time.Hour)
	_, err = r.Get(context.Background(), 8, "tab-1")
	require.NoError(t, err)

	assert.Equal(t, 1, r.EvictIdle(30*time.Minute))
	assert.Equal(t, 1, r.Len())
}
