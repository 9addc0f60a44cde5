package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
	"github.com/m04kA/SMC-StudioScheduler/internal/service/capacity"
	"github.com/m04kA/SMC-StudioScheduler/internal/service/rangecache"
	"github.com/m04kA/SMC-StudioScheduler/internal/service/suntime"
	"github.com/m04kA/SMC-StudioScheduler/pkg/ptr"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeFinder struct {
	mu       sync.Mutex
	bookings []domain.Booking
	err      error
	calls    int
}

func (f *fakeFinder) FindInRange(_ context.Context, _ int64, start, end time.Time) ([]domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Booking
	for _, b := range f.bookings {
		if b.Overlaps(start, end) {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeResolver struct {
	mu    sync.Mutex
	days  []domain.SunDay
	err   error
	calls int
}

func (r *fakeResolver) Resolve(_ context.Context, req suntime.Request) ([]domain.SunDay, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.SunDay
	for _, d := range r.days {
		if d.Date >= req.StartDate && d.Date <= req.EndDate {
			out = append(out, d)
		}
	}
	return out, nil
}

var (
	sydneyLoc, _ = time.LoadLocation("Australia/Sydney")

	// Понедельник 2026-06-15 в Сиднее
	monday = domain.SunDay{
		Date:    "2026-06-15",
		Sunrise: time.Date(2026, 6, 14, 21, 0, 0, 0, time.UTC),
		Sunset:  time.Date(2026, 6, 15, 6, 53, 0, 0, time.UTC),
		Source:  domain.SunSourceForecast,
	}

	dayStart = time.Date(2026, 6, 15, 0, 0, 0, 0, sydneyLoc)
	dayEnd   = time.Date(2026, 6, 16, 0, 0, 0, 0, sydneyLoc)
)

func testTenant(sunrise int) domain.Tenant {
	var cfg domain.BusinessHoursConfig
	cfg.Days[time.Monday] = domain.DaySchedule{SunriseCount: sunrise}
	return domain.Tenant{
		ID:            7,
		TimeZone:      "Australia/Sydney",
		Latitude:      -33.87,
		Longitude:     151.21,
		BusinessHours: cfg,
	}
}

func newTestSession(t *testing.T, tenant domain.Tenant, finder *fakeFinder, resolver *fakeResolver) *Session {
	s, err := NewSession(tenant, Deps{
		Bookings: finder,
		Sun:      resolver,
		Engine:   capacity.NewEngine(nopLogger{}),
		Logger:   nopLogger{},
	})
	require.NoError(t, err)
	return s
}

func sunriseBooking(id int64) domain.Booking {
	return domain.Booking{
		ID:       id,
		TenantID: 7,
		StartAt:  monday.Sunrise.Add(-30 * time.Minute),
		EndAt:    monday.Sunrise.Add(30 * time.Minute),
		Status:   domain.StatusApproved,
		SlotType: domain.SlotTypeSunrise,
	}
}

func TestSession_Load(t *testing.T) {
	placeholder := sunriseBooking(100)
	placeholder.Status = domain.StatusRequested
	placeholder.IsPlaceholder = true

	finder := &fakeFinder{bookings: []domain.Booking{sunriseBooking(1), placeholder}}
	resolver := &fakeResolver{days: []domain.SunDay{monday}}
	s := newTestSession(t, testTenant(2), finder, resolver)

	got, err := s.Load(context.Background(), dayStart, dayEnd)
	require.NoError(t, err)

	require.Len(t, got.Bookings, 1)
	assert.Equal(t, int64(1), got.Bookings[0].ID)

	require.Len(t, got.Offerable, 1)
	assert.Equal(t, 1, got.Offerable[0].Index)

	require.Len(t, got.Availability, 1)
	assert.Equal(t, 1, got.Availability[0].Remaining)
	assert.False(t, got.Stale)
	assert.False(t, got.SunDataMissing)

	// Повторная загрузка того же диапазона берется из кэша
	_, err = s.Load(context.Background(), dayStart, dayEnd)
	require.NoError(t, err)
	assert.Equal(t, 1, finder.calls)
	assert.Equal(t, 1, resolver.calls)
}

func TestSession_LoadKeepsLastGoodViewOnFailure(t *testing.T) {
	finder := &fakeFinder{bookings: []domain.Booking{sunriseBooking(1)}}
	resolver := &fakeResolver{days: []domain.SunDay{monday}}
	s := newTestSession(t, testTenant(2), finder, resolver)

	_, err := s.Load(context.Background(), dayStart, dayEnd)
	require.NoError(t, err)

	finder.err = errors.New("connection reset")
	got, err := s.Load(context.Background(), dayStart.AddDate(0, 0, 1), dayEnd.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, rangecache.ErrRangeFetchFailed)
	require.NotNil(t, got)
	assert.True(t, got.Stale)
	assert.Len(t, got.Bookings, 1)
}

func TestSession_SunFailureHidesWindows(t *testing.T) {
	finder := &fakeFinder{bookings: []domain.Booking{sunriseBooking(1)}}
	resolver := &fakeResolver{err: suntime.ErrNoSunDataAvailable}
	s := newTestSession(t, testTenant(2), finder, resolver)

	got, err := s.Load(context.Background(), dayStart, dayEnd)
	require.NoError(t, err)
	assert.True(t, got.SunDataMissing)
	assert.Empty(t, got.Offerable)
	assert.Len(t, got.Bookings, 1)
}

func TestSession_InvalidRange(t *testing.T) {
	s := newTestSession(t, testTenant(1), &fakeFinder{}, &fakeResolver{})

	_, err := s.Load(context.Background(), dayEnd, dayStart)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestSession_UpdateConfigInvalidatesSunEntries(t *testing.T) {
	finder := &fakeFinder{}
	resolver := &fakeResolver{days: []domain.SunDay{monday}}
	s := newTestSession(t, testTenant(1), finder, resolver)

	got, err := s.Load(context.Background(), dayStart, dayEnd)
	require.NoError(t, err)
	assert.Len(t, got.Offerable, 1)

	// Те же настройки - кэш сохраняется
	require.NoError(t, s.UpdateConfig(testTenant(1)))
	_, err = s.Load(context.Background(), dayStart, dayEnd)
	require.NoError(t, err)
	assert.Equal(t, 1, resolver.calls)

	require.NoError(t, s.UpdateConfig(testTenant(3)))
	got, err = s.Load(context.Background(), dayStart, dayEnd)
	require.NoError(t, err)
	assert.Equal(t, 2, resolver.calls)
	assert.Len(t, got.Offerable, 3)
	assert.Equal(t, 1, finder.calls)
}

func TestSession_RemoveSurvivesCachedRanges(t *testing.T) {
	finder := &fakeFinder{bookings: []domain.Booking{sunriseBooking(1)}}
	s := newTestSession(t, testTenant(1), finder, &fakeResolver{days: []domain.SunDay{monday}})

	_, err := s.Load(context.Background(), dayStart, dayEnd)
	require.NoError(t, err)

	s.Remove("id:1")
	got, err := s.Load(context.Background(), dayStart, dayEnd)
	require.NoError(t, err)
	assert.Empty(t, got.Bookings)
	assert.Len(t, got.Offerable, 1)
}

func TestSession_CachedRangeKeepsNewerLocalCopy(t *testing.T) {
	createdAt := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	draft := sunriseBooking(1)
	draft.IsDraft = true
	draft.UpdatedAt = createdAt

	finder := &fakeFinder{bookings: []domain.Booking{draft}}
	s := newTestSession(t, testTenant(1), finder, &fakeResolver{days: []domain.SunDay{monday}})

	got, err := s.Load(context.Background(), dayStart, dayEnd)
	require.NoError(t, err)
	require.Len(t, got.Bookings, 1)
	assert.True(t, got.Bookings[0].IsDraft)

	saved := draft
	saved.IsDraft = false
	saved.UpdatedAt = createdAt.Add(time.Minute)
	s.Merge(saved)

	got, err = s.Load(context.Background(), dayStart, dayEnd)
	require.NoError(t, err)
	require.Len(t, got.Bookings, 1)
	assert.False(t, got.Bookings[0].IsDraft)
	assert.Equal(t, 1, finder.calls)

	// Свежая загрузка из хранилища снова становится источником истины
	finder.mu.Lock()
	stored := saved
	stored.Title = ptr.Ptr("Утренняя съемка")
	finder.bookings = []domain.Booking{stored}
	finder.mu.Unlock()

	got, err = s.Refetch(context.Background(), dayStart, dayEnd)
	require.NoError(t, err)
	require.Len(t, got.Bookings, 1)
	assert.Equal(t, "Утренняя съемка", ptr.Value(got.Bookings[0].Title))
	assert.False(t, got.Bookings[0].IsDraft)
}

func TestSession_RefetchDropsVanishedBookings(t *testing.T) {
	finder := &fakeFinder{bookings: []domain.Booking{sunriseBooking(1), sunriseBooking(2)}}
	s := newTestSession(t, testTenant(2), finder, &fakeResolver{days: []domain.SunDay{monday}})

	got, err := s.Load(context.Background(), dayStart, dayEnd)
	require.NoError(t, err)
	assert.Empty(t, got.Offerable)

	finder.mu.Lock()
	finder.bookings = finder.bookings[:1]
	finder.mu.Unlock()

	got, err = s.Refetch(context.Background(), dayStart, dayEnd)
	require.NoError(t, err)
	assert.Len(t, got.Bookings, 1)
	assert.Len(t, got.Offerable, 1)
	assert.Equal(t, 2, finder.calls)
}

func TestSession_Remaining(t *testing.T) {
	finder := &fakeFinder{bookings: []domain.Booking{sunriseBooking(1)}}
	s := newTestSession(t, testTenant(3), finder, &fakeResolver{days: []domain.SunDay{monday}})

	a, err := s.RemainingAt(context.Background(), monday.Sunrise, domain.SlotTypeSunrise)
	require.NoError(t, err)
	assert.Equal(t, "2026-06-15", a.Date)
	assert.Equal(t, 2, a.Remaining)
	assert.Equal(t, monday.Sunrise.Add(-30*time.Minute), a.StartAt)

	// Черновик, влитый в представление, сразу уменьшает остаток
	draft := sunriseBooking(2)
	draft.IsDraft = true
	s.Merge(draft)

	a, err = s.Remaining(context.Background(), "2026-06-15", domain.SlotTypeSunrise)
	require.NoError(t, err)
	assert.Equal(t, 1, a.Remaining)

	_, err = s.Remaining(context.Background(), "15.06.2026", domain.SlotTypeSunrise)
	assert.ErrorIs(t, err, ErrInvalidRange)
}
