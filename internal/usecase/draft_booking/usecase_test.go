package draft_booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
	bookingRepo "github.com/m04kA/SMC-StudioScheduler/internal/infra/storage/booking"
	"github.com/m04kA/SMC-StudioScheduler/internal/service/rangecache"
	"github.com/m04kA/SMC-StudioScheduler/internal/service/schedule"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeSession struct {
	tenant       domain.Tenant
	remaining    *domain.SlotAvailability
	remainingErr error
	view         rangecache.View
	refetches    int
}

func (s *fakeSession) Tenant() domain.Tenant { return s.tenant }

func (s *fakeSession) RemainingAt(_ context.Context, _ time.Time, _ domain.SlotType) (*domain.SlotAvailability, error) {
	if s.remainingErr != nil {
		return nil, s.remainingErr
	}
	a := *s.remaining
	return &a, nil
}

func (s *fakeSession) Merge(bookings ...domain.Booking) { s.view = rangecache.Merge(s.view, bookings) }
func (s *fakeSession) Remove(keys ...string)            { s.view = s.view.Without(keys...) }

func (s *fakeSession) Lookup(key string) (domain.Booking, bool) { return s.view.Get(key) }

func (s *fakeSession) Refetch(_ context.Context, start, end time.Time) (*schedule.Schedule, error) {
	s.refetches++
	return &schedule.Schedule{Start: start, End: end}, nil
}

type fakeRepo struct {
	nextID    int64
	created   []domain.BookingFields
	updated   []domain.BookingFields
	deleted   []int64
	createErr error
	stored    map[int64]domain.Booking
	getErr    error
}

func (r *fakeRepo) Create(_ context.Context, fields domain.BookingFields) (*domain.Booking, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.nextID++
	r.created = append(r.created, fields)
	b := fields.Booking()
	b.ID = r.nextID
	return &b, nil
}

func (r *fakeRepo) Update(_ context.Context, id int64, fields domain.BookingFields) (*domain.Booking, error) {
	r.updated = append(r.updated, fields)
	b := fields.Booking()
	b.ID = id
	return &b, nil
}

func (r *fakeRepo) Delete(_ context.Context, _, id int64) error {
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, _, id int64) (*domain.Booking, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	b, ok := r.stored[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return &b, nil
}

var (
	sunrise = time.Date(2026, 6, 14, 21, 0, 0, 0, time.UTC)
	clickAt = time.Date(2026, 6, 15, 0, 7, 23, 0, time.UTC)
)

func setup(remaining int) (*Lifecycle, *fakeSession, *fakeRepo, *fakeClock) {
	session := &fakeSession{
		tenant: domain.Tenant{ID: 7, TimeZone: "Australia/Sydney"},
		remaining: &domain.SlotAvailability{
			Date:      "2026-06-15",
			SlotType:  domain.SlotTypeSunrise,
			StartAt:   sunrise.Add(-30 * time.Minute),
			EndAt:     sunrise.Add(30 * time.Minute),
			Capacity:  2,
			Remaining: remaining,
			NextIndex: 3 - remaining,
		},
	}
	repo := &fakeRepo{}
	clock := &fakeClock{now: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)}
	l := NewLifecycle(session, repo, nil, nopLogger{}).WithTimeProvider(clock)
	return l, session, repo, clock
}

func TestLifecycle_DedupIdempotence(t *testing.T) {
	l, session, repo, clock := setup(2)
	ctx := context.Background()

	first, err := l.OnPointerSelect(ctx, PointerRequest{At: clickAt, Role: domain.RoleManager})
	require.NoError(t, err)
	assert.False(t, first.Ignored)
	assert.Equal(t, StateCreated, first.State)

	// Тот же клик, пришедший вторым событием выделения
	clock.Advance(200 * time.Millisecond)
	second, err := l.OnRangeSelect(ctx, RangeRequest{
		Start: clickAt.Truncate(time.Minute).Add(10 * time.Second),
		End:   clickAt.Add(15 * time.Minute),
		Role:  domain.RoleManager,
	})
	require.NoError(t, err)
	assert.True(t, second.Ignored)

	assert.Len(t, repo.created, 1)
	assert.Equal(t, 1, session.view.Len())

	// Вне окна защиты клик снова создает черновик
	clock.Advance(DedupWindow)
	third, err := l.OnPointerSelect(ctx, PointerRequest{At: clickAt, Role: domain.RoleManager})
	require.NoError(t, err)
	assert.False(t, third.Ignored)
	assert.Len(t, repo.created, 2)
}

func TestLifecycle_DragClearsGuard(t *testing.T) {
	l, _, repo, clock := setup(2)
	ctx := context.Background()

	_, err := l.OnPointerSelect(ctx, PointerRequest{At: clickAt, Role: domain.RoleManager})
	require.NoError(t, err)

	clock.Advance(100 * time.Millisecond)
	res, err := l.OnRangeSelect(ctx, RangeRequest{
		Start: clickAt,
		End:   clickAt.Add(2 * time.Hour),
		Role:  domain.RoleManager,
	})
	require.NoError(t, err)
	assert.False(t, res.Ignored)
	require.Len(t, repo.created, 2)
	assert.Equal(t, 2*time.Hour, repo.created[1].EndAt.Sub(repo.created[1].StartAt))
	assert.True(t, repo.created[1].IsDraft)
}

func TestLifecycle_PointerDraftDefaults(t *testing.T) {
	l, _, repo, _ := setup(2)

	res, err := l.OnPointerSelect(context.Background(), PointerRequest{At: clickAt, Role: domain.RoleManager})
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	f := repo.created[0]
	assert.Equal(t, clickAt, f.StartAt)
	assert.Equal(t, clickAt.Add(domain.DefaultDraftDuration), f.EndAt)
	assert.Equal(t, domain.SlotTypeNone, f.SlotType)
	assert.Equal(t, domain.StatusRequested, f.Status)
	assert.Nil(t, f.ClientID)
	assert.NotEmpty(t, res.AnchorToken)
}

func TestLifecycle_SunGestureUsesWindow(t *testing.T) {
	l, _, repo, _ := setup(1)

	_, err := l.OnPointerSelect(context.Background(), PointerRequest{
		At:       sunrise.Add(-10 * time.Minute),
		SlotType: domain.SlotTypeSunrise,
		Role:     domain.RoleManager,
	})
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	f := repo.created[0]
	assert.Equal(t, sunrise.Add(-30*time.Minute), f.StartAt)
	assert.Equal(t, sunrise.Add(30*time.Minute), f.EndAt)
	require.NotNil(t, f.SlotIndex)
	assert.Equal(t, 2, *f.SlotIndex)
}

func TestLifecycle_NoCapacityRemaining(t *testing.T) {
	l, session, repo, _ := setup(0)

	_, err := l.OnPointerSelect(context.Background(), PointerRequest{
		At:       sunrise,
		SlotType: domain.SlotTypeSunrise,
		Role:     domain.RoleManager,
	})
	assert.ErrorIs(t, err, ErrNoCapacityRemaining)
	assert.Empty(t, repo.created)
	assert.Zero(t, session.view.Len())
}

func TestLifecycle_CreateConflictRefetches(t *testing.T) {
	l, session, repo, _ := setup(1)
	repo.createErr = bookingRepo.ErrCreateConflict

	_, err := l.OnPointerSelect(context.Background(), PointerRequest{
		At:       sunrise,
		SlotType: domain.SlotTypeSunrise,
		Role:     domain.RoleManager,
	})
	assert.ErrorIs(t, err, ErrNoCapacityRemaining)
	assert.ErrorIs(t, err, ErrCreateConflict)
	assert.Equal(t, 1, session.refetches)
}

func TestLifecycle_RepositoryFailure(t *testing.T) {
	l, _, repo, _ := setup(1)
	repo.createErr = errors.New("connection refused")

	_, err := l.OnPointerSelect(context.Background(), PointerRequest{At: clickAt, Role: domain.RoleManager})
	assert.ErrorIs(t, err, ErrInternal)
}

func TestLifecycle_CapacityUnavailable(t *testing.T) {
	l, session, repo, _ := setup(1)
	session.remainingErr = errors.New("forecast down")

	_, err := l.OnPointerSelect(context.Background(), PointerRequest{
		At:       sunrise,
		SlotType: domain.SlotTypeSunrise,
		Role:     domain.RoleManager,
	})
	assert.ErrorIs(t, err, ErrCapacityUnavailable)
	assert.Empty(t, repo.created)
}

func TestLifecycle_ClientCreationIsDeferred(t *testing.T) {
	l, session, repo, _ := setup(1)
	ctx := context.Background()

	res, err := l.OnPointerSelect(ctx, PointerRequest{
		At:       sunrise,
		SlotType: domain.SlotTypeSunrise,
		Role:     domain.RoleClient,
		UserID:   555,
	})
	require.NoError(t, err)
	assert.True(t, res.Deferred)
	assert.Empty(t, repo.created)
	require.NotNil(t, res.Booking)
	assert.False(t, res.Booking.IsPersisted())

	key := res.Booking.Key()
	_, ok := session.Lookup(key)
	assert.True(t, ok)

	saved, err := l.Save(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, StatePromoted, saved.State)

	require.Len(t, repo.created, 1)
	assert.False(t, repo.created[0].IsDraft)
	require.NotNil(t, repo.created[0].ClientID)
	assert.Equal(t, int64(555), *repo.created[0].ClientID)

	_, ok = session.Lookup(key)
	assert.False(t, ok)
	_, ok = session.Lookup(saved.Booking.Key())
	assert.True(t, ok)
}

func TestLifecycle_DeferredSaveRechecksCapacity(t *testing.T) {
	l, session, repo, _ := setup(1)
	ctx := context.Background()

	res, err := l.OnPointerSelect(ctx, PointerRequest{At: sunrise, SlotType: domain.SlotTypeSunrise, Role: domain.RoleClient})
	require.NoError(t, err)

	session.remaining.Remaining = 0
	_, err = l.Save(ctx, res.Booking.Key())
	assert.ErrorIs(t, err, ErrNoCapacityRemaining)
	assert.Empty(t, repo.created)
}

func TestLifecycle_SaveAndDelete(t *testing.T) {
	l, session, repo, clock := setup(2)
	ctx := context.Background()

	res, err := l.OnPointerSelect(ctx, PointerRequest{At: clickAt, Role: domain.RoleManager})
	require.NoError(t, err)
	key := res.Booking.Key()

	saved, err := l.Save(ctx, key)
	require.NoError(t, err)
	require.Len(t, repo.updated, 1)
	assert.False(t, repo.updated[0].IsDraft)
	assert.False(t, saved.Booking.IsDraft)

	_, err = l.Save(ctx, key)
	assert.ErrorIs(t, err, ErrInvalidState)

	clock.Advance(time.Second)
	other, err := l.OnPointerSelect(ctx, PointerRequest{At: clickAt.Add(time.Hour), Role: domain.RoleManager})
	require.NoError(t, err)

	require.NoError(t, l.Delete(ctx, other.Booking.Key()))
	assert.Equal(t, []int64{other.Booking.ID}, repo.deleted)
	_, ok := session.Lookup(other.Booking.Key())
	assert.False(t, ok)

	assert.ErrorIs(t, l.Delete(ctx, other.Booking.Key()), ErrInvalidState)
	assert.ErrorIs(t, l.Delete(ctx, "id:999"), ErrDraftNotFound)
}

func TestLifecycle_ReconcileAnchor(t *testing.T) {
	l, _, _, _ := setup(2)

	res, err := l.OnPointerSelect(context.Background(), PointerRequest{
		At:      clickAt,
		Role:    domain.RoleManager,
		Pointer: Point{X: 120, Y: 340},
	})
	require.NoError(t, err)

	anchor, err := l.ReconcileAnchor(res.AnchorToken, Rect{X: 100, Y: 320, Width: 80, Height: 40})
	require.NoError(t, err)
	assert.True(t, anchor.IsMounted())
	assert.Equal(t, Point{X: 120, Y: 340}, anchor.Pointer)
	assert.Equal(t, res.Booking.Key(), anchor.Key)

	_, err = l.ReconcileAnchor("unknown", Rect{})
	assert.ErrorIs(t, err, ErrAnchorNotFound)
}

func TestLifecycle_InvalidGesture(t *testing.T) {
	l, _, _, _ := setup(2)

	_, err := l.OnRangeSelect(context.Background(), RangeRequest{Start: clickAt, End: clickAt, Role: domain.RoleManager})
	assert.ErrorIs(t, err, ErrInvalidGesture)
}

func TestLifecycle_FailedAttemptReleasesGuard(t *testing.T) {
	l, session, repo, clock := setup(1)
	ctx := context.Background()
	req := PointerRequest{At: sunrise, SlotType: domain.SlotTypeSunrise, Role: domain.RoleManager}

	session.remainingErr = errors.New("forecast down")
	_, err := l.OnPointerSelect(ctx, req)
	require.ErrorIs(t, err, ErrCapacityUnavailable)

	session.remainingErr = nil
	repo.createErr = errors.New("connection refused")
	clock.Advance(100 * time.Millisecond)
	_, err = l.OnPointerSelect(ctx, req)
	require.ErrorIs(t, err, ErrInternal)

	repo.createErr = nil
	clock.Advance(100 * time.Millisecond)
	res, err := l.OnPointerSelect(ctx, req)
	require.NoError(t, err)
	assert.False(t, res.Ignored)
	assert.Equal(t, StateCreated, res.State)
	assert.Len(t, repo.created, 1)

	// Успешное создание снова защищает от дубля
	clock.Advance(100 * time.Millisecond)
	res, err = l.OnPointerSelect(ctx, req)
	require.NoError(t, err)
	assert.True(t, res.Ignored)
}

func TestLifecycle_DraftLoadedFromStorage(t *testing.T) {
	l, _, repo, _ := setup(2)
	ctx := context.Background()

	stored := domain.Booking{
		ID:       41,
		TenantID: 7,
		StartAt:  clickAt,
		EndAt:    clickAt.Add(time.Hour),
		Status:   domain.StatusRequested,
		SlotType: domain.SlotTypeNone,
		IsDraft:  true,
	}
	approved := stored
	approved.ID = 42
	approved.IsDraft = false
	repo.stored = map[int64]domain.Booking{41: stored, 42: approved}

	d, err := l.Draft(ctx, "id:41")
	require.NoError(t, err)
	assert.Equal(t, StateCreated, d.State)

	require.NoError(t, l.Delete(ctx, "id:41"))
	assert.Equal(t, []int64{41}, repo.deleted)

	_, err = l.Save(ctx, "id:42")
	assert.ErrorIs(t, err, ErrDraftNotFound)
	_, err = l.Draft(ctx, "local:abc")
	assert.ErrorIs(t, err, ErrDraftNotFound)

	repo.getErr = errors.New("connection refused")
	_, err = l.Draft(ctx, "id:43")
	assert.ErrorIs(t, err, ErrInternal)
}
