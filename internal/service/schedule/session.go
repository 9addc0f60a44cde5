package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
	"github.com/m04kA/SMC-StudioScheduler/internal/service/rangecache"
	"github.com/m04kA/SMC-StudioScheduler/internal/service/suntime"
)

// Session состояние одного окна планировщика: кэши диапазонов и объединенное представление
type Session struct {
	deps Deps

	bookings *rangecache.Cache[[]domain.Booking]
	sun      *rangecache.Cache[[]domain.SunDay]

	mu       sync.Mutex
	tenant   domain.Tenant
	loc      *time.Location
	view     rangecache.View
	removed  map[string]struct{}
	local    map[string]domain.Booking // локальные изменения, новее закэшированных ответов
	lastGood *Schedule
}

// NewSession создает сессию для студии
func NewSession(tenant domain.Tenant, deps Deps) (*Session, error) {
	loc, err := tenant.Location()
	if err != nil {
		return nil, err
	}

	return &Session{
		deps:     deps,
		bookings: rangecache.New[[]domain.Booking]("bookings", deps.Metrics, deps.Logger),
		sun:      rangecache.New[[]domain.SunDay]("sun", deps.Metrics, deps.Logger),
		tenant:   tenant,
		loc:      loc,
		removed:  make(map[string]struct{}),
		local:    make(map[string]domain.Booking),
	}, nil
}

// Load возвращает объединенное представление диапазона [start, end)
// При ошибке загрузки бронирований возвращает последнее удачное представление вместе с ошибкой
func (s *Session) Load(ctx context.Context, start, end time.Time) (*Schedule, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("%w: Load - end %s is not after start %s", ErrInvalidRange,
			end.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	tenant, loc := s.snapshot()

	var (
		bookings []domain.Booking
		days     []domain.SunDay
		bookErr  error
		sunErr   error
		g        errgroup.Group
	)

	g.Go(func() error {
		bookings, bookErr = s.fetchBookings(ctx, tenant.ID, start, end)
		return nil
	})
	g.Go(func() error {
		days, sunErr = s.fetchSun(ctx, tenant, loc, start, end)
		return nil
	})
	_ = g.Wait()

	if bookErr != nil {
		s.deps.Logger.Warn("Load: tenant=%d bookings for %s..%s unavailable: %v",
			tenant.ID, start.Format(time.RFC3339), end.Format(time.RFC3339), bookErr)
		return s.staleSchedule(start, end), bookErr
	}

	if sunErr != nil {
		s.deps.Logger.Warn("Load: tenant=%d sun data for %s..%s unavailable, sun windows hidden: %v",
			tenant.ID, start.Format(time.RFC3339), end.Format(time.RFC3339), sunErr)
	}

	view := s.mergeFetched(bookings)
	result := s.build(tenant, view, days, start, end)
	result.SunDataMissing = sunErr != nil

	s.mu.Lock()
	s.lastGood = result
	s.mu.Unlock()

	return result, nil
}

// Refetch сбрасывает закэшированные диапазоны, пересекающие [start, end), и загружает их заново
// Записи хранилища, исчезнувшие из свежего ответа, удаляются из представления
func (s *Session) Refetch(ctx context.Context, start, end time.Time) (*Schedule, error) {
	for _, key := range s.bookings.Keys() {
		if keyOverlaps(key, start, end) {
			s.bookings.Invalidate(key)
		}
	}
	s.bookings.Invalidate(rangecache.RangeKey(start, end))

	tenant, _ := s.snapshot()
	fresh, err := s.fetchBookings(ctx, tenant.ID, start, end)
	if err != nil {
		s.deps.Logger.Warn("Refetch: tenant=%d range %s..%s failed: %v",
			tenant.ID, start.Format(time.RFC3339), end.Format(time.RFC3339), err)
		return s.staleSchedule(start, end), err
	}

	present := make(map[string]struct{}, len(fresh))
	for i := range fresh {
		present[fresh[i].Key()] = struct{}{}
	}

	s.mu.Lock()
	// Свежий ответ хранилища главнее локальных копий тех же записей
	for key := range present {
		delete(s.local, key)
	}
	var gone []string
	for _, b := range s.view.Bookings() {
		if !b.IsPersisted() || !b.Overlaps(start, end) {
			continue
		}
		if _, ok := present[b.Key()]; !ok {
			gone = append(gone, b.Key())
		}
	}
	s.view = s.view.Without(gone...)
	s.mu.Unlock()

	if len(gone) > 0 {
		s.deps.Logger.Info("Refetch: tenant=%d dropped %d stale bookings", tenant.ID, len(gone))
	}

	return s.Load(ctx, start, end)
}

// Remaining возвращает точную оставшуюся емкость для гражданской даты и типа слота
func (s *Session) Remaining(ctx context.Context, date string, slotType domain.SlotType) (*domain.SlotAvailability, error) {
	tenant, loc := s.snapshot()

	day, err := time.ParseInLocation(domain.DateFormat, date, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: Remaining - date %q: %v", ErrInvalidRange, date, err)
	}
	dayEnd := time.Date(day.Year(), day.Month(), day.Day()+1, 0, 0, 0, 0, loc)

	days, err := s.sunDays(ctx, tenant, date, date)
	if err != nil {
		return nil, fmt.Errorf("%w: Remaining - %s: %v", ErrSunDataUnavailable, date, err)
	}

	// Окно может выходить за границы суток на SlotWindowPadding
	fetchStart := day.Add(-domain.SlotWindowPadding)
	fetchEnd := dayEnd.Add(domain.SlotWindowPadding)
	bookings, err := s.fetchBookings(ctx, tenant.ID, fetchStart, fetchEnd)
	if err != nil {
		return nil, err
	}
	view := s.mergeFetched(bookings)

	return s.deps.Engine.Remaining(days, tenant.BusinessHours, view.Bookings(), date, slotType)
}

// RemainingAt возвращает емкость окна для момента жеста
func (s *Session) RemainingAt(ctx context.Context, at time.Time, slotType domain.SlotType) (*domain.SlotAvailability, error) {
	_, loc := s.snapshot()
	return s.Remaining(ctx, at.In(loc).Format(domain.DateFormat), slotType)
}

// Merge добавляет или обновляет записи в представлении
func (s *Session) Merge(bookings ...domain.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range bookings {
		key := bookings[i].Key()
		delete(s.removed, key)
		s.local[key] = bookings[i]
	}
	s.view = rangecache.Merge(s.view, bookings)
}

// Remove удаляет записи из представления; закэшированные ответы их больше не вернут
func (s *Session) Remove(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		s.removed[k] = struct{}{}
		delete(s.local, k)
	}
	s.view = s.view.Without(keys...)
}

// Lookup возвращает запись представления по ключу
func (s *Session) Lookup(key string) (domain.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.Get(key)
}

// UpdateConfig заменяет настройки студии
// Изменение отпечатка инвалидирует все солнечные записи кэша
func (s *Session) UpdateConfig(tenant domain.Tenant) error {
	loc, err := tenant.Location()
	if err != nil {
		return err
	}

	s.mu.Lock()
	changed := s.tenant.CacheFingerprint() != tenant.CacheFingerprint()
	s.tenant = tenant
	s.loc = loc
	s.mu.Unlock()

	if changed {
		dropped := s.sun.InvalidateSunDerived()
		s.deps.Logger.Info("UpdateConfig: tenant=%d settings changed, %d sun entries invalidated", tenant.ID, dropped)
	}
	return nil
}

// Tenant возвращает текущие настройки студии
func (s *Session) Tenant() domain.Tenant {
	tenant, _ := s.snapshot()
	return tenant
}

// Location возвращает часовой пояс студии
func (s *Session) Location() *time.Location {
	_, loc := s.snapshot()
	return loc
}

func (s *Session) snapshot() (domain.Tenant, *time.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tenant, s.loc
}

func (s *Session) fetchBookings(ctx context.Context, tenantID int64, start, end time.Time) ([]domain.Booking, error) {
	return s.bookings.Get(ctx, rangecache.RangeKey(start, end), func(ctx context.Context) ([]domain.Booking, error) {
		return s.deps.Bookings.FindInRange(ctx, tenantID, start, end)
	})
}

// fetchSun загружает солнечные дни для гражданских дат, которые задевает диапазон
func (s *Session) fetchSun(ctx context.Context, tenant domain.Tenant, loc *time.Location, start, end time.Time) ([]domain.SunDay, error) {
	// Окно соседнего дня может попасть в диапазон на SlotWindowPadding
	first := start.Add(-domain.SlotWindowPadding).In(loc).Format(domain.DateFormat)
	last := end.Add(domain.SlotWindowPadding - time.Nanosecond).In(loc).Format(domain.DateFormat)
	return s.sunDays(ctx, tenant, first, last)
}

func (s *Session) sunDays(ctx context.Context, tenant domain.Tenant, startDate, endDate string) ([]domain.SunDay, error) {
	key := rangecache.SunKey(startDate, endDate, tenant.TimeZone, tenant.CacheFingerprint())
	return s.sun.Get(ctx, key, func(ctx context.Context) ([]domain.SunDay, error) {
		return s.deps.Sun.Resolve(ctx, suntime.Request{
			Latitude:  tenant.Latitude,
			Longitude: tenant.Longitude,
			TimeZone:  tenant.TimeZone,
			StartDate: startDate,
			EndDate:   endDate,
		})
	})
}

// mergeFetched вливает ответ хранилища в представление, пропуская удаленные локально записи
// Закэшированный ответ не перетирает более позднюю локальную копию записи
func (s *Session) mergeFetched(bookings []domain.Booking) rangecache.View {
	s.mu.Lock()
	defer s.mu.Unlock()

	incoming := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		key := b.Key()
		if _, ok := s.removed[key]; ok {
			continue
		}
		if own, ok := s.local[key]; ok {
			if !b.UpdatedAt.After(own.UpdatedAt) {
				continue
			}
			delete(s.local, key)
		}
		incoming = append(incoming, b)
	}
	s.view = rangecache.Merge(s.view, incoming)
	return s.view
}

func (s *Session) build(tenant domain.Tenant, view rangecache.View, days []domain.SunDay, start, end time.Time) *Schedule {
	all := view.Sorted()

	result := &Schedule{Start: start, End: end}
	for _, b := range all {
		if b.IsPlaceholder || !b.Overlaps(start, end) {
			continue
		}
		result.Bookings = append(result.Bookings, b)
	}

	if len(days) == 0 {
		return result
	}

	for _, w := range s.deps.Engine.Offerable(days, tenant.BusinessHours, all) {
		if w.StartAt.Before(end) && w.EndAt.After(start) {
			result.Offerable = append(result.Offerable, w)
		}
	}
	for _, a := range s.deps.Engine.Availability(days, tenant.BusinessHours, all) {
		if a.StartAt.Before(end) && a.EndAt.After(start) {
			result.Availability = append(result.Availability, a)
		}
	}

	return result
}

// staleSchedule последнее удачное представление, помеченное как устаревшее
func (s *Session) staleSchedule(start, end time.Time) *Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastGood == nil {
		return &Schedule{Start: start, End: end, Stale: true}
	}
	stale := *s.lastGood
	stale.Stale = true
	return &stale
}

func keyOverlaps(key rangecache.Key, start, end time.Time) bool {
	if key.IsSunDerived() {
		return false
	}
	ks, err1 := time.Parse(time.RFC3339, key.Start)
	ke, err2 := time.Parse(time.RFC3339, key.End)
	if err := errors.Join(err1, err2); err != nil {
		return false
	}
	return ks.Before(end) && ke.After(start)
}
