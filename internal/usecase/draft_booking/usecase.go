package draft_booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
	bookingRepo "github.com/m04kA/SMC-StudioScheduler/internal/infra/storage/booking"
)

// Lifecycle жизненный цикл черновиков одной сессии планировщика
// Idle -> PendingCreate -> Created -> Promoted | Deleted
type Lifecycle struct {
	session      ScheduleSession
	bookingRepo  BookingRepository
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger

	mu      sync.Mutex
	guard   dedupGuard
	drafts  map[string]*Draft
	anchors map[string]*Anchor
}

// NewLifecycle создает жизненный цикл черновиков для сессии
func NewLifecycle(
	session ScheduleSession,
	bookingRepo BookingRepository,
	metrics Metrics,
	logger Logger,
) *Lifecycle {
	return &Lifecycle{
		session:      session,
		bookingRepo:  bookingRepo,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		drafts:       make(map[string]*Draft),
		anchors:      make(map[string]*Anchor),
	}
}

// WithTimeProvider подменяет источник текущего времени
func (l *Lifecycle) WithTimeProvider(tp TimeProvider) *Lifecycle {
	l.timeProvider = tp
	return l
}

// OnPointerSelect создает черновик по клику
// Вне солнечного окна черновик занимает DefaultDraftDuration от точки клика
func (l *Lifecycle) OnPointerSelect(ctx context.Context, req PointerRequest) (*Result, error) {
	return l.create(ctx, gesture{
		kind:     GesturePointer,
		start:    req.At,
		end:      req.At.Add(domain.DefaultDraftDuration),
		slotType: req.SlotType.Normalize(),
		role:     req.Role,
		userID:   req.UserID,
		pointer:  req.Pointer,
	})
}

// OnRangeSelect создает черновик по выделению диапазона
func (l *Lifecycle) OnRangeSelect(ctx context.Context, req RangeRequest) (*Result, error) {
	return l.create(ctx, gesture{
		kind:     GestureRange,
		start:    req.Start,
		end:      req.End,
		slotType: req.SlotType.Normalize(),
		role:     req.Role,
		userID:   req.UserID,
		pointer:  req.Pointer,
	})
}

func (l *Lifecycle) create(ctx context.Context, g gesture) (*Result, error) {
	tenant := l.session.Tenant()

	if _, err := domain.ParseSlotType(string(g.slotType)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGesture, err)
	}
	if !g.end.After(g.start) {
		l.record("invalid")
		return nil, fmt.Errorf("%w: empty interval [%s, %s)", ErrInvalidGesture,
			g.start.Format(time.RFC3339), g.end.Format(time.RFC3339))
	}

	// 1. Idle -> PendingCreate под защитой от двойного срабатывания
	key := dedupKey(g.start)
	now := l.timeProvider.Now()

	l.mu.Lock()
	if g.kind == GestureRange && g.end.Sub(g.start) > DragThreshold {
		l.guard.clear()
	}
	if l.guard.blocks(key, now) {
		l.mu.Unlock()
		l.logger.Info("CreateDraft: tenant=%d gesture %s at %s ignored as duplicate", tenant.ID, g.kind, key)
		l.record("ignored")
		return &Result{Ignored: true, State: StateIdle}, nil
	}
	l.guard.mark(key, now)
	l.mu.Unlock()

	// 2. Интервал и проверка емкости для солнечного окна
	fields := domain.BookingFields{
		TenantID: tenant.ID,
		StartAt:  g.start.UTC(),
		EndAt:    g.end.UTC(),
		Status:   domain.StatusRequested,
		SlotType: g.slotType,
		IsDraft:  true,
	}
	if g.role == domain.RoleClient && g.userID > 0 {
		clientID := g.userID
		fields.ClientID = &clientID
	}

	if g.slotType.IsSun() {
		avail, err := l.session.RemainingAt(ctx, g.start, g.slotType)
		if err != nil {
			l.release(key)
			l.logger.Error("CreateDraft: tenant=%d failed to get remaining %s capacity at %s: %v",
				tenant.ID, g.slotType, key, err)
			return nil, fmt.Errorf("%w: CreateDraft - remaining capacity: %v", ErrCapacityUnavailable, err)
		}
		if avail.Remaining <= 0 {
			l.release(key)
			l.logger.Info("CreateDraft: tenant=%d no %s capacity left on %s", tenant.ID, g.slotType, avail.Date)
			l.record("refused")
			return nil, fmt.Errorf("%w: %s %s", ErrNoCapacityRemaining, avail.Date, g.slotType)
		}
		index := avail.NextIndex
		fields.StartAt = avail.StartAt
		fields.EndAt = avail.EndAt
		fields.SlotIndex = &index
	}

	// 3. Ограниченная роль: только локальная копия, запись в хранилище при сохранении
	if g.role.IsConstrained() {
		local := fields.Booking()
		local.LocalKey = uuid.NewString()
		l.session.Merge(local)

		token := l.register(&Draft{
			Key:      local.Key(),
			Booking:  local,
			State:    StateCreated,
			Deferred: true,
			Role:     g.role,
		}, g.pointer, key)

		l.logger.Info("CreateDraft: tenant=%d deferred draft %s for %s", tenant.ID, local.Key(), g.role)
		l.record("deferred")
		return &Result{Deferred: true, State: StateCreated, Booking: &local, AnchorToken: token}, nil
	}

	// 4. PendingCreate -> Created
	created, err := l.persist(ctx, fields)
	if err != nil {
		l.release(key)
		return nil, err
	}
	l.session.Merge(*created)

	token := l.register(&Draft{
		Key:     created.Key(),
		Booking: *created,
		State:   StateCreated,
		Role:    g.role,
	}, g.pointer, key)

	l.logger.Info("CreateDraft: tenant=%d draft id=%d created [%s, %s)", tenant.ID, created.ID,
		created.StartAt.Format(time.RFC3339), created.EndAt.Format(time.RFC3339))
	l.record("created")
	return &Result{State: StateCreated, Booking: created, AnchorToken: token}, nil
}

// Save переводит черновик в сохраненное бронирование
// Отложенная копия создается в хранилище только сейчас, с повторной проверкой емкости
func (l *Lifecycle) Save(ctx context.Context, key string) (*Result, error) {
	draft, err := l.draft(ctx, key)
	if err != nil {
		return nil, err
	}
	if draft.State != StateCreated {
		return nil, fmt.Errorf("%w: Save - draft %s is %s", ErrInvalidState, key, draft.State)
	}

	fields := draft.Booking.Fields()
	fields.IsDraft = false

	var saved *domain.Booking
	if draft.Deferred {
		if fields.SlotType.IsSun() {
			avail, err := l.session.RemainingAt(ctx, fields.StartAt.Add(domain.SlotWindowPadding), fields.SlotType)
			if err != nil {
				return nil, fmt.Errorf("%w: Save - remaining capacity: %v", ErrCapacityUnavailable, err)
			}
			if avail.Remaining <= 0 {
				l.record("refused")
				return nil, fmt.Errorf("%w: %s %s", ErrNoCapacityRemaining, avail.Date, fields.SlotType)
			}
			index := avail.NextIndex
			fields.SlotIndex = &index
		}

		saved, err = l.persist(ctx, fields)
		if err != nil {
			return nil, err
		}
		l.session.Remove(draft.Key)
	} else {
		saved, err = l.bookingRepo.Update(ctx, draft.Booking.ID, fields)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				l.session.Remove(draft.Key)
				l.forget(draft.Key)
				return nil, fmt.Errorf("%w: Save - %s: %v", ErrDraftNotFound, key, err)
			}
			l.logger.Error("SaveDraft: failed to update draft %s: %v", key, err)
			return nil, fmt.Errorf("%w: Save - repository error: %v", ErrInternal, err)
		}
	}

	l.session.Merge(*saved)

	l.mu.Lock()
	delete(l.drafts, draft.Key)
	promoted := &Draft{Key: saved.Key(), Booking: *saved, State: StatePromoted, Role: draft.Role}
	l.drafts[promoted.Key] = promoted
	for _, a := range l.anchors {
		if a.Key == draft.Key {
			a.Key = promoted.Key
		}
	}
	l.mu.Unlock()

	l.logger.Info("SaveDraft: draft %s saved as id=%d", key, saved.ID)
	l.record("saved")
	return &Result{State: StatePromoted, Booking: saved}, nil
}

// Delete удаляет черновик из хранилища и из представления
func (l *Lifecycle) Delete(ctx context.Context, key string) error {
	draft, err := l.draft(ctx, key)
	if err != nil {
		return err
	}
	if draft.State != StateCreated {
		return fmt.Errorf("%w: Delete - draft %s is %s", ErrInvalidState, key, draft.State)
	}

	if draft.Booking.IsPersisted() {
		err := l.bookingRepo.Delete(ctx, draft.Booking.TenantID, draft.Booking.ID)
		if err != nil && !errors.Is(err, bookingRepo.ErrBookingNotFound) {
			l.logger.Error("DeleteDraft: failed to delete draft %s: %v", key, err)
			return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
		}
	}

	l.session.Remove(draft.Key)

	l.mu.Lock()
	if d, ok := l.drafts[draft.Key]; ok {
		d.State = StateDeleted
	}
	for token, a := range l.anchors {
		if a.Key == draft.Key {
			delete(l.anchors, token)
		}
	}
	l.mu.Unlock()

	l.logger.Info("DeleteDraft: draft %s deleted", key)
	l.record("deleted")
	return nil
}

// ReconcileAnchor переводит привязку с координат указателя на границы отрисованного элемента
func (l *Lifecycle) ReconcileAnchor(token string, bounds Rect) (*Anchor, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.anchors[token]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAnchorNotFound, token)
	}
	b := bounds
	a.Bounds = &b

	result := *a
	return &result, nil
}

// Draft возвращает копию черновика по ключу
func (l *Lifecycle) Draft(ctx context.Context, key string) (*Draft, error) {
	return l.draft(ctx, key)
}

func (l *Lifecycle) draft(ctx context.Context, key string) (*Draft, error) {
	l.mu.Lock()
	d, ok := l.drafts[key]
	var known Draft
	if ok {
		known = *d
	}
	l.mu.Unlock()
	if ok {
		return &known, nil
	}

	// Черновик мог быть создан до того, как сессия его запомнила (например, после перезапуска)
	b, found := l.session.Lookup(key)
	if !found {
		loaded, err := l.load(ctx, key)
		if err != nil {
			return nil, err
		}
		b = *loaded
	}
	if !b.IsDraft || !b.IsPersisted() {
		return nil, fmt.Errorf("%w: %s", ErrDraftNotFound, key)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	d, ok = l.drafts[key]
	if !ok {
		d = &Draft{Key: key, Booking: b, State: StateCreated}
		l.drafts[key] = d
	}

	result := *d
	return &result, nil
}

// load читает черновик из хранилища по ключу представления
func (l *Lifecycle) load(ctx context.Context, key string) (*domain.Booking, error) {
	id, ok := domain.ParseBookingKey(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDraftNotFound, key)
	}

	tenant := l.session.Tenant()
	b, err := l.bookingRepo.GetByID(ctx, tenant.ID, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrDraftNotFound, key)
		}
		l.logger.Error("LoadDraft: tenant=%d failed to get booking id=%d: %v", tenant.ID, id, err)
		return nil, fmt.Errorf("%w: LoadDraft - repository error: %v", ErrInternal, err)
	}
	return b, nil
}

// persist создает запись; конфликт емкости перечитывает диапазон
func (l *Lifecycle) persist(ctx context.Context, fields domain.BookingFields) (*domain.Booking, error) {
	created, err := l.bookingRepo.Create(ctx, fields)
	if err == nil {
		return created, nil
	}

	if errors.Is(err, bookingRepo.ErrCreateConflict) {
		l.logger.Warn("CreateDraft: tenant=%d conflict on [%s, %s), refetching range: %v", fields.TenantID,
			fields.StartAt.Format(time.RFC3339), fields.EndAt.Format(time.RFC3339), err)
		l.record("conflict")

		start, end := fields.StartAt.Add(-domain.SlotWindowPadding), fields.EndAt.Add(domain.SlotWindowPadding)
		if _, rerr := l.session.Refetch(ctx, start, end); rerr != nil {
			l.logger.Warn("CreateDraft: tenant=%d refetch after conflict failed: %v", fields.TenantID, rerr)
		}
		return nil, fmt.Errorf("%w: %w: %v", ErrNoCapacityRemaining, ErrCreateConflict, err)
	}

	l.logger.Error("CreateDraft: tenant=%d failed to create draft: %v", fields.TenantID, err)
	return nil, fmt.Errorf("%w: CreateDraft - repository error: %v", ErrInternal, err)
}

// register запоминает черновик и выдает токен привязки
func (l *Lifecycle) register(d *Draft, pointer Point, dedup string) string {
	token := uuid.NewString()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.drafts[d.Key] = d
	l.anchors[token] = &Anchor{Token: token, Key: d.Key, Pointer: pointer}
	// Переход в Created обновляет защиту
	l.guard.mark(dedup, l.timeProvider.Now())

	return token
}

// release снимает защиту после неудачной попытки: повтор жеста не игнорируется
func (l *Lifecycle) release(dedup string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.guard.key == dedup {
		l.guard.clear()
	}
}

func (l *Lifecycle) forget(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.drafts, key)
}

func (l *Lifecycle) record(outcome string) {
	if l.metrics != nil {
		l.metrics.DraftGesture(outcome)
	}
}
