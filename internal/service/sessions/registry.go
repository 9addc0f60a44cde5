package sessions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
	settingsRepo "github.com/m04kA/SMC-StudioScheduler/internal/infra/storage/settings"
	"github.com/m04kA/SMC-StudioScheduler/internal/service/schedule"
	"github.com/m04kA/SMC-StudioScheduler/internal/usecase/draft_booking"
)

// Entry состояние одной сессии планировщика
type Entry struct {
	Schedule *schedule.Session
	Drafts   *draft_booking.Lifecycle

	lastUsed time.Time
}

// DraftDeps зависимости жизненного цикла черновиков
type DraftDeps struct {
	Repository draft_booking.BookingRepository
	Metrics    draft_booking.Metrics
}

type entryKey struct {
	tenantID  int64
	sessionID string
}

// Registry сессии планировщика по (студия, сессия), создаются при первом обращении
type Registry struct {
	settings     SettingsRepository
	scheduleDeps schedule.Deps
	draftDeps    DraftDeps
	timeProvider TimeProvider
	logger       Logger

	mu      sync.Mutex
	entries map[entryKey]*Entry
}

// NewRegistry создает реестр сессий
func NewRegistry(settings SettingsRepository, scheduleDeps schedule.Deps, draftDeps DraftDeps, logger Logger) *Registry {
	return &Registry{
		settings:     settings,
		scheduleDeps: scheduleDeps,
		draftDeps:    draftDeps,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		entries:      make(map[entryKey]*Entry),
	}
}

// WithTimeProvider подменяет источник текущего времени
func (r *Registry) WithTimeProvider(tp TimeProvider) *Registry {
	r.timeProvider = tp
	return r
}

// Get возвращает сессию, создавая ее с текущими настройками студии
func (r *Registry) Get(ctx context.Context, tenantID int64, sessionID string) (*Entry, error) {
	if sessionID == "" {
		return nil, ErrInvalidSession
	}
	key := entryKey{tenantID: tenantID, sessionID: sessionID}

	if e := r.touch(key); e != nil {
		return e, nil
	}

	tenant, err := r.settings.Get(ctx, tenantID)
	if err != nil {
		if errors.Is(err, settingsRepo.ErrSettingsNotFound) {
			return nil, ErrTenantNotFound
		}
		r.logger.Error("Sessions: tenant=%d failed to load settings: %v", tenantID, err)
		return nil, fmt.Errorf("%w: Get - settings: %v", ErrInternal, err)
	}

	session, err := schedule.NewSession(*tenant, r.scheduleDeps)
	if err != nil {
		return nil, fmt.Errorf("%w: Get - session: %v", ErrInternal, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Параллельный запрос мог создать сессию раньше
	if e, ok := r.entries[key]; ok {
		e.lastUsed = r.timeProvider.Now()
		return e, nil
	}

	e := &Entry{
		Schedule: session,
		Drafts:   draft_booking.NewLifecycle(session, r.draftDeps.Repository, r.draftDeps.Metrics, r.logger),
		lastUsed: r.timeProvider.Now(),
	}
	r.entries[key] = e
	r.logger.Info("Sessions: tenant=%d session %s opened", tenantID, sessionID)

	return e, nil
}

// ApplySettings передает новые настройки во все сессии студии, возвращает количество обновленных
func (r *Registry) ApplySettings(tenant domain.Tenant) int {
	r.mu.Lock()
	var targets []*Entry
	for key, e := range r.entries {
		if key.tenantID == tenant.ID {
			targets = append(targets, e)
		}
	}
	r.mu.Unlock()

	updated := 0
	for _, e := range targets {
		if err := e.Schedule.UpdateConfig(tenant); err != nil {
			r.logger.Warn("Sessions: tenant=%d failed to apply settings: %v", tenant.ID, err)
			continue
		}
		updated++
	}
	return updated
}

// EvictIdle закрывает сессии, не использовавшиеся дольше idle
func (r *Registry) EvictIdle(idle time.Duration) int {
	cutoff := r.timeProvider.Now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for key, e := range r.entries {
		if e.lastUsed.Before(cutoff) {
			delete(r.entries, key)
			evicted++
		}
	}
	if evicted > 0 {
		r.logger.Info("Sessions: evicted %d idle sessions", evicted)
	}
	return evicted
}

// Len возвращает количество открытых сессий
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) touch(key entryKey) *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[key]
	if !ok {
		return nil
	}
	e.lastUsed = r.timeProvider.Now()
	return e
}
