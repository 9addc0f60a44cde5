package regenerate_placeholders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
	settingsRepo "github.com/m04kA/SMC-StudioScheduler/internal/infra/storage/settings"
	"github.com/m04kA/SMC-StudioScheduler/internal/service/suntime"
)

// UseCase перегенерация плейсхолдеров солнечных окон на скользящее окно вперед
type UseCase struct {
	bookingRepo  BookingRepository
	settingsRepo SettingsRepository
	resolver     SunResolver
	engine       CapacityEngine
	txManager    TransactionManager
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
	windowDays   int
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	settingsRepo SettingsRepository,
	resolver SunResolver,
	engine CapacityEngine,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
	windowDays int,
) *UseCase {
	if windowDays <= 0 {
		windowDays = domain.DefaultRollingWindowDays
	}
	return &UseCase{
		bookingRepo:  bookingRepo,
		settingsRepo: settingsRepo,
		resolver:     resolver,
		engine:       engine,
		txManager:    txManager,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		windowDays:   windowDays,
	}
}

// WithTimeProvider подменяет источник текущего времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute полностью заменяет будущие плейсхолдеры студии
// Солнечные дни разрешаются до удаления: при полном отказе существующие записи не трогаются
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("Regenerate: tenant=%d, window=%d days", req.TenantID, uc.windowDays)

	// 1. Настройки студии
	tenant, err := uc.settingsRepo.Get(ctx, req.TenantID)
	if err != nil {
		if errors.Is(err, settingsRepo.ErrSettingsNotFound) {
			uc.logger.Warn("Regenerate: tenant=%d settings not found", req.TenantID)
			return nil, ErrTenantNotFound
		}
		uc.logger.Error("Regenerate: tenant=%d failed to load settings: %v", req.TenantID, err)
		return nil, fmt.Errorf("%w: Execute - settings: %v", ErrInternal, err)
	}

	loc, err := tenant.Location()
	if err != nil {
		uc.logger.Error("Regenerate: tenant=%d bad time zone: %v", req.TenantID, err)
		return nil, fmt.Errorf("%w: Execute - %v", ErrFailed, err)
	}

	// 2. Окно от начала сегодняшнего дня в поясе студии
	now := uc.timeProvider.Now().In(loc)
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	lastDay := time.Date(now.Year(), now.Month(), now.Day()+uc.windowDays-1, 0, 0, 0, 0, loc)
	windowEnd := time.Date(now.Year(), now.Month(), now.Day()+uc.windowDays, 0, 0, 0, 0, loc)

	resp := &Response{
		TenantID:      tenant.ID,
		WindowStart:   todayStart,
		WindowEnd:     windowEnd,
		RequestedDays: uc.windowDays,
	}

	// 3. Солнечные дни на все окно; хвост за горизонтом прогноза считается астрономически
	days, err := uc.resolver.Resolve(ctx, suntime.Request{
		Latitude:  tenant.Latitude,
		Longitude: tenant.Longitude,
		TimeZone:  tenant.TimeZone,
		StartDate: todayStart.Format(domain.DateFormat),
		EndDate:   lastDay.Format(domain.DateFormat),
	})
	if err != nil {
		uc.logger.Error("Regenerate: tenant=%d no sun data, existing placeholders kept: %v", tenant.ID, err)
		return nil, fmt.Errorf("%w: Execute - resolve: %v", ErrFailed, err)
	}
	resp.ResolvedDays = len(days)

	if len(days) < uc.windowDays {
		resp.Partial = true
		resp.Warnings = append(resp.Warnings, fmt.Errorf("%w: %d of %d days resolved",
			ErrPartial, len(days), uc.windowDays))
		uc.logger.Warn("Regenerate: tenant=%d only %d of %d days resolved, proceeding with resolved subset",
			tenant.ID, len(days), uc.windowDays)
	}

	// 4. Плейсхолдеры для каждой единицы настроенной емкости
	windows := uc.engine.Candidates(days, tenant.BusinessHours)
	fields := make([]domain.BookingFields, 0, len(windows))
	for _, w := range windows {
		fields = append(fields, w.Placeholder(tenant.ID))
	}

	// 5. Удаление и создание одной транзакцией: читатель видит либо старый, либо новый набор
	// Блокировка студии выстраивает перегенерации с разных реплик в очередь
	err = uc.txManager.Do(ctx, func(ctx context.Context) error {
		if err := uc.bookingRepo.LockPlaceholders(ctx, tenant.ID); err != nil {
			return fmt.Errorf("lock placeholders: %w", err)
		}
		deleted, err := uc.bookingRepo.BatchDeletePlaceholders(ctx, tenant.ID, todayStart)
		if err != nil {
			return fmt.Errorf("delete placeholders: %w", err)
		}
		created, err := uc.bookingRepo.BatchCreate(ctx, fields)
		if err != nil {
			return fmt.Errorf("create placeholders: %w", err)
		}
		resp.Deleted = deleted
		resp.Created = created
		return nil
	})
	if err != nil {
		uc.logger.Error("Regenerate: tenant=%d transaction failed: %v", tenant.ID, err)
		return nil, fmt.Errorf("%w: Execute - %v", ErrInternal, err)
	}

	if uc.metrics != nil {
		uc.metrics.PlaceholdersRegenerated(resp.Deleted, resp.Created)
	}

	uc.logger.Info("Regenerate: tenant=%d deleted=%d created=%d for %s..%s",
		tenant.ID, resp.Deleted, resp.Created, todayStart.Format(domain.DateFormat), lastDay.Format(domain.DateFormat))

	return resp, nil
}
