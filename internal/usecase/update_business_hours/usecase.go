package update_business_hours

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
	"github.com/m04kA/SMC-StudioScheduler/internal/infra/notify"
	settingsRepo "github.com/m04kA/SMC-StudioScheduler/internal/infra/storage/settings"
	"github.com/m04kA/SMC-StudioScheduler/internal/usecase/regenerate_placeholders"
	"github.com/m04kA/SMC-StudioScheduler/pkg/validate"
)

// UseCase замена настроек студии с последующей перегенерацией плейсхолдеров
type UseCase struct {
	settingsRepo SettingsRepository
	publisher    Publisher
	regenerator  Regenerator
	sessions     SessionRegistry
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
// publisher и sessions могут быть nil
func NewUseCase(
	settingsRepo SettingsRepository,
	publisher Publisher,
	regenerator Regenerator,
	sessions SessionRegistry,
	logger Logger,
) *UseCase {
	return &UseCase{
		settingsRepo: settingsRepo,
		publisher:    publisher,
		regenerator:  regenerator,
		sessions:     sessions,
		logger:       logger,
	}
}

// Execute сохраняет настройки целиком и перегенерирует плейсхолдеры синхронно
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("UpdateBusinessHours: tenant=%d by user=%d", req.TenantID, req.UserID)

	// 1. Только менеджер
	if req.Role != domain.RoleManager {
		uc.logger.Warn("UpdateBusinessHours: user=%d with role %q is not a manager", req.UserID, req.Role)
		return nil, ErrAccessDenied
	}

	// 2. Валидация
	if err := validate.Struct(req); err != nil {
		uc.logger.Warn("UpdateBusinessHours: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	cfg := req.BusinessHours()
	if err := cfg.Validate(); err != nil {
		uc.logger.Warn("UpdateBusinessHours: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 3. Текущие настройки, если есть
	existing, err := uc.settingsRepo.Get(ctx, req.TenantID)
	if err != nil && !errors.Is(err, settingsRepo.ErrSettingsNotFound) {
		uc.logger.Error("UpdateBusinessHours: tenant=%d failed to load settings: %v", req.TenantID, err)
		return nil, fmt.Errorf("%w: Execute - settings: %v", ErrInternal, err)
	}

	tenant, err := uc.merge(req, existing, cfg)
	if err != nil {
		uc.logger.Warn("UpdateBusinessHours: tenant=%d: %v", req.TenantID, err)
		return nil, err
	}

	// 4. Сохраняем
	saved, err := uc.settingsRepo.Upsert(ctx, tenant)
	if err != nil {
		uc.logger.Error("UpdateBusinessHours: tenant=%d failed to save settings: %v", req.TenantID, err)
		return nil, fmt.Errorf("%w: Execute - save: %v", ErrInternal, err)
	}

	resp := &Response{Tenant: *saved}

	// 5. Открытые сессии получают новые настройки сразу
	if uc.sessions != nil {
		resp.SessionsUpdated = uc.sessions.ApplySettings(*saved)
	}

	// 6. Остальные реплики обновляют свои сессии по событию
	if uc.publisher != nil {
		receivers, err := uc.publisher.PublishSettingsChanged(ctx, notify.SettingsChangedEvent{
			TenantID:    saved.ID,
			Fingerprint: saved.CacheFingerprint(),
			ChangedAt:   time.Now().UTC(),
		})
		if err != nil {
			uc.logger.Warn("UpdateBusinessHours: tenant=%d publish failed: %v", saved.ID, err)
		} else {
			resp.Published = receivers > 0
		}
	}

	// 7. Перегенерация только здесь, на реплике, записавшей настройки; ошибка не отменяет сохранение
	regen, err := uc.regenerator.Execute(ctx, &regenerate_placeholders.Request{TenantID: saved.ID})
	if err != nil {
		uc.logger.Error("UpdateBusinessHours: tenant=%d regeneration failed: %v", saved.ID, err)
		resp.Warnings = append(resp.Warnings, err)
		return resp, nil
	}
	resp.Regeneration = regen
	resp.Warnings = append(resp.Warnings, regen.Warnings...)

	return resp, nil
}

func (uc *UseCase) merge(req *Request, existing *domain.Tenant, cfg domain.BusinessHoursConfig) (domain.Tenant, error) {
	tenant := domain.Tenant{ID: req.TenantID}
	if existing != nil {
		tenant = *existing
	} else if req.TimeZone == nil || req.Latitude == nil || req.Longitude == nil {
		return domain.Tenant{}, fmt.Errorf("%w: timeZone, latitude and longitude are required for a new studio", ErrInvalidInput)
	}

	if req.TimeZone != nil {
		tenant.TimeZone = *req.TimeZone
	}
	if req.Latitude != nil {
		tenant.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		tenant.Longitude = *req.Longitude
	}
	tenant.BusinessHours = cfg

	if _, err := tenant.Location(); err != nil {
		return domain.Tenant{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !tenant.HasValidCoordinates() {
		return domain.Tenant{}, fmt.Errorf("%w: coordinates out of range", ErrInvalidInput)
	}

	return tenant, nil
}
