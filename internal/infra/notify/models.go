package notify

import "time"

// DefaultChannel канал событий изменения настроек
const DefaultChannel = "studio:settings.changed"

// SettingsChangedEvent событие замены настроек студии
type SettingsChangedEvent struct {
	TenantID    int64     `json:"tenantId"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	ChangedAt   time.Time `json:"changedAt"`
}
