package domain

import (
	"fmt"
	"math"
	"time"
)

// Tenant настройки студии, которые поставляет коллаборатор настроек
type Tenant struct {
	ID            int64
	TimeZone      string // IANA, например Australia/Sydney
	Latitude      float64
	Longitude     float64
	BusinessHours BusinessHoursConfig
	UpdatedAt     time.Time
}

// Location загружает часовой пояс студии
func (t *Tenant) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(t.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", t.TimeZone, err)
	}
	return loc, nil
}

// HasValidCoordinates проверяет, что координаты конечны и в допустимых пределах
func (t *Tenant) HasValidCoordinates() bool {
	return ValidCoordinates(t.Latitude, t.Longitude)
}

// CacheFingerprint отпечаток всего, от чего зависят солнечные окна
func (t *Tenant) CacheFingerprint() string {
	return fmt.Sprintf("%s|%.5f|%.5f|%s", t.TimeZone, t.Latitude, t.Longitude, t.BusinessHours.Fingerprint())
}

// ValidCoordinates проверяет широту и долготу
func ValidCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Role роль вызывающего
type Role string

const (
	RoleManager Role = "manager"
	RoleClient  Role = "client"
)

// IsConstrained возвращает true для ролей, которым черновик не создается в хранилище сразу
func (r Role) IsConstrained() bool {
	return r != RoleManager
}
