// Package handlertest собирает сессии планировщика на памяти для тестов обработчиков
package handlertest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-StudioScheduler/internal/api/middleware"
	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
	bookingRepo "github.com/m04kA/SMC-StudioScheduler/internal/infra/storage/booking"
	settingsRepo "github.com/m04kA/SMC-StudioScheduler/internal/infra/storage/settings"
	"github.com/m04kA/SMC-StudioScheduler/internal/service/capacity"
	"github.com/m04kA/SMC-StudioScheduler/internal/service/schedule"
	"github.com/m04kA/SMC-StudioScheduler/internal/service/sessions"
	"github.com/m04kA/SMC-StudioScheduler/internal/service/suntime"
)

// TenantID студия по умолчанию
const TenantID int64 = 7

var (
	Sydney, _ = time.LoadLocation("Australia/Sydney")

	// Monday понедельник 2026-06-15 в Сиднее
	Monday = domain.SunDay{
		Date:    "2026-06-15",
		Sunrise: time.Date(2026, 6, 14, 21, 0, 0, 0, time.UTC),
		Sunset:  time.Date(2026, 6, 15, 6, 53, 0, 0, time.UTC),
		Source:  domain.SunSourceForecast,
	}

	DayStart = time.Date(2026, 6, 15, 0, 0, 0, 0, Sydney)
	DayEnd   = time.Date(2026, 6, 16, 0, 0, 0, 0, Sydney)
)

// NopLogger логгер без вывода
type NopLogger struct{}

func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}

// Tenant студия в Сиднее с емкостью рассвета по понедельникам
func Tenant(sunriseCount int) domain.Tenant {
	var cfg domain.BusinessHoursConfig
	cfg.Days[time.Monday] = domain.DaySchedule{SunriseCount: sunriseCount}
	return domain.Tenant{
		ID:            TenantID,
		TimeZone:      "Australia/Sydney",
		Latitude:      -33.87,
		Longitude:     151.21,
		BusinessHours: cfg,
	}
}

// Store бронирования в памяти
type Store struct {
	mu       sync.Mutex
	nextID   int64
	bookings map[int64]domain.Booking

	FindErr error
}

func NewStore() *Store {
	return &Store{bookings: make(map[int64]domain.Booking)}
}

func (s *Store) FindInRange(_ context.Context, tenantID int64, start, end time.Time) ([]domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	var out []domain.Booking
	for _, b := range s.bookings {
		if b.TenantID == tenantID && b.Overlaps(start, end) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Store) Create(_ context.Context, fields domain.BookingFields) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	b := fields.Booking()
	b.ID = s.nextID
	s.bookings[b.ID] = b
	return &b, nil
}

func (s *Store) Update(_ context.Context, id int64, fields domain.BookingFields) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	b := fields.Booking()
	b.ID = id
	s.bookings[id] = b
	return &b, nil
}

func (s *Store) Delete(_ context.Context, _, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return bookingRepo.ErrBookingNotFound
	}
	delete(s.bookings, id)
	return nil
}

func (s *Store) GetByID(_ context.Context, tenantID, id int64) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || b.TenantID != tenantID {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return &b, nil
}

// Get возвращает запись по ID
func (s *Store) Get(id int64) (domain.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	return b, ok
}

// Len количество записей
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

// Resolver солнечные дни из фиксированного списка
type Resolver struct {
	Days []domain.SunDay
}

func (r *Resolver) Resolve(_ context.Context, req suntime.Request) ([]domain.SunDay, error) {
	var out []domain.SunDay
	for _, d := range r.Days {
		if d.Date >= req.StartDate && d.Date <= req.EndDate {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return nil, suntime.ErrNoSunDataAvailable
	}
	return out, nil
}

// Settings настройки студий в памяти
type Settings map[int64]domain.Tenant

func (s Settings) Get(_ context.Context, id int64) (*domain.Tenant, error) {
	t, ok := s[id]
	if !ok {
		return nil, settingsRepo.ErrSettingsNotFound
	}
	return &t, nil
}

// Env собранное окружение обработчиков
type Env struct {
	Store    *Store
	Settings Settings
	Registry *sessions.Registry
}

// NewEnv создает реестр сессий поверх хранилищ в памяти
func NewEnv(tenant domain.Tenant, days ...domain.SunDay) *Env {
	store := NewStore()
	settings := Settings{tenant.ID: tenant}
	registry := sessions.NewRegistry(settings, schedule.Deps{
		Bookings: store,
		Sun:      &Resolver{Days: days},
		Engine:   capacity.NewEngine(NopLogger{}),
		Logger:   NopLogger{},
	}, sessions.DraftDeps{Repository: store}, NopLogger{})

	return &Env{Store: store, Settings: settings, Registry: registry}
}

// Request параметры запроса
type Request struct {
	Method  string
	Target  string
	Body    string
	Role    domain.Role
	Session string
}

// Serve пропускает запрос через mux с Auth, шаблон route регистрируется под handler
func Serve(route string, handler http.HandlerFunc, req Request) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.Use(middleware.Auth)
	r.HandleFunc(route, handler).Methods(req.Method)

	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}
	httpReq := httptest.NewRequest(req.Method, req.Target, body)
	httpReq.Header.Set(middleware.HeaderUserID, "42")
	if req.Role != "" {
		httpReq.Header.Set(middleware.HeaderUserRole, string(req.Role))
	}
	if req.Session != "" {
		httpReq.Header.Set(middleware.HeaderSessionID, req.Session)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httpReq)
	return rec
}
