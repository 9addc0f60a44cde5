package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	createDraftHandler "github.com/m04kA/SMC-StudioScheduler/internal/api/handlers/create_draft"
	deleteDraftHandler "github.com/m04kA/SMC-StudioScheduler/internal/api/handlers/delete_draft"
	getBusinessHoursHandler "github.com/m04kA/SMC-StudioScheduler/internal/api/handlers/get_business_hours"
	getRemainingHandler "github.com/m04kA/SMC-StudioScheduler/internal/api/handlers/get_remaining"
	getScheduleHandler "github.com/m04kA/SMC-StudioScheduler/internal/api/handlers/get_schedule"
	reconcileAnchorHandler "github.com/m04kA/SMC-StudioScheduler/internal/api/handlers/reconcile_anchor"
	saveDraftHandler "github.com/m04kA/SMC-StudioScheduler/internal/api/handlers/save_draft"
	updateBusinessHoursHandler "github.com/m04kA/SMC-StudioScheduler/internal/api/handlers/update_business_hours"
	"github.com/m04kA/SMC-StudioScheduler/internal/api/middleware"
	"github.com/m04kA/SMC-StudioScheduler/internal/config"
	"github.com/m04kA/SMC-StudioScheduler/internal/infra/notify"
	bookingRepo "github.com/m04kA/SMC-StudioScheduler/internal/infra/storage/booking"
	settingsRepo "github.com/m04kA/SMC-StudioScheduler/internal/infra/storage/settings"
	"github.com/m04kA/SMC-StudioScheduler/internal/integrations/openmeteo"
	"github.com/m04kA/SMC-StudioScheduler/internal/service/capacity"
	"github.com/m04kA/SMC-StudioScheduler/internal/service/schedule"
	"github.com/m04kA/SMC-StudioScheduler/internal/service/sessions"
	"github.com/m04kA/SMC-StudioScheduler/internal/service/suntime"
	regeneratePlaceholdersUC "github.com/m04kA/SMC-StudioScheduler/internal/usecase/regenerate_placeholders"
	updateBusinessHoursUC "github.com/m04kA/SMC-StudioScheduler/internal/usecase/update_business_hours"
	"github.com/m04kA/SMC-StudioScheduler/pkg/dbmetrics"
	"github.com/m04kA/SMC-StudioScheduler/pkg/logger"
	"github.com/m04kA/SMC-StudioScheduler/pkg/metrics"
	"github.com/m04kA/SMC-StudioScheduler/pkg/txmanager"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.toml"
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-StudioScheduler...")
	log.Info("Configuration loaded from %s", configPath)

	// Фоновые задачи останавливаются при завершении
	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Без метрик обертка просто проксирует вызовы
	var wrappedDB *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db, nil)
	}

	// Репозитории и менеджер транзакций
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	settingsRepository := settingsRepo.NewRepository(wrappedDB)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Прогноз рассвета и заката
	forecastClient := openmeteo.NewClient(
		cfg.Forecast.URL,
		time.Duration(cfg.Forecast.Timeout)*time.Second,
		cfg.Forecast.HorizonDays,
		log,
	)
	log.Info("Forecast client initialized (url=%s, timeout=%ds, horizon=%d days)",
		cfg.Forecast.URL, cfg.Forecast.Timeout, cfg.Forecast.HorizonDays)

	// Сервисы
	sunResolver := suntime.NewResolver(forecastClient, metricsCollector, log)
	capacityEngine := capacity.NewEngine(log)

	registry := sessions.NewRegistry(
		settingsRepository,
		schedule.Deps{
			Bookings: bookingRepository,
			Sun:      sunResolver,
			Engine:   capacityEngine,
			Metrics:  metricsCollector,
			Logger:   log,
		},
		sessions.DraftDeps{
			Repository: bookingRepository,
			Metrics:    metricsCollector,
		},
		log,
	)

	// Use cases
	regenerateUseCase := regeneratePlaceholdersUC.NewUseCase(
		bookingRepository,
		settingsRepository,
		sunResolver,
		capacityEngine,
		txMgr,
		metricsCollector,
		log,
		cfg.Scheduling.RollingWindowDays,
	)

	// Шина событий изменения настроек (если включена)
	var publisher updateBusinessHoursUC.Publisher
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal("Invalid redis url: %v", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(bgCtx).Err(); err != nil {
			log.Fatal("Failed to ping redis: %v", err)
		}
		publisher = notify.NewPublisher(redisClient, cfg.Redis.Channel)

		subscriber := notify.NewSubscriber(redisClient, cfg.Redis.Channel, log)
		go func() {
			err := subscriber.Run(bgCtx, func(ctx context.Context, event notify.SettingsChangedEvent) error {
				tenant, err := settingsRepository.Get(ctx, event.TenantID)
				if err != nil {
					return err
				}
				// Плейсхолдеры уже перегенерировала реплика, сохранившая настройки
				registry.ApplySettings(*tenant)
				return nil
			})
			if err != nil && bgCtx.Err() == nil {
				log.Error("Settings subscriber stopped: %v", err)
			}
		}()
		log.Info("Redis settings bus enabled (channel=%s)", cfg.Redis.Channel)
	}

	updateBusinessHoursUseCase := updateBusinessHoursUC.NewUseCase(
		settingsRepository,
		publisher,
		regenerateUseCase,
		registry,
		log,
	)

	// Фоновая перегенерация сдвигает скользящее окно плейсхолдеров
	regenerateAll := func(ctx context.Context) {
		ids, err := settingsRepository.ListTenantIDs(ctx)
		if err != nil {
			log.Error("Regenerate all: failed to list tenants: %v", err)
			return
		}
		for _, id := range ids {
			if _, err := regenerateUseCase.Execute(ctx, &regeneratePlaceholdersUC.Request{TenantID: id}); err != nil {
				log.Error("Regenerate all: tenant=%d failed: %v", id, err)
			}
		}
		log.Info("Regenerate all: %d tenants processed", len(ids))
	}
	if cfg.Scheduling.RegenerateOnStart {
		go regenerateAll(bgCtx)
	}
	if interval := cfg.Scheduling.RegenerateInterval(); interval > 0 {
		go runEvery(bgCtx, interval, func() { regenerateAll(bgCtx) })
	}
	go runEvery(bgCtx, time.Minute, func() { registry.EvictIdle(cfg.Scheduling.SessionIdle()) })

	// Инициализируем handlers
	getSchedule := getScheduleHandler.NewHandler(registry, log)
	getRemaining := getRemainingHandler.NewHandler(registry, log)
	createDraft := createDraftHandler.NewHandler(registry, log)
	saveDraft := saveDraftHandler.NewHandler(registry, log)
	deleteDraft := deleteDraftHandler.NewHandler(registry, log)
	reconcileAnchor := reconcileAnchorHandler.NewHandler(registry, log)
	getBusinessHours := getBusinessHoursHandler.NewHandler(settingsRepository, log)
	updateBusinessHours := updateBusinessHoursHandler.NewHandler(updateBusinessHoursUseCase, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover(log))

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1/tenants/{tenantId}").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Настройки студии
	api.HandleFunc("/business-hours", getBusinessHours.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID, сессионные - X-Session-ID)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Планировщик ---
	protected.HandleFunc("/schedule", getSchedule.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/remaining", getRemaining.Handle).Methods(http.MethodGet)

	// --- Черновики ---
	protected.HandleFunc("/drafts", createDraft.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/drafts/{key}/save", saveDraft.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/drafts/{key}", deleteDraft.Handle).Methods(http.MethodDelete)
	protected.HandleFunc("/anchors/{token}", reconcileAnchor.Handle).Methods(http.MethodPut)

	// --- Управление студией (для менеджеров) ---
	protected.HandleFunc("/business-hours", updateBusinessHours.Handle).Methods(http.MethodPut)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	stopBackground()

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Warn("Failed to close redis client: %v", err)
		}
	}

	log.Info("Server stopped gracefully")
}

// runEvery вызывает fn с периодом interval до отмены контекста
func runEvery(ctx context.Context, interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}
