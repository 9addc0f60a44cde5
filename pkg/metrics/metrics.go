package metrics

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор prometheus-метрик сервиса
// Все методы безопасны для nil-получателя: при выключенных метриках передается nil
type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	dbQueries       *prometheus.CounterVec
	dbQueryDuration *prometheus.HistogramVec
	dbOpenConns     prometheus.Gauge
	dbInUseConns    prometheus.Gauge
	dbIdleConns     prometheus.Gauge
	dbWaitCount     prometheus.Gauge

	cacheRequests *prometheus.CounterVec

	forecastFailures prometheus.Counter
	fallbackDays     prometheus.Counter

	placeholders *prometheus.CounterVec
	drafts       *prometheus.CounterVec
}

// New создает и регистрирует метрики в глобальном реестре prometheus
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer создает метрики и регистрирует их в переданном реестре
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	labels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
		dbQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_queries_total",
			Help:        "Total number of database queries",
			ConstLabels: labels,
		}, []string{"operation", "status"}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: labels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		dbOpenConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "db_open_connections", Help: "Open database connections", ConstLabels: labels,
		}),
		dbInUseConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "db_in_use_connections", Help: "Database connections in use", ConstLabels: labels,
		}),
		dbIdleConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "db_idle_connections", Help: "Idle database connections", ConstLabels: labels,
		}),
		dbWaitCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "db_wait_count", Help: "Total number of connections waited for", ConstLabels: labels,
		}),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "range_cache_requests_total",
			Help:        "Range cache lookups by outcome (hit, miss, coalesced, error)",
			ConstLabels: labels,
		}, []string{"cache", "outcome"}),
		forecastFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "forecast_fetch_failures_total",
			Help:        "Forecast source requests that failed and were replaced by astronomical fallback",
			ConstLabels: labels,
		}),
		fallbackDays: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "sun_fallback_days_total",
			Help:        "Days resolved by astronomical calculation instead of forecast",
			ConstLabels: labels,
		}),
		placeholders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "placeholders_regenerated_total",
			Help:        "Placeholder bookings deleted and created by regeneration",
			ConstLabels: labels,
		}, []string{"action"}),
		drafts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "draft_gestures_total",
			Help:        "Draft gestures by outcome",
			ConstLabels: labels,
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.httpRequests, m.httpDuration,
		m.dbQueries, m.dbQueryDuration, m.dbOpenConns, m.dbInUseConns, m.dbIdleConns, m.dbWaitCount,
		m.cacheRequests, m.forecastFailures, m.fallbackDays, m.placeholders, m.drafts,
	)

	return m
}

// ObserveHTTP фиксирует HTTP запрос
func (m *Metrics) ObserveHTTP(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveDBQuery фиксирует запрос к БД
func (m *Metrics) ObserveDBQuery(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.dbQueries.WithLabelValues(operation, status).Inc()
	m.dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetDBPoolStats обновляет метрики пула соединений
func (m *Metrics) SetDBPoolStats(stats sql.DBStats) {
	if m == nil {
		return
	}
	m.dbOpenConns.Set(float64(stats.OpenConnections))
	m.dbInUseConns.Set(float64(stats.InUse))
	m.dbIdleConns.Set(float64(stats.Idle))
	m.dbWaitCount.Set(float64(stats.WaitCount))
}

// CacheLookup фиксирует обращение к кэшу диапазонов
func (m *Metrics) CacheLookup(cache, outcome string) {
	if m == nil {
		return
	}
	m.cacheRequests.WithLabelValues(cache, outcome).Inc()
}

// ForecastFailed фиксирует неудачный запрос к прогнозу
func (m *Metrics) ForecastFailed() {
	if m == nil {
		return
	}
	m.forecastFailures.Inc()
}

// FallbackDays фиксирует дни, посчитанные астрономической формулой
func (m *Metrics) FallbackDays(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.fallbackDays.Add(float64(n))
}

// PlaceholdersRegenerated фиксирует результат перегенерации плейсхолдеров
func (m *Metrics) PlaceholdersRegenerated(deleted int64, created int) {
	if m == nil {
		return
	}
	m.placeholders.WithLabelValues("deleted").Add(float64(deleted))
	m.placeholders.WithLabelValues("created").Add(float64(created))
}

// DraftGesture фиксирует исход жеста создания черновика
func (m *Metrics) DraftGesture(outcome string) {
	if m == nil {
		return
	}
	m.drafts.WithLabelValues(outcome).Inc()
}
