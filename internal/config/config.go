package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config конфигурация сервиса
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Database   DatabaseConfig   `toml:"database"`
	Logs       LogsConfig       `toml:"logs"`
	Metrics    MetricsConfig    `toml:"metrics"`
	Forecast   ForecastConfig   `toml:"forecast"`
	Redis      RedisConfig      `toml:"redis"`
	Scheduling SchedulingConfig `toml:"scheduling"`
}

// ServerConfig HTTP сервер, таймауты в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig подключение к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig логирование
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig Prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
	Path        string `toml:"path"`
}

// ForecastConfig сервис прогноза рассвета и заката
type ForecastConfig struct {
	URL         string `toml:"url"`
	Timeout     int    `toml:"timeout"`
	HorizonDays int    `toml:"horizon_days"`
}

// RedisConfig шина событий изменения настроек
type RedisConfig struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
	Channel string `toml:"channel"`
}

// SchedulingConfig параметры планировщика
type SchedulingConfig struct {
	RollingWindowDays       int  `toml:"rolling_window_days"`
	SessionIdleMinutes      int  `toml:"session_idle_minutes"`
	RegenerateOnStart       bool `toml:"regenerate_on_start"`
	RegenerateIntervalHours int  `toml:"regenerate_interval_hours"` // 0 - только по изменению настроек
}

// SessionIdle время простоя, после которого сессия закрывается
func (s SchedulingConfig) SessionIdle() time.Duration {
	return time.Duration(s.SessionIdleMinutes) * time.Minute
}

// RegenerateInterval период фоновой перегенерации плейсхолдеров, 0 если выключена
func (s SchedulingConfig) RegenerateInterval() time.Duration {
	return time.Duration(s.RegenerateIntervalHours) * time.Hour
}

// Load читает toml файл, затем переменные окружения (включая .env)
func Load(path string) (*Config, error) {
	// .env необязателен
	_ = godotenv.Load()

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	setDefault(&c.Server.HTTPPort, 8080)
	setDefault(&c.Server.ReadTimeout, 15)
	setDefault(&c.Server.WriteTimeout, 15)
	setDefault(&c.Server.IdleTimeout, 60)
	setDefault(&c.Server.ShutdownTimeout, 10)

	setDefault(&c.Database.Port, 5432)
	setDefault(&c.Database.MaxOpenConns, 25)
	setDefault(&c.Database.MaxIdleConns, 5)
	setDefault(&c.Database.ConnMaxLifetime, 300)
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}

	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "studio_scheduler"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}

	if c.Forecast.URL == "" {
		c.Forecast.URL = "https://api.open-meteo.com"
	}
	setDefault(&c.Forecast.Timeout, 5)
	setDefault(&c.Forecast.HorizonDays, 15)

	if c.Redis.Channel == "" {
		c.Redis.Channel = "studio:settings.changed"
	}

	setDefault(&c.Scheduling.RollingWindowDays, 30)
	setDefault(&c.Scheduling.SessionIdleMinutes, 120)
}

func (c *Config) applyEnv() error {
	overrideString(&c.Database.Host, "DB_HOST")
	overrideString(&c.Database.User, "DB_USER")
	overrideString(&c.Database.Password, "DB_PASSWORD")
	overrideString(&c.Database.DBName, "DB_NAME")
	overrideString(&c.Logs.Level, "LOG_LEVEL")
	overrideString(&c.Forecast.URL, "FORECAST_URL")

	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Redis.URL = v
		c.Redis.Enabled = true
	}

	if err := overrideInt(&c.Server.HTTPPort, "HTTP_PORT"); err != nil {
		return err
	}
	return overrideInt(&c.Database.Port, "DB_PORT")
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid server.http_port: %d", c.Server.HTTPPort)
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		return errors.New("database.host and database.dbname are required")
	}
	if c.Redis.Enabled && c.Redis.URL == "" {
		return errors.New("redis.url is required when redis is enabled")
	}
	if c.Scheduling.RollingWindowDays > 366 {
		return fmt.Errorf("scheduling.rolling_window_days must not exceed 366, got %d", c.Scheduling.RollingWindowDays)
	}
	return nil
}

func setDefault(v *int, def int) {
	if *v <= 0 {
		*v = def
	}
}

func overrideString(v *string, env string) {
	if s := os.Getenv(env); s != "" {
		*v = s
	}
}

func overrideInt(v *int, env string) error {
	s := os.Getenv(env)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", env, err)
	}
	*v = n
	return nil
}
