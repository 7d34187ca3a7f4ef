package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Nassimghoulane/Dionos-1/internal/domain/shared/valueobject"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	HTTP        HTTPConfig
	Log         LogConfig
	Catalog     CatalogConfig
	Progression ProgressionConfig
	Archive     ArchiveConfig
	Redis       RedisConfig
	Telemetry   TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name     string
	Env      string
	Currency string // ISO 4217 code prices are expressed in
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Port             string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	ShutdownTimeout  time.Duration
	MaxHeaderBytes   int
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// CatalogConfig points at the store seed file
type CatalogConfig struct {
	SeedFile string // empty = embedded fixtures
}

// ProgressionConfig holds the delays of the automatic order status changes
type ProgressionConfig struct {
	ConfirmAfter   time.Duration
	PreparingAfter time.Duration
}

// ArchiveConfig holds the order archive database settings
type ArchiveConfig struct {
	Enabled         bool
	Driver          string // sqlite, postgres
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	RestoreOnStart  bool

	// SlowQueryThreshold marks archive statements as slow in logs and spans
	SlowQueryThreshold time.Duration
}

// RedisConfig holds Redis connection settings for the pickup code registry
type RedisConfig struct {
	Enabled        bool
	Host           string
	Port           int
	Password       string
	DB             int
	KeyPrefix      string
	ReservationTTL time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string
	Insecure          bool // Use insecure (non-TLS) connection (development only)
	MetricsInterval   time.Duration
	DBTraceEnabled    bool
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with CLICKCOLLECT_ prefix (e.g., CLICKCOLLECT_HTTP_PORT)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("CLICKCOLLECT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:     v.GetString("app.name"),
			Env:      v.GetString("app.env"),
			Currency: v.GetString("app.currency"),
		},
		HTTP: HTTPConfig{
			Port:             v.GetString("http.port"),
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			ShutdownTimeout:  v.GetDuration("http.shutdown_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Catalog: CatalogConfig{
			SeedFile: v.GetString("catalog.seed_file"),
		},
		Progression: ProgressionConfig{
			ConfirmAfter:   v.GetDuration("progression.confirm_after"),
			PreparingAfter: v.GetDuration("progression.preparing_after"),
		},
		Archive: ArchiveConfig{
			Enabled:            v.GetBool("archive.enabled"),
			Driver:             v.GetString("archive.driver"),
			DSN:                v.GetString("archive.dsn"),
			MaxOpenConns:       v.GetInt("archive.max_open_conns"),
			MaxIdleConns:       v.GetInt("archive.max_idle_conns"),
			ConnMaxLifetime:    v.GetDuration("archive.conn_max_lifetime"),
			RestoreOnStart:     v.GetBool("archive.restore_on_start"),
			SlowQueryThreshold: v.GetDuration("archive.slow_query_threshold"),
		},
		Redis: RedisConfig{
			Enabled:        v.GetBool("redis.enabled"),
			Host:           v.GetString("redis.host"),
			Port:           v.GetInt("redis.port"),
			Password:       v.GetString("redis.password"),
			DB:             v.GetInt("redis.db"),
			KeyPrefix:      v.GetString("redis.key_prefix"),
			ReservationTTL: v.GetDuration("redis.reservation_ttl"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "click-collect"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Currency == "" {
		cfg.App.Currency = string(valueobject.DefaultCurrency)
	}
	if cfg.HTTP.Port == "" {
		cfg.HTTP.Port = "8080"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 30 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	// No default origins: cross-origin requests stay blocked until configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Progression.ConfirmAfter == 0 {
		cfg.Progression.ConfirmAfter = 2 * time.Second
	}
	if cfg.Progression.PreparingAfter == 0 {
		cfg.Progression.PreparingAfter = 5 * time.Second
	}
	if cfg.Archive.Driver == "" {
		cfg.Archive.Driver = "sqlite"
	}
	if cfg.Archive.DSN == "" && cfg.Archive.Driver == "sqlite" {
		cfg.Archive.DSN = "file:orders.db?_busy_timeout=5000"
	}
	if cfg.Archive.MaxOpenConns == 0 {
		cfg.Archive.MaxOpenConns = 10
	}
	if cfg.Archive.MaxIdleConns == 0 {
		cfg.Archive.MaxIdleConns = 2
	}
	if cfg.Archive.ConnMaxLifetime == 0 {
		cfg.Archive.ConnMaxLifetime = time.Hour
	}
	if cfg.Archive.SlowQueryThreshold == 0 {
		cfg.Archive.SlowQueryThreshold = 200 * time.Millisecond
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "clickcollect:pickup:"
	}
	if cfg.Redis.ReservationTTL == 0 {
		cfg.Redis.ReservationTTL = 24 * time.Hour
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 15 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	code, err := valueobject.ParseCurrency(c.App.Currency)
	if err != nil {
		return fmt.Errorf("app.currency: %w", err)
	}
	c.App.Currency = string(code)

	if c.Progression.ConfirmAfter < 0 || c.Progression.PreparingAfter < 0 {
		return fmt.Errorf("progression delays cannot be negative")
	}
	if c.Progression.PreparingAfter < c.Progression.ConfirmAfter {
		return fmt.Errorf("progression.preparing_after (%s) cannot be earlier than progression.confirm_after (%s)",
			c.Progression.PreparingAfter, c.Progression.ConfirmAfter)
	}

	if c.Archive.Enabled {
		switch c.Archive.Driver {
		case "sqlite", "postgres":
		default:
			return fmt.Errorf("archive.driver must be sqlite or postgres, got %q", c.Archive.Driver)
		}
		if c.Archive.DSN == "" {
			return fmt.Errorf("archive.dsn is required for driver %s", c.Archive.Driver)
		}
		if c.Archive.MaxIdleConns > c.Archive.MaxOpenConns {
			return fmt.Errorf("archive.max_idle_conns (%d) cannot exceed archive.max_open_conns (%d)",
				c.Archive.MaxIdleConns, c.Archive.MaxOpenConns)
		}
	}

	if c.Redis.Enabled && c.Redis.ReservationTTL < time.Minute {
		return fmt.Errorf("redis.reservation_ttl must be at least 1m, got %s", c.Redis.ReservationTTL)
	}

	if c.App.Env == "production" {
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// Currency returns the validated application currency
func (c *Config) Currency() valueobject.Currency {
	return valueobject.Currency(c.App.Currency)
}

// Addr returns the Redis address in host:port form
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
