package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Log         LogConfig
	HTTP        HTTPConfig
	Auth        AuthConfig
	Backend     BackendConfig
	Terminal    TerminalConfig
	Idempotency IdempotencyConfig
	Redis       RedisConfig
	Journal     JournalConfig
	Telemetry   TelemetryConfig
	MasterData  MasterDataConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// AuthConfig holds cashier token verification settings. The secret is the
// HMAC key the remote API signs its access tokens with.
type AuthConfig struct {
	JWTSecret           string
	JWTIssuer           string
	AllowTerminalHeader bool // development only: key requests by X-Terminal-ID
}

// BackendConfig points the gateway at the remote business API
type BackendConfig struct {
	BaseURL  string
	Timeout  time.Duration
	PageSize int
}

// TerminalConfig holds per-cashier terminal settings
type TerminalConfig struct {
	DefaultBranchID      int64
	DefaultPointOfSaleID int64
	IdleTTL              time.Duration
	EvictionInterval     time.Duration
}

// IdempotencyConfig selects the commit key store
type IdempotencyConfig struct {
	Enabled bool
	Store   string // memory, redis
	TTL     time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JournalConfig holds the sale journal database settings
type JournalConfig struct {
	Enabled         bool
	Driver          string // postgres, sqlite
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	Path            string // sqlite file, ":memory:" allowed
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string
	Insecure          bool // Use insecure (non-TLS) connection (development only)
	MetricsInterval   time.Duration
	LogsEnabled       bool // Export zap logs through the OTLP log bridge
	DBTraceEnabled    bool // Enable journal query tracing (otelgorm)
	ProfilingEnabled  bool
	ProfilerAddress   string // Pyroscope server, e.g. http://pyroscope:4040
}

// MasterDataConfig controls reference data caching
type MasterDataConfig struct {
	TTL time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with POS_ prefix (e.g., POS_BACKEND_BASE_URL)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("POS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// booleans that default to true must be known to viper
	v.SetDefault("idempotency.enabled", true)
	v.SetDefault("journal.enabled", true)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Auth: AuthConfig{
			JWTSecret:           v.GetString("auth.jwt_secret"),
			JWTIssuer:           v.GetString("auth.jwt_issuer"),
			AllowTerminalHeader: v.GetBool("auth.allow_terminal_header"),
		},
		Backend: BackendConfig{
			BaseURL:  v.GetString("backend.base_url"),
			Timeout:  v.GetDuration("backend.timeout"),
			PageSize: v.GetInt("backend.page_size"),
		},
		Terminal: TerminalConfig{
			DefaultBranchID:      v.GetInt64("terminal.default_branch_id"),
			DefaultPointOfSaleID: v.GetInt64("terminal.default_point_of_sale_id"),
			IdleTTL:              v.GetDuration("terminal.idle_ttl"),
			EvictionInterval:     v.GetDuration("terminal.eviction_interval"),
		},
		Idempotency: IdempotencyConfig{
			Enabled: v.GetBool("idempotency.enabled"),
			Store:   v.GetString("idempotency.store"),
			TTL:     v.GetDuration("idempotency.ttl"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Journal: JournalConfig{
			Enabled:         v.GetBool("journal.enabled"),
			Driver:          v.GetString("journal.driver"),
			Host:            v.GetString("journal.host"),
			Port:            v.GetInt("journal.port"),
			User:            v.GetString("journal.user"),
			Password:        v.GetString("journal.password"),
			DBName:          v.GetString("journal.dbname"),
			SSLMode:         v.GetString("journal.sslmode"),
			Path:            v.GetString("journal.path"),
			MaxOpenConns:    v.GetInt("journal.max_open_conns"),
			MaxIdleConns:    v.GetInt("journal.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("journal.conn_max_lifetime"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			ProfilerAddress:   v.GetString("telemetry.profiler_address"),
		},
		MasterData: MasterDataConfig{
			TTL: v.GetDuration("master_data.ttl"),
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
		cfg.App.Name = "pos-gateway"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
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
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	// empty origins means no cross-origin requests until configured
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "X-Terminal-ID", "Idempotency-Key"}
	}
	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = 15 * time.Second
	}
	if cfg.Backend.PageSize == 0 {
		cfg.Backend.PageSize = 100
	}
	if cfg.Terminal.IdleTTL == 0 {
		cfg.Terminal.IdleTTL = 12 * time.Hour
	}
	if cfg.Terminal.EvictionInterval == 0 {
		cfg.Terminal.EvictionInterval = 5 * time.Minute
	}
	if cfg.Idempotency.Store == "" {
		cfg.Idempotency.Store = "memory"
	}
	if cfg.Idempotency.TTL == 0 {
		cfg.Idempotency.TTL = 24 * time.Hour
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Journal.Driver == "" {
		cfg.Journal.Driver = "sqlite"
	}
	if cfg.Journal.Path == "" {
		cfg.Journal.Path = "pos-journal.db"
	}
	if cfg.Journal.Host == "" {
		cfg.Journal.Host = "localhost"
	}
	if cfg.Journal.Port == 0 {
		cfg.Journal.Port = 5432
	}
	if cfg.Journal.User == "" {
		cfg.Journal.User = "postgres"
	}
	if cfg.Journal.DBName == "" {
		cfg.Journal.DBName = "pos"
	}
	if cfg.Journal.SSLMode == "" {
		cfg.Journal.SSLMode = "disable"
	}
	if cfg.Journal.MaxOpenConns == 0 {
		cfg.Journal.MaxOpenConns = 10
	}
	if cfg.Journal.MaxIdleConns == 0 {
		cfg.Journal.MaxIdleConns = 2
	}
	if cfg.Journal.ConnMaxLifetime == 0 {
		cfg.Journal.ConnMaxLifetime = 60
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.MasterData.TTL == 0 {
		cfg.MasterData.TTL = 5 * time.Minute
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.base_url must be an absolute URL, got %q", c.Backend.BaseURL)
	}

	if c.Auth.JWTSecret == "" && !c.Auth.AllowTerminalHeader {
		return fmt.Errorf("auth.jwt_secret is required")
	}

	switch c.Idempotency.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("idempotency.store must be memory or redis, got %q", c.Idempotency.Store)
	}

	switch c.Journal.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("journal.driver must be postgres or sqlite, got %q", c.Journal.Driver)
	}
	if c.Journal.MaxIdleConns > c.Journal.MaxOpenConns {
		return fmt.Errorf("journal.max_idle_conns (%d) cannot exceed journal.max_open_conns (%d)",
			c.Journal.MaxIdleConns, c.Journal.MaxOpenConns)
	}

	if c.App.Env == "production" {
		if u.Scheme != "https" {
			return fmt.Errorf("backend.base_url must use https in production")
		}
		if c.Auth.AllowTerminalHeader {
			return fmt.Errorf("auth.allow_terminal_header cannot be enabled in production")
		}
		if len(c.Auth.JWTSecret) < 32 {
			return fmt.Errorf("auth.jwt_secret must be at least 32 characters in production")
		}
		if c.Journal.Driver == "postgres" && c.Journal.SSLMode == "disable" {
			return fmt.Errorf("journal.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.ProfilingEnabled && c.Telemetry.ProfilerAddress == "" {
		return fmt.Errorf("telemetry.profiler_address is required when profiling is enabled")
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the journal connection string with properly escaped values.
// For sqlite it is the database path.
func (j *JournalConfig) DSN() string {
	if j.Driver == "sqlite" {
		return j.Path
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(j.User, j.Password),
		Host:   fmt.Sprintf("%s:%d", j.Host, j.Port),
		Path:   j.DBName,
	}
	q := u.Query()
	q.Set("sslmode", j.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
