// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Auth         AuthConfig         `yaml:"auth"`
	Database     DatabaseConfig     `yaml:"database"`
	Routes       RoutesConfig       `yaml:"routes"`
	Credits      CreditsConfig      `yaml:"credits"`
	Caches       CachesConfig       `yaml:"caches"`
	Destinations DestinationsConfig `yaml:"destinations"`
	Monitoring   MonitoringConfig   `yaml:"monitoring"`
	Alerting     AlertingConfig     `yaml:"alerting"`
	Logging      LoggingConfig      `yaml:"logging"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	OpenAPI      OpenAPIConfig      `yaml:"openapi"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// AuthConfig configures session resolution.
// Use "jwt" to verify signed session cookies locally, "sqlite" to look
// sessions up in the database, or "memory" for tests and development.
type AuthConfig struct {
	Mode       string `yaml:"mode"` // "jwt", "sqlite", or "memory"
	CookieName string `yaml:"cookie_name"`
	JWTSecret  string `yaml:"jwt_secret,omitempty"`
	JWTIssuer  string `yaml:"jwt_issuer,omitempty"`
}

// DatabaseConfig configures the database.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "memory"
	DSN    string `yaml:"dsn"`
}

// RoutesConfig configures protection-level patterns.
// When all three lists are empty the built-in pattern table is used.
type RoutesConfig struct {
	Paid          []string `yaml:"paid"`
	Authenticated []string `yaml:"authenticated"`
	Public        []string `yaml:"public"`
}

// Empty reports whether no patterns were configured.
func (r RoutesConfig) Empty() bool {
	return len(r.Paid) == 0 && len(r.Authenticated) == 0 && len(r.Public) == 0
}

// CreditsConfig configures operation costs.
type CreditsConfig struct {
	DefaultCost int                  `yaml:"default_cost"`
	Costs       map[string]int       `yaml:"costs"`     // operation name -> cost override
	Pipelines   []PipelineCostConfig `yaml:"pipelines"` // per-pipeline overrides
}

// PipelineCostConfig configures the cost of one pipeline.
type PipelineCostConfig struct {
	ID   string `yaml:"id"`
	Cost int    `yaml:"cost"`
}

// CachesConfig configures the in-process caches.
type CachesConfig struct {
	RouteSize int           `yaml:"route_size"`
	WalletTTL time.Duration `yaml:"wallet_ttl"`
	TierTTL   time.Duration `yaml:"tier_ttl"`
}

// DestinationsConfig configures redirect targets.
type DestinationsConfig struct {
	Login       string `yaml:"login"`
	Signup      string `yaml:"signup"`
	VerifyEmail string `yaml:"verify_email"`
	Billing     string `yaml:"billing"`
	Pricing     string `yaml:"pricing"`
}

// MonitoringConfig configures the performance monitor thresholds.
type MonitoringConfig struct {
	Enabled           bool    `yaml:"enabled"`
	ErrorRatePercent  float64 `yaml:"error_rate_percent"`
	CacheHitPercent   float64 `yaml:"cache_hit_percent"`
	MemoryMB          float64 `yaml:"memory_mb"`
	SlowRequestMillis int64   `yaml:"slow_request_millis"`
}

// AlertingConfig configures alert webhook delivery.
type AlertingConfig struct {
	Enabled  bool                  `yaml:"enabled"`
	Interval time.Duration         `yaml:"interval"` // Poll interval (default 30s)
	Webhooks []AlertEndpointConfig `yaml:"webhooks"`
}

// AlertEndpointConfig configures one alert webhook endpoint.
type AlertEndpointConfig struct {
	Name   string   `yaml:"name"`
	URL    string   `yaml:"url"`
	Secret string   `yaml:"secret"`
	Events []string `yaml:"events"` // Defaults to all alert events
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // Custom path (default: /metrics)
}

// OpenAPIConfig configures OpenAPI/Swagger documentation.
type OpenAPIConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
// Useful for Docker deployments where no config file is needed.
//
// Environment variables:
//
//	GUARD_SERVER_HOST        - Server host (default: 0.0.0.0)
//	GUARD_SERVER_PORT        - Server port (default: 8080)
//	GUARD_AUTH_MODE          - Session mode: jwt, sqlite, memory (default: jwt)
//	GUARD_AUTH_COOKIE        - Session cookie name (default: session)
//	GUARD_AUTH_JWT_SECRET    - JWT signing secret
//	GUARD_DATABASE_DRIVER    - Database driver: sqlite or memory (default: memory)
//	GUARD_DATABASE_DSN       - Database path (default: guard.db)
//	GUARD_LOG_LEVEL          - Log level: debug, info, warn, error (default: info)
//	GUARD_LOG_FORMAT         - Log format: json or console (default: json)
//	GUARD_METRICS_ENABLED    - Enable /metrics endpoint (default: true)
//	GUARD_OPENAPI_ENABLED    - Enable OpenAPI/Swagger (default: true)
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback tries to load from file, falls back to environment variables.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

// applyEnvOverrides applies GUARD_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GUARD_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("GUARD_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("GUARD_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := os.Getenv("GUARD_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	if v := os.Getenv("GUARD_AUTH_MODE"); v != "" {
		cfg.Auth.Mode = v
	}
	if v := os.Getenv("GUARD_AUTH_COOKIE"); v != "" {
		cfg.Auth.CookieName = v
	}
	if v := os.Getenv("GUARD_AUTH_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("GUARD_AUTH_JWT_ISSUER"); v != "" {
		cfg.Auth.JWTIssuer = v
	}

	if v := os.Getenv("GUARD_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("GUARD_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	if v := os.Getenv("GUARD_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("GUARD_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	if v := os.Getenv("GUARD_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("GUARD_OPENAPI_ENABLED"); v != "" {
		cfg.OpenAPI.Enabled = parseBool(v)
	}
	if v := os.Getenv("GUARD_MONITORING_ENABLED"); v != "" {
		cfg.Monitoring.Enabled = parseBool(v)
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}

	if cfg.Auth.Mode == "" {
		cfg.Auth.Mode = "jwt"
	}
	if cfg.Auth.CookieName == "" {
		cfg.Auth.CookieName = "session"
	}
	if cfg.Auth.JWTIssuer == "" {
		cfg.Auth.JWTIssuer = "seriously-ai"
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "memory"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "guard.db"
	}

	if cfg.Credits.DefaultCost == 0 {
		cfg.Credits.DefaultCost = 1
	}

	if cfg.Caches.RouteSize == 0 {
		cfg.Caches.RouteSize = 500
	}
	if cfg.Caches.WalletTTL == 0 {
		cfg.Caches.WalletTTL = time.Minute
	}
	if cfg.Caches.TierTTL == 0 {
		cfg.Caches.TierTTL = 5 * time.Minute
	}

	if cfg.Destinations.Login == "" {
		cfg.Destinations.Login = "/auth/login"
	}
	if cfg.Destinations.Signup == "" {
		cfg.Destinations.Signup = "/auth/signup"
	}
	if cfg.Destinations.VerifyEmail == "" {
		cfg.Destinations.VerifyEmail = "/auth/verify-email"
	}
	if cfg.Destinations.Billing == "" {
		cfg.Destinations.Billing = "/settings/billing"
	}
	if cfg.Destinations.Pricing == "" {
		cfg.Destinations.Pricing = "/pricing"
	}

	if cfg.Monitoring.ErrorRatePercent == 0 {
		cfg.Monitoring.ErrorRatePercent = 5
	}
	if cfg.Monitoring.CacheHitPercent == 0 {
		cfg.Monitoring.CacheHitPercent = 70
	}
	if cfg.Monitoring.MemoryMB == 0 {
		cfg.Monitoring.MemoryMB = 512
	}
	if cfg.Monitoring.SlowRequestMillis == 0 {
		cfg.Monitoring.SlowRequestMillis = 200
	}

	if cfg.Alerting.Interval == 0 {
		cfg.Alerting.Interval = 30 * time.Second
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validate(cfg *Config) error {
	validAuthModes := map[string]bool{"jwt": true, "sqlite": true, "memory": true}
	if !validAuthModes[cfg.Auth.Mode] {
		return fmt.Errorf("auth.mode must be 'jwt', 'sqlite', or 'memory', got %q", cfg.Auth.Mode)
	}
	if cfg.Auth.Mode == "sqlite" && cfg.Database.Driver != "sqlite" {
		return fmt.Errorf("auth.mode 'sqlite' requires database.driver 'sqlite', got %q", cfg.Database.Driver)
	}

	validDrivers := map[string]bool{"sqlite": true, "memory": true}
	if !validDrivers[cfg.Database.Driver] {
		return fmt.Errorf("database.driver must be 'sqlite' or 'memory', got %q", cfg.Database.Driver)
	}

	if cfg.Credits.DefaultCost < 0 {
		return fmt.Errorf("credits.default_cost must not be negative")
	}
	for op, cost := range cfg.Credits.Costs {
		if cost < 0 {
			return fmt.Errorf("credits.costs[%s] must not be negative", op)
		}
	}
	for i, p := range cfg.Credits.Pipelines {
		if p.ID == "" {
			return fmt.Errorf("credits.pipelines[%d].id is required", i)
		}
		if p.Cost < 0 {
			return fmt.Errorf("credits.pipelines[%d].cost must not be negative", i)
		}
	}

	if cfg.Caches.RouteSize < 0 {
		return fmt.Errorf("caches.route_size must not be negative")
	}

	for i, hook := range cfg.Alerting.Webhooks {
		if hook.URL == "" {
			return fmt.Errorf("alerting.webhooks[%d].url is required", i)
		}
		if !strings.HasPrefix(hook.URL, "http://") && !strings.HasPrefix(hook.URL, "https://") {
			return fmt.Errorf("alerting.webhooks[%d].url must be http(s), got %q", i, hook.URL)
		}
	}

	for name, dest := range map[string]string{
		"login":        cfg.Destinations.Login,
		"signup":       cfg.Destinations.Signup,
		"verify_email": cfg.Destinations.VerifyEmail,
		"billing":      cfg.Destinations.Billing,
		"pricing":      cfg.Destinations.Pricing,
	} {
		if !strings.HasPrefix(dest, "/") {
			return fmt.Errorf("destinations.%s must be an absolute path, got %q", name, dest)
		}
	}

	return nil
}
