package config

import (
	"log/slog"
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - database.go: Database and settings cache configuration
//   - harvest.go: Log harvest and recipient configuration
//   - mail.go: Mail transport configuration
//   - services.go: Scheduler configuration
//   - http.go: Health and status endpoint
//   - observability.go: Metrics and diagnostics notifications
type AppConfig struct {
	// IsDev controls development mode behavior (console-friendly logging).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Database configuration
	Postgres      DBConfig    `envPrefix:"DB_"`
	Redis         RedisConfig `envPrefix:"REDIS_"`
	SettingsCache SettingsCacheConfig

	// Harvest configuration
	Harvest HarvestConfig

	// Mail transport configuration
	Mail MailConfig

	// Scheduler configuration
	Scheduler SchedulerConfig

	// HTTP health and status endpoint
	HTTP HTTPConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.SettingsCache.Sanitize()
	c.Harvest.Sanitize()
	c.Mail.Sanitize()
	c.Scheduler.Sanitize()
	c.HTTP.Sanitize()
	c.Observability.Sanitize()

	c.detectDevMode()
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info.
func (c *AppConfig) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
