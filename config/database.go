package config

import "time"

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"                    envDefault:"localhost"`
	Port     int    `env:"PORT"                    envDefault:"5432"`
	User     string `env:"USER"                    envDefault:"logmailer"`
	Password string `env:"PASSWORD"                envDefault:"logmailer"`
	Name     string `env:"NAME"                    envDefault:"logmailer"`
	SSLMode  string `env:"SSL_MODE"                envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
}

// SettingsCacheConfig controls the Redis read-through cache in front of the settings store.
type SettingsCacheConfig struct {
	// Enabled turns on the cache. Redis is only dialed when this is true.
	Enabled bool `env:"SETTINGS_CACHE_ENABLED" envDefault:"false"`

	// TTL bounds how long a cached settings value may be served.
	TTL time.Duration `env:"SETTINGS_CACHE_TTL" envDefault:"5m"`

	// KeyPrefix namespaces cache keys.
	KeyPrefix string `env:"SETTINGS_CACHE_KEY_PREFIX" envDefault:"logmailer:settings:"`
}

// Sanitize applies guardrails to settings cache configuration values.
func (c *SettingsCacheConfig) Sanitize() {
	if c.TTL < time.Second {
		c.TTL = time.Second
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "logmailer:settings:"
	}
}
