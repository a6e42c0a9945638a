package config

import (
	"errors"
	"fmt"
	"time"

	pkgconfig "github.com/apper-canvas/stylehub-crypto-chip/pkg/config"
)

// Catalog sources.
const (
	CatalogEmbedded = "embedded"
	CatalogFile     = "file"
	CatalogHTTP     = "http"
	CatalogPostgres = "postgres"
)

// Storage backends.
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageBadger = "badger"
)

// Config holds all configuration for the storefront.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort           int      `env:"HTTP_PORT" envDefault:"8080"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	// Catalog
	CatalogSource string `env:"CATALOG_SOURCE" envDefault:"embedded"`
	CatalogPath   string `env:"CATALOG_PATH"`
	CatalogWatch  bool   `env:"CATALOG_WATCH" envDefault:"false"`
	CatalogURL    string `env:"CATALOG_URL"`

	// PostgreSQL, used when the catalog source is postgres
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"stylehub"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"stylehub"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"stylehub"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	PostgresMaxConns int32  `env:"POSTGRES_MAX_CONNS" envDefault:"5"`

	// Shopper state storage
	StorageBackend  string `env:"STORAGE_BACKEND" envDefault:"memory"`
	RedisHost       string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort       int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword   string `env:"REDIS_PASSWORD"`
	RedisDB         int    `env:"REDIS_DB" envDefault:"0"`
	SessionTTLHours int    `env:"SESSION_TTL_HOURS" envDefault:"720"`
	BadgerPath      string `env:"BADGER_PATH" envDefault:"./data/badger"`
	MaxOpenSessions int    `env:"MAX_OPEN_SESSIONS" envDefault:"10000"`

	// Kafka notifications
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Search suggestions
	SuggestDebounceMS int `env:"SUGGEST_DEBOUNCE_MS" envDefault:"300"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	return LoadWith(nil)
}

// LoadWith reads configuration from environment variables with overrides
// (keyed by variable name) taking precedence.
func LoadWith(overrides map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadWith(cfg, overrides); err != nil {
		return nil, fmt.Errorf("load stylehub config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SessionTTL is the Redis expiry of shopper state and the idle time after
// which an open session is closed; zero keeps both forever.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// SuggestDebounce is the keystroke quiet period before suggesting.
func (c *Config) SuggestDebounce() time.Duration {
	return time.Duration(c.SuggestDebounceMS) * time.Millisecond
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	var errs []error

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP port: %d", c.HTTPPort))
	}

	switch c.CatalogSource {
	case CatalogEmbedded, CatalogPostgres:
	case CatalogFile:
		if c.CatalogPath == "" {
			errs = append(errs, errors.New("CATALOG_PATH is required when CATALOG_SOURCE=file"))
		}
	case CatalogHTTP:
		if c.CatalogURL == "" {
			errs = append(errs, errors.New("CATALOG_URL is required when CATALOG_SOURCE=http"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid CATALOG_SOURCE %q", c.CatalogSource))
	}
	if c.CatalogWatch && c.CatalogSource != CatalogFile {
		errs = append(errs, errors.New("CATALOG_WATCH requires CATALOG_SOURCE=file"))
	}

	switch c.StorageBackend {
	case StorageMemory, StorageRedis:
	case StorageBadger:
		if c.BadgerPath == "" {
			errs = append(errs, errors.New("BADGER_PATH is required when STORAGE_BACKEND=badger"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid STORAGE_BACKEND %q", c.StorageBackend))
	}

	if c.SessionTTLHours < 0 {
		errs = append(errs, fmt.Errorf("invalid SESSION_TTL_HOURS: %d", c.SessionTTLHours))
	}
	if c.MaxOpenSessions < 0 {
		errs = append(errs, fmt.Errorf("invalid MAX_OPEN_SESSIONS: %d", c.MaxOpenSessions))
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED=true"))
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		errs = append(errs, fmt.Errorf("invalid OTEL sample rate: %v (must be between 0.0 and 1.0)", c.OTELSampleRate))
	}
	if c.SuggestDebounceMS < 0 {
		errs = append(errs, fmt.Errorf("invalid SUGGEST_DEBOUNCE_MS: %d", c.SuggestDebounceMS))
	}

	return errors.Join(errs...)
}
