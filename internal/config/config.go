package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

// DefaultKey is the fallback shared secret. It exists so the service comes up
// without any configuration, but it must never survive into production.
const DefaultKey = "x"

// Config is the process configuration, loaded once at startup and passed
// explicitly into every component. Env var names are the koanf keys.
type Config struct {
	Host string `koanf:"host" validate:"required"`
	Port string `koanf:"port" validate:"required"`

	DBHost     string `koanf:"db_host" validate:"required"`
	DBPort     string `koanf:"db_port" validate:"required"`
	DBUser     string `koanf:"db_user" validate:"required"`
	DBPassword string `koanf:"db_password"`
	DBName     string `koanf:"db_name" validate:"required"`
	DBSSLMode  string `koanf:"db_sslmode" validate:"required"`
	DBMaxConns int    `koanf:"db_max_conns" validate:"gt=0"`

	// Key is the shared secret gating the read path.
	Key string `koanf:"key" validate:"required"`
	// Limit caps bounded retrievals.
	Limit int `koanf:"limit" validate:"gt=0"`
	// QueryTimeout bounds every store call, in seconds.
	QueryTimeout int `koanf:"query_timeout" validate:"gt=0"`

	NewRelicLicenseKey string `koanf:"new_relic_license_key"`
	LogLevel           string `koanf:"log_level"`
}

// Default returns a Config populated with the documented fallbacks.
func Default() *Config {
	return &Config{
		Host:         "localhost",
		Port:         "8080",
		DBHost:       "localhost",
		DBPort:       "5432",
		DBUser:       "postgres",
		DBPassword:   "postgres",
		DBName:       "postgres",
		DBSSLMode:    "disable",
		DBMaxConns:   5,
		Key:          DefaultKey,
		Limit:        100,
		QueryTimeout: 5,
		LogLevel:     "info",
	}
}

// Load reads configuration from environment variables on top of the defaults
// and validates the result.
func Load() (*Config, error) {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("load env variables: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if cfg.Key == DefaultKey {
		logger.Warn().Msg("KEY is not set; the read path is gated by the insecure default secret, set a real one before exposing this service")
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// DatabaseURL builds the Postgres connection string from the DB_* settings.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// QueryDeadline returns the per-store-call timeout.
func (c *Config) QueryDeadline() time.Duration {
	return time.Duration(c.QueryTimeout) * time.Second
}

// ZerologLevel parses LOG_LEVEL, falling back to info on garbage.
func (c *Config) ZerologLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
