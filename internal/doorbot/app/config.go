package app

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/tinkerhall/doorbot/pkg/passwd"
)

type Config struct {
	DatabaseFile string `yaml:"database_file"` // Path to SQLite database file (default: ./doorbot.db)

	Env       string `yaml:"env"`        // Environment (dev, staging, prod) (default: dev)
	LogLevel  string `yaml:"log_level"`  // Log level (debug, info, warn, error) (default: info)
	LogFormat string `yaml:"log_format"` // Log format (json, text) (default: json)

	Port                 int           `yaml:"port"`                  // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration `yaml:"shutdown_grace_period"` // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration `yaml:"housekeeping_interval"` // Expired token sweep interval (default: 1h)

	// PasswordScheme is the scheme tag new credentials are encoded with,
	// e.g. "bcrypt_12". Existing credentials under other schemes keep
	// verifying and are upgraded on first successful login.
	PasswordScheme string `yaml:"password_scheme"`

	TokenTTL time.Duration `yaml:"token_ttl"` // Default bearer token lifetime (default: 720h)
}

// LoadConfig builds the configuration from an optional YAML file with
// environment variables taking precedence over both the file and the
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		DatabaseFile:         "doorbot.db",
		Env:                  "dev",
		LogLevel:             "info",
		LogFormat:            "json",
		Port:                 8080,
		ShutdownGracePeriod:  10 * time.Second,
		HousekeepingInterval: time.Hour,
		PasswordScheme:       "bcrypt_12",
		TokenTTL:             30 * 24 * time.Hour,
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.DatabaseFile = getEnvOrDefault("DOORBOT_DATABASE_FILE", cfg.DatabaseFile)
	cfg.Env = getEnvOrDefault("ENV", cfg.Env)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)
	cfg.Port = getEnvIntOrDefault("PORT", cfg.Port)
	cfg.ShutdownGracePeriod = getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", cfg.ShutdownGracePeriod)
	cfg.HousekeepingInterval = getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", cfg.HousekeepingInterval)
	cfg.PasswordScheme = getEnvOrDefault("DOORBOT_PASSWORD_SCHEME", cfg.PasswordScheme)
	cfg.TokenTTL = getEnvDurationOrDefault("DOORBOT_TOKEN_TTL", cfg.TokenTTL)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg Config) validate() error {
	scheme, err := passwd.ParseTag(cfg.PasswordScheme)
	if err != nil {
		return fmt.Errorf("invalid password_scheme %q: %w", cfg.PasswordScheme, err)
	}
	if scheme.Kind == passwd.KindApacheMD5 {
		return fmt.Errorf("password_scheme %q is verify-only and cannot encode new credentials",
			cfg.PasswordScheme)
	}
	if scheme.Kind == passwd.KindBcrypt && scheme.Difficulty < bcrypt.DefaultCost {
		return fmt.Errorf("password_scheme %q is below the minimum allowed cost %d",
			cfg.PasswordScheme, bcrypt.DefaultCost)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port %d", cfg.Port)
	}
	return nil
}

// Scheme returns the parsed preferred credential scheme. Call validate
// (via LoadConfig) first.
func (cfg Config) Scheme() passwd.Scheme {
	scheme, _ := passwd.ParseTag(cfg.PasswordScheme)
	return scheme
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
