package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "userd.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// The YAML file is optional; a missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "USERD_PORT")
	setString(&cfg.Server.CORSOrigin, "USERD_CORS_ORIGIN")
	setString(&cfg.Logging.Level, "USERD_LOG_LEVEL")
	setString(&cfg.Logging.Service, "USERD_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "USERD_LOG_ASYNC")
	setString(&cfg.Storage.Backend, "USERD_STORAGE_BACKEND")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "USERD_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "USERD_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "USERD_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "USERD_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "USERD_PG_HEALTH_CHECK")
	setBool(&cfg.NATS.Enabled, "USERD_NATS_ENABLED")
	setString(&cfg.NATS.URL, "NATS_URL")
	setBool(&cfg.Cache.Enabled, "USERD_CACHE_ENABLED")
	setInt64(&cfg.Cache.MaxSizeMB, "USERD_CACHE_MAX_SIZE_MB")
	setDuration(&cfg.Cache.TTL, "USERD_CACHE_TTL")
	setBool(&cfg.Metrics.Enabled, "USERD_METRICS_ENABLED")
	setBool(&cfg.Otel.Enabled, "USERD_OTEL_ENABLED")
	setString(&cfg.Otel.Endpoint, "USERD_OTEL_ENDPOINT")
	setString(&cfg.Security.SecretKey, "SECRET_KEY")
}

// validate checks that required fields are set and consistent.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	switch cfg.Storage.Backend {
	case "memory":
	case "postgres":
		if cfg.Postgres.DSN == "" {
			return errors.New("postgres.dsn is required when storage.backend is postgres")
		}
		if cfg.Postgres.MaxConns < 1 {
			return errors.New("postgres.max_conns must be >= 1")
		}
	default:
		return fmt.Errorf("storage.backend must be memory or postgres, got %q", cfg.Storage.Backend)
	}
	if cfg.NATS.Enabled && cfg.NATS.URL == "" {
		return errors.New("nats.url is required when nats.enabled is true")
	}
	if cfg.Cache.Enabled && cfg.Cache.MaxSizeMB < 1 {
		return errors.New("cache.max_size_mb must be >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
