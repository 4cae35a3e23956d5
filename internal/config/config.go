package config

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

type LookupFunc func(string) (string, bool)

type Profile string

const (
	ProfileDev  Profile = "dev"
	ProfileTest Profile = "test"
	ProfileProd Profile = "prod"
)

type Config struct {
	Profile       Profile
	Service       ServiceConfig
	HTTP          HTTPConfig
	Datastore     DatastoreConfig
	Schema        SchemaConfig
	AI            AIConfig
	Assistant     AssistantConfig
	Archive       ArchiveConfig
	ObjectStore   ObjectStoreConfig
	Observability ObservabilityConfig
}

type ServiceConfig struct {
	Name string
}

type HTTPConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatastoreConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

type SchemaConfig struct {
	// CacheTTL of zero recomputes the schema on every ask.
	CacheTTL time.Duration
}

type AIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	TopP        float64
	Timeout     time.Duration
}

type AssistantConfig struct {
	ReadOnly bool
}

type ArchiveConfig struct {
	Enabled bool
}

type ObjectStoreConfig struct {
	Endpoint         string
	Region           string
	Bucket           string
	AccessKeyID      string
	SecretAccessKey  string
	UseSSL           bool
	Prefix           string
	AutoCreateBucket bool
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
}

func LoadFromEnv(serviceName string) (Config, error) {
	return Load(serviceName, os.LookupEnv)
}

func Load(serviceName string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	profile := ProfileDev
	if raw, ok := lookup("ASKSQL_PROFILE"); ok {
		profile = Profile(strings.ToLower(strings.TrimSpace(raw)))
	}
	if !isValidProfile(profile) {
		return Config{}, fmt.Errorf("invalid ASKSQL_PROFILE: %q", profile)
	}

	cfg := defaultsForProfile(profile)
	if serviceName != "" {
		cfg.Service.Name = serviceName
	}

	appliers := []func() error{
		func() error { return applyString(lookup, "ASKSQL_SERVICE_NAME", &cfg.Service.Name) },
		func() error { return applyString(lookup, "ASKSQL_HTTP_ADDR", &cfg.HTTP.Address) },
		func() error { return applyDuration(lookup, "ASKSQL_HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout) },
		func() error { return applyDuration(lookup, "ASKSQL_HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout) },
		func() error { return applyDuration(lookup, "ASKSQL_HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout) },
		func() error { return applyString(lookup, "ASKSQL_DATASTORE_DRIVER", &cfg.Datastore.Driver) },
		func() error { return applyString(lookup, "ASKSQL_DATASTORE_DSN", &cfg.Datastore.DSN) },
		func() error { return applyInt(lookup, "ASKSQL_DATASTORE_MAX_OPEN_CONNS", &cfg.Datastore.MaxOpenConns) },
		func() error { return applyInt(lookup, "ASKSQL_DATASTORE_MAX_IDLE_CONNS", &cfg.Datastore.MaxIdleConns) },
		func() error {
			return applyDuration(lookup, "ASKSQL_DATASTORE_CONN_MAX_IDLE_TIME", &cfg.Datastore.ConnMaxIdleTime)
		},
		func() error {
			return applyDuration(lookup, "ASKSQL_DATASTORE_CONN_MAX_LIFETIME", &cfg.Datastore.ConnMaxLifetime)
		},
		func() error { return applyDuration(lookup, "ASKSQL_SCHEMA_CACHE_TTL", &cfg.Schema.CacheTTL) },
		func() error { return applyString(lookup, "ASKSQL_AI_BASE_URL", &cfg.AI.BaseURL) },
		func() error { return applyString(lookup, "ASKSQL_AI_API_KEY", &cfg.AI.APIKey) },
		func() error { return applyString(lookup, "ASKSQL_AI_MODEL", &cfg.AI.Model) },
		func() error { return applyFloat(lookup, "ASKSQL_AI_TEMPERATURE", &cfg.AI.Temperature) },
		func() error { return applyFloat(lookup, "ASKSQL_AI_TOP_P", &cfg.AI.TopP) },
		func() error { return applyDuration(lookup, "ASKSQL_AI_TIMEOUT", &cfg.AI.Timeout) },
		func() error { return applyBool(lookup, "ASKSQL_READ_ONLY", &cfg.Assistant.ReadOnly) },
		func() error { return applyBool(lookup, "ASKSQL_ARCHIVE_ENABLED", &cfg.Archive.Enabled) },
		func() error { return applyString(lookup, "ASKSQL_OBJECTSTORE_ENDPOINT", &cfg.ObjectStore.Endpoint) },
		func() error { return applyString(lookup, "ASKSQL_OBJECTSTORE_REGION", &cfg.ObjectStore.Region) },
		func() error { return applyString(lookup, "ASKSQL_OBJECTSTORE_BUCKET", &cfg.ObjectStore.Bucket) },
		func() error { return applyString(lookup, "ASKSQL_OBJECTSTORE_ACCESS_KEY", &cfg.ObjectStore.AccessKeyID) },
		func() error {
			return applyString(lookup, "ASKSQL_OBJECTSTORE_SECRET_KEY", &cfg.ObjectStore.SecretAccessKey)
		},
		func() error { return applyBool(lookup, "ASKSQL_OBJECTSTORE_USE_SSL", &cfg.ObjectStore.UseSSL) },
		func() error { return applyString(lookup, "ASKSQL_OBJECTSTORE_PREFIX", &cfg.ObjectStore.Prefix) },
		func() error {
			return applyBool(lookup, "ASKSQL_OBJECTSTORE_AUTO_CREATE_BUCKET", &cfg.ObjectStore.AutoCreateBucket)
		},
		func() error { return applyBool(lookup, "ASKSQL_LOG_JSON", &cfg.Observability.LogJSON) },
		func() error { return applyLogLevel(lookup, "ASKSQL_LOG_LEVEL", &cfg.Observability.LogLevel) },
	}
	for _, apply := range appliers {
		if err := apply(); err != nil {
			return Config{}, err
		}
	}

	cfg.Datastore.Driver = strings.ToLower(cfg.Datastore.Driver)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg Config) validate() error {
	if cfg.Service.Name == "" {
		return fmt.Errorf("service name is required")
	}
	if cfg.HTTP.Address == "" {
		return fmt.Errorf("http address is required")
	}
	switch cfg.Datastore.Driver {
	case "mysql", "pgx", "postgres", "duckdb":
	default:
		return fmt.Errorf("invalid ASKSQL_DATASTORE_DRIVER: %q", cfg.Datastore.Driver)
	}
	if cfg.Schema.CacheTTL < 0 {
		return fmt.Errorf("ASKSQL_SCHEMA_CACHE_TTL must be >= 0")
	}
	if cfg.AI.Model == "" {
		return fmt.Errorf("ai model is required")
	}
	if !isFinite(cfg.AI.Temperature) || cfg.AI.Temperature < 0 || cfg.AI.Temperature > 2 {
		return fmt.Errorf("ASKSQL_AI_TEMPERATURE must be within [0, 2], got %v", cfg.AI.Temperature)
	}
	if !isFinite(cfg.AI.TopP) || cfg.AI.TopP <= 0 || cfg.AI.TopP > 1 {
		return fmt.Errorf("ASKSQL_AI_TOP_P must be within (0, 1], got %v", cfg.AI.TopP)
	}
	return nil
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}

func defaultsForProfile(profile Profile) Config {
	cfg := Config{
		Profile: profile,
		Service: ServiceConfig{Name: "asksql-api"},
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Datastore: DatastoreConfig{
			Driver:          "mysql",
			DSN:             "root:root@tcp(localhost:3306)/laravel?parseTime=true",
			MaxOpenConns:    10,
			MaxIdleConns:    10,
			ConnMaxIdleTime: 5 * time.Minute,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Schema: SchemaConfig{
			CacheTTL: 0,
		},
		AI: AIConfig{
			BaseURL:     "https://api.openai.com",
			Model:       "gpt-4o",
			Temperature: 0.1,
			TopP:        0.95,
			Timeout:     60 * time.Second,
		},
		Assistant: AssistantConfig{
			ReadOnly: false,
		},
		Archive: ArchiveConfig{
			Enabled: false,
		},
		ObjectStore: ObjectStoreConfig{
			Endpoint:         "localhost:9000",
			Region:           "us-east-1",
			Bucket:           "asksql",
			AccessKeyID:      "minio",
			SecretAccessKey:  "miniostorage",
			UseSSL:           false,
			Prefix:           "",
			AutoCreateBucket: true,
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelDebug,
			LogJSON:  true,
		},
	}

	switch profile {
	case ProfileTest:
		cfg.HTTP.Address = ":18080"
		cfg.Observability.LogLevel = slog.LevelWarn
	case ProfileProd:
		cfg.Observability.LogLevel = slog.LevelInfo
		cfg.ObjectStore.UseSSL = true
		cfg.ObjectStore.AutoCreateBucket = false
	}

	return cfg
}

func isValidProfile(profile Profile) bool {
	switch profile {
	case ProfileDev, ProfileTest, ProfileProd:
		return true
	default:
		return false
	}
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyFloat(lookup LookupFunc, key string, dst *float64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	level := strings.ToLower(strings.TrimSpace(raw))
	switch level {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
