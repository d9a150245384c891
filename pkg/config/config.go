package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Catalog   CatalogConfig
	Hierarchy HierarchyConfig
	Journal   JournalConfig
	Matching  MatchingConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	OTEL      OTELConfig
}

// AppConfig holds process-level settings
type AppConfig struct {
	Env      string
	LogLevel string
}

// CatalogConfig selects where the scheduling catalog is loaded from
type CatalogConfig struct {
	Source  string // "csv" or "postgres"
	CSVPath string
	Table   string
}

// HierarchyConfig points at the location prefix/alias/room-prefix file
type HierarchyConfig struct {
	Path string
}

// JournalConfig selects where the override journal is persisted
type JournalConfig struct {
	Backend       string // "file" or "redis"
	Path          string
	RedisKey      string
	EventsChannel string // redis backend only; processes sharing the key reload on change
}

// MatchingConfig holds fuzzy-matching policy. Thresholds are 0-100 token-set scores.
type MatchingConfig struct {
	ExamThreshold      float64
	SiteThreshold      float64
	TopK               int
	NormalizationRules string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:      getEnv("APP_ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		Catalog: CatalogConfig{
			Source:  strings.ToLower(getEnv("CATALOG_SOURCE", "csv")),
			CSVPath: getEnv("CATALOG_CSV_PATH", "data/scheduling_clean.csv"),
			Table:   getEnv("CATALOG_TABLE", "scheduling_catalog"),
		},
		Hierarchy: HierarchyConfig{
			Path: getEnv("LOCATION_PREFIXES_PATH", "config/location_prefixes.json"),
		},
		Journal: JournalConfig{
			Backend:       strings.ToLower(getEnv("JOURNAL_BACKEND", "file")),
			Path:          getEnv("JOURNAL_PATH", "data/updates.json"),
			RedisKey:      getEnv("JOURNAL_REDIS_KEY", "scheduling:journal"),
			EventsChannel: getEnv("JOURNAL_EVENTS_CHANNEL", "scheduling:journal:events"),
		},
		Matching: MatchingConfig{
			ExamThreshold:      getEnvAsFloat("MATCH_EXAM_THRESHOLD", 55),
			SiteThreshold:      getEnvAsFloat("MATCH_SITE_THRESHOLD", 60),
			TopK:               getEnvAsInt("MATCH_TOP_K", 3),
			NormalizationRules: getEnv("NORMALIZATION_RULES_PATH", ""),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "scheduling"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "scheduling-core"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the process cannot run with
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case "csv", "postgres":
	default:
		return fmt.Errorf("unsupported CATALOG_SOURCE %q (want csv or postgres)", c.Catalog.Source)
	}
	switch c.Journal.Backend {
	case "file", "redis":
	default:
		return fmt.Errorf("unsupported JOURNAL_BACKEND %q (want file or redis)", c.Journal.Backend)
	}
	if !validThreshold(c.Matching.ExamThreshold) {
		return fmt.Errorf("MATCH_EXAM_THRESHOLD must be within 0-100, got %v", c.Matching.ExamThreshold)
	}
	if !validThreshold(c.Matching.SiteThreshold) {
		return fmt.Errorf("MATCH_SITE_THRESHOLD must be within 0-100, got %v", c.Matching.SiteThreshold)
	}
	if c.Matching.TopK < 1 {
		return fmt.Errorf("MATCH_TOP_K must be positive, got %d", c.Matching.TopK)
	}
	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func validThreshold(v float64) bool {
	return v >= 0 && v <= 100
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
