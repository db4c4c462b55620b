package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"
)

// Changelog backends
const (
	ChangelogPostgres = "postgres"
	ChangelogFile     = "file"
	ChangelogRedis    = "redis"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// Discussion query configuration
	Discussion DiscussionConfig

	// Auth configuration
	Auth AuthConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxOpenConns   int
	MaxIdleConns   int
	MaxLifetime    time.Duration
	MigrationsPath string
}

// RedisConfig holds the redis changelog settings
type RedisConfig struct {
	URL          string
	ChangelogKey string
}

// DiscussionConfig holds settings for thread and comment queries
type DiscussionConfig struct {
	DefaultPageSize  int
	MaxScanLines     int // 0 disables the ceiling
	ModeratorGroups  string
	ChangelogBackend string
	MetaDir          string
	DataDir          string
	HiddenPages      string // regex, empty disables
	PageBaseURL      string
	LangFile         string
}

// AuthConfig holds the manager/superuser membership list
type AuthConfig struct {
	ManagerGroups string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			Name:           getEnv("DB_NAME", "discussion"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:   getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:   getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:    getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		},
		Redis: RedisConfig{
			URL:          getEnv("REDIS_URL", "redis://localhost:6379/0"),
			ChangelogKey: getEnv("CHANGELOG_REDIS_KEY", "discussion:changes"),
		},
		Discussion: DiscussionConfig{
			DefaultPageSize:  getIntEnv("DISCUSSION_DEFAULT_PAGE_SIZE", 20),
			MaxScanLines:     getIntEnv("DISCUSSION_MAX_SCAN_LINES", 10000),
			ModeratorGroups:  getEnv("DISCUSSION_MODERATOR_GROUPS", ""),
			ChangelogBackend: getEnv("CHANGELOG_BACKEND", ChangelogPostgres),
			MetaDir:          getEnv("META_DIR", "./data/meta"),
			DataDir:          getEnv("DATA_DIR", "./data/pages"),
			HiddenPages:      getEnv("HIDDEN_PAGES", ""),
			PageBaseURL:      getEnv("PAGE_BASE_URL", "/doku.php"),
			LangFile:         getEnv("LANG_FILE", ""),
		},
		Auth: AuthConfig{
			ManagerGroups: getEnv("AUTH_MANAGER_GROUPS", "@admin"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Discussion.ChangelogBackend {
	case ChangelogPostgres, ChangelogFile, ChangelogRedis:
	default:
		return fmt.Errorf("CHANGELOG_BACKEND must be one of postgres, file, redis, got %q", c.Discussion.ChangelogBackend)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Discussion.DefaultPageSize <= 0 {
		return fmt.Errorf("DISCUSSION_DEFAULT_PAGE_SIZE must be positive")
	}
	if c.Discussion.MaxScanLines < 0 {
		return fmt.Errorf("DISCUSSION_MAX_SCAN_LINES must not be negative")
	}
	if c.Discussion.ChangelogBackend == ChangelogRedis && c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required for the redis changelog backend")
	}
	if c.Discussion.HiddenPages != "" {
		if _, err := regexp.Compile(c.Discussion.HiddenPages); err != nil {
			return fmt.Errorf("HIDDEN_PAGES is not a valid regex: %w", err)
		}
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
