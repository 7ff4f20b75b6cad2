package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Telegram bot configuration
	Bot BotConfig

	// Database configuration
	Database DatabaseConfig

	// Notification batching configuration
	Notifications NotificationConfig

	// Ticket routing configuration
	Tickets TicketConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// Ops HTTP server configuration
	Ops OpsConfig

	// Logging configuration
	Logging LoggingConfig

	// Application metadata
	App AppConfig
}

// BotConfig holds Telegram transport configuration
type BotConfig struct {
	Token       string
	PollTimeout time.Duration
	// AdminIDs is the configured administrator allow-list, reconciled into
	// storage at startup.
	AdminIDs []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MigrationsPath  string
}

// NotificationConfig holds digest batching configuration
type NotificationConfig struct {
	// Interval is the period of the unconditional digest.
	Interval time.Duration
	// Threshold is the creation-event count that fires an immediate digest.
	Threshold int
	// Window is the sliding duration over which creations are counted.
	Window time.Duration
}

// TicketConfig holds routing configuration
type TicketConfig struct {
	// MaxActivePerUser is the per-owner active ticket quota.
	MaxActivePerUser int
}

// RateLimitConfig holds per-actor rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
}

// OpsConfig holds the ops HTTP server configuration
type OpsConfig struct {
	Addr            string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		Bot: BotConfig{
			Token:       os.Getenv("BOT_TOKEN"),
			PollTimeout: getDurationOrDefault("BOT_POLL_TIMEOUT", 10*time.Second),
			AdminIDs:    getStringSliceOrDefault("ADMIN_IDS", []string{}),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getIntOrDefault("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntOrDefault("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: getDurationOrDefault("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			MigrationsPath:  getEnvOrDefault("DB_MIGRATIONS_PATH", "migrations"),
		},
		Notifications: NotificationConfig{
			Interval:  getDurationOrDefault("NOTIFICATION_INTERVAL", time.Hour),
			Threshold: getIntOrDefault("NOTIFICATION_THRESHOLD", 10),
			Window:    getDurationOrDefault("NOTIFICATION_WINDOW", 30*time.Minute),
		},
		Tickets: TicketConfig{
			MaxActivePerUser: getIntOrDefault("MAX_ACTIVE_TICKETS", 2),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getBoolOrDefault("RATE_LIMIT_ENABLED", true),
			RequestsPerSecond: getFloatOrDefault("RATE_LIMIT_RPS", 1),
			BurstSize:         getIntOrDefault("RATE_LIMIT_BURST", 5),
		},
		Ops: OpsConfig{
			Addr:            getEnvOrDefault("OPS_ADDR", ":8080"),
			AllowedOrigins:  getStringSliceOrDefault("OPS_ALLOWED_ORIGINS", []string{}),
			ShutdownTimeout: getDurationOrDefault("OPS_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
		App: AppConfig{
			Name:        getEnvOrDefault("APP_NAME", "support-bot"),
			Version:     getEnvOrDefault("APP_VERSION", "dev"),
			Environment: getEnvOrDefault("APP_ENV", "development"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []string

	// Required fields
	if c.Bot.Token == "" {
		errs = append(errs, "BOT_TOKEN is required")
	}

	if c.Database.URL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}

	if len(c.Bot.AdminIDs) == 0 {
		errs = append(errs, "ADMIN_IDS is required")
	}

	// Logical validations
	if c.Notifications.Threshold < 1 {
		errs = append(errs, "NOTIFICATION_THRESHOLD must be at least 1")
	}

	if c.Notifications.Window <= 0 {
		errs = append(errs, "NOTIFICATION_WINDOW must be positive")
	}

	if c.Notifications.Interval <= 0 {
		errs = append(errs, "NOTIFICATION_INTERVAL must be positive")
	}

	if c.Tickets.MaxActivePerUser < 1 {
		errs = append(errs, "MAX_ACTIVE_TICKETS must be at least 1")
	}

	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		errs = append(errs, "DB_MAX_IDLE_CONNS cannot be greater than DB_MAX_OPEN_CONNS")
	}

	if len(errs) > 0 {
		return errors.New("configuration errors:\n  - " + strings.Join(errs, "\n  - "))
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// String returns a redacted string representation of the config (safe for logging)
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Bot: [REDACTED], DB: %s, Admins: %d, Notifications: %s/%d/%s, Environment: %s}",
		redactURL(c.Database.URL),
		len(c.Bot.AdminIDs),
		c.Notifications.Interval,
		c.Notifications.Threshold,
		c.Notifications.Window,
		c.App.Environment,
	)
}

// redactURL redacts sensitive parts of a database URL
func redactURL(url string) string {
	if url == "" {
		return ""
	}
	if idx := strings.Index(url, "@"); idx > 0 {
		return "[REDACTED]" + url[idx:]
	}
	return "[REDACTED]"
}
