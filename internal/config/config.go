package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"nicodb/internal/domain"
	"nicodb/internal/logger"
)

// DefaultUserAgent is sent with every page request
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_7_2) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4.1 Safari/605.1.15"

// Config holds all application configuration loaded from environment variables
type Config struct {
	// Database configuration
	DatabasePath string

	// Page fetching
	StreamingBaseURL string
	UserAgent        string
	FetchTimeout     time.Duration

	// Logging
	LogLevel  string
	LogFormat string
	LogFile   string

	// MetricsTextfile is where run metrics are written after each command (empty disables)
	MetricsTextfile string

	// Placeholder values for unknown streamers, channels and unreachable pages
	Placeholders domain.Placeholders
}

// Load reads configuration from environment variables and returns a Config instance
func Load() (*Config, error) {
	defaults := domain.DefaultPlaceholders()

	cfg := &Config{
		DatabasePath: getEnvOrDefault("DATABASE_PATH", "./data/nicodb.db"),

		StreamingBaseURL: getEnvOrDefault("STREAMING_BASE_URL", "https://live.nicovideo.jp/watch/lv"),
		UserAgent:        getEnvOrDefault("USER_AGENT", DefaultUserAgent),

		LogLevel:  strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnvOrDefault("LOG_FORMAT", "console")),
		LogFile:   os.Getenv("LOG_FILE"),

		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),

		Placeholders: domain.Placeholders{
			StreamerName:        getEnvOrDefault("UNKNOWN_STREAMER_NAME", defaults.StreamerName),
			ChannelName:         getEnvOrDefault("UNKNOWN_CHANNEL_NAME", defaults.ChannelName),
			CompanyName:         getEnvOrDefault("UNKNOWN_COMPANY_NAME", defaults.CompanyName),
			StreamingTitle:      getEnvOrDefault("UNKNOWN_STREAMING_TITLE", defaults.StreamingTitle),
			NonexistentStreamer: getEnvOrDefault("NONEXISTENT_STREAMER_MESSAGE", defaults.NonexistentStreamer),
		},
	}

	// Parse fetch timeout with default
	timeout, err := time.ParseDuration(getEnvOrDefault("FETCH_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_TIMEOUT format: %w", err)
	}
	cfg.FetchTimeout = timeout

	streamerID, err := strconv.ParseInt(getEnvOrDefault("UNKNOWN_STREAMER_ID", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid UNKNOWN_STREAMER_ID format: %w", err)
	}
	cfg.Placeholders.StreamerID = streamerID

	channelID, err := strconv.ParseInt(getEnvOrDefault("UNKNOWN_CHANNEL_ID", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid UNKNOWN_CHANNEL_ID format: %w", err)
	}
	cfg.Placeholders.ChannelID = channelID

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration values are present and valid
func (c *Config) Validate() error {
	// Validate database path is not empty
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH cannot be empty")
	}

	if c.StreamingBaseURL == "" {
		return fmt.Errorf("STREAMING_BASE_URL cannot be empty")
	}
	if !strings.HasPrefix(c.StreamingBaseURL, "http://") && !strings.HasPrefix(c.StreamingBaseURL, "https://") {
		return fmt.Errorf("STREAMING_BASE_URL must start with http:// or https://, got %s", c.StreamingBaseURL)
	}

	if c.UserAgent == "" {
		return fmt.Errorf("USER_AGENT cannot be empty")
	}

	// Validate fetch timeout is positive
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive, got %s", c.FetchTimeout)
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be console or json, got %s", c.LogFormat)
	}

	return nil
}

// LogConfiguration logs all loaded configuration values
func (c *Config) LogConfiguration(log *logger.Logger) {
	log.Debug("configuration loaded", map[string]interface{}{
		"database_path":      c.DatabasePath,
		"streaming_base_url": c.StreamingBaseURL,
		"user_agent":         c.UserAgent,
		"fetch_timeout":      c.FetchTimeout.String(),
		"log_level":          c.LogLevel,
		"log_format":         c.LogFormat,
		"log_file":           valueOrNotSet(c.LogFile),
		"metrics_textfile":   valueOrNotSet(c.MetricsTextfile),
	})
}

// getEnvOrDefault returns the environment variable value or a default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// valueOrNotSet replaces empty optional settings with a marker for logging
func valueOrNotSet(value string) string {
	if value == "" {
		return "[not set]"
	}
	return value
}
