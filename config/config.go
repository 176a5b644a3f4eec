package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"rafflestars/database"
)

// Config holds all application configuration
type Config struct {
	// HTTP server
	ListenAddr string

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Telegram configuration
	TelegramBotToken string

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated)

	// Redis configuration (shared admission gate; empty selects in-process gate)
	RedisURL string

	// Admission gate configuration
	BidRateLimit  int           // Max bid attempts per participant per window
	BidRateWindow time.Duration // Window for the bid attempt counter

	// Default raffle settings, used to seed the settings table on first run
	DefaultRequiredParticipants int
	DefaultBidAmount            int64
	DefaultWinnerShare          float64

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		ListenAddr: getEnvWithDefault("LISTEN_ADDR", ":8080"),

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),

		NATSServers: os.Getenv("NATS_SERVERS"),
		RedisURL:    os.Getenv("REDIS_URL"),

		BidRateLimit:  5,
		BidRateWindow: time.Minute,

		DefaultRequiredParticipants: 10,
		DefaultBidAmount:            1,
		DefaultWinnerShare:          0.7,

		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if limit := os.Getenv("BID_RATE_LIMIT"); limit != "" {
		if parsed, err := strconv.Atoi(limit); err == nil && parsed > 0 {
			config.BidRateLimit = parsed
		}
	}
	if window := os.Getenv("BID_RATE_WINDOW"); window != "" {
		if parsed, err := time.ParseDuration(window); err == nil && parsed > 0 {
			config.BidRateWindow = parsed
		}
	}
	if required := os.Getenv("REQUIRED_PARTICIPANTS"); required != "" {
		if parsed, err := strconv.Atoi(required); err == nil {
			config.DefaultRequiredParticipants = parsed
		}
	}
	if amount := os.Getenv("BID_AMOUNT"); amount != "" {
		if parsed, err := strconv.ParseInt(amount, 10, 64); err == nil {
			config.DefaultBidAmount = parsed
		}
	}
	if share := os.Getenv("WINNER_SHARE"); share != "" {
		if parsed, err := strconv.ParseFloat(share, 64); err == nil {
			config.DefaultWinnerShare = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:                 "test",
		ListenAddr:                  ":0",
		BidRateLimit:                5,
		BidRateWindow:               time.Minute,
		DefaultRequiredParticipants: 3,
		DefaultBidAmount:            1,
		DefaultWinnerShare:          0.7,
	}
}
