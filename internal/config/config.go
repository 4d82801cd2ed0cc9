package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Processor ProcessorConfig
	Redis     RedisConfig
	Checkout  CheckoutConfig
	Logger    LoggerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        int
	Host        string
	MetricsPort int
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// ProcessorConfig holds Stripe payment processor configuration
type ProcessorConfig struct {
	APIKey        string // secret API key for server-side calls
	WebhookSecret string // signing secret for webhook verification
	Timeout       int    // request timeout in seconds (default: 30)
}

// RedisConfig holds Redis configuration for the settlement event queue
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CheckoutConfig holds business defaults for intent issuance
type CheckoutConfig struct {
	Currency        string
	DefaultFeeMinor int64 // per-participant fallback fee in minor units
	MaxParticipants int32
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnvAsInt("SERVER_PORT", 8080),
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			MetricsPort: getEnvAsInt("METRICS_PORT", 9090),
		},
		Database: databaseFromEnv(),
		Processor: ProcessorConfig{
			APIKey:        getEnv("STRIPE_API_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			Timeout:       getEnvAsInt("STRIPE_TIMEOUT", 30),
		},
		Redis: redisFromEnv(),
		Checkout: CheckoutConfig{
			Currency:        getEnv("CHECKOUT_CURRENCY", "usd"),
			DefaultFeeMinor: int64(getEnvAsInt("CHECKOUT_DEFAULT_FEE_MINOR", 25000)),
			MaxParticipants: int32(getEnvAsInt("CHECKOUT_MAX_PARTICIPANTS", 50)),
		},
		Logger: loggerFromEnv(),
	}

	// Validate required fields; secrets must be present at startup, not
	// discovered missing per-request.
	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	if cfg.Processor.APIKey == "" {
		return nil, fmt.Errorf("STRIPE_API_KEY is required")
	}
	if cfg.Processor.WebhookSecret == "" {
		return nil, fmt.Errorf("STRIPE_WEBHOOK_SECRET is required")
	}

	return cfg, nil
}

// LoadWorkerFromEnv loads the subset of configuration the worker process
// consumes: database, Redis, and logging. The worker never calls the payment
// processor, so processor credentials are not required here.
func LoadWorkerFromEnv() (*Config, error) {
	cfg := &Config{
		Database: databaseFromEnv(),
		Redis:    redisFromEnv(),
		Logger:   loggerFromEnv(),
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	return cfg, nil
}

func databaseFromEnv() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvAsInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Database: getEnv("DB_NAME", "checkout_service"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(getEnvAsInt("DB_MAX_CONNS", 25)),
		MinConns: int32(getEnvAsInt("DB_MIN_CONNS", 5)),
	}
}

func redisFromEnv() RedisConfig {
	return RedisConfig{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvAsInt("REDIS_DB", 0),
	}
}

func loggerFromEnv() LoggerConfig {
	return LoggerConfig{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnvAsBool("LOG_DEVELOPMENT", false),
	}
}

// ConnectionString returns PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
