package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Table availability sources
const (
	TableSourceSeed     = "seed"
	TableSourceRedis    = "redis"
	TableSourcePostgres = "postgres"
)

// Submission modes
const (
	SubmissionLog  = "log"
	SubmissionHTTP = "http"
	SubmissionAMQP = "amqp"
)

// Config holds all configuration for the application
// Following 12-factor app principles, all config is loaded from environment variables
type Config struct {
	Server     ServerConfig
	Restaurant RestaurantConfig
	Tables     TablesConfig
	Submission SubmissionConfig
	SessionTTL int // minutes
	LogLevel   string
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

type RestaurantConfig struct {
	DeliveryFee    string
	CurrencyLocale string
	SeedFile       string
}

type TablesConfig struct {
	Source      string
	RedisAddr   string
	RedisKey    string
	DatabaseURL string
}

type SubmissionConfig struct {
	Mode           string
	OrderURL       string
	ReservationURL string
	AMQPURL        string
	Timeout        int // seconds
	MaxRetries     int
}

// Load reads configuration from environment variables. A .env file in the
// working directory is read first; variables already set take precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsInt("WRITE_TIMEOUT", 15),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 30),
		},
		Restaurant: RestaurantConfig{
			DeliveryFee:    getEnv("DELIVERY_FEE", "5.00"),
			CurrencyLocale: getEnv("CURRENCY_LOCALE", "pt-BR"),
			SeedFile:       getEnv("SEED_FILE", "configs/seed.yaml"),
		},
		Tables: TablesConfig{
			Source:      strings.ToLower(getEnv("TABLE_SOURCE", TableSourceSeed)),
			RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
			RedisKey:    getEnv("REDIS_TABLES_KEY", "restaurant:tables"),
			DatabaseURL: getEnv("DATABASE_URL", ""),
		},
		Submission: SubmissionConfig{
			Mode:           strings.ToLower(getEnv("SUBMISSION_MODE", SubmissionLog)),
			OrderURL:       getEnv("ORDER_SERVICE_URL", ""),
			ReservationURL: getEnv("RESERVATION_SERVICE_URL", ""),
			AMQPURL:        getEnv("AMQP_URL", ""),
			Timeout:        getEnvAsInt("SUBMIT_TIMEOUT", 10),
			MaxRetries:     getEnvAsInt("SUBMIT_MAX_RETRIES", 3),
		},
		SessionTTL: getEnvAsInt("SESSION_TTL", 60),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	if _, err := c.DeliveryFee(); err != nil {
		return err
	}
	if c.Restaurant.SeedFile == "" {
		return fmt.Errorf("SEED_FILE is required")
	}

	switch c.Tables.Source {
	case TableSourceSeed:
	case TableSourceRedis:
		if c.Tables.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when TABLE_SOURCE=redis")
		}
	case TableSourcePostgres:
		if c.Tables.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when TABLE_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("invalid table source: %s (must be seed, redis, or postgres)", c.Tables.Source)
	}

	switch c.Submission.Mode {
	case SubmissionLog:
	case SubmissionHTTP:
		if c.Submission.OrderURL == "" || c.Submission.ReservationURL == "" {
			return fmt.Errorf("ORDER_SERVICE_URL and RESERVATION_SERVICE_URL are required when SUBMISSION_MODE=http")
		}
	case SubmissionAMQP:
		if c.Submission.AMQPURL == "" {
			return fmt.Errorf("AMQP_URL is required when SUBMISSION_MODE=amqp")
		}
	default:
		return fmt.Errorf("invalid submission mode: %s (must be log, http, or amqp)", c.Submission.Mode)
	}

	if c.Submission.Timeout <= 0 {
		return fmt.Errorf("SUBMIT_TIMEOUT must be positive")
	}
	if c.Submission.MaxRetries < 0 {
		return fmt.Errorf("SUBMIT_MAX_RETRIES must not be negative")
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("SESSION_TTL must not be negative")
	}

	return nil
}

// DeliveryFee parses the configured flat delivery fee
func (c *Config) DeliveryFee() (decimal.Decimal, error) {
	fee, err := decimal.NewFromString(c.Restaurant.DeliveryFee)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid delivery fee: %s", c.Restaurant.DeliveryFee)
	}
	if fee.IsNegative() {
		return decimal.Zero, fmt.Errorf("delivery fee must not be negative: %s", c.Restaurant.DeliveryFee)
	}
	return fee, nil
}

// SubmitTimeout is the deadline for one whole order or reservation submission
func (c SubmissionConfig) SubmitTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// AttemptTimeout splits the submission deadline evenly between the first
// attempt and its retries
func (c SubmissionConfig) AttemptTimeout() time.Duration {
	return c.SubmitTimeout() / time.Duration(c.MaxRetries+1)
}

// Helper functions for reading environment variables

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
