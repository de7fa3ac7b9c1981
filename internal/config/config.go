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

	"github.com/basel-ax/signbridge/internal/domain"
)

// DBConfig holds database configuration
type DBConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Config holds all configuration for the application
type Config struct {
	AppEnv string

	PixverseAPIKey  string
	PixverseBaseURL string
	UsePixverse     bool
	HTTPTimeout     time.Duration

	FallbackVideoURL string

	DefaultDuration    int
	DefaultAspectRatio string
	DefaultModel       string
	DefaultQuality     string
	DefaultSeed        int
	DefaultWatermark   bool

	PollInterval time.Duration
	PollTimeout  time.Duration

	BackfillSchedule string
	BackfillBatch    int

	DB DBConfig
}

// Load loads the configuration from environment variables.
// A missing .env file is not an error; the provider API key is optional
// and only needed when live generation is requested.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	config := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		PixverseAPIKey:     strings.TrimSpace(os.Getenv("PIXVERSE_API_KEY")),
		PixverseBaseURL:    getEnv("PIXVERSE_BASE_URL", "https://app-api.pixverse.ai/openapi/v2"),
		UsePixverse:        getEnvBool("USE_PIXVERSE", false),
		HTTPTimeout:        getEnvSeconds("HTTP_TIMEOUT", 30*time.Second),
		FallbackVideoURL:   getEnv("FALLBACK_VIDEO_URL", domain.DefaultFallbackVideoURL),
		DefaultDuration:    getEnvInt("VIDEO_DURATION", 5),
		DefaultAspectRatio: getEnv("VIDEO_ASPECT_RATIO", "16:9"),
		DefaultModel:       getEnv("VIDEO_MODEL", "v5"),
		DefaultQuality:     getEnv("VIDEO_QUALITY", "360p"),
		DefaultSeed:        getEnvInt("VIDEO_SEED", 0),
		DefaultWatermark:   getEnvBool("VIDEO_WATERMARK", false),
		PollInterval:       getEnvSeconds("POLL_INTERVAL", 5*time.Second),
		PollTimeout:        getEnvSeconds("POLL_TIMEOUT", 300*time.Second),
		BackfillSchedule:   getEnv("BACKFILL_SCHEDULE", "0 */10 * * * *"),
		BackfillBatch:      getEnvInt("BACKFILL_BATCH", 10),
	}

	config.DB = DBConfig{
		Host:            os.Getenv("DB_HOST"),
		Port:            getEnvInt("DB_PORT", 5432),
		User:            os.Getenv("DB_USER"),
		Password:        os.Getenv("DB_PASSWORD"),
		Database:        os.Getenv("DB_NAME"),
		SSLMode:         getEnv("DB_SSL_MODE", "disable"),
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 25),
		ConnMaxLifetime: getEnvSeconds("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}

	if config.PollInterval <= 0 {
		return nil, fmt.Errorf("POLL_INTERVAL must be positive")
	}
	if config.PollTimeout <= 0 {
		return nil, fmt.Errorf("POLL_TIMEOUT must be positive")
	}
	if strings.TrimSpace(config.FallbackVideoURL) == "" {
		return nil, fmt.Errorf("FALLBACK_VIDEO_URL must not be empty")
	}

	// Validate database configuration
	if config.DB.Host == "" {
		return nil, fmt.Errorf("DB_HOST is required")
	}
	if config.DB.User == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	if config.DB.Database == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}

	return config, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Database, c.DB.SSLMode)
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
		return v
	}
	return fallback
}

// getEnvBool accepts anything strconv.ParseBool does; empty or invalid
// values return fallback.
func getEnvBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key))); err == nil {
		return v
	}
	return fallback
}

// getEnvSeconds reads a whole number of seconds
func getEnvSeconds(key string, fallback time.Duration) time.Duration {
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
		return time.Duration(v) * time.Second
	}
	return fallback
}
