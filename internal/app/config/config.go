package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Storage     StorageConfig
	OCR         OCRConfig
	Limits      LimitsConfig
}

type ServerConfig struct {
	Host           string
	Port           string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL     string
	TestURL string
}

type RedisConfig struct {
	URL      string
	PoolSize int
}

type StorageConfig struct {
	Path          string
	ThumbnailPath string
}

type OCRConfig struct {
	Enabled bool
	Timeout time.Duration
	// TTL of the per-screenshot in-flight claim in Redis.
	ClaimTTL time.Duration
}

type LimitsConfig struct {
	MaxFileSize       int64
	AllowedExtensions []string
}

// Load configuration from environment variables
func Load() (*Config, error) {
	env := os.Getenv("ENVIRONMENT")
	if env != "production" {
		// .env file is optional
		_ = godotenv.Load()
	}

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:           getEnv("HOST", "localhost"),
			Port:           getEnv("PORT", "4000"),
			AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
		},
		Database: DatabaseConfig{
			URL:     getEnv("DATABASE_URL", "shotbox.db"),
			TestURL: getEnv("DATABASE_URL_TEST", ""),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			PoolSize: parseInt(getEnv("REDIS_POOL_SIZE", "10")),
		},
		Storage: StorageConfig{
			Path:          getEnv("STORAGE_PATH", "./uploads"),
			ThumbnailPath: getEnv("THUMBNAIL_PATH", "./uploads/thumbnails"),
		},
		OCR: OCRConfig{
			Enabled:  parseBool(getEnv("ENABLE_OCR", "true")),
			Timeout:  parseDuration(getEnv("OCR_TIMEOUT", "30s")),
			ClaimTTL: parseDuration(getEnv("OCR_CLAIM_TTL", "60s")),
		},
		Limits: LimitsConfig{
			MaxFileSize:       parseInt64(getEnv("MAX_FILE_SIZE", "5242880")),
			AllowedExtensions: strings.Split(getEnv("ALLOWED_FILE_TYPES", "png,jpg,jpeg,webp,heic"), ","),
		},
	}

	if err := validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// GetDatabaseURL returns the appropriate database URL based on environment
func (c *Config) GetDatabaseURL() string {
	if c.Environment == "test" && c.Database.TestURL != "" {
		return c.Database.TestURL
	}
	return c.Database.URL
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsTest returns true if running in test environment
func (c *Config) IsTest() bool {
	return c.Environment == "test"
}

func validate(config *Config) error {
	if config.IsProduction() && config.GetDatabaseURL() == "" {
		return fmt.Errorf("DATABASE_URL is required in production")
	}
	if config.OCR.Enabled && config.OCR.Timeout <= 0 {
		return fmt.Errorf("OCR_TIMEOUT must be a positive duration")
	}
	if config.Limits.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(value string) int {
	if i, err := strconv.Atoi(value); err == nil {
		return i
	}
	return 0
}

func parseInt64(value string) int64 {
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i
	}
	return 0
}

func parseBool(value string) bool {
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return false
}

func parseDuration(value string) time.Duration {
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	return 0
}
