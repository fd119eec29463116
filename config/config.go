package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the application.
type Config struct {
	// Server configuration
	ServerHost string
	ServerPort string

	// Database configuration. DBDriver selects "postgres" (default) or
	// "sqlite" for local development.
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration (write rate limiting); optional.
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// S3 image storage; image endpoints are disabled when the bucket is
	// left empty.
	S3Bucket  string
	AWSRegion string
}

// Load builds a Config from environment variables, falling back to
// development defaults.
func Load() (*Config, error) {
	cfg := &Config{
		ServerHost:    getenv("SERVER_HOST", "0.0.0.0"),
		ServerPort:    getenv("SERVER_PORT", "8080"),
		DBDriver:      getenv("DB_DRIVER", "postgres"),
		DBHost:        getenv("DB_HOST", "localhost"),
		DBPort:        getenv("DB_PORT", "5432"),
		DBUser:        getenv("DB_USER", "postgres"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        getenv("DB_NAME", "kochbuch"),
		DBSSLMode:     getenv("DB_SSL_MODE", "disable"),
		SQLitePath:    getenv("SQLITE_PATH", "kochbuch.db"),
		RedisHost:     getenv("REDIS_HOST", "localhost"),
		RedisPort:     getenv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisURL:      os.Getenv("REDIS_URL"),
		S3Bucket:      os.Getenv("S3_BUCKET_NAME"),
		AWSRegion:     os.Getenv("AWS_REGION"),
	}

	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB %q: %w", v, err)
		}
		cfg.RedisDB = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the parts of the configuration the server cannot run
// without.
func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("server port must not be empty")
	}
	switch c.DBDriver {
	case "postgres":
		if c.DBHost == "" || c.DBPort == "" || c.DBUser == "" || c.DBName == "" {
			return fmt.Errorf("postgres requires DB_HOST, DB_PORT, DB_USER and DB_NAME")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("sqlite requires SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unknown database driver: %s", c.DBDriver)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
