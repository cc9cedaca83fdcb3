package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const minJWTSecretLen = 32

// Config holds all configuration for the hireflow server.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Storage   StorageConfig
}

type ServerConfig struct {
	Port          int
	Env           string
	StatsCacheTTL time.Duration
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

type AuthConfig struct {
	JWTSecret string
	Issuer    string
	AccessTTL time.Duration
}

type RateLimitConfig struct {
	RequestsPerMinute int
}

// StorageConfig configures the S3-compatible bucket that holds resumes.
type StorageConfig struct {
	Bucket         string
	Region         string
	Endpoint       string
	KeyPrefix      string
	PublicBaseURL  string
	ResumeMaxBytes int64
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:          envInt("HIREFLOW_PORT", 8080),
			Env:           envString("HIREFLOW_ENV", "development"),
			StatsCacheTTL: envDuration("STATS_CACHE_TTL", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("AUTH_JWT_SECRET"),
			Issuer:    envString("AUTH_JWT_ISSUER", "hireflow"),
			AccessTTL: envDuration("AUTH_ACCESS_TTL", 24*time.Hour),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: envInt("RATE_LIMIT_PER_MINUTE", 120),
		},
		Storage: StorageConfig{
			Bucket:         os.Getenv("S3_BUCKET"),
			Region:         envString("S3_REGION", "us-east-1"),
			Endpoint:       os.Getenv("S3_ENDPOINT"),
			KeyPrefix:      envString("S3_KEY_PREFIX", "resumes"),
			PublicBaseURL:  strings.TrimRight(os.Getenv("S3_PUBLIC_BASE_URL"), "/"),
			ResumeMaxBytes: envInt64("RESUME_MAX_BYTES", 10<<20),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required")
	}
	if len(c.Auth.JWTSecret) < minJWTSecretLen {
		return fmt.Errorf("AUTH_JWT_SECRET must be at least %d characters", minJWTSecretLen)
	}
	if c.Auth.AccessTTL <= 0 {
		return fmt.Errorf("AUTH_ACCESS_TTL must be positive, got %s", c.Auth.AccessTTL)
	}

	if c.Storage.Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required")
	}
	if c.Storage.Endpoint != "" &&
		!strings.HasPrefix(c.Storage.Endpoint, "http://") && !strings.HasPrefix(c.Storage.Endpoint, "https://") {
		return fmt.Errorf("S3_ENDPOINT must start with http:// or https://, got %q", c.Storage.Endpoint)
	}
	if c.Storage.ResumeMaxBytes <= 0 {
		return fmt.Errorf("RESUME_MAX_BYTES must be positive, got %d", c.Storage.ResumeMaxBytes)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
