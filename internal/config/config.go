// Package config loads process configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// Config holds all process configuration. The three signing secrets are kept
// as separate fields and handed to the components that need them at startup;
// nothing reads them as globals afterwards.
type Config struct {
	// Server
	Port    string
	GinMode string

	// Database
	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     string
	PostgresDB       string

	// Redis (rate-limit counters, event stream)
	RedisHost string
	RedisPort int

	// Secrets
	SecretKey          string // access-token signing + fallback for CSRF
	RefreshTokenSecret string
	CSRFSecret         string

	// Token lifetimes
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// CORS
	CORSAllowedOrigins string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Load reads configuration from the environment, with .env.local support.
func Load() (*Config, error) {
	// Missing .env.local is fine; the environment wins either way.
	_ = godotenv.Load(".env.local")

	cfg := &Config{
		Port:    getEnv("API_PORT", "8000"),
		GinMode: getEnv("GIN_MODE", gin.DebugMode),

		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresDB:       getEnv("POSTGRES_DB", "taskito"),

		RedisHost: getEnv("REDIS_HOST", "localhost"),
		RedisPort: getEnvAsInt("REDIS_PORT", 6379),

		SecretKey:          getEnv("SECRET_KEY", ""),
		RefreshTokenSecret: getEnv("REFRESH_TOKEN_SECRET", ""),
		CSRFSecret:         getEnv("CSRF_SECRET_KEY", ""),

		AccessTokenTTL:  time.Duration(getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		RefreshTokenTTL: time.Duration(getEnvAsInt("REFRESH_TOKEN_EXPIRE_MINUTES", 7*24*60)) * time.Minute,

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		RateLimitEnabled:  getEnvAsBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
	}

	// The CSRF guard falls back to the main secret, as the original
	// deployment shipped with a single SECRET_KEY.
	if cfg.CSRFSecret == "" {
		cfg.CSRFSecret = cfg.SecretKey
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that release deployments carry real secrets. Debug mode
// tolerates empty values so local tooling keeps working.
func (c *Config) Validate() error {
	if c.GinMode != gin.ReleaseMode {
		return nil
	}
	if c.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY is required in release mode")
	}
	if c.RefreshTokenSecret == "" {
		return fmt.Errorf("REFRESH_TOKEN_SECRET is required in release mode")
	}
	if c.RefreshTokenSecret == c.SecretKey {
		return fmt.Errorf("REFRESH_TOKEN_SECRET must differ from SECRET_KEY")
	}
	return nil
}

// DatabaseDSN returns the postgres connection string.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.PostgresUser, c.PostgresPassword, c.PostgresHost, c.PostgresPort, c.PostgresDB)
}

// RedisURL returns the redis connection string.
func (c *Config) RedisURL() string {
	return fmt.Sprintf("redis://%s:%d/0", c.RedisHost, c.RedisPort)
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
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
