package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all server configuration
type Config struct {
	// Server configuration
	Port       string
	ProjectID  string
	DatabaseID string

	// Database configuration
	DBType            string // mysql, postgres, sqlite, sqlserver, etc.
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int

	// Authorizer configuration
	AuthzURL      string
	AuthzClientID string

	// File storage configuration
	StorageDir  string
	MaxUploadMB int

	// Signed token configuration (sessions and file view links)
	TokenSecret     string
	SessionTokenTTL time.Duration
	FileTokenTTL    time.Duration

	// Seed the subjects collection on startup when empty
	SeedSubjects bool
}

// Load loads server configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "3000"),
		ProjectID:         getEnv("PROJECT_ID", ""),
		DatabaseID:        getEnv("DATABASE_ID", "learnhub"),
		DBType:            getEnv("DB_TYPE", "mysql"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "3306"),
		DBDatabase:        getEnv("DB_DATABASE", ""),
		DBUser:            getEnv("DB_USER", ""),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBConnectionLimit: getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		AuthzURL:          getEnv("AUTHZ_URL", ""),
		AuthzClientID:     getEnv("AUTHZ_CLIENT_ID", ""),
		StorageDir:        getEnv("STORAGE_DIR", "./storage"),
		MaxUploadMB:       getEnvAsInt("MAX_UPLOAD_MB", 50),
		TokenSecret:       getEnv("TOKEN_SECRET", ""),
		SessionTokenTTL:   getEnvAsDuration("SESSION_TOKEN_TTL", 7*24*time.Hour),
		FileTokenTTL:      getEnvAsDuration("FILE_TOKEN_TTL", 15*time.Minute),
		SeedSubjects:      getEnvAsBool("SEED_SUBJECTS", false),
	}

	// Validate required fields
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("PROJECT_ID is required")
	}
	if cfg.DBDatabase == "" {
		return nil, fmt.Errorf("DB_DATABASE is required")
	}
	if cfg.DBType != "sqlite" && cfg.DBUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	if cfg.AuthzURL == "" {
		return nil, fmt.Errorf("AUTHZ_URL is required")
	}
	if cfg.AuthzClientID == "" {
		return nil, fmt.Errorf("AUTHZ_CLIENT_ID is required")
	}
	if len(cfg.TokenSecret) < 32 {
		return nil, fmt.Errorf("TOKEN_SECRET is required and must be at least 32 characters")
	}

	return cfg, nil
}

// ClientConfig holds every backend identifier the client needs.
// It is built once at startup and passed down explicitly.
type ClientConfig struct {
	Endpoint    string
	ProjectID   string
	DatabaseID  string
	FilesBucket string

	CachePath string
	RedisURL  string
	Timeout   time.Duration

	// Parity keeps the previous mirror for tips and notifications when a fetch
	// comes back empty.
	Parity bool
}

// LoadClient loads client configuration from environment variables
func LoadClient() (*ClientConfig, error) {
	cfg := &ClientConfig{
		Endpoint:    strings.TrimRight(getEnv("LEARNHUB_ENDPOINT", "http://localhost:3000/api"), "/"),
		ProjectID:   getEnv("LEARNHUB_PROJECT_ID", ""),
		DatabaseID:  getEnv("LEARNHUB_DATABASE_ID", "learnhub"),
		FilesBucket: getEnv("LEARNHUB_FILES_BUCKET", "materials"),
		CachePath:   getEnv("LEARNHUB_CACHE_PATH", defaultCachePath()),
		RedisURL:    getEnv("LEARNHUB_REDIS_URL", ""),
		Timeout:     getEnvAsDuration("LEARNHUB_TIMEOUT", 15*time.Second),
		Parity:      getEnvAsBool("LEARNHUB_PARITY", false),
	}

	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("LEARNHUB_PROJECT_ID is required")
	}

	return cfg, nil
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "learnhub-cache.db"
	}
	return dir + string(os.PathSeparator) + "learnhub" + string(os.PathSeparator) + "cache.db"
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
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

// getEnvAsBool accepts anything strconv.ParseBool does
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

// getEnvAsDuration accepts a Go duration string or a plain number of seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	if seconds, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}
