package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendSheets   = "sheets"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	SpreadsheetID     string
	Worksheet         string
	CredentialsFile   string
	StoreBackend      string
	DatabaseURI       string
	RedisAddr         string
	RedisPassword     string
	RunAddress        string
	JWTSecret         string
	StaffLogin        string
	StaffPasswordHash string
	MaxAttempts       int
	ReplicaInterval   time.Duration
	LogLevel          string
	LogFile           string
}

// New loads .env when present and reads the environment. Command-line flags
// are bound on top of the returned values by the caller.
func New() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	return &Config{
		SpreadsheetID:     getEnv("SPREADSHEET_ID", ""),
		Worksheet:         getEnv("WORKSHEET", "orders"),
		CredentialsFile:   getEnv("CREDENTIALS_FILE", "creds.json"),
		StoreBackend:      getEnv("STORE_BACKEND", BackendSheets),
		DatabaseURI:       getEnv("DATABASE_URI", ""),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RunAddress:        getEnv("RUN_ADDRESS", "localhost:8080"),
		JWTSecret:         getEnv("JWT_SECRET", "super-secret-jwt-key"),
		StaffLogin:        getEnv("STAFF_LOGIN", "workshop"),
		StaffPasswordHash: getEnv("STAFF_PASSWORD_HASH", ""),
		MaxAttempts:       getEnvInt("MAX_ATTEMPTS", 10),
		ReplicaInterval:   getEnvDuration("REPLICA_INTERVAL", 30*time.Second),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFile:           getEnv("LOG_FILE", ""),
	}
}

func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendSheets:
		if c.SpreadsheetID == "" {
			return errors.New("SPREADSHEET_ID is required for the sheets backend")
		}
	case BackendPostgres:
		if c.DatabaseURI == "" {
			return errors.New("DATABASE_URI is required for the postgres backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be positive, got %d", c.MaxAttempts)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("ignoring malformed integer", "key", key, "value", value)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("ignoring malformed duration", "key", key, "value", value)
		return fallback
	}
	return d
}
