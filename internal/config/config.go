package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the environment-driven settings of the ledger service.
type Config struct {
	HTTPPort      string
	DatabasePath  string
	RemoteBaseURL string
	RemoteAPIKey  string

	// RecordTimeout bounds each remote replication call during sync.
	RecordTimeout time.Duration

	// SyncInterval drives the background reconciliation loop; 0 disables it
	// and leaves only the manual sync endpoints.
	SyncInterval time.Duration
}

// Load reads the configuration from the environment, with a .env file as an
// optional source.
func Load() *Config {
	// Missing .env is fine, env vars may be set directly.
	_ = godotenv.Load()

	return &Config{
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		DatabasePath:  getEnv("DATABASE_PATH", "sabiboss.db"),
		RemoteBaseURL: getEnv("REMOTE_BASE_URL", "http://localhost:54321"),
		RemoteAPIKey:  getEnv("REMOTE_API_KEY", ""),
		RecordTimeout: getEnvDuration("SYNC_RECORD_TIMEOUT_SECONDS", 15*time.Second),
		SyncInterval:  getEnvDuration("SYNC_INTERVAL_SECONDS", 60*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
