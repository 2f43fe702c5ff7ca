package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SessionBackendFile   = "file"
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"
)

type Config struct {
	App     AppConfig
	API     APIConfig
	Session SessionConfig
	Query   QueryConfig
	UI      UIConfig
	Audit   AuditConfig
	Tracing TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	RealtimeLogPath    string
	CorsAllowedOrigins string
	RedisURL           string
	NatsURL            string
}

// APIConfig points at the remote storefront API.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SessionConfig struct {
	Backend  string // "file", "redis" or "memory"
	FilePath string
	Key      string
}

type QueryConfig struct {
	StaleTime  time.Duration // 0: only invalidation marks data stale
	GCTime     time.Duration
	Retry      int
	RetryDelay time.Duration
}

type UIConfig struct {
	NavigateDelay      time.Duration
	LoginNavigateDelay time.Duration
}

type AuditConfig struct {
	Enabled bool
}

type TracingConfig struct {
	Enabled  bool
	Endpoint string
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			RealtimeLogPath:    getEnv("REALTIME_LOG_FILE_PATH", "realtime.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
		},
		API: APIConfig{
			BaseURL: getEnv("API_BASE_URL", "https://server-inky-eight-70.vercel.app/"),
			Timeout: getEnvAsDuration("API_TIMEOUT", 15*time.Second),
		},
		Session: SessionConfig{
			Backend:  strings.ToLower(getEnv("SESSION_BACKEND", SessionBackendFile)),
			FilePath: getEnv("SESSION_FILE_PATH", defaultSessionFile()),
			Key:      getEnv("SESSION_KEY", "info"),
		},
		Query: QueryConfig{
			StaleTime:  getEnvAsDuration("QUERY_STALE_TIME", 0),
			GCTime:     getEnvAsDuration("QUERY_GC_TIME", 5*time.Minute),
			Retry:      getEnvAsInt("QUERY_RETRY", 3),
			RetryDelay: getEnvAsDuration("QUERY_RETRY_DELAY", time.Second),
		},
		UI: UIConfig{
			NavigateDelay:      getEnvAsDuration("NAVIGATE_DELAY", 1500*time.Millisecond),
			LoginNavigateDelay: getEnvAsDuration("LOGIN_NAVIGATE_DELAY", time.Second),
		},
		Audit: AuditConfig{
			Enabled: getEnvAsBool("AUDIT_ENABLED", false),
		},
		Tracing: TracingConfig{
			Enabled:  getEnvAsBool("OTEL_ENABLED", false),
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

// defaultSessionFile lives in the user's config dir so every working
// directory sees the same login.
func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".storefront-admin", "storage.json")
	}
	return filepath.Join(dir, "storefront-admin", "storage.json")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
