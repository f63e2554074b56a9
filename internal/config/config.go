package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/nanban-api/internal/constants"
)

type Config struct {
	Port string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPath     string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	SessionSecret string
	CursorSecret  string
	GinMode       string
	LogLevel      string
	OpenAIAPIKey  string

	CORSAllowedOrigins []string

	// CacheBackend is one of "redis", "memory" or "none".
	CacheBackend         string
	DashboardCacheTTL    time.Duration
	OverdueSweepInterval time.Duration
}

// Load reads configuration from the environment, after merging any .env file found.
func Load() *Config {
	for _, path := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(path); err == nil {
			logrus.WithField("path", path).Debug("loaded environment file")
			break
		}
	}

	return &Config{
		Port:                 getEnv("PORT", "8080"),
		DBDriver:             getEnv("DB_DRIVER", "mysql"),
		DBHost:               getEnv("DB_HOST", "localhost"),
		DBPort:               getEnv("DB_PORT", "3306"),
		DBUser:               getEnv("DB_USER", "nanban"),
		DBPassword:           getEnv("DB_PASSWORD", "nanbanpassword"),
		DBName:               getEnv("DB_NAME", "nanban"),
		DBPath:               getEnv("DB_PATH", "nanban.db"),
		RedisHost:            getEnv("REDIS_HOST", "localhost"),
		RedisPort:            getEnv("REDIS_PORT", "6379"),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		SessionSecret:        getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		CursorSecret:         getEnv("CURSOR_SECRET", "default-cursor-secret-change-me"),
		GinMode:              getEnv("GIN_MODE", "debug"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		CORSAllowedOrigins:   getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		CacheBackend:         getEnv("CACHE_BACKEND", "memory"),
		DashboardCacheTTL:    getEnvAsDuration("DASHBOARD_CACHE_TTL", constants.DefaultDashboardCacheTTL),
		OverdueSweepInterval: getEnvAsDuration("OVERDUE_SWEEP_INTERVAL", constants.DefaultOverdueSweepInterval),
	}
}

// RedisAddr returns the host:port pair used by both the session store and the cache.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvAsDuration accepts Go duration strings ("30s") or plain seconds ("30").
// A zero value is kept so features can be disabled from the environment.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d >= 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	logrus.WithFields(logrus.Fields{"key": key, "value": value}).Warn("invalid duration, using default")
	return defaultValue
}
