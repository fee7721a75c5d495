package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration, loaded from the environment with
// an optional .env overlay.
type Config struct {
	// Application
	AppEnv   string
	LogLevel string

	// Database
	DatabaseURL string
	SQLitePath  string

	// Redis
	RedisURL string

	// RabbitMQ
	RabbitMQURL string

	// Outbox
	OutboxPollInterval     time.Duration
	OutboxBatchSize        int
	OutboxMaxRetries       int
	OutboxRetentionDays    int
	OutboxCleanupInterval  time.Duration
	OutboxStatsInterval    time.Duration
	OutboxProcessorEnabled bool

	// Planner
	SkillMatchThreshold   float64
	WorkloadCeiling       float64
	EnableBalanceAdvisory bool

	// Scheduler
	ScheduleHorizonDays int
	DailyCapacityHours  float64
	UrgencyWeight       float64
	ImportanceWeight    float64
	ContinuityWeight    float64

	// Notifications
	NotifyWebhookURL  string
	NotifyBaseURL     string
	NotifyTimeout     time.Duration
	NotifyStaticToken string
	OAuthClientID     string
	OAuthClientSecret string
	OAuthTokenURL     string
	OAuthScopes       string

	// Worker
	WorkerHealthAddr string
	WorkerQueueName  string
}

// Load reads configuration from environment variables. A missing .env file
// is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("TASKPILOT_SQLITE_PATH", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		OutboxPollInterval:     getDurationEnv("OUTBOX_POLL_INTERVAL", 100*time.Millisecond),
		OutboxBatchSize:        getIntEnv("OUTBOX_BATCH_SIZE", 100),
		OutboxMaxRetries:       getIntEnv("OUTBOX_MAX_RETRIES", 5),
		OutboxRetentionDays:    getIntEnv("OUTBOX_RETENTION_DAYS", 14),
		OutboxCleanupInterval:  getDurationEnv("OUTBOX_CLEANUP_INTERVAL", 24*time.Hour),
		OutboxStatsInterval:    getDurationEnv("OUTBOX_STATS_INTERVAL", time.Minute),
		OutboxProcessorEnabled: getBoolEnv("OUTBOX_PROCESSOR_ENABLED", true),

		SkillMatchThreshold:   getFloatEnv("TASKPILOT_SKILL_MATCH_THRESHOLD", 80),
		WorkloadCeiling:       getFloatEnv("TASKPILOT_WORKLOAD_CEILING", 85),
		EnableBalanceAdvisory: getBoolEnv("TASKPILOT_BALANCE_ADVISORY", true),

		ScheduleHorizonDays: getIntEnv("TASKPILOT_SCHEDULE_HORIZON_DAYS", 14),
		DailyCapacityHours:  getFloatEnv("TASKPILOT_DAILY_CAPACITY_HOURS", 8),
		UrgencyWeight:       getFloatEnv("TASKPILOT_URGENCY_WEIGHT", 40),
		ImportanceWeight:    getFloatEnv("TASKPILOT_IMPORTANCE_WEIGHT", 40),
		ContinuityWeight:    getFloatEnv("TASKPILOT_CONTINUITY_WEIGHT", 20),

		NotifyWebhookURL:  getEnv("TASKPILOT_NOTIFY_WEBHOOK_URL", ""),
		NotifyBaseURL:     getEnv("TASKPILOT_NOTIFY_BASE_URL", "http://localhost:8080"),
		NotifyTimeout:     getDurationEnv("TASKPILOT_NOTIFY_TIMEOUT", 10*time.Second),
		NotifyStaticToken: getEnv("TASKPILOT_NOTIFY_TOKEN", ""),
		OAuthClientID:     getEnv("OAUTH_CLIENT_ID", ""),
		OAuthClientSecret: getEnv("OAUTH_CLIENT_SECRET", ""),
		OAuthTokenURL:     getEnv("OAUTH_TOKEN_URL", ""),
		OAuthScopes:       getEnv("OAUTH_SCOPES", ""),

		WorkerHealthAddr: getEnv("WORKER_HEALTH_ADDR", "0.0.0.0:8081"),
		WorkerQueueName:  getEnv("WORKER_QUEUE_NAME", ""),
	}

	return cfg, nil
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// LocalMode reports whether the app runs without a PostgreSQL backend.
func (c *Config) LocalMode() bool {
	return c.DatabaseURL == ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
