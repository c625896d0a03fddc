package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"fabrication-service/internal/database"

	"go.uber.org/zap"
)

type Config struct {
	Port     string
	DB       DB
	Redis    Redis
	Kafka    Kafka
	Orders   Orders
	Checkout Checkout
	Cleanup  Cleanup

	RealtimeChannel string
	CORSOrigins     []string
}

type DB struct {
	database.Config
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Kafka struct {
	Brokers     []string
	GroupID     string
	StatusTopic string
	JobsTopic   string
	EmailTopic  string
}

// Orders describes the external draft-order service.
type Orders struct {
	BaseURL     string
	APIVersion  string
	AccessToken string
	Timeout     time.Duration
	MaxRetries  uint64
}

type Checkout struct {
	// Enabled is the operational kill-switch. When false every checkout attempt
	// is rejected with 503 and composition never runs.
	Enabled         bool
	IdempotencyTTL  time.Duration
	LockTTL         time.Duration
	DesignTeamEmail string
}

type Cleanup struct {
	AbandonedAfter time.Duration
	Interval       time.Duration
}

// Notifier is the configuration of the email delivery worker.
type Notifier struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	SMTPSSL      bool

	Kafka Kafka
}

// Watch is the configuration of the cartwatch client.
type Watch struct {
	APIBaseURL      string
	SessionID       string
	Redis           Redis
	RealtimeChannel string
}

func Load(log *zap.Logger) *Config {
	return &Config{
		Port: getEnv("APP_PORT", log),
		DB:    LoadDB(log),
		Redis: loadRedis(log),
		Kafka: Kafka{
			Brokers:     splitAndTrim(os.Getenv("KAFKA_BROKERS")),
			GroupID:     getEnvDefault("KAFKA_GROUP_ID", "fabrication-service"),
			StatusTopic: getEnvDefault("KAFKA_TOPIC_FILE_STATUS", "file.status"),
			JobsTopic:   getEnvDefault("KAFKA_TOPIC_FILE_JOBS", "file.jobs"),
			EmailTopic:  getEnvDefault("KAFKA_TOPIC_EMAIL", "notifications.email"),
		},
		Orders: Orders{
			BaseURL:     getEnv("ORDERS_BASE_URL", log),
			APIVersion:  getEnvDefault("ORDERS_API_VERSION", "2024-10"),
			AccessToken: getEnv("ORDERS_ACCESS_TOKEN", log),
			Timeout:     parseDurationWithDays(getEnvDefault("ORDERS_TIMEOUT", "15s")),
			MaxRetries:  uint64(atoiDefault(getEnvDefault("ORDERS_MAX_RETRIES", "2"), 2)),
		},
		Checkout: Checkout{
			Enabled:         getEnvDefault("CHECKOUT_ENABLED", "false") == "true",
			IdempotencyTTL:  parseDurationWithDays(getEnvDefault("CHECKOUT_IDEMPOTENCY_TTL", "1d")),
			LockTTL:         parseDurationWithDays(getEnvDefault("CHECKOUT_LOCK_TTL", "30s")),
			DesignTeamEmail: getEnvDefault("DESIGN_TEAM_EMAIL", ""),
		},
		Cleanup:         LoadCleanup(),
		RealtimeChannel: getEnvDefault("REALTIME_CHANNEL", "realtime:default"),
		CORSOrigins:     splitAndTrim(getEnvDefault("CORS_ORIGINS", "http://localhost:3000")),
	}
}

// LoadDB reads only the database settings, for tools that need nothing else.
func LoadDB(log *zap.Logger) DB {
	return DB{
		Config: database.Config{
			Host:     getEnv("DB_HOST", log),
			Port:     getEnv("DB_PORT", log),
			User:     getEnv("DB_USER", log),
			Password: getEnv("DB_PASSWORD", log),
			Name:     getEnv("DB_NAME", log),
			SSLMode:  getEnv("DB_SSLMODE", log),
		},
	}
}

func LoadCleanup() Cleanup {
	return Cleanup{
		AbandonedAfter: parseDurationWithDays(getEnvDefault("CART_ABANDONED_AFTER", "30d")),
		Interval:       parseDurationWithDays(getEnvDefault("CLEANUP_INTERVAL", "1h")),
	}
}

func LoadNotifier(log *zap.Logger) *Notifier {
	port, err := strconv.Atoi(getEnv("SMTP_PORT", log))
	if err != nil {
		log.Error("invalid int value for environment variable", zap.String("key", "SMTP_PORT"), zap.Error(err))
		panic("invalid int value for environment variable: SMTP_PORT")
	}
	return &Notifier{
		SMTPHost:     getEnv("SMTP_HOST", log),
		SMTPPort:     port,
		SMTPUser:     getEnv("SMTP_USER", log),
		SMTPPassword: getEnv("SMTP_PASSWORD", log),
		SMTPFrom:     getEnv("SMTP_FROM", log),
		SMTPSSL:      getEnvDefault("SMTP_SSL", "true") == "true",
		Kafka: Kafka{
			Brokers:    splitAndTrim(os.Getenv("KAFKA_BROKERS")),
			GroupID:    getEnvDefault("KAFKA_NOTIFIER_GROUP_ID", "fabrication-notifier"),
			EmailTopic: getEnvDefault("KAFKA_TOPIC_EMAIL", "notifications.email"),
		},
	}
}

func LoadWatch(log *zap.Logger) *Watch {
	return &Watch{
		APIBaseURL:      getEnv("CART_API_URL", log),
		SessionID:       getEnv("SESSION_ID", log),
		Redis:           loadRedis(log),
		RealtimeChannel: getEnvDefault("REALTIME_CHANNEL", "realtime:default"),
	}
}

func loadRedis(log *zap.Logger) Redis {
	return Redis{
		Addr:     getEnv("REDIS_ADDR", log),
		Password: getEnvDefault("REDIS_PASSWORD", ""),
		DB:       atoiDefault(getEnvDefault("REDIS_DB", "0"), 0),
	}
}

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("required environment variable is not set", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func getEnvDefault(key, def string) string {
	if val, exists := os.LookupEnv(key); exists && val != "" {
		return val
	}
	return def
}

// parseDurationWithDays accepts time.ParseDuration input plus an "Nd" form.
func parseDurationWithDays(s string) time.Duration {
	if strings.HasSuffix(s, "d") {
		daysStr := strings.TrimSuffix(s, "d")
		days, err := time.ParseDuration(daysStr + "h")
		if err != nil {
			log.Printf("invalid duration %q: %v", s, err)
			return 0
		}
		return time.Duration(24) * days
	}

	duration, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return duration
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(s, ",") {
		pt := strings.TrimSpace(p)
		if pt != "" {
			parts = append(parts, pt)
		}
	}
	return parts
}
