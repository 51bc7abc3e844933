package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	HTTPAddr string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	RedisAddr     string
	RedisPassword string

	Scoring   ScoringConfig
	Scheduler SchedulerConfig
}

// ScoringConfig carries the tunable scoring knobs exposed through the
// environment. The full weight set lives in scoring/domain.ScoreConfig;
// these are the values operators actually override in practice.
type ScoringConfig struct {
	AnomalyEventThreshold int
	TrendNoiseThreshold   float64
	TrendAlertThreshold   float64
	HeatWeight            float64
	ValueWeight           float64
	RelationshipWeight    float64
	Workers               int
}

type SchedulerConfig struct {
	Enabled     bool
	RunInterval time.Duration
	FeedTimeout time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "leadpulse"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),

		HTTPAddr: getenv("HTTP_ADDR", ":8080"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "leadpulse"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),

		Scoring: ScoringConfig{
			AnomalyEventThreshold: getenvInt("SCORING_ANOMALY_EVENT_THRESHOLD", 15),
			TrendNoiseThreshold:   getenvFloat("SCORING_TREND_NOISE_THRESHOLD", 3),
			TrendAlertThreshold:   getenvFloat("SCORING_TREND_ALERT_THRESHOLD", 20),
			HeatWeight:            getenvFloat("SCORING_PRIORITY_HEAT_WEIGHT", 0.5),
			ValueWeight:           getenvFloat("SCORING_PRIORITY_VALUE_WEIGHT", 0.3),
			RelationshipWeight:    getenvFloat("SCORING_PRIORITY_RELATIONSHIP_WEIGHT", 0.2),
			Workers:               getenvInt("SCORING_WORKERS", 8),
		},
		Scheduler: SchedulerConfig{
			Enabled:     getenvBool("SCHEDULER_ENABLED", true),
			RunInterval: getenvDuration("SCHEDULER_RUN_INTERVAL", 6*time.Hour),
			FeedTimeout: getenvDuration("CRM_FEED_TIMEOUT", 30*time.Second),
		},
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
