package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Job      JobConfig
	Notify   NotifyConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines how scheduler trigger requests are authenticated.
type AuthConfig struct {
	JWTSecret            string
	TriggerTokenTTLHours int
}

// JobConfig defines the transfer job's domain parameters.
type JobConfig struct {
	// ScopeName is the network name used when no scope arrives with the
	// trigger (the --once path always uses it).
	ScopeName string
	// ProgramTag matches pediatric teams with their adult counterparts.
	ProgramTag string
	// AdultAgeYears is the age at which a patient leaves pediatric care.
	AdultAgeYears int
	// RunLockTTLSeconds bounds how long an overlapping-run lock is held.
	RunLockTTLSeconds int
}

// NotifyConfig holds stub notification endpoints for run events.
type NotifyConfig struct {
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	adultAge := getEnvAsInt("JOB_ADULT_AGE_YEARS", 18)
	if adultAge <= 0 {
		return nil, fmt.Errorf("invalid JOB_ADULT_AGE_YEARS: %d", adultAge)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "careteam-transfer-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:            getEnv("AUTH_JWT_SECRET", "dev-secret"),
			TriggerTokenTTLHours: getEnvAsInt("AUTH_TRIGGER_TOKEN_TTL_HOURS", 24),
		},
		Job: JobConfig{
			ScopeName:         getEnv("JOB_SCOPE_NAME", ""),
			ProgramTag:        getEnv("JOB_PROGRAM_TAG", "DIABETES"),
			AdultAgeYears:     adultAge,
			RunLockTTLSeconds: getEnvAsInt("JOB_RUN_LOCK_TTL_SECONDS", 600),
		},
		Notify: NotifyConfig{
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// RunLockTTL returns how long the per-scope run lock is held.
func (j JobConfig) RunLockTTL() time.Duration {
	if j.RunLockTTLSeconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(j.RunLockTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
