package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sweep modes
const (
	SweepModeInProcess = "inprocess"
	SweepModeAsynq     = "asynq"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Stripe   StripeConfig
	SMTP     SMTPConfig
	Pricing  PricingConfig
	Routing  RoutingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

// DSN returns the lib/pq connection URL
func (c DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + strconv.Itoa(c.Port),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	PASSWORD string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

// StripeConfig holds charge gateway settings
type StripeConfig struct {
	SecretKey string
	Currency  string
}

// SMTPConfig holds outbound email settings. An empty host disables delivery.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// Enabled reports whether an SMTP server is configured.
func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

// PricingConfig holds lead cost and platform fee settings
type PricingConfig struct {
	DefaultLeadCostCents int64
	CategoryLeadCosts    map[uuid.UUID]int64
	PlatformFeePercent   float64
	MinimumFeeDollars    float64
}

// RoutingConfig holds reassignment settings
type RoutingConfig struct {
	PriorityWindow time.Duration
	SweepInterval  time.Duration
	SweepBatchSize int
	SweepMode      string
	SweepQueue     string
	SweepCron      string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Env:            getEnv("SERVER_ENV", "development"),
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")), // empty allows any origin
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			DBName:       getEnv("DB_NAME", "leadrouter"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			AutoMigrate:  getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:       getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
		},
		Stripe: StripeConfig{
			SecretKey: getEnv("STRIPE_SECRET_KEY", ""),
			Currency:  strings.ToLower(getEnv("STRIPE_CURRENCY", "usd")),
		},
		SMTP: SMTPConfig{
			Host:      getEnv("SMTP_HOST", ""),
			Port:      getEnvAsInt("SMTP_PORT", 587),
			Username:  getEnv("SMTP_USERNAME", ""),
			Password:  getEnv("SMTP_PASSWORD", ""),
			FromEmail: getEnv("SMTP_FROM_EMAIL", "no-reply@leadrouter.local"),
			FromName:  getEnv("SMTP_FROM_NAME", "Lead Router"),
		},
		Pricing: PricingConfig{
			DefaultLeadCostCents: int64(getEnvAsInt("LEAD_COST_DEFAULT_CENTS", 2000)),
			CategoryLeadCosts:    parseCategoryCosts(getEnv("LEAD_COST_BY_CATEGORY", "")),
			PlatformFeePercent:   getEnvAsFloat("PLATFORM_FEE_PERCENT", 0.10),
			MinimumFeeDollars:    getEnvAsFloat("PLATFORM_MIN_FEE_DOLLARS", 0),
		},
		Routing: RoutingConfig{
			PriorityWindow: getEnvAsDuration("PRIORITY_WINDOW", 24*time.Hour),
			SweepInterval:  getEnvAsDuration("FALLBACK_SWEEP_INTERVAL", time.Hour),
			SweepBatchSize: getEnvAsInt("FALLBACK_SWEEP_BATCH_SIZE", 100),
			SweepMode:      getEnv("FALLBACK_SWEEP_MODE", SweepModeInProcess),
			SweepQueue:     getEnv("FALLBACK_SWEEP_QUEUE", "default"),
			SweepCron:      getEnv("FALLBACK_SWEEP_CRON", "@every 1h"),
		},
	}
}

// parseCategoryCosts reads "uuid:cents,uuid:cents". Malformed entries are skipped.
func parseCategoryCosts(raw string) map[uuid.UUID]int64 {
	out := make(map[uuid.UUID]int64)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		idPart, centsPart, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		id, err := uuid.Parse(strings.TrimSpace(idPart))
		if err != nil {
			continue
		}
		cents, err := strconv.ParseInt(strings.TrimSpace(centsPart), 10, 64)
		if err != nil || cents < 0 {
			continue
		}
		out[id] = cents
	}
	return out
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
