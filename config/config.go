package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment string `env:"GO_ENV" envDefault:"development"`
	Port        string `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	DBUrl              string        `env:"DATABASE_URL,required"`
	DBConnectTimeout   time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"10s"`
	DBMaxOpenConns     int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	DBMaxIdleConns     int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBConnMaxLifetime  time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
	MigrateOnStart     bool          `env:"MIGRATE_ON_START" envDefault:"true"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// WebhookSecret is the Svix signing secret shown in the Clerk dashboard (whsec_...).
	WebhookSecret   string        `env:"WEBHOOK_SECRET,required"`
	RedisAddr       string        `env:"REDIS_ADDR"`
	WebhookDedupTTL time.Duration `env:"WEBHOOK_DEDUP_TTL" envDefault:"24h"`
	// WebhookClaimTTL bounds how long an unfinished delivery blocks its retries.
	WebhookClaimTTL time.Duration `env:"WEBHOOK_CLAIM_TTL" envDefault:"2m"`

	// ClerkSecretKey authorizes the public metadata write-back (sk_...).
	ClerkSecretKey         string   `env:"CLERK_SECRET_KEY,required"`
	ClerkAPIURL            string   `env:"CLERK_API_URL" envDefault:"https://api.clerk.com"`
	ClerkJWTKey            string   `env:"CLERK_JWT_KEY"`
	ClerkAuthorizedParties []string `env:"CLERK_AUTHORIZED_PARTIES" envSeparator:","`

	// EventScheduleDefaults makes start and end times default to the creation time
	// when an event is created without them.
	EventScheduleDefaults bool `env:"EVENT_SCHEDULE_DEFAULTS" envDefault:"true"`

	Mail MailConfig
}

// MailConfig holds outbound email settings.
type MailConfig struct {
	Provider           string `env:"MAIL_PROVIDER" envDefault:"noop"`
	FromAddress        string `env:"MAIL_FROM_ADDRESS"`
	FromName           string `env:"MAIL_FROM_NAME" envDefault:"Evently"`
	AWSRegion          string `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	InsecureSkipVerify bool   `env:"AWS_SES_INSECURE_SKIP_VERIFY"`
}

// Load loads configuration from environment variables
// It attempts to load from .env file if not in production
func Load() (*Config, error) {
	goEnv := os.Getenv("GO_ENV")
	if goEnv == "" {
		goEnv = "development"
	}

	// In production we rely on system environment variables only.
	if goEnv != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found or couldn't be loaded: %v", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.DBUrl) == "" {
		return fmt.Errorf("DATABASE_URL is missing")
	}
	if strings.TrimSpace(c.WebhookSecret) == "" {
		return fmt.Errorf("WEBHOOK_SECRET is missing: add it from the Clerk dashboard to .env or the environment")
	}
	if strings.TrimSpace(c.ClerkSecretKey) == "" {
		return fmt.Errorf("CLERK_SECRET_KEY is missing: user.created cannot write the local id back to Clerk without it")
	}
	if c.Mail.Provider == "ses" && c.Mail.FromAddress == "" {
		return fmt.Errorf("MAIL_FROM_ADDRESS is required when MAIL_PROVIDER=ses")
	}
	return nil
}

// IsProduction reports whether GO_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
