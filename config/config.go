package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"8080" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	// Shared secrets. Outside production an empty runner token allows
	// unauthenticated trigger calls (local development relaxation); in
	// production both must be set or startup fails.
	ShopifyWebhookSecret string `env:"SHOPIFY_WEBHOOK_SECRET" validate:"required_if=Env production"`
	JobRunnerToken       string `env:"JOB_RUNNER_TOKEN"       validate:"required_if=Env production"`

	// Per-kind retry budgets and claim ceilings.
	WebhookMaxAttempts int `env:"WEBHOOK_MAX_ATTEMPTS" envDefault:"5"  validate:"min=1,max=20"`
	ImportMaxAttempts  int `env:"IMPORT_MAX_ATTEMPTS"  envDefault:"3"  validate:"min=1,max=20"`
	WebhookClaimLimit  int `env:"WEBHOOK_CLAIM_LIMIT"  envDefault:"20" validate:"min=1,max=50"`
	ImportClaimLimit   int `env:"IMPORT_CLAIM_LIMIT"   envDefault:"50" validate:"min=1,max=50"`

	// Store-side backoff scheduling: base * 2^attempts capped at max.
	// Base 0 makes retried jobs immediately reclaimable.
	RetryBaseDelaySec int `env:"RETRY_BASE_DELAY_SEC" envDefault:"30"   validate:"min=0"`
	RetryMaxDelaySec  int `env:"RETRY_MAX_DELAY_SEC"  envDefault:"3600" validate:"min=0"`

	// Worker process.
	RunSchedule     string `env:"RUN_SCHEDULE"      envDefault:"@every 30s" validate:"required"`
	ReapIntervalSec int    `env:"REAP_INTERVAL_SEC" envDefault:"60"         validate:"min=1"`
	StaleClaimSec   int    `env:"STALE_CLAIM_SEC"   envDefault:"300"        validate:"min=10"`

	// Operator alerts for terminally failed jobs.
	ResendAPIKey string `env:"RESEND_API_KEY"`
	ResendFrom   string `env:"RESEND_FROM"`
	AlertEmail   string `env:"ALERT_EMAIL"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelaySec) * time.Second
}

func (c *Config) RetryMaxDelay() time.Duration {
	return time.Duration(c.RetryMaxDelaySec) * time.Second
}

func (c *Config) ReapInterval() time.Duration {
	return time.Duration(c.ReapIntervalSec) * time.Second
}

func (c *Config) StaleClaimAfter() time.Duration {
	return time.Duration(c.StaleClaimSec) * time.Second
}
