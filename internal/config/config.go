package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime configuration for the payments CLI.
// Every sink is optional and disabled while its address is empty; the CSV
// snapshot on stdout is always produced.
type Config struct {
	LogLevel string `env:"PAYMENTS_LOG_LEVEL" envDefault:"info"`

	// Postgres snapshot export
	PostgresDSN string `env:"PAYMENTS_POSTGRES_DSN"`

	// NATS JetStream snapshot publication
	NATSURL           string `env:"PAYMENTS_NATS_URL"`
	NATSSubjectPrefix string `env:"PAYMENTS_NATS_SUBJECT_PREFIX" envDefault:"payments.accounts"`
	NATSStream        string `env:"PAYMENTS_NATS_STREAM" envDefault:"PAYMENTS_ACCOUNTS"`

	// Prometheus Pushgateway
	PushgatewayURL string `env:"PAYMENTS_PUSHGATEWAY_URL"`
	MetricsJob     string `env:"PAYMENTS_METRICS_JOB" envDefault:"payments"`

	// Upper bound for each sink, including connection setup
	SinkTimeout time.Duration `env:"PAYMENTS_SINK_TIMEOUT" envDefault:"10s"`
}

// Load parses Config from the environment
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SinkTimeout <= 0 {
		return Config{}, fmt.Errorf("PAYMENTS_SINK_TIMEOUT must be positive, got %s", cfg.SinkTimeout)
	}
	return cfg, nil
}

// Defaults returns the configuration an empty environment produces: every
// sink disabled
func Defaults() Config {
	var cfg Config
	// Only envDefault tags are read, which are valid literals
	_ = env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}})
	return cfg
}

func (c Config) PostgresEnabled() bool {
	return c.PostgresDSN != ""
}

func (c Config) NATSEnabled() bool {
	return c.NATSURL != ""
}

func (c Config) PushEnabled() bool {
	return c.PushgatewayURL != ""
}
