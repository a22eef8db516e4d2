package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("log level: got %q, want info", cfg.LogLevel)
	}
	if cfg.NATSSubjectPrefix != "payments.accounts" {
		t.Errorf("subject prefix: got %q", cfg.NATSSubjectPrefix)
	}
	if cfg.NATSStream != "PAYMENTS_ACCOUNTS" {
		t.Errorf("stream: got %q", cfg.NATSStream)
	}
	if cfg.MetricsJob != "payments" {
		t.Errorf("metrics job: got %q", cfg.MetricsJob)
	}
	if cfg.SinkTimeout != 10*time.Second {
		t.Errorf("sink timeout: got %s, want 10s", cfg.SinkTimeout)
	}
	if cfg.PostgresEnabled() || cfg.NATSEnabled() || cfg.PushEnabled() {
		t.Error("sinks must be disabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PAYMENTS_POSTGRES_DSN", "postgres://localhost/payments")
	t.Setenv("PAYMENTS_NATS_URL", "nats://localhost:4222")
	t.Setenv("PAYMENTS_SINK_TIMEOUT", "250ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.PostgresEnabled() || !cfg.NATSEnabled() {
		t.Error("expected postgres and nats sinks enabled")
	}
	if cfg.SinkTimeout != 250*time.Millisecond {
		t.Errorf("sink timeout: got %s", cfg.SinkTimeout)
	}
}

func TestLoadError(t *testing.T) {
	t.Setenv("PAYMENTS_SINK_TIMEOUT", "soon")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadRejectsNonPositiveTimeout(t *testing.T) {
	t.Setenv("PAYMENTS_SINK_TIMEOUT", "0s")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero timeout")
	}
}

func TestDefaultsIgnoreEnvironment(t *testing.T) {
	t.Setenv("PAYMENTS_SINK_TIMEOUT", "soon")
	t.Setenv("PAYMENTS_NATS_URL", "nats://localhost:4222")

	cfg := Defaults()
	if cfg.SinkTimeout != 10*time.Second {
		t.Errorf("sink timeout: got %s, want 10s", cfg.SinkTimeout)
	}
	if cfg.LogLevel != "info" || cfg.NATSStream != "PAYMENTS_ACCOUNTS" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.PostgresEnabled() || cfg.NATSEnabled() || cfg.PushEnabled() {
		t.Error("defaults must disable every sink")
	}
}
