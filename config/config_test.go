package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("expected default driver postgres, got %s", cfg.Database.Driver)
	}
	if cfg.Email.LoginLinkTTL != 15*time.Minute {
		t.Errorf("expected default login link ttl 15m, got %s", cfg.Email.LoginLinkTTL)
	}
	if cfg.Client.CredentialsPath == "" {
		t.Error("expected a default credentials path")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("CLASSIFIER_TIMEOUT", "3s")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg := Load()

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("expected driver sqlite, got %s", cfg.Database.Driver)
	}
	if cfg.Classifier.Timeout != 3*time.Second {
		t.Errorf("expected timeout 3s, got %s", cfg.Classifier.Timeout)
	}
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("expected fallback to default on bad int, got %d", cfg.Database.MaxOpenConns)
	}
}
