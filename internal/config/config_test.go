package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_SECRET", "test-secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/backoffice")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("addr = %s", cfg.Server.Addr())
	}
	if cfg.Server.Production() {
		t.Error("default environment must not be production")
	}
	if cfg.Auth.SessionTTL != 7*24*time.Hour {
		t.Errorf("sessionTTL = %v", cfg.Auth.SessionTTL)
	}
	if cfg.Auth.SessionSecret != "test-secret" {
		t.Errorf("sessionSecret = %q", cfg.Auth.SessionSecret)
	}
	if cfg.RateLimit.RequestsPerSecond != 50 || cfg.RateLimit.Burst != 100 {
		t.Errorf("rate limit = %+v", cfg.RateLimit)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte(`
server:
  host: 127.0.0.1
  port: 9090
  environment: staging
uploads:
  dir: /var/data/uploads
rate_limit:
  requests_per_second: 10
  burst: 20
`), 0o600)
	if err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr() != "127.0.0.1:9090" {
		t.Errorf("addr = %s", cfg.Server.Addr())
	}
	if cfg.Uploads.Dir != "/var/data/uploads" {
		t.Errorf("uploads dir = %s", cfg.Uploads.Dir)
	}
	if cfg.RateLimit.RequestsPerSecond != 10 {
		t.Errorf("rps = %d", cfg.RateLimit.RequestsPerSecond)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("LOG_LEVEL", "debug")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, want env override 7070", cfg.Server.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("logLevel = %s", cfg.LogLevel)
	}
}

func TestLoad_RequiresSessionSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/backoffice")

	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "SESSION_SECRET") {
		t.Errorf("Load() error = %v, want SESSION_SECRET failure", err)
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret")
	t.Setenv("DATABASE_URL", "")

	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("Load() error = %v, want DATABASE_URL failure", err)
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/app")
	if _, err := Load(""); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestLoad_ProductionEnvironment(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Server.Production() {
		t.Error("environment should be production")
	}
}

func TestLoad_RejectsBadPort(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "99999")

	if _, err := Load(""); err == nil {
		t.Error("Load() should reject an out-of-range port")
	}
}
