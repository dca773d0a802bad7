// Package config loads the service configuration from an optional YAML file
// with environment variable overrides. Secrets only ever come from the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Uploads   UploadsConfig   `yaml:"uploads"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	LogLevel  string          `yaml:"log_level" env:"LOG_LEVEL"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host           string   `yaml:"host" env:"SERVER_HOST"`
	Port           int      `yaml:"port" env:"SERVER_PORT"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
	Environment    string   `yaml:"environment" env:"ENVIRONMENT"`
}

// Production reports whether the service runs with production hardening
// (secure cookies).
func (c ServerConfig) Production() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds the PostgreSQL settings. The URL is required; the
// server refuses to start without a database.
type DatabaseConfig struct {
	URL string `yaml:"-" env:"DATABASE_URL"`
}

// AuthConfig holds session and OIDC settings.
type AuthConfig struct {
	SessionSecret string        `yaml:"-" env:"SESSION_SECRET"`
	SessionTTL    time.Duration `yaml:"session_ttl" env:"SESSION_TTL"`

	OIDCClientID     string `yaml:"oidc_client_id" env:"OIDC_CLIENT_ID"`
	OIDCClientSecret string `yaml:"-" env:"OIDC_CLIENT_SECRET"`
	OIDCAuthorizeURL string `yaml:"oidc_authorize_url" env:"OIDC_AUTHORIZE_URL"`
	OIDCTokenURL     string `yaml:"oidc_token_url" env:"OIDC_TOKEN_URL"`
	OIDCUserInfoURL  string `yaml:"oidc_userinfo_url" env:"OIDC_USERINFO_URL"`
	OIDCRedirectURL  string `yaml:"oidc_redirect_url" env:"OIDC_REDIRECT_URL"`
	OIDCProvider     string `yaml:"oidc_provider" env:"OIDC_PROVIDER"`
}

// UploadsConfig holds the upload directory settings.
type UploadsConfig struct {
	Dir string `yaml:"dir" env:"UPLOAD_DIR"`
}

// RateLimitConfig holds the per-key token bucket settings.
type RateLimitConfig struct {
	RequestsPerSecond int `yaml:"requests_per_second" env:"RATE_LIMIT_RPS"`
	Burst             int `yaml:"burst" env:"RATE_LIMIT_BURST"`
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:3000"},
			Environment:    "development",
		},
		Auth: AuthConfig{
			SessionTTL: 7 * 24 * time.Hour,
		},
		Uploads: UploadsConfig{
			Dir: "uploads",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
		},
		LogLevel: "info",
	}
}

// Load reads the YAML file at path (when it exists), applies environment
// overrides, and validates. It fails fast when SESSION_SECRET is absent.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// Env-only configuration is fine.
		default:
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}

	if cfg.Auth.SessionSecret == "" {
		return Config{}, fmt.Errorf("SESSION_SECRET is required")
	}
	if cfg.Database.URL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return Config{}, fmt.Errorf("invalid server port %d", cfg.Server.Port)
	}
	return cfg, nil
}
