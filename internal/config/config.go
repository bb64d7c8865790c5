package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	SessionBackendFile  = "file"
	SessionBackendRedis = "redis"
)

type Config struct {
	Env              string        `mapstructure:"ENV"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
	APIBaseURL       string        `mapstructure:"API_BASE_URL"`
	HTTPTimeout      time.Duration `mapstructure:"HTTP_TIMEOUT"`
	SessionBackend   string        `mapstructure:"SESSION_BACKEND"`
	SessionDir       string        `mapstructure:"SESSION_DIR"`
	RedisURL         string        `mapstructure:"REDIS_URL"`
	MockAPIPort      string        `mapstructure:"MOCK_API_PORT"`
	MockSigningKey   string        `mapstructure:"MOCK_API_SIGNING_KEY"`
	MockSeed         bool          `mapstructure:"MOCK_API_SEED"`
	MockCORSOrigins  []string      `mapstructure:"MOCK_API_CORS_ORIGINS"`
	MockTokenTTL     time.Duration `mapstructure:"MOCK_API_TOKEN_TTL"`
	MockSeedPassword string        `mapstructure:"MOCK_API_SEED_PASSWORD"`
}

// devSigningKey signs mock tokens when ENV=development and no key is set.
const devSigningKey = "vidasana-dev-signing-key"

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_TIMEOUT", "10s")
	v.SetDefault("SESSION_BACKEND", SessionBackendFile)
	v.SetDefault("SESSION_DIR", defaultSessionDir())
	v.SetDefault("MOCK_API_PORT", "8080")
	v.SetDefault("MOCK_API_SEED", true)
	v.SetDefault("MOCK_API_TOKEN_TTL", "12h")

	for _, key := range []string{
		"ENV", "LOG_LEVEL", "API_BASE_URL", "HTTP_TIMEOUT",
		"SESSION_BACKEND", "SESSION_DIR", "REDIS_URL",
		"MOCK_API_PORT", "MOCK_API_SIGNING_KEY", "MOCK_API_SEED",
		"MOCK_API_CORS_ORIGINS", "MOCK_API_TOKEN_TTL", "MOCK_API_SEED_PASSWORD",
	} {
		_ = v.BindEnv(key)
	}

	// A missing .env is fine.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.MockCORSOrigins == nil {
		if origins := v.GetString("MOCK_API_CORS_ORIGINS"); origins != "" {
			cfg.MockCORSOrigins = strings.Split(origins, ",")
		}
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	cfg.SessionBackend = strings.ToLower(strings.TrimSpace(cfg.SessionBackend))

	return cfg, nil
}

func defaultSessionDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".turnos"
	}
	return filepath.Join(home, ".turnos")
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks what the client commands need: a service URL and a
// usable session backend.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute http(s) URL, got %q", c.APIBaseURL)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	switch c.SessionBackend {
	case SessionBackendFile:
		if c.SessionDir == "" {
			return fmt.Errorf("SESSION_DIR is required when SESSION_BACKEND is %q", SessionBackendFile)
		}
	case SessionBackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when SESSION_BACKEND is %q", SessionBackendRedis)
		}
	default:
		return fmt.Errorf("SESSION_BACKEND must be %q or %q, got %q", SessionBackendFile, SessionBackendRedis, c.SessionBackend)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}

// ValidateMock checks what the mock-api command needs. Outside development
// a signing key must be configured.
func (c *Config) ValidateMock() error {
	if c.MockAPIPort == "" {
		return fmt.Errorf("MOCK_API_PORT is required")
	}
	if !c.IsDev() && c.MockSigningKey == "" {
		return fmt.Errorf("MOCK_API_SIGNING_KEY is required when ENV=%q", c.Env)
	}
	return nil
}

// SigningKey returns the configured mock signing key, falling back to a
// fixed development key.
func (c *Config) SigningKey() []byte {
	if c.MockSigningKey != "" {
		return []byte(c.MockSigningKey)
	}
	return []byte(devSigningKey)
}

// Level parses LOG_LEVEL, defaulting to info.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
