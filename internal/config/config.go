// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host string `env:"HTTP_HOST,default=0.0.0.0"`
	Port int    `env:"HTTP_PORT,default=8080"`
}

// DatabaseConfig holds connection pool settings.
type DatabaseConfig struct {
	Driver          string `env:"DB_DRIVER,default=postgres"`
	DSN             string `env:"DATABASE_URL"`
	MaxOpenConns    int    `env:"DB_MAX_OPEN_CONNS,default=10"`
	MaxIdleConns    int    `env:"DB_MAX_IDLE_CONNS,default=5"`
	ConnMaxLifetime int    `env:"DB_CONN_MAX_LIFETIME_SECONDS,default=300"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL,default=info"`
	Format string `env:"LOG_FORMAT,default=json"`
}

// SessionConfig holds session cookie settings.
type SessionConfig struct {
	CookieName    string        `env:"SESSION_COOKIE,default=toolshub_session"`
	TTL           time.Duration `env:"SESSION_TTL,default=168h"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL,default=1h"`
	Secure        bool          `env:"SESSION_COOKIE_SECURE,default=true"`
}

// AuthConfig holds identity-token verification settings for the external
// login provider.
type AuthConfig struct {
	TokenSecret string `env:"AUTH_TOKEN_SECRET"`
	Issuer      string `env:"AUTH_ISSUER,default="`
	Audience    string `env:"AUTH_AUDIENCE,default="`
}

// CORSConfig holds cross-origin settings.
type CORSConfig struct {
	AllowedOrigins string `env:"CORS_ALLOWED_ORIGINS,default=*"`
}

// Config is the root configuration object.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Session  SessionConfig
	Auth     AuthConfig
	CORS     CORSConfig
}

// Load decodes configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	return &cfg, nil
}

// Origins returns the parsed CORS origin list.
func (c CORSConfig) Origins() []string {
	parts := strings.Split(c.AllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
