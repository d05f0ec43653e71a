package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"APP_ENV" default:"development"`
	Port        int    `envconfig:"PORT" default:"5000"`
	Debug       bool   `envconfig:"DEBUG" default:"false"`
	// Host is the public backend host (e.g. https://journal.example.com); only checked in production.
	Host string `envconfig:"HOST"`

	DB         DBConfig
	SQLite     SQLiteConfig
	CORS       CORSConfig
	Limiter    RateLimiterConfig
	RedisURI   string `envconfig:"REDIS_URI"`
	Cloudinary CloudinaryConfig
}

// DBConfig is the primary (PostgreSQL) engine.
type DBConfig struct {
	Host           string        `envconfig:"DB_HOST" default:"localhost"`
	Port           int           `envconfig:"DB_PORT" default:"5432"`
	User           string        `envconfig:"DB_USER" default:"postgres"`
	Password       string        `envconfig:"DB_PASSWORD"`
	Name           string        `envconfig:"DB_NAME" default:"travel_journal"`
	SSLMode        string        `envconfig:"DB_SSLMODE" default:"disable"`
	ConnectTimeout time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"5s"`
	QueryTimeout   time.Duration `envconfig:"DB_QUERY_TIMEOUT" default:"5s"`
	MaxOpenConns   int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
}

// SQLiteConfig is the fallback engine.
type SQLiteConfig struct {
	Path string `envconfig:"SQLITE_PATH" default:"data/travel_journal.db"`
	// Force skips the primary engine entirely.
	Force bool `envconfig:"USE_SQLITE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`
}

type RateLimiterConfig struct {
	RPS     float64 `envconfig:"RATE_LIMIT_RPS" default:"5"`
	Burst   int     `envconfig:"RATE_LIMIT_BURST" default:"20"`
	Enabled bool    `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	// Window and MaxRequests drive the Redis limiter when REDIS_URI is set.
	Window      time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
	MaxRequests int           `envconfig:"RATE_LIMIT_MAX_REQUESTS" default:"120"`
}

type CloudinaryConfig struct {
	CloudName string `envconfig:"CLOUDINARY_CLOUD_NAME"`
	APIKey    string `envconfig:"CLOUDINARY_API_KEY"`
	APISecret string `envconfig:"CLOUDINARY_API_SECRET"`
	Folder    string `envconfig:"UPLOAD_FOLDER" default:"travel-journal"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))
	cfg.CORS.AllowedOrigins = parseOrigins(cfg.CORS.AllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"test":        true,
		"production":  true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s (must be one of: development, test, production)", c.Environment)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be between 1 and 65535)", c.Port)
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		return fmt.Errorf("invalid DB_PORT: %d", c.DB.Port)
	}
	if !c.SQLite.Force && c.DB.Name == "" {
		return fmt.Errorf("DB_NAME is required unless USE_SQLITE is set")
	}
	if c.SQLite.Path == "" {
		return fmt.Errorf("SQLITE_PATH must not be empty")
	}
	if c.DB.MaxOpenConns < 1 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be at least 1")
	}
	if c.DB.ConnectTimeout <= 0 || c.DB.QueryTimeout <= 0 {
		return fmt.Errorf("DB_CONNECT_TIMEOUT and DB_QUERY_TIMEOUT must be positive")
	}
	if c.Limiter.RPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be non-negative")
	}
	if c.Limiter.Burst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1")
	}
	if c.RedisURI != "" && (c.Limiter.Window <= 0 || c.Limiter.MaxRequests < 1) {
		return fmt.Errorf("RATE_LIMIT_WINDOW and RATE_LIMIT_MAX_REQUESTS must be positive when REDIS_URI is set")
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}
	return nil
}

// IsProduction returns true when APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// UploadsEnabled reports whether all Cloudinary credentials are present.
func (c *Config) UploadsEnabled() bool {
	return c.Cloudinary.CloudName != "" && c.Cloudinary.APIKey != "" && c.Cloudinary.APISecret != ""
}

// AllowedHost is the bare hostname of HOST, used for the production host check.
func (c *Config) AllowedHost() string {
	if !c.IsProduction() {
		return ""
	}
	host := strings.TrimSpace(c.Host)
	for _, prefix := range []string{"https://", "http://"} {
		host = strings.TrimPrefix(host, prefix)
	}
	if idx := strings.Index(host, "/"); idx != -1 {
		host = host[:idx]
	}
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return host
}

func (c *Config) ServerAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) String() string {
	return fmt.Sprintf("Config{Env=%s, Port=%d, Debug=%t, DB=%s@%s:%d/%s, SQLite=%s (forced=%t), "+
		"Limiter.RPS=%.2f, Limiter.Burst=%d, Redis=%t, Uploads=%t, CORS.Origins=%d}",
		c.Environment, c.Port, c.Debug, c.DB.User, c.DB.Host, c.DB.Port, c.DB.Name,
		c.SQLite.Path, c.SQLite.Force, c.Limiter.RPS, c.Limiter.Burst,
		c.RedisURI != "", c.UploadsEnabled(), len(c.CORS.AllowedOrigins))
}

func parseOrigins(in []string) []string {
	var out []string
	for _, part := range in {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
