package config

import (
	"fmt"
	"strings"
	"time"

	pkgconfig "github.com/frostmag155/shop-frontend/pkg/config"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Cart TTL in hours (default: 7 days)
	CartTTL int `env:"CART_TTL_HOURS" envDefault:"168"`

	// Two-phase removal window in milliseconds, matching the UI's exit
	// animation.
	RemovalWindowMS int `env:"CART_REMOVAL_WINDOW_MS" envDefault:"400"`

	// Upstream commerce API
	CommerceBaseURL string        `env:"COMMERCE_API_URL" envDefault:"http://localhost:3000"`
	CommerceTimeout time.Duration `env:"COMMERCE_API_TIMEOUT" envDefault:"10s"`

	// Session tokens
	JWTSecret  string        `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"720h"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Rate limiting
	RateLimitRPS   int `env:"RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST" envDefault:"100"`

	// Catalog response cache max-age in seconds
	CatalogCacheMaxAge int `env:"CATALOG_CACHE_MAX_AGE" envDefault:"300"`

	// Pprof endpoint allowlist
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.0/8" envSeparator:","`

	// Tracing
	TracingEnabled bool   `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint   string `env:"OTLP_ENDPOINT" envDefault:"localhost:4318"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.CartTTL < 1 {
		return fmt.Errorf("cart TTL must be at least 1 hour, got %d", c.CartTTL)
	}
	if c.RemovalWindowMS < 0 {
		return fmt.Errorf("removal window must not be negative, got %d", c.RemovalWindowMS)
	}
	if !strings.HasPrefix(c.CommerceBaseURL, "http://") && !strings.HasPrefix(c.CommerceBaseURL, "https://") {
		return fmt.Errorf("commerce API URL must be http(s), got %q", c.CommerceBaseURL)
	}
	if c.Environment != "development" && c.JWTSecret == "dev-secret-change-me" {
		return fmt.Errorf("JWT_SECRET must be set outside development")
	}
	if c.RateLimitRPS < 1 || c.RateLimitBurst < c.RateLimitRPS {
		return fmt.Errorf("rate limit burst (%d) must be >= rps (%d) and rps >= 1", c.RateLimitBurst, c.RateLimitRPS)
	}
	return nil
}

// CartTTLDuration returns the cart TTL as a duration.
func (c *Config) CartTTLDuration() time.Duration {
	return time.Duration(c.CartTTL) * time.Hour
}

// RemovalWindow returns the pending-removal window as a duration.
func (c *Config) RemovalWindow() time.Duration {
	return time.Duration(c.RemovalWindowMS) * time.Millisecond
}
