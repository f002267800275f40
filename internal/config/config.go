// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"5000"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	// MongoDB. The URI is required; a database in its path takes precedence
	// over MONGODB_DATABASE.
	MongoURI      string `env:"MONGODB_URI,required,notEmpty"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"crm"`

	RedisURL          string        `env:"REDIS_URL"`
	DashboardCacheTTL time.Duration `env:"DASHBOARD_CACHE_TTL" envDefault:"60s"`

	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`
	JWTExpiry int    `env:"JWT_EXPIRY" envDefault:"24"` // hours

	CORSOrigins  []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
	DeleteRoles  []string `env:"DELETE_ROLES" envDefault:"admin,sales" envSeparator:","`
	MaxBodyBytes int64    `env:"MAX_BODY_BYTES" envDefault:"1048576"`

	Timezone       string `env:"TIMEZONE" envDefault:"Local"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"true"`
	SeedData       bool   `env:"SEED_DATA" envDefault:"false"`

	Log LogConfig

	// Resolved from Timezone by Load.
	Location *time.Location `env:"-"`
}

// LogConfig mirrors logger.Config so the logger package stays free of env parsing.
type LogConfig struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info"`
	Format     string `env:"LOG_FORMAT" envDefault:"text"`
	Output     string `env:"LOG_OUTPUT" envDefault:"stdout"`
	Dir        string `env:"LOG_DIR" envDefault:"logs"`
	MaxSize    int    `env:"LOG_MAX_SIZE" envDefault:"100"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	MaxAge     int    `env:"LOG_MAX_AGE" envDefault:"30"`
	Compress   bool   `env:"LOG_COMPRESS" envDefault:"true"`
}

// Load reads the configuration from the environment. Missing secrets are an error.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) finalize() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must not be blank")
	}
	if c.JWTExpiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY must be positive, got %d", c.JWTExpiry)
	}

	u, err := url.Parse(c.MongoURI)
	if err != nil {
		return fmt.Errorf("invalid MONGODB_URI: %w", err)
	}
	if name := strings.Trim(u.Path, "/"); name != "" {
		c.MongoDatabase = name
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	c.Location = loc

	c.CORSOrigins = trimAll(c.CORSOrigins)
	c.DeleteRoles = trimAll(c.DeleteRoles)
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// TokenTTL is the fixed lifetime of issued access tokens.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpiry) * time.Hour
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
