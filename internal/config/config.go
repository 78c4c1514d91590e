// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR"        envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	Postgres PostgresConfig `envPrefix:"POSTGRES_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	RabbitMQ RabbitMQConfig `envPrefix:"RABBITMQ_"`
	Publish  PublishConfig  `envPrefix:"PUBLISH_"`
	Auth     AuthConfig
	Log      LogConfig `envPrefix:"LOG_"`

	// Workers is the number of queue consumers in this process, each with prefetch=1.
	Workers int `env:"WORKERS" envDefault:"1"`
}

type PostgresConfig struct {
	DSN     string `env:"DSN,required,notEmpty"`
	Migrate bool   `env:"MIGRATE" envDefault:"true"`
}

type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
}

type RabbitMQConfig struct {
	URL string `env:"URL" envDefault:"amqp://localhost:5672"`
}

type PublishConfig struct {
	MaxAttempts  int           `env:"MAX_ATTEMPTS"  envDefault:"3"`
	DedupEnabled bool          `env:"DEDUP_ENABLED" envDefault:"false"`
	DedupTTL     time.Duration `env:"DEDUP_TTL"     envDefault:"24h"`
}

type AuthConfig struct {
	OIDCIssuer   string `env:"OIDC_ISSUER"`
	OIDCClientID string `env:"OIDC_CLIENT_ID"`
	// StaticTokens is "token=userId,token2=userId2"; for local development only.
	StaticTokens map[string]string `env:"AUTH_STATIC_TOKENS" envSeparator:"," envKeyValSeparator:"="`
}

type LogConfig struct {
	Level      string `env:"LEVEL"        envDefault:"info"`
	Format     string `env:"FORMAT"       envDefault:"json"`
	File       string `env:"FILE"`
	MaxSizeMB  int    `env:"MAX_SIZE_MB"  envDefault:"100"`
	MaxBackups int    `env:"MAX_BACKUPS"  envDefault:"5"`
	MaxAgeDays int    `env:"MAX_AGE_DAYS" envDefault:"14"`
}

// Load reads an optional .env file and parses the environment into Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	return cfg, nil
}

// Sanitize clamps values that would make the process misbehave.
func (c *Config) Sanitize() {
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.Publish.MaxAttempts <= 0 {
		c.Publish.MaxAttempts = 3
	}
	if c.Publish.DedupTTL <= 0 {
		c.Publish.DedupTTL = 24 * time.Hour
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 15 * time.Second
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
}

var credentialsRe = regexp.MustCompile(`://([^:/?#]+):([^@/]+)@`)

// RedactURL masks the password of a DSN or broker URL: user:pass@ -> user:****@.
func RedactURL(u string) string {
	return credentialsRe.ReplaceAllString(u, `://$1:****@`)
}
