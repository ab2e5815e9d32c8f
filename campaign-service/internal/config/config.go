package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
)

// Config captures runtime settings for the campaign service.
type Config struct {
	Addr              string        `env:"CAMPAIGN_ADDR" envDefault:":8060"`
	DatabaseURL       string        `env:"DATABASE_URL"`
	StoreKind         string        `env:"CAMPAIGN_STORE" envDefault:"postgres"`
	Timezone          string        `env:"CAMPAIGN_TIMEZONE" envDefault:"America/Mexico_City"`
	StoreRetries      int           `env:"CAMPAIGN_STORE_RETRIES" envDefault:"3"`
	StoreRetryDelay   time.Duration `env:"CAMPAIGN_STORE_RETRY_DELAY" envDefault:"500ms"`
	RequestTimeout    time.Duration `env:"CAMPAIGN_REQUEST_TIMEOUT" envDefault:"30s"`
	MaxUploadBytes    int64         `env:"CAMPAIGN_MAX_UPLOAD_BYTES" envDefault:"10485760"`
	KafkaBrokers      []string      `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic        string        `env:"KAFKA_TOPIC" envDefault:"campaign-events"`
	S3Bucket          string        `env:"S3_BUCKET"`
	S3Prefix          string        `env:"S3_PREFIX"`
	AttachmentBaseURL string        `env:"ATTACHMENT_BASE_URL"`
	AdminJWTSecret    string        `env:"ADMIN_JWT_SECRET"`
	AdminJWTScope     string        `env:"ADMIN_JWT_SCOPE" envDefault:"campaigns:write"`
	AdminJWTIssuer    string        `env:"ADMIN_JWT_ISSUER"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`

	location *time.Location
}

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Load reads environment variables and returns a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.StoreKind = strings.ToLower(strings.TrimSpace(cfg.StoreKind))
	switch cfg.StoreKind {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required when CAMPAIGN_STORE=postgres")
		}
	case StoreMemory:
	default:
		return Config{}, fmt.Errorf("unknown CAMPAIGN_STORE %q", cfg.StoreKind)
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return Config{}, fmt.Errorf("load CAMPAIGN_TIMEZONE: %w", err)
	}
	cfg.location = loc
	return cfg, nil
}

// Location is the zone campaign dates are interpreted in.
func (c Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}
