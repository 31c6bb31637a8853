package cmd

import (
	"fmt"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
)

// Config holds the application configuration, loadable from environment variables
// (MARKET_ prefix), an optional .env file, flags, or YAML config files.
type Config struct {
	HTTPAddr   string `env:"HTTP_ADDR" default:"0.0.0.0:8080" usage:"API server listen address" flag:"http-addr"`
	DBHost     string `env:"DB_HOST" default:"localhost" usage:"PostgreSQL host" flag:"db-host"`
	DBPort     string `env:"DB_PORT" default:"5432" usage:"PostgreSQL port" flag:"db-port"`
	DBUser     string `env:"DB_USER" default:"postgres" usage:"PostgreSQL user" flag:"db-user"`
	DBPassword string `env:"DB_PASSWORD" usage:"PostgreSQL password" flag:"db-password"`
	DBName     string `env:"DB_NAME" default:"marketplace" usage:"PostgreSQL database" flag:"db-name"`
	DBSslMode  string `env:"DB_SSLMODE" default:"disable" usage:"PostgreSQL sslmode" flag:"db-sslmode"`
	JWTSecret  string `env:"JWT_SECRET" usage:"HMAC secret of actor bearer tokens (MARKET_JWT_SECRET)" flag:"jwt-secret"`

	Refunds   RefundConfig
	Dispatch  DispatchConfig
	Catalog   CatalogConfig
	RateLimit RateLimitConfig
	Graceful  GracefulConfig

	// ConflictAttempts bounds how often a command reruns after a concurrent update.
	ConflictAttempts int `env:"CONFLICT_ATTEMPTS" default:"3" usage:"Attempts per command on version conflicts" flag:"conflict-attempts"`
}

type RefundConfig struct {
	TwoStepVendorFlow bool `default:"false" usage:"Sellers approve refunds before an admin finalizes them" flag:"two-step-vendor-flow"`
}

// DispatchConfig controls the delivery auto-assignment job.
type DispatchConfig struct {
	Enabled  bool   `default:"true" usage:"Run the delivery auto-assignment job"`
	Schedule string `default:"*/10 * * * * *" usage:"Cron schedule (with seconds) of the auto-assignment job"`
	Batch    int    `default:"50" usage:"Orders considered per auto-assignment pass"`
}

type CatalogConfig struct {
	URL      string        `default:"" usage:"Base URL of the product catalog; empty disables product names" flag:"catalog-url"`
	CacheTTL time.Duration `default:"5m" usage:"How long catalog lookups are cached" flag:"catalog-cache-ttl"`
	Timeout  time.Duration `default:"2s" usage:"Catalog request timeout" flag:"catalog-timeout"`
}

// RateLimitConfig controls the per-client token bucket limiter.
type RateLimitConfig struct {
	RPS   float64 `default:"20" usage:"Sustained requests per second per client, 0 disables"`
	Burst int     `default:"40" usage:"Burst size per client"`
}

type GracefulConfig struct {
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig reads .env when present, then environment variables and YAML config files.
func LoadConfig() (Config, error) {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load(".env")

	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix:          "MARKET",
		Files:              []string{"config.yaml", "/etc/marketplace/config.yaml"},
		SkipFlags:          true,
		AllowUnknownFields: true,
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return Config{}, errors.Wrap(err, "load config")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("jwt secret is required: set MARKET_JWT_SECRET")
	}
	if c.ConflictAttempts < 1 {
		return errors.Errorf("conflict attempts must be positive, got %d", c.ConflictAttempts)
	}
	if c.Dispatch.Enabled && c.Dispatch.Batch < 1 {
		return errors.Errorf("dispatch batch must be positive, got %d", c.Dispatch.Batch)
	}
	return nil
}

// DSN is the PostgreSQL connection string for gorm.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}
