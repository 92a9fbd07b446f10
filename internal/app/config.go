package app

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8081"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"95s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"90s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	InventoryAPIURL     string        `envconfig:"INVENTORY_API_URL" default:"http://localhost:8080/api"`
	InventoryAPITimeout time.Duration `envconfig:"INVENTORY_API_TIMEOUT" default:"15s"`

	// Empty RedisAddr keeps sessions in memory and disables the cache and queue.
	RedisAddr string `envconfig:"REDIS_ADDR"`
	// Empty PGDSN keeps the commit journal in memory.
	PGDSN string `envconfig:"PG_DSN"`

	SaleSessionTTL    time.Duration `envconfig:"SALE_SESSION_TTL" default:"2h"`
	SaleCloseDelay    time.Duration `envconfig:"SALE_CLOSE_DELAY" default:"1500ms"`
	SaleCommitTimeout time.Duration `envconfig:"SALE_COMMIT_TIMEOUT" default:"60s"`
	SaleLockTTL       time.Duration `envconfig:"SALE_LOCK_TTL" default:"10s"`

	CatalogCacheTTL       time.Duration `envconfig:"CATALOG_CACHE_TTL" default:"10m"`
	RateLimitPerMinute    int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
	JournalRetentionHours int           `envconfig:"JOURNAL_RETENTION_HOURS" default:"24"`
}

// LoadConfig reads configuration from an optional .env file and the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.InventoryAPIURL == "" {
		return errors.New("inventory api url must be provided")
	}
	u, err := url.Parse(c.InventoryAPIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("inventory api url %q is not absolute", c.InventoryAPIURL)
	}
	if c.SaleCommitTimeout <= 0 || c.SaleSessionTTL <= 0 || c.SaleLockTTL <= 0 {
		return errors.New("sale timeouts must be positive")
	}
	// A commit outliving the request timeout would surface as 504 while still running.
	if c.AppRequestTimeout <= c.SaleCommitTimeout {
		return fmt.Errorf("request timeout %s must exceed commit timeout %s", c.AppRequestTimeout, c.SaleCommitTimeout)
	}
	if c.RateLimitPerMinute <= 0 {
		return errors.New("rate limit must be positive")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
