package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/vxsahu/urban-threadz/pkg/config"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort           int      `env:"HTTP_PORT" envDefault:"8080"`
	RequestTimeoutSecs int      `env:"HTTP_REQUEST_TIMEOUT_SECONDS" envDefault:"30"`
	CORSOrigins        []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`

	// Session storage
	StorageBackend  string `env:"STORAGE_BACKEND" envDefault:"memory"`
	StorageTTLHours int    `env:"STORAGE_TTL_HOURS" envDefault:"168"`
	RedisAddr       string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass       string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB         int    `env:"REDIS_DB" envDefault:"0"`
	RedisChannel    string `env:"REDIS_CHANGES_CHANNEL" envDefault:"storefront:storage:changes"`

	// Catalog. CatalogURL wins over CatalogPath; neither means the embedded catalog.
	CatalogPath         string `env:"CATALOG_PATH"`
	CatalogURL          string `env:"CATALOG_URL"`
	CatalogCacheSeconds int    `env:"CATALOG_CACHE_SECONDS" envDefault:"300"`

	// Cart and order messages
	CartMaxQuantity       int    `env:"CART_MAX_QUANTITY" envDefault:"10"`
	StoreName             string `env:"STORE_NAME" envDefault:"Urban Threadz"`
	SiteURL               string `env:"SITE_URL" envDefault:"https://urban-threadz.vercel.app"`
	CurrencySymbol        string `env:"CURRENCY_SYMBOL" envDefault:"₹"`
	FreeShippingThreshold int64  `env:"FREE_SHIPPING_THRESHOLD" envDefault:"999"`
	MessagingDomain       string `env:"MESSAGING_DOMAIN" envDefault:"wa.me"`
	RecipientID           string `env:"RECIPIENT_ID" envDefault:"918502913816"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from a .env file, if present, and the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg, ".env"); err != nil {
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
	if c.RequestTimeoutSecs < 1 {
		return fmt.Errorf("HTTP_REQUEST_TIMEOUT_SECONDS must be positive, got %d", c.RequestTimeoutSecs)
	}
	switch c.StorageBackend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when STORAGE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", BackendMemory, BackendRedis, c.StorageBackend)
	}
	if c.StorageTTLHours < 0 {
		return fmt.Errorf("STORAGE_TTL_HOURS must not be negative, got %d", c.StorageTTLHours)
	}
	if c.CatalogURL != "" {
		if _, err := url.ParseRequestURI(c.CatalogURL); err != nil {
			return fmt.Errorf("invalid CATALOG_URL %q: %w", c.CatalogURL, err)
		}
	}
	if c.CatalogCacheSeconds < 0 {
		return fmt.Errorf("CATALOG_CACHE_SECONDS must not be negative, got %d", c.CatalogCacheSeconds)
	}
	if c.CartMaxQuantity < 1 {
		return fmt.Errorf("CART_MAX_QUANTITY must be positive, got %d", c.CartMaxQuantity)
	}
	if c.FreeShippingThreshold < 0 {
		return fmt.Errorf("FREE_SHIPPING_THRESHOLD must not be negative, got %d", c.FreeShippingThreshold)
	}
	if _, err := url.ParseRequestURI(c.SiteURL); err != nil {
		return fmt.Errorf("invalid SITE_URL %q: %w", c.SiteURL, err)
	}
	if c.RecipientID == "" {
		return fmt.Errorf("RECIPIENT_ID is required")
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED=true")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// StorageTTL is how long idle session state is kept by the Redis backend.
func (c *Config) StorageTTL() time.Duration {
	return time.Duration(c.StorageTTLHours) * time.Hour
}

// RequestTimeout bounds non-streaming requests.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}
