package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, BackendMemory, cfg.StorageBackend)
	assert.Equal(t, 168*time.Hour, cfg.StorageTTL())
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
	assert.Equal(t, 10, cfg.CartMaxQuantity)
	assert.Equal(t, int64(999), cfg.FreeShippingThreshold)
	assert.Equal(t, "wa.me", cfg.MessagingDomain)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.KafkaEnabled)
	assert.Empty(t, cfg.CatalogURL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis.prod:6380")
	t.Setenv("CART_MAX_QUANTITY", "5")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.StorageBackend)
	assert.Equal(t, "redis.prod:6380", cfg.RedisAddr)
	assert.Equal(t, 5, cfg.CartMaxQuantity)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value, want string
	}{
		{"port", "HTTP_PORT", "0", "invalid HTTP port"},
		{"backend", "STORAGE_BACKEND", "etcd", "STORAGE_BACKEND must be"},
		{"max quantity", "CART_MAX_QUANTITY", "0", "CART_MAX_QUANTITY must be positive"},
		{"catalog url", "CATALOG_URL", "not a url", "invalid CATALOG_URL"},
		{"site url", "SITE_URL", "nope", "invalid SITE_URL"},
		{"sample rate", "OTEL_SAMPLE_RATE", "2.0", "OTEL_SAMPLE_RATE must be between 0.0 and 1.0"},
		{"cache seconds", "CATALOG_CACHE_SECONDS", "-1", "CATALOG_CACHE_SECONDS must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_MalformedValue(t *testing.T) {
	t.Setenv("HTTP_PORT", "eighty")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load storefront config")
}
