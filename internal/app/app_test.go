package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vxsahu/urban-threadz/internal/config"
	"github.com/vxsahu/urban-threadz/pkg/logger"
)

const miniCatalog = `[{"id":"p1","name":"Plain Tee","realPrice":500,"discountedPrice":400,"isAvailable":true,"category":"Basics"}]`

func testConfig() *config.Config {
	return &config.Config{
		Environment:           "test",
		LogLevel:              "error",
		HTTPPort:              8080,
		RequestTimeoutSecs:    5,
		CORSOrigins:           []string{"*"},
		StorageBackend:        config.BackendMemory,
		StorageTTLHours:       1,
		CatalogCacheSeconds:   60,
		CartMaxQuantity:       10,
		StoreName:             "Urban Threadz",
		SiteURL:               "https://shop.example",
		CurrencySymbol:        "₹",
		FreeShippingThreshold: 999,
		MessagingDomain:       "wa.me",
		RecipientID:           "911234567890",
		OTELSampleRate:        1,
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := NewApp(cfg, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(a.release)
	return a
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func productCount(t *testing.T, rec *httptest.ResponseRecorder) int {
	t.Helper()
	var resp struct {
		Data struct {
			TotalCount int `json:"total_count"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Data.TotalCount
}

func TestNewApp_EmbeddedCatalog(t *testing.T) {
	a := newTestApp(t, testConfig())

	rec := get(t, a.Handler(), "/api/v1/products")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 8, productCount(t, rec))

	rec = get(t, a.Handler(), "/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewApp_FileCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(miniCatalog), 0o600))

	cfg := testConfig()
	cfg.CatalogPath = path
	a := newTestApp(t, cfg)

	assert.Equal(t, 1, productCount(t, get(t, a.Handler(), "/api/v1/products")))
}

func TestNewApp_RemoteCatalog(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(miniCatalog))
	}))
	defer upstream.Close()

	cfg := testConfig()
	cfg.CatalogURL = upstream.URL + "/products.json"
	cfg.CatalogPath = "/does/not/matter"
	a := newTestApp(t, cfg)

	assert.Equal(t, 1, productCount(t, get(t, a.Handler(), "/api/v1/products")))
}

func TestNewApp_MissingCatalogFile(t *testing.T) {
	cfg := testConfig()
	cfg.CatalogPath = filepath.Join(t.TempDir(), "missing.json")

	_, err := NewApp(cfg, logger.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load catalog")
}

func TestNewApp_RedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig()
	cfg.StorageBackend = config.BackendRedis
	cfg.RedisAddr = mr.Addr()
	a := newTestApp(t, cfg)

	rec := get(t, a.Handler(), "/health/ready")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis"`)

	mr.Close()
	rec = get(t, a.Handler(), "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestNewApp_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig()
	cfg.StorageBackend = config.BackendRedis
	cfg.RedisAddr = addr

	_, err := NewApp(cfg, logger.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to redis")
}

func TestRun_StopsOnCancel(t *testing.T) {
	a := newTestApp(t, testConfig())
	a.httpServer.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
