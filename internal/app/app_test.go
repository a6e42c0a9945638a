package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apper-canvas/stylehub-crypto-chip/internal/config"
	"github.com/apper-canvas/stylehub-crypto-chip/pkg/logger"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func loadConfig(t *testing.T, overrides map[string]string) *config.Config {
	t.Helper()
	cfg, err := config.LoadWith(overrides)
	require.NoError(t, err)
	return cfg
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestNewApp_EmbeddedCatalogInMemoryStorage(t *testing.T) {
	a, err := NewApp(loadConfig(t, nil), logger.Discard())
	require.NoError(t, err)

	rec := get(t, a.Handler(), "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "not ready before the catalog loads")

	require.NoError(t, a.Catalog().Load(context.Background()))

	rec = get(t, a.Handler(), "/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, a.Handler(), "/api/v1/products/trending")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewApp_RedisStorage(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)

	a, err := NewApp(loadConfig(t, map[string]string{
		"STORAGE_BACKEND": "redis",
		"REDIS_HOST":      host,
		"REDIS_PORT":      port,
	}), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(a.closeResources)
	require.NoError(t, a.Catalog().Load(context.Background()))

	req := httptest.NewRequest(http.MethodPut, "/api/v1/wishlist/3", nil)
	req.Header.Set("X-Session-ID", "shopper-1")
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, err := mr.Get("session:shopper-1:wishlist")
	require.NoError(t, err)
	assert.JSONEq(t, `[3]`, stored)
	assert.Positive(t, mr.TTL("session:shopper-1:wishlist"))
}

func TestNewApp_BadgerStorage(t *testing.T) {
	a, err := NewApp(loadConfig(t, map[string]string{
		"STORAGE_BACKEND": "badger",
		"BADGER_PATH":     t.TempDir(),
	}), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(a.closeResources)

	rec := get(t, a.Handler(), "/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewApp_RedisUnavailable(t *testing.T) {
	_, err := NewApp(loadConfig(t, map[string]string{
		"STORAGE_BACKEND": "redis",
		"REDIS_HOST":      "127.0.0.1",
		"REDIS_PORT":      fmt.Sprint(freePort(t)),
	}), logger.Discard())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to redis")
}

func TestRun_ServesAndReloadsFileCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"Id":1,"name":"Tee","brand":"H&M","category":"Men","price":500,"rating":4.2}]`), 0o644))

	port := freePort(t)
	a, err := NewApp(loadConfig(t, map[string]string{
		"HTTP_PORT":      fmt.Sprint(port),
		"CATALOG_SOURCE": "file",
		"CATALOG_PATH":   path,
		"CATALOG_WATCH":  "true",
	}), logger.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/api/v1/products/2", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/api/v1/products/1", port))
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(`[
		{"Id":1,"name":"Tee","brand":"H&M","category":"Men","price":500,"rating":4.2},
		{"Id":2,"name":"Dress","brand":"Zara","category":"Women","price":1200,"rating":4.6}
	]`), 0o644))

	assert.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond, "new product is served after the file changes")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
