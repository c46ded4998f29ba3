package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/jma-forecast/internal/config"
	"github.com/i474232898/jma-forecast/internal/forecast"
	"github.com/i474232898/jma-forecast/internal/logger"
	"github.com/i474232898/jma-forecast/internal/store"
)

// closeTracker records whether the store was closed.
type closeTracker struct {
	*store.MemoryStore
	closed atomic.Bool
}

func (c *closeTracker) Close() error {
	c.closed.Store(true)
	return c.MemoryStore.Close()
}

func trackStore(t *testing.T) *closeTracker {
	t.Helper()
	tracker := &closeTracker{MemoryStore: store.NewMemoryStore()}

	prev := openStore
	openStore = func(ctx context.Context, driver, dsn string, log logger.Logger) (forecast.Store, error) {
		return tracker, nil
	}
	t.Cleanup(func() { openStore = prev })
	return tracker
}

func testConfig(baseURL, fallback string) *config.AppConfig {
	return &config.AppConfig{
		Port:             "0",
		JMABaseURL:       baseURL,
		AreaFallbackFile: fallback,
		HTTPTimeout:      time.Second,
		StoreDriver:      "memory",
		RefreshInterval:  time.Hour,
	}
}

func TestRunClosesStoreWhenCatalogFails(t *testing.T) {
	tracker := trackStore(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testConfig(server.URL, filepath.Join(t.TempDir(), "missing.json"))

	err := run(context.Background(), cfg, logger.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load area catalog")
	assert.True(t, tracker.closed.Load())
}

func TestRunShutsDownOnCancel(t *testing.T) {
	tracker := trackStore(t)

	cfg := testConfig("http://127.0.0.1:1", "../../internal/jma/testdata/area.json")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	require.NoError(t, run(ctx, cfg, logger.Discard()))
	assert.True(t, tracker.closed.Load())
}
