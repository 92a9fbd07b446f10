package app

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("INVENTORY_API_URL", "http://localhost:8080/api")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.AppAddr)
	assert.Equal(t, "http://localhost:8080/api", cfg.InventoryAPIURL)
	assert.Equal(t, 1500*time.Millisecond, cfg.SaleCloseDelay)
	assert.Equal(t, 60*time.Second, cfg.SaleCommitTimeout)
	assert.Equal(t, 2*time.Hour, cfg.SaleSessionTTL)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRejectsRelativeAPIURL(t *testing.T) {
	t.Setenv("INVENTORY_API_URL", "/api")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRequiresRequestTimeoutAboveCommitTimeout(t *testing.T) {
	t.Setenv("INVENTORY_API_URL", "http://backend/api")
	t.Setenv("APP_REQUEST_TIMEOUT", "30s")
	t.Setenv("SALE_COMMIT_TIMEOUT", "45s")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "must exceed commit timeout")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel(" WARN "))
	assert.Equal(t, slog.LevelInfo, parseLevel("chatty"))
}
