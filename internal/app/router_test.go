package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomhouse/fabricdesk/internal/observability"
	"github.com/loomhouse/fabricdesk/internal/sale"
)

func TestRouterServesHealthAndMetrics(t *testing.T) {
	metrics := observability.NewMetrics()
	router := NewRouter(RouterParams{
		Config:  &Config{AppEnv: "production", RateLimitPerMinute: 100},
		Metrics: metrics,
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "fabricdesk_http_requests_total"))
}

func TestRouterMountsSales(t *testing.T) {
	service := sale.NewService(sale.ServiceParams{Store: sale.NewMemoryStore(time.Hour)})
	router := NewRouter(RouterParams{SaleHandler: sale.NewHandler(service, nil)})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sales/missing", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
