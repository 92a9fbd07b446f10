package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func scrape(t *testing.T, metrics *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	return rr.Body.String()
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/sales/{saleID}")

	req := httptest.NewRequest(http.MethodGet, "/sales/abc", nil)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}

	body := scrape(t, metrics)
	if !strings.Contains(body, `fabricdesk_http_requests_total{code="418",route="/sales/{saleID}"} 1`) {
		t.Fatalf("expected metrics to record request, got: %s", body)
	}
	if !strings.Contains(body, `fabricdesk_http_request_duration_seconds_bucket{route="/sales/{saleID}"`) {
		t.Fatalf("expected duration histogram to be present, got: %s", body)
	}
}

func TestMetricsRecordsSaleOutcomes(t *testing.T) {
	metrics := NewMetrics()

	metrics.CommitFinished("success")
	metrics.CommitFinished("failure")
	metrics.CommitFinished("failure")
	metrics.AdjustmentFinished("applied")
	metrics.LookupFailed("colors")

	body := scrape(t, metrics)
	for _, want := range []string{
		`fabricdesk_sale_commits_total{outcome="success"} 1`,
		`fabricdesk_sale_commits_total{outcome="failure"} 2`,
		`fabricdesk_sale_adjustments_total{result="applied"} 1`,
		`fabricdesk_lookup_failures_total{lookup="colors"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in metrics, got: %s", want, body)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	metrics.CommitFinished("success")
	metrics.AdjustmentFinished("applied")
	metrics.LookupFailed("colors")

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}
