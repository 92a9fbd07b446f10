package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomhouse/fabricdesk/internal/catalog"
	jobmetrics "github.com/loomhouse/fabricdesk/internal/jobs"
)

type stubWarmer struct {
	calls int
	err   error
}

func (s *stubWarmer) Warm(ctx context.Context) ([]catalog.MasterProduct, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []catalog.MasterProduct{{ID: 1, ProductName: "Cotton"}}, nil
}

type stubCleaner struct {
	olderThan time.Duration
	err       error
}

func (s *stubCleaner) Cleanup(ctx context.Context, olderThan time.Duration) error {
	s.olderThan = olderThan
	return s.err
}

func TestNewCatalogRefreshTask(t *testing.T) {
	task, err := NewCatalogRefreshTask("inventory changed")
	require.NoError(t, err)
	assert.Equal(t, TaskCatalogRefresh, task.Type())

	var payload CatalogRefreshPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "inventory changed", payload.Reason)
}

func TestCatalogRefreshJobWarmsCatalog(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(registry)
	warmer := &stubWarmer{}
	job := NewCatalogRefreshJob(warmer, nil, metrics)
	task, err := NewCatalogRefreshTask("test")
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 1, warmer.calls)

	count, err := testutil.GatherAndCount(registry, "fabricdesk_jobs_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCatalogRefreshJobPropagatesFailure(t *testing.T) {
	job := NewCatalogRefreshJob(&stubWarmer{err: errors.New("backend down")}, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	task, err := NewCatalogRefreshTask("test")
	require.NoError(t, err)

	assert.Error(t, job.Handle(context.Background(), task))
}

func TestCatalogRefreshJobSkipsBadPayload(t *testing.T) {
	job := NewCatalogRefreshJob(&stubWarmer{}, nil, nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskCatalogRefresh, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestJournalCleanupJob(t *testing.T) {
	cleaner := &stubCleaner{}
	job := NewJournalCleanupJob(cleaner, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewJournalCleanupTask(48)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 48*time.Hour, cleaner.olderThan)

	task, err = NewJournalCleanupTask(0)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 24*time.Hour, cleaner.olderThan)
}

func TestHealthWithoutInspector(t *testing.T) {
	router := chi.NewRouter()
	router.Route("/jobs", NewHandler(nil, nil).MountRoutes)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"queue":"default","pending":0,"active":0,"scheduled":0,"retry":0}`, rr.Body.String())
}

func TestHealthReportsIdleForUnusedQueue(t *testing.T) {
	mr := miniredis.RunT(t)
	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	t.Cleanup(func() { _ = inspector.Close() })
	router := chi.NewRouter()
	router.Route("/jobs", NewHandler(inspector, nil).MountRoutes)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"queue":"default","pending":0,"active":0,"scheduled":0,"retry":0}`, rr.Body.String())
}

func TestHealthUnavailableWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	t.Cleanup(func() { _ = inspector.Close() })
	mr.Close()
	router := chi.NewRouter()
	router.Route("/jobs", NewHandler(inspector, nil).MountRoutes)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestNewWorkerRequiresHandlers(t *testing.T) {
	_, err := NewWorker(WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"},
		Handlers:  []TaskHandler{{Type: TaskCatalogRefresh}},
	})
	assert.Error(t, err)
}
