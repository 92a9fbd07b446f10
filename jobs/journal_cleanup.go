package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/loomhouse/fabricdesk/internal/jobs"
)

// JournalCleaner removes old commit journal entries.
type JournalCleaner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) error
}

// JournalCleanupJob purges journal entries left by sales that never completed.
type JournalCleanupJob struct {
	Journal JournalCleaner
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

func NewJournalCleanupJob(journal JournalCleaner, logger *slog.Logger, metrics *jobmetrics.Metrics) *JournalCleanupJob {
	return &JournalCleanupJob{Journal: journal, Logger: logger, Metrics: metrics}
}

// Handle processes journal cleanup tasks.
func (j *JournalCleanupJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Journal == nil {
		return errors.New("journal cleanup: handler not configured")
	}
	var payload JournalCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	metrics := j.Metrics
	if metrics == nil {
		metrics = defaultJobMetrics
	}
	tracker := metrics.Track(TaskJournalCleanup)
	defer func() {
		err = tracker.End(err)
	}()

	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err := j.Journal.Cleanup(ctx, payload.Retention()); err != nil {
		logger.Error("journal cleanup", slog.Any("error", err))
		return err
	}
	logger.Info("journal cleaned", slog.Duration("retention", payload.Retention()))
	return nil
}
