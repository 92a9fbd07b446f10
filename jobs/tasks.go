package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCatalogRefresh rebuilds the cached master product summary.
	TaskCatalogRefresh = "catalog:refresh"
	// TaskJournalCleanup purges commit journal entries of abandoned sales.
	TaskJournalCleanup = "sale:journal_cleanup"
)

// CatalogRefreshPayload describes why the catalog is rebuilt.
type CatalogRefreshPayload struct {
	Reason string `json:"reason"`
}

// NewCatalogRefreshTask constructs a catalog refresh task.
func NewCatalogRefreshTask(reason string) (*asynq.Task, error) {
	data, err := json.Marshal(CatalogRefreshPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCatalogRefresh, data), nil
}

// JournalCleanupPayload bounds the age of retained journal entries.
type JournalCleanupPayload struct {
	RetentionHours int `json:"retention_hours"`
}

// Retention returns the retention window, defaulting to one day.
func (p JournalCleanupPayload) Retention() time.Duration {
	if p.RetentionHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(p.RetentionHours) * time.Hour
}

// NewJournalCleanupTask constructs a journal cleanup task.
func NewJournalCleanupTask(retentionHours int) (*asynq.Task, error) {
	data, err := json.Marshal(JournalCleanupPayload{RetentionHours: retentionHours})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskJournalCleanup, data), nil
}
