package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
)

// catalogRefreshWindow collapses bursts of inventory changes into one rebuild.
const catalogRefreshWindow = 30 * time.Second

// Client submits tasks to the queue.
type Client struct {
	client *asynq.Client
}

func NewClient(redisOpts asynq.RedisClientOpt) (*Client, error) {
	return &Client{client: asynq.NewClient(redisOpts)}, nil
}

// EnqueueCatalogRefresh schedules a catalog rebuild. A rebuild already queued
// within the refresh window satisfies the request.
func (c *Client) EnqueueCatalogRefresh(ctx context.Context) error {
	task, err := NewCatalogRefreshTask("inventory changed")
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueDefault),
		asynq.Unique(catalogRefreshWindow),
		asynq.MaxRetry(3),
	)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
}

func (c *Client) Close() error {
	return c.client.Close()
}
