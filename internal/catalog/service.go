// Package catalog builds the master product summary used to resolve product names.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/loomhouse/fabricdesk/internal/inventoryapi"
)

// Source loads raw inventory records.
type Source interface {
	Inventory(ctx context.Context) ([]inventoryapi.InventoryRecord, error)
}

// Enqueuer schedules an asynchronous summary rebuild.
type Enqueuer interface {
	EnqueueCatalogRefresh(ctx context.Context) error
}

// Service serves the master product summary through the cache.
type Service struct {
	source Source
	cache  *Cache
	queue  Enqueuer
	logger *slog.Logger
}

// NewService constructs the catalog service. cache and queue may be nil.
func NewService(source Source, cache *Cache, queue Enqueuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, cache: cache, queue: queue, logger: logger}
}

// MasterProducts returns the summary, loading it from the backend on a cache miss.
func (s *Service) MasterProducts(ctx context.Context) ([]MasterProduct, error) {
	key, err := s.cache.BuildKey(ctx, "catalog", "summary")
	if err != nil {
		return nil, fmt.Errorf("catalog: build key: %w", err)
	}
	var products []MasterProduct
	err = s.cache.FetchJSON(ctx, key, &products, func(ctx context.Context) (any, error) {
		records, err := s.source.Inventory(ctx)
		if err != nil {
			return nil, err
		}
		return Summarize(records), nil
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: master products: %w", err)
	}
	return products, nil
}

// Catalog returns an indexed view of the current summary.
func (s *Service) Catalog(ctx context.Context) (Catalog, error) {
	products, err := s.MasterProducts(ctx)
	if err != nil {
		return Catalog{}, err
	}
	return NewCatalog(products), nil
}

// Warm rebuilds the summary from the backend and stores it under the version
// current before loading, so a Refresh racing the load leaves the newer
// version uncached.
func (s *Service) Warm(ctx context.Context) ([]MasterProduct, error) {
	key, err := s.cache.BuildKey(ctx, "catalog", "summary")
	if err != nil {
		return nil, fmt.Errorf("catalog: build key: %w", err)
	}
	records, err := s.source.Inventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: load inventory: %w", err)
	}
	products := Summarize(records)
	if err := s.cache.StoreJSON(ctx, key, products); err != nil {
		return nil, fmt.Errorf("catalog: store summary: %w", err)
	}
	return products, nil
}

// Refresh invalidates the cached summary after inventory changed and schedules a rebuild.
func (s *Service) Refresh(ctx context.Context) error {
	if err := s.cache.Bump(ctx); err != nil {
		return fmt.Errorf("catalog: bump cache: %w", err)
	}
	if s.queue == nil {
		return nil
	}
	if err := s.queue.EnqueueCatalogRefresh(ctx); err != nil {
		s.logger.Warn("enqueue catalog refresh", slog.Any("error", err))
	}
	return nil
}
