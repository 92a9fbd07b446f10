// Package sale implements the sale workflow of the console: collecting line
// items, deriving totals, validating, reviewing a frozen snapshot and
// committing it to the inventory backend.
package sale

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/loomhouse/fabricdesk/internal/catalog"
)

// CatalogSource resolves product names from the master product summary.
type CatalogSource interface {
	Catalog(ctx context.Context) (catalog.Catalog, error)
}

// Lookups serves the option lists of the sale form.
type Lookups interface {
	Colors(ctx context.Context, productID int64) ([]string, error)
	Categories(ctx context.Context, productID int64, color string) ([]string, error)
	Customers(ctx context.Context) ([]Customer, error)
}

// ServiceParams collects the dependencies of Service.
type ServiceParams struct {
	Store      Store
	Dispatcher *Dispatcher
	Catalog    CatalogSource
	Lookups    Lookups
	// OnCommit runs after a successful commit, typically to refresh inventory views.
	OnCommit      func(ctx context.Context) error
	Recorder      Recorder
	Logger        *slog.Logger
	CloseDelay    time.Duration
	CommitTimeout time.Duration
	Clock         func() time.Time
	NewID         func() string
}

// Service drives sale workflows.
type Service struct {
	store         Store
	dispatcher    *Dispatcher
	catalog       CatalogSource
	lookups       Lookups
	onCommit      func(ctx context.Context) error
	recorder      Recorder
	logger        *slog.Logger
	closeDelay    time.Duration
	commitTimeout time.Duration
	clock         func() time.Time
	newID         func() string
	group         singleflight.Group
}

// NewService constructs the sale service.
func NewService(p ServiceParams) *Service {
	s := &Service{
		store:         p.Store,
		dispatcher:    p.Dispatcher,
		catalog:       p.Catalog,
		lookups:       p.Lookups,
		onCommit:      p.OnCommit,
		recorder:      p.Recorder,
		logger:        p.Logger,
		closeDelay:    p.CloseDelay,
		commitTimeout: p.CommitTimeout,
		clock:         p.Clock,
		newID:         p.NewID,
	}
	if s.recorder == nil {
		s.recorder = nopRecorder{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.closeDelay <= 0 {
		s.closeDelay = 1500 * time.Millisecond
	}
	if s.commitTimeout <= 0 {
		s.commitTimeout = time.Minute
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// ============================================================================
// LIFECYCLE
// ============================================================================

// Open starts a sale with one blank line item.
func (s *Service) Open(ctx context.Context) (*View, error) {
	w := NewWorkflow(s.newID(), s.clock())
	if err := s.store.Create(ctx, w); err != nil {
		return nil, err
	}
	s.logger.Info("sale opened", slog.String("sale_id", w.ID))
	return newView(w), nil
}

// Get returns the current state of a sale.
func (s *Service) Get(ctx context.Context, id string) (*View, error) {
	w, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return newView(w), nil
}

// Cancel discards a sale. Requests already sent to the backend are not aborted.
func (s *Service) Cancel(ctx context.Context, id string) error {
	if _, err := s.store.Load(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("sale cancelled", slog.String("sale_id", id))
	return nil
}

// ============================================================================
// COLLECTION
// ============================================================================

func (s *Service) mutate(ctx context.Context, id string, fn func(*Session) error) (*View, error) {
	w, err := s.store.Update(ctx, id, func(w *Workflow) error {
		if err := w.Editable(); err != nil {
			return err
		}
		return fn(w.Session)
	})
	if err != nil {
		return nil, err
	}
	return newView(w), nil
}

func (s *Service) SetInvoiceNumber(ctx context.Context, id, value string) (*View, error) {
	return s.mutate(ctx, id, func(sess *Session) error {
		sess.SetInvoiceNumber(value)
		return nil
	})
}

func (s *Service) SetCustomer(ctx context.Context, id string, customerID int64) (*View, error) {
	return s.mutate(ctx, id, func(sess *Session) error {
		sess.SetCustomer(customerID)
		return nil
	})
}

func (s *Service) AddLineItem(ctx context.Context, id string) (*View, error) {
	return s.mutate(ctx, id, func(sess *Session) error {
		sess.AddLineItem()
		return nil
	})
}

func (s *Service) RemoveLineItem(ctx context.Context, id string, line int) (*View, error) {
	return s.mutate(ctx, id, func(sess *Session) error {
		return sess.RemoveLineItem(line)
	})
}

func (s *Service) SetColor(ctx context.Context, id string, line int, color string) (*View, error) {
	return s.mutate(ctx, id, func(sess *Session) error {
		return sess.SetColor(line, color)
	})
}

func (s *Service) SetPieceCount(ctx context.Context, id string, line, pieces int) (*View, error) {
	return s.mutate(ctx, id, func(sess *Session) error {
		return sess.SetPieceCount(line, pieces)
	})
}

func (s *Service) SetQuantity(ctx context.Context, id string, line, piece int, value string) (*View, error) {
	return s.mutate(ctx, id, func(sess *Session) error {
		return sess.SetQuantity(line, piece, value)
	})
}

func (s *Service) SetUnitPrice(ctx context.Context, id string, line int, value string) (*View, error) {
	return s.mutate(ctx, id, func(sess *Session) error {
		return sess.SetUnitPrice(line, value)
	})
}

// SetProduct selects the product of a line and loads its color options.
// A lookup that finishes after the line changed product again is discarded.
// A failed lookup leaves the options empty.
func (s *Service) SetProduct(ctx context.Context, id string, line int, productID int64) (*View, error) {
	var (
		key, token uint64
		cached     bool
	)
	w, err := s.store.Update(ctx, id, func(w *Workflow) error {
		if err := w.Editable(); err != nil {
			return err
		}
		var err error
		key, token, err = w.Session.SetProduct(line, productID)
		if err != nil {
			return err
		}
		var colors []string
		if colors, cached = w.Options.colors(productID); cached {
			w.Session.ApplyColorOptions(key, token, colors)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if cached {
		return newView(w), nil
	}

	colors, lookupErr := s.colors(ctx, productID)
	if lookupErr != nil {
		s.lookupFailed("colors", lookupErr, slog.String("sale_id", id), slog.Int64("product_id", productID))
		colors = []string{}
	}
	w, err = s.store.Update(ctx, id, func(w *Workflow) error {
		if lookupErr == nil {
			w.Options.putColors(productID, colors)
		}
		if !w.Session.ApplyColorOptions(key, token, colors) {
			s.logger.Debug("discard stale color options", slog.String("sale_id", id), slog.Int64("product_id", productID))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newView(w), nil
}

// Categories returns the categories stocked for the product and color of a line.
// A line without color yields an empty list.
func (s *Service) Categories(ctx context.Context, id string, line int) ([]string, error) {
	w, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	item, err := w.Session.line(line)
	if err != nil {
		return nil, err
	}
	if item.ProductID == 0 {
		return nil, ErrProductRequired
	}
	if item.Color == "" {
		return []string{}, nil
	}
	if categories, ok := w.Options.categories(item.ProductID, item.Color); ok {
		return categories, nil
	}

	productID, color := item.ProductID, item.Color
	categories, err := s.categories(ctx, productID, color)
	if err != nil {
		s.lookupFailed("categories", err, slog.String("sale_id", id), slog.Int64("product_id", productID))
		return []string{}, nil
	}
	_, err = s.store.Update(ctx, id, func(w *Workflow) error {
		w.Options.putCategories(productID, color, categories)
		return nil
	})
	if err != nil {
		s.logger.Warn("cache categories", slog.String("sale_id", id), slog.Any("error", err))
	}
	return categories, nil
}

// ============================================================================
// REVIEW AND COMMIT
// ============================================================================

// Review validates the sale and freezes it for confirmation. Product and
// customer names that cannot be resolved are left empty.
func (s *Service) Review(ctx context.Context, id string) (*View, error) {
	current, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := current.Editable(); err != nil {
		return nil, err
	}
	if err := Validate(current.Session); err != nil {
		return nil, err
	}

	products, err := s.catalog.Catalog(ctx)
	if err != nil {
		s.lookupFailed("catalog", err, slog.String("sale_id", id))
		products = catalog.Catalog{}
	}
	customers, err := s.customers(ctx)
	if err != nil {
		s.lookupFailed("customers", err, slog.String("sale_id", id))
		customers = nil
	}

	w, err := s.store.Update(ctx, id, func(w *Workflow) error {
		return w.EnterReview(products, customers, s.clock())
	})
	if err != nil {
		return nil, err
	}
	return newView(w), nil
}

// Back leaves review and returns to collection with the data intact.
func (s *Service) Back(ctx context.Context, id string) (*View, error) {
	w, err := s.store.Update(ctx, id, func(w *Workflow) error {
		return w.Back(s.clock())
	})
	if err != nil {
		return nil, err
	}
	return newView(w), nil
}

// Confirm commits the reviewed sale. The commit runs to completion even when
// the caller goes away. On failure the sale returns to review and the error
// wraps ErrCommitFailed. On success the sale closes after the close delay.
func (s *Service) Confirm(ctx context.Context, id string) (*View, error) {
	var review *Review
	started, err := s.store.Update(ctx, id, func(w *Workflow) error {
		var err error
		review, err = w.BeginCommit(s.clock(), s.commitTimeout)
		return err
	})
	if err != nil {
		return nil, err
	}

	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.commitTimeout)
	defer cancel()

	logger := s.logger.With(
		slog.String("sale_id", id),
		slog.String("invoice_number", review.InvoiceNumber),
		slog.Int("attempt", started.Attempts),
	)
	commitErr := s.dispatcher.Commit(commitCtx, id, review)

	finished, err := s.store.Update(commitCtx, id, func(w *Workflow) error {
		w.FinishCommit(commitErr)
		return nil
	})
	if err != nil {
		logger.Warn("record commit outcome", slog.Any("error", err))
		started.FinishCommit(commitErr)
		finished = started
	}

	if commitErr != nil {
		s.recorder.CommitFinished("failure")
		logger.Error("sale commit failed", slog.Any("error", commitErr))
		return newView(finished), fmt.Errorf("%w: %w", ErrCommitFailed, commitErr)
	}

	s.recorder.CommitFinished("success")
	logger.Info("sale committed",
		slog.Int("lines", len(review.Lines)),
		slog.String("total_price", review.GrandTotal.StringFixed(2)),
	)
	if s.onCommit != nil {
		if err := s.onCommit(commitCtx); err != nil {
			logger.Warn("refresh after commit", slog.Any("error", err))
		}
	}
	if err := s.store.Expire(commitCtx, id, s.closeDelay); err != nil && !errors.Is(err, ErrNotFound) {
		logger.Warn("schedule sale close", slog.Any("error", err))
	}
	return newView(finished), nil
}

// ============================================================================
// LOOKUPS
// ============================================================================

func (s *Service) colors(ctx context.Context, productID int64) ([]string, error) {
	v, err := s.shared(ctx, "colors:"+strconv.FormatInt(productID, 10), func(ctx context.Context) (any, error) {
		return s.lookups.Colors(ctx, productID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

func (s *Service) categories(ctx context.Context, productID int64, color string) ([]string, error) {
	v, err := s.shared(ctx, "categories:"+categoryKey(productID, color), func(ctx context.Context) (any, error) {
		return s.lookups.Categories(ctx, productID, color)
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

func (s *Service) customers(ctx context.Context) ([]Customer, error) {
	v, err := s.shared(ctx, "customers", func(ctx context.Context) (any, error) {
		return s.lookups.Customers(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Customer), nil
}

// shared collapses concurrent identical lookups into one backend request.
func (s *Service) shared(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	ch := s.group.DoChan(key, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

func (s *Service) lookupFailed(lookup string, err error, attrs ...any) {
	s.recorder.LookupFailed(lookup)
	s.logger.Warn("lookup failed", append([]any{slog.String("lookup", lookup), slog.Any("error", err)}, attrs...)...)
}
