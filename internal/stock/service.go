// Package stock serves the inventory, product, customer and invoice screens of the console.
package stock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/loomhouse/fabricdesk/internal/catalog"
	"github.com/loomhouse/fabricdesk/internal/inventoryapi"
)

// Operations accepted by UpdateCondition.
const (
	OperationProcure = "Procure"
	OperationHold    = "Hold"
	OperationRelease = "Release"
)

var (
	// ErrNotFound indicates the backend has no such record.
	ErrNotFound = errors.New("stock: not found")
	// ErrRejected indicates the backend refused the request as invalid.
	ErrRejected = errors.New("stock: rejected by backend")
	// ErrUnavailable indicates the backend failed or could not be reached.
	ErrUnavailable = errors.New("stock: backend unavailable")
	// ErrInvalidOperation indicates an unknown condition operation.
	ErrInvalidOperation = errors.New("stock: invalid operation")
)

// Backend is the subset of the inventory API used by the console screens.
type Backend interface {
	Inventory(ctx context.Context) ([]inventoryapi.InventoryRecord, error)
	AddInventory(ctx context.Context, item inventoryapi.NewInventory) error
	UpdateCondition(ctx context.Context, id int64, operation string, update inventoryapi.ConditionUpdate) error
	DeleteInventory(ctx context.Context, id int64) error
	MasterProductNames(ctx context.Context) ([]inventoryapi.Product, error)
	AddProduct(ctx context.Context, name string) error
	Customers(ctx context.Context) ([]inventoryapi.Customer, error)
	InvoiceHeaders(ctx context.Context) ([]inventoryapi.InvoiceHeader, error)
	InvoiceEntries(ctx context.Context, invoiceNumber string) ([]inventoryapi.InvoiceEntryRecord, error)
}

// Catalog provides the master product summary and its invalidation.
type Catalog interface {
	MasterProducts(ctx context.Context) ([]catalog.MasterProduct, error)
	Refresh(ctx context.Context) error
}

// Service implements the stock screens on top of the backend.
type Service struct {
	backend Backend
	catalog Catalog
	logger  *slog.Logger
}

// NewService constructs the stock service.
func NewService(backend Backend, catalog Catalog, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{backend: backend, catalog: catalog, logger: logger}
}

// Inventory lists inventory records. A non-empty filter keeps records whose
// product name contains it, ignoring case.
func (s *Service) Inventory(ctx context.Context, filter string) ([]inventoryapi.InventoryRecord, error) {
	records, err := s.backend.Inventory(ctx)
	if err != nil {
		return nil, upstream(err)
	}
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		return records, nil
	}
	out := make([]inventoryapi.InventoryRecord, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Product.ProductName), filter) {
			out = append(out, r)
		}
	}
	return out, nil
}

// AddInventory stores a new record and invalidates the product summary.
func (s *Service) AddInventory(ctx context.Context, item inventoryapi.NewInventory) error {
	if err := s.backend.AddInventory(ctx, item); err != nil {
		return upstream(err)
	}
	s.refresh(ctx)
	return nil
}

// UpdateCondition applies a Procure, Hold or Release operation to a record.
func (s *Service) UpdateCondition(ctx context.Context, id int64, operation string, update inventoryapi.ConditionUpdate) error {
	switch operation {
	case OperationProcure, OperationHold, OperationRelease:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOperation, operation)
	}
	if err := s.backend.UpdateCondition(ctx, id, operation, update); err != nil {
		return upstream(err)
	}
	s.refresh(ctx)
	return nil
}

// DeleteInventory removes a record.
func (s *Service) DeleteInventory(ctx context.Context, id int64) error {
	if err := s.backend.DeleteInventory(ctx, id); err != nil {
		return upstream(err)
	}
	s.refresh(ctx)
	return nil
}

// MasterProducts returns the per-product yard and piece totals.
func (s *Service) MasterProducts(ctx context.Context) ([]catalog.MasterProduct, error) {
	products, err := s.catalog.MasterProducts(ctx)
	if err != nil {
		return nil, upstream(err)
	}
	return products, nil
}

// MasterProductNames lists registered product names.
func (s *Service) MasterProductNames(ctx context.Context) ([]inventoryapi.Product, error) {
	products, err := s.backend.MasterProductNames(ctx)
	if err != nil {
		return nil, upstream(err)
	}
	return products, nil
}

// AddProduct registers a product name.
func (s *Service) AddProduct(ctx context.Context, name string) error {
	if err := s.backend.AddProduct(ctx, strings.TrimSpace(name)); err != nil {
		return upstream(err)
	}
	s.refresh(ctx)
	return nil
}

func (s *Service) Customers(ctx context.Context) ([]inventoryapi.Customer, error) {
	customers, err := s.backend.Customers(ctx)
	if err != nil {
		return nil, upstream(err)
	}
	return customers, nil
}

func (s *Service) InvoiceHeaders(ctx context.Context) ([]inventoryapi.InvoiceHeader, error) {
	headers, err := s.backend.InvoiceHeaders(ctx)
	if err != nil {
		return nil, upstream(err)
	}
	return headers, nil
}

func (s *Service) InvoiceEntries(ctx context.Context, invoiceNumber string) ([]inventoryapi.InvoiceEntryRecord, error) {
	entries, err := s.backend.InvoiceEntries(ctx, invoiceNumber)
	if err != nil {
		return nil, upstream(err)
	}
	return entries, nil
}

func (s *Service) refresh(ctx context.Context) {
	if s.catalog == nil {
		return
	}
	if err := s.catalog.Refresh(ctx); err != nil {
		s.logger.Warn("catalog refresh", slog.Any("error", err))
	}
}

// upstream classifies a backend failure.
func upstream(err error) error {
	var status *inventoryapi.StatusError
	if errors.As(err, &status) {
		switch {
		case status.Status == http.StatusNotFound:
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		case status.Status >= 400 && status.Status < 500:
			return fmt.Errorf("%w: %w", ErrRejected, err)
		}
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
