package sale

import (
	"context"

	"github.com/loomhouse/fabricdesk/internal/inventoryapi"
)

// APIBackend adapts the inventory REST client to the sale ports.
type APIBackend struct {
	client *inventoryapi.Client
}

func NewAPIBackend(client *inventoryapi.Client) *APIBackend {
	return &APIBackend{client: client}
}

func (b *APIBackend) AdjustSale(ctx context.Context, adj StockAdjustment) error {
	return b.client.AdjustSale(ctx, inventoryapi.SaleAdjustment{
		ProductID:     adj.ProductID,
		Color:         adj.Color,
		SaleYards:     adj.SaleQuantity.InexactFloat64(),
		SalePieces:    adj.SalePieceCount,
		InvoiceNumber: adj.InvoiceNumber,
	})
}

// CreateInvoice sends the invoice with prices rounded to cents.
func (b *APIBackend) CreateInvoice(ctx context.Context, header InvoiceHeader, entries []InvoiceEntry) error {
	req := inventoryapi.InvoiceRequest{
		InvoiceHeader: inventoryapi.InvoiceHeader{
			InvoiceNumber: header.InvoiceNumber,
			CustomerID:    header.CustomerID,
			CustomerName:  header.CustomerName,
			TotalPrice:    header.TotalPrice.Round(2).InexactFloat64(),
		},
		InvoiceEntries: make([]inventoryapi.InvoiceEntry, 0, len(entries)),
	}
	for _, e := range entries {
		req.InvoiceEntries = append(req.InvoiceEntries, inventoryapi.InvoiceEntry{
			Color:             e.Color,
			ProductName:       e.ProductName,
			PieceAvailable:    e.PieceCount,
			Quantity:          e.TotalQuantity.InexactFloat64(),
			TotalProductPrice: e.TotalProductPrice.Round(2).InexactFloat64(),
			UnitPrice:         e.UnitPrice.InexactFloat64(),
		})
	}
	return b.client.CreateInvoice(ctx, req)
}

func (b *APIBackend) Colors(ctx context.Context, productID int64) ([]string, error) {
	return b.client.Colors(ctx, productID)
}

func (b *APIBackend) Categories(ctx context.Context, productID int64, color string) ([]string, error) {
	return b.client.Categories(ctx, productID, color)
}

func (b *APIBackend) Customers(ctx context.Context) ([]Customer, error) {
	rows, err := b.client.Customers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Customer, 0, len(rows))
	for _, row := range rows {
		out = append(out, Customer{ID: row.CustomerID, Name: row.Name})
	}
	return out, nil
}
