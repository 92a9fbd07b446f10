package sale

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/loomhouse/fabricdesk/internal/catalog"
)

// Customer is a selectable buyer.
type Customer struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ReviewLine is the frozen, display-ready form of a line item.
type ReviewLine struct {
	// Key is the LineItem key the line was frozen from.
	Key           uint64          `json:"key"`
	ProductID     int64           `json:"productId"`
	ProductName   string          `json:"productName"`
	Color         string          `json:"color"`
	Quantities    []string        `json:"quantities"`
	TotalQuantity decimal.Decimal `json:"totalQuantity"`
	PieceCount    int             `json:"pieceCount"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
}

// Breakdown renders the quantity entries, e.g. "10 + 15 = 25".
// A single entry renders as itself.
func (l ReviewLine) Breakdown() string {
	if len(l.Quantities) == 1 {
		return l.Quantities[0]
	}
	return strings.Join(l.Quantities, " + ") + " = " + l.TotalQuantity.String()
}

// Review is the immutable snapshot the operator confirms.
type Review struct {
	InvoiceNumber string          `json:"invoiceNumber"`
	CustomerID    int64           `json:"customerId"`
	CustomerName  string          `json:"customerName"`
	Lines         []ReviewLine    `json:"lines"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
	FrozenAt      time.Time       `json:"frozenAt"`
}

// Freeze snapshots a validated session. Unknown products and customers
// resolve to empty names.
func Freeze(s *Session, products catalog.Catalog, customers []Customer, now time.Time) *Review {
	review := &Review{
		InvoiceNumber: strings.TrimSpace(s.InvoiceNumber),
		CustomerID:    s.CustomerID,
		Lines:         make([]ReviewLine, 0, len(s.LineItems)),
		GrandTotal:    decimal.Zero,
		FrozenAt:      now,
	}
	for _, c := range customers {
		if c.ID == s.CustomerID {
			review.CustomerName = c.Name
			break
		}
	}
	for _, item := range s.LineItems {
		totals := LineTotals(item)
		name, _ := products.ProductName(item.ProductID)
		review.Lines = append(review.Lines, ReviewLine{
			Key:           item.Key,
			ProductID:     item.ProductID,
			ProductName:   name,
			Color:         item.Color,
			Quantities:    nonEmpty(item.Quantities),
			TotalQuantity: totals.TotalQuantity,
			PieceCount:    totals.PieceCount,
			UnitPrice:     item.UnitPrice,
			TotalPrice:    totals.TotalPrice,
		})
		review.GrandTotal = review.GrandTotal.Add(totals.TotalPrice)
	}
	return review
}

// StockAdjustment decrements stock for one committed line.
type StockAdjustment struct {
	LineKey        uint64
	ProductID      int64
	Color          string
	SaleQuantity   decimal.Decimal
	SalePieceCount int
	InvoiceNumber  string
}

// InvoiceHeader is the header of the invoice created on commit.
type InvoiceHeader struct {
	InvoiceNumber string
	CustomerID    int64
	CustomerName  string
	TotalPrice    decimal.Decimal
}

// InvoiceEntry is one product line of the invoice created on commit.
type InvoiceEntry struct {
	ProductName       string
	Color             string
	PieceCount        int
	TotalQuantity     decimal.Decimal
	UnitPrice         decimal.Decimal
	TotalProductPrice decimal.Decimal
}

// Adjustments returns one stock adjustment per line, in line order.
func (r *Review) Adjustments() []StockAdjustment {
	out := make([]StockAdjustment, 0, len(r.Lines))
	for _, line := range r.Lines {
		out = append(out, StockAdjustment{
			LineKey:        line.Key,
			ProductID:      line.ProductID,
			Color:          line.Color,
			SaleQuantity:   line.TotalQuantity,
			SalePieceCount: line.PieceCount,
			InvoiceNumber:  r.InvoiceNumber,
		})
	}
	return out
}

func (r *Review) Header() InvoiceHeader {
	return InvoiceHeader{
		InvoiceNumber: r.InvoiceNumber,
		CustomerID:    r.CustomerID,
		CustomerName:  r.CustomerName,
		TotalPrice:    r.GrandTotal,
	}
}

func (r *Review) Entries() []InvoiceEntry {
	out := make([]InvoiceEntry, 0, len(r.Lines))
	for _, line := range r.Lines {
		out = append(out, InvoiceEntry{
			ProductName:       line.ProductName,
			Color:             line.Color,
			PieceCount:        line.PieceCount,
			TotalQuantity:     line.TotalQuantity,
			UnitPrice:         line.UnitPrice,
			TotalProductPrice: line.TotalPrice,
		})
	}
	return out
}
