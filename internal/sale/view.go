package sale

import (
	"github.com/shopspring/decimal"
)

// SuccessMessage is shown once a sale has been committed.
const SuccessMessage = "Sale successfully processed"

// LineView is a line item with its live totals.
type LineView struct {
	Index             int             `json:"index"`
	ProductID         int64           `json:"productId"`
	Color             string          `json:"color"`
	ColorOptions      []string        `json:"colorOptions"`
	PieceCount        int             `json:"pieceCount"`
	Quantities        []string        `json:"quantities"`
	UnitPrice         decimal.Decimal `json:"unitPrice"`
	TotalQuantity     decimal.Decimal `json:"totalQuantity"`
	TotalPrice        decimal.Decimal `json:"totalPrice"`
	TotalPriceDisplay string          `json:"totalPriceDisplay"`
}

// ReviewLineView is a frozen line with its rendered breakdown.
type ReviewLineView struct {
	ReviewLine
	Breakdown         string `json:"breakdown"`
	TotalPriceDisplay string `json:"totalPriceDisplay"`
}

// ReviewView is the confirmation summary.
type ReviewView struct {
	InvoiceNumber     string           `json:"invoiceNumber"`
	CustomerID        int64            `json:"customerId"`
	CustomerName      string           `json:"customerName"`
	Lines             []ReviewLineView `json:"lines"`
	GrandTotal        decimal.Decimal  `json:"grandTotal"`
	GrandTotalDisplay string           `json:"grandTotalDisplay"`
}

// View is the state of a sale as presented to the operator.
type View struct {
	ID                string          `json:"id"`
	Stage             Stage           `json:"stage"`
	InvoiceNumber     string          `json:"invoiceNumber"`
	CustomerID        int64           `json:"customerId"`
	Lines             []LineView      `json:"lines"`
	GrandTotal        decimal.Decimal `json:"grandTotal"`
	GrandTotalDisplay string          `json:"grandTotalDisplay"`
	Review            *ReviewView     `json:"review,omitempty"`
	Message           string          `json:"message,omitempty"`
}

func newView(w *Workflow) *View {
	s := w.Session
	view := &View{
		ID:            w.ID,
		Stage:         w.Stage,
		InvoiceNumber: s.InvoiceNumber,
		CustomerID:    s.CustomerID,
		Lines:         make([]LineView, 0, len(s.LineItems)),
		GrandTotal:    SessionTotal(s),
	}
	view.GrandTotalDisplay = FormatAmount(view.GrandTotal)
	for i, item := range s.LineItems {
		totals := LineTotals(item)
		colors := item.ColorOptions
		if colors == nil {
			colors = []string{}
		}
		view.Lines = append(view.Lines, LineView{
			Index:             i,
			ProductID:         item.ProductID,
			Color:             item.Color,
			ColorOptions:      colors,
			PieceCount:        item.PieceCount,
			Quantities:        item.Quantities,
			UnitPrice:         item.UnitPrice,
			TotalQuantity:     totals.TotalQuantity,
			TotalPrice:        totals.TotalPrice,
			TotalPriceDisplay: FormatAmount(totals.TotalPrice),
		})
	}
	if w.Review != nil {
		view.Review = newReviewView(w.Review)
	}
	if w.Stage == StageCommitted {
		view.Message = SuccessMessage
	}
	return view
}

func newReviewView(r *Review) *ReviewView {
	out := &ReviewView{
		InvoiceNumber:     r.InvoiceNumber,
		CustomerID:        r.CustomerID,
		CustomerName:      r.CustomerName,
		Lines:             make([]ReviewLineView, 0, len(r.Lines)),
		GrandTotal:        r.GrandTotal,
		GrandTotalDisplay: FormatAmount(r.GrandTotal),
	}
	for _, line := range r.Lines {
		out.Lines = append(out.Lines, ReviewLineView{
			ReviewLine:        line,
			Breakdown:         line.Breakdown(),
			TotalPriceDisplay: FormatAmount(line.TotalPrice),
		})
	}
	return out
}
