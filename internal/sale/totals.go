package sale

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Totals holds the derived aggregates of one line item.
type Totals struct {
	// TotalQuantity sums every numeric quantity entry.
	TotalQuantity decimal.Decimal
	// PieceCount counts non-empty quantity entries; it is the piece count sent to the backend.
	PieceCount int
	// MeasuredPieces counts the entries included in TotalQuantity.
	MeasuredPieces int
	TotalPrice     decimal.Decimal
}

// LineTotals derives the aggregates of a line item. Entries are summed in stored order.
func LineTotals(item LineItem) Totals {
	totals := Totals{TotalQuantity: decimal.Zero}
	for _, raw := range item.Quantities {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		totals.PieceCount++
		qty, ok := parseQuantity(raw)
		if !ok {
			continue
		}
		totals.MeasuredPieces++
		totals.TotalQuantity = totals.TotalQuantity.Add(qty)
	}
	totals.TotalPrice = totals.TotalQuantity.Mul(item.UnitPrice)
	return totals
}

// SessionTotal sums the line totals in line order.
func SessionTotal(s *Session) decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.LineItems {
		total = total.Add(LineTotals(item).TotalPrice)
	}
	return total
}

func parseQuantity(raw string) (decimal.Decimal, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return decimal.Zero, false
	}
	qty, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, false
	}
	return qty, true
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
