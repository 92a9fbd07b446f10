package sale

import (
	"strings"

	"github.com/shopspring/decimal"
)

// LineItem is one product/color entry of an in-progress sale.
type LineItem struct {
	// Key identifies the line across removals of earlier lines.
	Key        uint64          `json:"key"`
	ProductID  int64           `json:"productId"`
	Color      string          `json:"color"`
	PieceCount int             `json:"pieceCount"`
	Quantities []string        `json:"quantities"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	// EditToken increases on every product change; color lookups carry it.
	EditToken    uint64   `json:"editToken"`
	ColorOptions []string `json:"colorOptions"`
}

// Session is the in-progress sale.
type Session struct {
	InvoiceNumber string     `json:"invoiceNumber"`
	CustomerID    int64      `json:"customerId"`
	LineItems     []LineItem `json:"lineItems"`
	NextKey       uint64     `json:"nextKey"`
}

// NewSession returns a session holding one blank line item.
func NewSession() *Session {
	s := &Session{}
	s.AddLineItem()
	return s
}

// SetInvoiceNumber stores the operator supplied invoice number.
func (s *Session) SetInvoiceNumber(value string) {
	s.InvoiceNumber = value
}

// SetCustomer stores the customer reference.
func (s *Session) SetCustomer(id int64) {
	s.CustomerID = id
}

// AddLineItem appends a blank line item and returns its index.
func (s *Session) AddLineItem() int {
	s.NextKey++
	s.LineItems = append(s.LineItems, LineItem{
		Key:        s.NextKey,
		PieceCount: 1,
		Quantities: []string{""},
		UnitPrice:  decimal.Zero,
	})
	return len(s.LineItems) - 1
}

// RemoveLineItem removes the line at index. Removing the last line is allowed.
func (s *Session) RemoveLineItem(index int) error {
	if _, err := s.line(index); err != nil {
		return err
	}
	s.LineItems = append(s.LineItems[:index], s.LineItems[index+1:]...)
	return nil
}

// SetProduct selects the product of a line, clearing its color and color options.
// It returns the line key and the new edit token a color lookup must present.
func (s *Session) SetProduct(index int, productID int64) (key, token uint64, err error) {
	line, err := s.line(index)
	if err != nil {
		return 0, 0, err
	}
	line.ProductID = productID
	line.Color = ""
	line.ColorOptions = nil
	line.EditToken++
	return line.Key, line.EditToken, nil
}

// ApplyColorOptions sets the color options of the line identified by key
// when token still matches its edit token. It reports whether they were applied.
func (s *Session) ApplyColorOptions(key, token uint64, colors []string) bool {
	for i := range s.LineItems {
		line := &s.LineItems[i]
		if line.Key != key {
			continue
		}
		if line.EditToken != token {
			return false
		}
		line.ColorOptions = append([]string{}, colors...)
		return true
	}
	return false
}

// SetColor selects the color variant of a line.
func (s *Session) SetColor(index int, color string) error {
	line, err := s.line(index)
	if err != nil {
		return err
	}
	if line.ProductID == 0 {
		return ErrProductRequired
	}
	line.Color = color
	return nil
}

// SetPieceCount resizes the quantity slots of a line to n, clamped to at least 1.
// Growing appends empty slots; shrinking drops values from the end.
func (s *Session) SetPieceCount(index, n int) error {
	line, err := s.line(index)
	if err != nil {
		return err
	}
	if n < 1 {
		n = 1
	}
	resized := make([]string, n)
	copy(resized, line.Quantities)
	line.Quantities = resized
	line.PieceCount = n
	return nil
}

// SetQuantity stores the raw text of one quantity slot.
func (s *Session) SetQuantity(index, piece int, value string) error {
	line, err := s.line(index)
	if err != nil {
		return err
	}
	if line.ProductID == 0 {
		return ErrProductRequired
	}
	if piece < 0 || piece >= len(line.Quantities) {
		return ErrPieceNotFound
	}
	line.Quantities[piece] = value
	return nil
}

// SetUnitPrice parses and stores the unit price of a line. Blank text means zero.
func (s *Session) SetUnitPrice(index int, value string) error {
	line, err := s.line(index)
	if err != nil {
		return err
	}
	raw := strings.TrimSpace(value)
	if raw == "" {
		line.UnitPrice = decimal.Zero
		return nil
	}
	price, err := decimal.NewFromString(raw)
	if err != nil || price.IsNegative() {
		return ErrInvalidPrice
	}
	line.UnitPrice = price
	return nil
}

func (s *Session) line(index int) (*LineItem, error) {
	if index < 0 || index >= len(s.LineItems) {
		return nil, ErrLineNotFound
	}
	return &s.LineItems[index], nil
}
