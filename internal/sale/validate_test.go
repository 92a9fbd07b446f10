package sale

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSession() *Session {
	return &Session{
		InvoiceNumber: "INV-1",
		CustomerID:    3,
		LineItems:     []LineItem{lineWith("5", "10", "15")},
	}
}

func validationFields(t *testing.T, err error) []Field {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	return verr.Fields
}

func TestValidateAcceptsCompleteSession(t *testing.T) {
	assert.NoError(t, Validate(validSession()))
}

func TestValidateReportsMissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Session)
		want   []Field
	}{
		{name: "no lines", mutate: func(s *Session) { s.LineItems = nil }, want: []Field{FieldLineItems}},
		{name: "no product", mutate: func(s *Session) { s.LineItems[0].ProductID = 0 }, want: []Field{FieldProduct}},
		{name: "no color", mutate: func(s *Session) { s.LineItems[0].Color = "" }, want: []Field{FieldColor}},
		{name: "empty quantity", mutate: func(s *Session) { s.LineItems[0].Quantities[1] = "" }, want: []Field{FieldQuantity}},
		{name: "blank quantity", mutate: func(s *Session) { s.LineItems[0].Quantities[1] = "  " }, want: []Field{FieldQuantity}},
		{name: "non numeric quantity", mutate: func(s *Session) { s.LineItems[0].Quantities[0] = "ten" }, want: []Field{FieldQuantity}},
		{name: "negative quantity", mutate: func(s *Session) { s.LineItems[0].Quantities[0] = "-3" }, want: []Field{FieldQuantity}},
		{name: "blank invoice", mutate: func(s *Session) { s.InvoiceNumber = "   " }, want: []Field{FieldInvoiceNumber}},
		{name: "no customer", mutate: func(s *Session) { s.CustomerID = 0 }, want: []Field{FieldCustomer}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSession()
			tt.mutate(s)
			err := Validate(s)
			require.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tt.want, validationFields(t, err))
		})
	}
}

func TestValidateListsEveryFailingCategoryInOrder(t *testing.T) {
	s := validSession()
	s.InvoiceNumber = ""
	s.CustomerID = 0
	s.LineItems = append(s.LineItems, LineItem{ProductID: 0, Quantities: []string{""}})

	fields := validationFields(t, Validate(s))

	assert.Equal(t, []Field{FieldProduct, FieldColor, FieldQuantity, FieldInvoiceNumber, FieldCustomer}, fields)
}

func TestValidateMissingColorAndInvoice(t *testing.T) {
	s := validSession()
	s.LineItems[0].Color = ""
	s.InvoiceNumber = ""

	err := Validate(s)
	fields := validationFields(t, err)

	assert.Equal(t, []Field{FieldColor, FieldInvoiceNumber}, fields)
	assert.Contains(t, err.Error(), "color, invoice_number")
}

func TestValidateAllowsZeroQuantity(t *testing.T) {
	s := validSession()
	s.LineItems[0].Quantities = []string{"0"}

	assert.NoError(t, Validate(s))
}
