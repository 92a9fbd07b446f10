package sale

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionHasOneBlankLine(t *testing.T) {
	s := NewSession()

	require.Len(t, s.LineItems, 1)
	line := s.LineItems[0]
	assert.Equal(t, 1, line.PieceCount)
	assert.Equal(t, []string{""}, line.Quantities)
	assert.True(t, line.UnitPrice.IsZero())
	assert.Zero(t, line.ProductID)
}

func TestAddAndRemoveLineItems(t *testing.T) {
	s := NewSession()
	assert.Equal(t, 1, s.AddLineItem())
	assert.Equal(t, 2, s.AddLineItem())
	_, _, err := s.SetProduct(1, 8)
	require.NoError(t, err)

	require.NoError(t, s.RemoveLineItem(0))
	require.Len(t, s.LineItems, 2)
	assert.Equal(t, int64(8), s.LineItems[0].ProductID)

	require.NoError(t, s.RemoveLineItem(1))
	require.NoError(t, s.RemoveLineItem(0))
	assert.Empty(t, s.LineItems)

	assert.ErrorIs(t, s.RemoveLineItem(0), ErrLineNotFound)
}

func TestLineKeysStayUniqueAfterRemoval(t *testing.T) {
	s := NewSession()
	s.AddLineItem()
	require.NoError(t, s.RemoveLineItem(1))
	s.AddLineItem()

	assert.NotEqual(t, s.LineItems[0].Key, s.LineItems[1].Key)
}

func TestSetProductClearsColorAndBumpsToken(t *testing.T) {
	s := NewSession()
	_, first, err := s.SetProduct(0, 7)
	require.NoError(t, err)
	require.NoError(t, s.SetColor(0, "Red"))
	s.LineItems[0].ColorOptions = []string{"Red"}

	_, second, err := s.SetProduct(0, 8)
	require.NoError(t, err)

	assert.Greater(t, second, first)
	assert.Equal(t, "", s.LineItems[0].Color)
	assert.Nil(t, s.LineItems[0].ColorOptions)
}

func TestApplyColorOptionsRejectsStaleToken(t *testing.T) {
	s := NewSession()
	key, stale, err := s.SetProduct(0, 7)
	require.NoError(t, err)
	_, current, err := s.SetProduct(0, 8)
	require.NoError(t, err)

	assert.False(t, s.ApplyColorOptions(key, stale, []string{"Red"}))
	assert.Nil(t, s.LineItems[0].ColorOptions)

	assert.True(t, s.ApplyColorOptions(key, current, []string{"Black"}))
	assert.Equal(t, []string{"Black"}, s.LineItems[0].ColorOptions)
}

func TestColorAndQuantityRequireProduct(t *testing.T) {
	s := NewSession()

	assert.ErrorIs(t, s.SetColor(0, "Red"), ErrProductRequired)
	assert.ErrorIs(t, s.SetQuantity(0, 0, "10"), ErrProductRequired)
}

func TestSetPieceCountResizesQuantities(t *testing.T) {
	s := NewSession()
	_, _, err := s.SetProduct(0, 7)
	require.NoError(t, err)
	require.NoError(t, s.SetPieceCount(0, 3))
	require.NoError(t, s.SetQuantity(0, 0, "10"))
	require.NoError(t, s.SetQuantity(0, 1, "20"))
	require.NoError(t, s.SetQuantity(0, 2, "30"))

	require.NoError(t, s.SetPieceCount(0, 2))
	assert.Equal(t, []string{"10", "20"}, s.LineItems[0].Quantities)

	require.NoError(t, s.SetPieceCount(0, 3))
	assert.Equal(t, []string{"10", "20", ""}, s.LineItems[0].Quantities)
	assert.Equal(t, 3, s.LineItems[0].PieceCount)

	totals := LineTotals(s.LineItems[0])
	assert.True(t, totals.TotalQuantity.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, 2, totals.PieceCount)
}

func TestSetPieceCountTable(t *testing.T) {
	tests := []struct {
		name  string
		start []string
		n     int
		want  []string
	}{
		{name: "grow from one", start: []string{"20"}, n: 3, want: []string{"20", "", ""}},
		{name: "shrink keeps prefix", start: []string{"10", "20", "30"}, n: 1, want: []string{"10"}},
		{name: "same size", start: []string{"10", "abc"}, n: 2, want: []string{"10", "abc"}},
		{name: "zero clamps", start: []string{"7", "8"}, n: 0, want: []string{"7"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession()
			s.LineItems[0].Quantities = append([]string(nil), tt.start...)
			s.LineItems[0].PieceCount = len(tt.start)

			require.NoError(t, s.SetPieceCount(0, tt.n))

			assert.Equal(t, tt.want, s.LineItems[0].Quantities)
			assert.Equal(t, len(tt.want), s.LineItems[0].PieceCount)
		})
	}
}

func TestSetPieceCountClampsToOne(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.SetPieceCount(0, 0))
	assert.Equal(t, 1, s.LineItems[0].PieceCount)
	assert.Len(t, s.LineItems[0].Quantities, 1)

	require.NoError(t, s.SetPieceCount(0, -4))
	assert.Len(t, s.LineItems[0].Quantities, 1)
}

func TestSetQuantityOutOfRange(t *testing.T) {
	s := NewSession()
	_, _, err := s.SetProduct(0, 7)
	require.NoError(t, err)

	assert.ErrorIs(t, s.SetQuantity(0, 1, "5"), ErrPieceNotFound)
	assert.ErrorIs(t, s.SetQuantity(2, 0, "5"), ErrLineNotFound)
}

func TestSetUnitPrice(t *testing.T) {
	s := NewSession()

	require.NoError(t, s.SetUnitPrice(0, "12.50"))
	assert.True(t, s.LineItems[0].UnitPrice.Equal(decimal.RequireFromString("12.5")))

	require.NoError(t, s.SetUnitPrice(0, " "))
	assert.True(t, s.LineItems[0].UnitPrice.IsZero())

	assert.ErrorIs(t, s.SetUnitPrice(0, "abc"), ErrInvalidPrice)
	assert.ErrorIs(t, s.SetUnitPrice(0, "-1"), ErrInvalidPrice)
}
