package sale

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "125", want: "125.00"},
		{in: "1250.5", want: "1,250.50"},
		{in: "0", want: "0.00"},
		{in: "10.125", want: "10.13"},
		{in: "-1234.5", want: "-1,234.50"},
		{in: "12345678901234567.89", want: "12,345,678,901,234,567.89"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(decimal.RequireFromString(tt.in)))
		})
	}
}
