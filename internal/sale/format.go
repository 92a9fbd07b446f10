package sale

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders a monetary amount with two decimals and digit grouping.
// Only the integer part goes through the locale printer; the cents come from
// the decimal itself.
func FormatAmount(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	sign := ""
	if rest, ok := strings.CutPrefix(fixed, "-"); ok {
		sign, fixed = "-", rest
	}
	whole, cents, _ := strings.Cut(fixed, ".")
	n, err := strconv.ParseUint(whole, 10, 64)
	if err != nil {
		return sign + fixed
	}
	return sign + amountPrinter.Sprint(number.Decimal(n)) + "." + cents
}
