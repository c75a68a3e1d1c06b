package payroll

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

// DisplayAmount formats money with digit grouping for documents, e.g. "20,000.00".
// Digits come from the decimal itself, never from a float. The bank file never
// uses it.
func DisplayAmount(d decimal.Decimal, currency string) string {
	rounded := Round(d)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	whole, frac, _ := strings.Cut(rounded.StringFixed(2), ".")
	text := sign + groupDigits(whole) + "." + frac
	if currency == "" {
		return text
	}
	return text + " " + currency
}

// groupDigits inserts thousands separators into a run of digits.
func groupDigits(digits string) string {
	if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
		return amountPrinter.Sprintf("%d", n)
	}
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
