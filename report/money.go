// Package report renders ledger aggregates and journal summaries as CSV and
// XLSX downloads.
package report

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/stockmitra/stockmitra/internal/shared"
)

// Formatter renders money and dates for export rows. Amounts carry the
// configured currency symbol and grouped thousands with two decimals.
type Formatter struct {
	symbol  string
	printer *message.Printer
}

// NewFormatter builds a Formatter with the given currency symbol.
func NewFormatter(symbol string) *Formatter {
	return &Formatter{
		symbol:  symbol,
		printer: message.NewPrinter(language.English),
	}
}

// Money renders an amount like ₹1,234.50.
func (f *Formatter) Money(d decimal.Decimal) string {
	return f.symbol + f.group(d.StringFixed(2))
}

// Percent renders a percentage with two decimals.
func (f *Formatter) Percent(d decimal.Decimal) string {
	return f.group(d.StringFixed(2)) + "%"
}

// group inserts locale thousands separators into a fixed-point decimal
// string. The amount is formatted from the decimal directly rather than
// through a float so large values keep their exact digits.
func (f *Formatter) group(s string) string {
	intPart, frac, _ := strings.Cut(s, ".")
	sign := ""
	if strings.HasPrefix(intPart, "-") {
		sign, intPart = "-", intPart[1:]
	}
	n, err := strconv.ParseUint(intPart, 10, 64)
	if err != nil {
		return s
	}
	return sign + f.printer.Sprintf("%d", n) + "." + frac
}

// Date renders a date, empty when absent.
func (f *Formatter) Date(d shared.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}
