// Package money holds exact monetary arithmetic helpers and the locale-aware
// formatter used when amounts are rendered for a client.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Places is the number of minor-unit digits amounts are rounded to for display
const Places = 2

// Parse reads a decimal amount such as "29.90" and rejects negatives
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid amount %q: must not be negative", s)
	}
	return d, nil
}

// MustParse is Parse for fixtures and constants; it panics on bad input
func MustParse(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// LineTotal returns unitPrice × quantity
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Formatter renders amounts in a locale's currency, e.g. "R$ 1.234,50" for pt-BR
type Formatter struct {
	tag     language.Tag
	unit    currency.Unit
	printer *message.Printer
}

// NewFormatter builds a formatter for a BCP-47 locale such as "pt-BR" or "en-US".
// The currency is derived from the locale's region.
func NewFormatter(locale string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}

	unit, conf := currency.FromTag(tag)
	if conf == language.No {
		return nil, fmt.Errorf("no currency known for locale %q", locale)
	}

	return &Formatter{
		tag:     tag,
		unit:    unit,
		printer: message.NewPrinter(tag),
	}, nil
}

// Currency returns the ISO 4217 code of the formatter's currency
func (f *Formatter) Currency() string {
	return f.unit.String()
}

// Locale returns the formatter's language tag
func (f *Formatter) Locale() string {
	return f.tag.String()
}

// Format rounds d half away from zero to two places and renders it with the
// locale's currency symbol, grouping and decimal separators.
func (f *Formatter) Format(d decimal.Decimal) string {
	rounded := d.Round(Places)
	symbol := f.printer.Sprint(currency.Symbol(f.unit))
	amount := f.printer.Sprint(number.Decimal(rounded.Abs().InexactFloat64(), number.Scale(Places)))

	if rounded.IsNegative() {
		return "-" + symbol + " " + amount
	}
	return symbol + " " + amount
}
