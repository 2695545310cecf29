// Package currency renders money amounts for display.
package currency

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders amounts in one currency and locale, e.g. ₹1,234.50.
type Formatter struct {
	printer *message.Printer
	symbol  string
	scale   int
}

// New builds a formatter for an ISO 4217 code and a BCP 47 locale.
func New(code, locale string) (*Formatter, error) {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return nil, fmt.Errorf("invalid currency %q: %w", code, err)
	}
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}

	p := message.NewPrinter(tag)
	scale, _ := currency.Standard.Rounding(unit)

	return &Formatter{
		printer: p,
		symbol:  p.Sprint(currency.NarrowSymbol(unit)),
		scale:   scale,
	}, nil
}

// MustNew is New for package-level defaults; it panics on bad input.
func MustNew(code, locale string) *Formatter {
	f, err := New(code, locale)
	if err != nil {
		panic(err)
	}
	return f
}

// INR is the storefront default.
var INR = MustNew("INR", "en-IN")

// Format renders amount with the currency symbol, locale grouping and the
// currency's standard number of fraction digits.
func (f *Formatter) Format(amount decimal.Decimal) string {
	rounded := amount.Round(int32(f.scale))
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	num := f.printer.Sprint(number.Decimal(
		rounded.InexactFloat64(),
		number.MinFractionDigits(f.scale),
		number.MaxFractionDigits(f.scale),
	))
	return sign + f.symbol + num
}

// Symbol returns the display symbol, e.g. "₹".
func (f *Formatter) Symbol() string {
	return f.symbol
}
