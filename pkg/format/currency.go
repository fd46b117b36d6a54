// Package format renders money and ratios for display in one locale.
package format

import (
	"fmt"

	"github.com/iwvelando/lead-intake/pkg/constants"
	"github.com/iwvelando/lead-intake/pkg/mathutil"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders amounts in one currency using the grouping, decimal
// separator and currency symbol of one language.
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
}

// NewFormatter binds a language and a currency.
func NewFormatter(tag language.Tag, unit currency.Unit) *Formatter {
	return &Formatter{
		printer: message.NewPrinter(tag),
		unit:    unit,
	}
}

// ParseFormatter builds a Formatter from a BCP 47 locale such as "en-US"
// and an ISO 4217 code such as "USD".
func ParseFormatter(locale, code string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("invalid currency %q: %w", code, err)
	}
	return NewFormatter(tag, unit), nil
}

var defaultFormatter = NewFormatter(language.AmericanEnglish, currency.USD)

// Default returns the en-US, USD formatter.
func Default() *Formatter {
	return defaultFormatter
}

// Currency returns the amount with the locale's currency symbol, grouping
// and the currency's standard decimals (e.g., "$ 1,234.56" for en-US).
func (f *Formatter) Currency(amount float64) string {
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(amount)))
}

// Percent renders a ratio as a percentage with at most two decimals
// (e.g., 0.47 -> "47%", 0.435 -> "43.5%").
func (f *Formatter) Percent(ratio float64) string {
	value := mathutil.Round(ratio * constants.PercentageMultiplier)
	return f.printer.Sprint(number.Decimal(value, number.MaxFractionDigits(2))) + "%"
}
