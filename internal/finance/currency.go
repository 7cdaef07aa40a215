package finance

import (
	"fmt"
	"math"
	"unicode"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"fintrack/internal/core"
)

var displayLocale = language.AmericanEnglish

// FormatCurrency renders amount with the currency symbol and en-US grouping,
// using between 0 and 2 fraction digits: $1,234.5, €10, -$3.25, CHF 7.
//
// Unknown or malformed codes return core.ErrInvalidCurrency; callers decide
// whether to surface it or fall back to another code.
func FormatCurrency(amount core.Money, code string) (string, error) {
	code, err := core.NormalizeCurrency(code)
	if err != nil {
		return "", fmt.Errorf("format %s: %w", amount, err)
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", fmt.Errorf("format %s: %w", amount, core.ErrInvalidCurrency)
	}

	p := message.NewPrinter(displayLocale)
	symbol := p.Sprint(currency.Symbol(unit))
	if isAlphabetic(symbol) {
		symbol += " "
	}
	digits := p.Sprint(number.Decimal(
		math.Abs(amount.Float64()),
		number.MinFractionDigits(0),
		number.MaxFractionDigits(2),
	))

	sign := ""
	if amount.Cents < 0 {
		sign = "-"
	}
	return sign + symbol + digits, nil
}

// MustFormatCurrency falls back to the ISO code followed by the plain amount
// when the code is not recognised. Intended for display paths that already
// validated the code at the boundary.
func MustFormatCurrency(amount core.Money, code string) string {
	s, err := FormatCurrency(amount, code)
	if err != nil {
		return code + " " + amount.String()
	}
	return s
}

func isAlphabetic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
