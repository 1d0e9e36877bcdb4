// internal/pkg/currency/currency.go
package currency

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 currency code supported by the storefront.
type Currency string

const (
	CHF Currency = "CHF"
	EUR Currency = "EUR"
	USD Currency = "USD"
	GBP Currency = "GBP"
)

// rates holds units of each currency per 1 CHF. CHF is the base currency;
// converting CHF to CHF is the identity function.
var rates = map[Currency]decimal.Decimal{
	CHF: decimal.NewFromInt(1),
	EUR: decimal.RequireFromString("1.04"),
	USD: decimal.RequireFromString("1.12"),
	GBP: decimal.RequireFromString("0.88"),
}

var symbols = map[Currency]string{
	CHF: "CHF",
	EUR: "€",
	USD: "$",
	GBP: "£",
}

// Supported returns all supported currency codes.
func Supported() []Currency {
	return []Currency{CHF, EUR, USD, GBP}
}

// Parse validates a currency code (case-insensitive).
func Parse(code string) (Currency, error) {
	cur := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if _, ok := rates[cur]; !ok {
		return "", fmt.Errorf("unsupported currency: %q", code)
	}
	return cur, nil
}

// Convert converts an integer cent amount between supported currencies using
// the static rate table. Amounts are rounded to the nearest cent.
func Convert(cents int64, from, to Currency) (int64, error) {
	if _, ok := rates[from]; !ok {
		return 0, fmt.Errorf("unsupported currency: %q", from)
	}
	if _, ok := rates[to]; !ok {
		return 0, fmt.Errorf("unsupported currency: %q", to)
	}
	if from == to {
		return cents, nil
	}

	amount := decimal.NewFromInt(cents)
	converted := amount.Div(rates[from]).Mul(rates[to]).Round(0)
	return converted.IntPart(), nil
}

// Format renders an integer cent amount for display, e.g. "CHF 25.00".
func Format(cents int64, cur Currency) string {
	amount := decimal.NewFromInt(cents).Div(decimal.NewFromInt(100))
	symbol, ok := symbols[cur]
	if !ok {
		symbol = string(cur)
	}
	return fmt.Sprintf("%s %s", symbol, amount.StringFixed(2))
}
