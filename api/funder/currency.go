package funder

import (
	"strings"

	"github.com/shopspring/decimal"
)

var currencyCleaner = strings.NewReplacer(
	"$", "",
	",", "",
	"(", "-",
	")", "",
	`"`, "",
)

// CurrencyToFloat converts a funder's textual money representation into a
// signed value: "$1,234.56" -> 1234.56, "(50.00)" -> -50.00.
func CurrencyToFloat(value string) (float64, error) {
	cleaned := strings.TrimSpace(currencyCleaner.Replace(value))
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}

// CurrencyToFloatOrZero is the lenient variant used where an empty or
// unreadable cell means zero rather than a malformed file.
func CurrencyToFloatOrZero(value string) float64 {
	cleaned := strings.TrimSpace(currencyCleaner.Replace(value))
	if cleaned == "" {
		return 0
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}
