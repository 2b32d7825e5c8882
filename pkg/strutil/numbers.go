package strutil

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var numberPrinter = message.NewPrinter(language.English)

// FormatNumber renders v with thousands grouping and exactly decimals
// fraction digits, e.g. FormatNumber(1234567.891, 2) == "1,234,567.89".
func FormatNumber(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return numberPrinter.Sprint(number.Decimal(Round(v, decimals),
		number.MinFractionDigits(decimals),
		number.MaxFractionDigits(decimals),
	))
}

// Round rounds v to places decimal places, half away from zero.
func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
