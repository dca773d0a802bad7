// Package currency converts monetary amounts between the currencies the
// business trades in, using a static rate table relative to USD. Rates are
// display-time multipliers, not live quotes.
package currency

import (
	"math"
	"strconv"
	"strings"
)

// Code is an ISO-4217 currency code.
type Code string

const (
	USD Code = "USD"
	AED Code = "AED"
	EUR Code = "EUR"
)

// rates maps a currency to units per USD.
var rates = map[Code]float64{
	USD: 1,
	AED: 3.67,
	EUR: 0.92,
}

// Rate returns the units-per-USD multiplier for a code. Unknown codes fall
// back to USD.
func Rate(c Code) float64 {
	if r, ok := rates[normalize(c)]; ok {
		return r
	}
	return rates[USD]
}

// Rates returns a copy of the full rate table.
func Rates() map[Code]float64 {
	out := make(map[Code]float64, len(rates))
	for c, r := range rates {
		out[c] = r
	}
	return out
}

// Convert converts amount from one currency to another. Non-finite inputs
// convert to 0.
func Convert(amount float64, from, to Code) float64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0
	}
	return amount / Rate(from) * Rate(to)
}

// ParseAmount parses a decimal string, returning 0 for anything non-numeric.
func ParseAmount(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func normalize(c Code) Code {
	return Code(strings.ToUpper(strings.TrimSpace(string(c))))
}
