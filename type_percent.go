package tradestats

import (
	"math"

	"github.com/shopspring/decimal"
)

// Percent is a value expressed in percent: 72.92 means 72.92%.
type Percent float64

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	return math.Abs(float64(p-q)) < precision
}

// String returns the percent with 2 decimals, e.g. "72.92%".
func (p Percent) String() string { return fixed(float64(p), 2) + "%" }

// SignedString returns the percent with an explicit sign, 0 is represented as "-".
func (p Percent) SignedString() string {
	s := fixed(float64(p), 2)
	switch {
	case s == "0.00":
		return "-"
	case p > 0:
		return "+" + s + "%"
	default:
		return s + "%"
	}
}

// fixed formats v with exactly places decimals.
//
// Rounding is half away from zero, applied on the shortest decimal
// representation of v, so that 2.675 renders as 2.68.
func fixed(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return undefinedText
	}
	return decimal.NewFromFloat(v).Round(places).StringFixed(places)
}
