package tradestats

import (
	"encoding/json"
	"math"
)

// undefinedText is how an undefined value is displayed.
const undefinedText = "—"

// Ratio is an optional number: either a finite value or Undefined.
//
// Ratios with a zero denominator are Undefined instead of carrying NaN or
// ±Inf into the read model.
type Ratio struct {
	value   float64
	defined bool
}

// Undefined is the Ratio of a mathematically undefined quantity.
var Undefined = Ratio{}

// Defined returns a defined Ratio, or Undefined if v is not finite.
func Defined(v float64) Ratio {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined
	}
	return Ratio{value: v, defined: true}
}

// Quotient returns num/den, Undefined when den is zero.
func Quotient(num, den float64) Ratio {
	if den == 0 {
		return Undefined
	}
	return Defined(num / den)
}

// IsDefined reports whether r holds a value.
func (r Ratio) IsDefined() bool { return r.defined }

// Value returns the value and whether it is defined.
func (r Ratio) Value() (float64, bool) { return r.value, r.defined }

// Or returns the value, or def when r is Undefined.
func (r Ratio) Or(def float64) float64 {
	if !r.defined {
		return def
	}
	return r.value
}

// Sign returns -1, 0, +1 for a defined value, 0 otherwise.
func (r Ratio) Sign() int {
	switch {
	case !r.defined || r.value == 0:
		return 0
	case r.value > 0:
		return 1
	default:
		return -1
	}
}

// Format formats the value with places decimals, "—" when undefined.
func (r Ratio) Format(places int32) string {
	if !r.defined {
		return undefinedText
	}
	return fixed(r.value, places)
}

func (r Ratio) String() string { return r.Format(2) }

// MarshalJSON encodes an Undefined ratio as null.
func (r Ratio) MarshalJSON() ([]byte, error) {
	if !r.defined {
		return []byte("null"), nil
	}
	return json.Marshal(r.value)
}

func (r *Ratio) UnmarshalJSON(b []byte) error {
	var v *float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v == nil {
		*r = Undefined
		return nil
	}
	*r = Defined(*v)
	return nil
}
