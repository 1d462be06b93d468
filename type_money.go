package tradestats

import (
	"encoding/json"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money represents a monetary value.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

// M creates a Money from any numeric value.
func M[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromUint64(uint64(v))
	case uint32:
		return decimal.NewFromUint64(uint64(v))
	case uint64:
		return decimal.NewFromUint64(v)
	default:
		panic("unsupported type")
	}
}

// fraction returns the number of minor digits of the currency, 2 when unknown.
func (m Money) fraction() int {
	if c := money.GetCurrency(m.cur); c != nil {
		return c.Fraction
	}
	return 2
}

// formatter returns a go-money formatter printing the bare amount: grouped
// thousands, no currency symbol.
func (m Money) formatter() *money.Formatter {
	decimalSep, thousandSep := ".", ","
	if c := money.GetCurrency(m.cur); c != nil {
		decimalSep, thousandSep = c.Decimal, c.Thousand
	}
	return money.NewFormatter(m.fraction(), decimalSep, thousandSep, "", "1")
}

// minor returns the amount in minor units, rounded half away from zero.
func (m Money) minor() int64 {
	return m.value.Shift(int32(m.fraction())).Round(0).IntPart()
}

// String returns the money formatted with its currency symbol, e.g. "₹1,251,746.50".
func (m Money) String() string {
	c := money.GetCurrency(m.cur)
	if c == nil {
		return m.Format()
	}
	return c.Formatter().Format(m.minor())
}

// Format returns the amount without currency symbol, e.g. "1,251,746.50".
func (m Money) Format() string { return m.formatter().Format(m.minor()) }

// SignedString returns the string representation of the money value with a sign.
// 0 is represented as a "-"
func (m Money) SignedString() string {
	if m.Round().value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.Format()
	}
	return m.Format()
}

// Simple wrappers around decimal.Decimal

func (m Money) Currency() string                { return m.cur }
func (m Money) Decimal() decimal.Decimal        { return m.value }
func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool           { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Abs() Money                      { return Money{value: m.value.Abs(), cur: m.cur} }
func (m Money) Sign() int                       { return m.value.Sign() }

// Round returns the money rounded to the currency's minor unit.
func (m Money) Round() Money {
	return Money{value: m.value.Round(int32(m.fraction())), cur: m.cur}
}

// MulFloat multiplies by a plain factor (a probability, a rate).
func (m Money) MulFloat(f decimal.Decimal) Money { return Money{value: m.value.Mul(f), cur: m.cur} }

// DivInt divides by a count, n must not be zero.
func (m Money) DivInt(n int) Money {
	return Money{value: m.value.Div(decimal.NewFromInt(int64(n))), cur: m.cur}
}

// DivMoney returns the plain ratio m/n, n must not be zero.
func (m Money) DivMoney(n Money) decimal.Decimal { return m.value.Div(n.value) }

// binary operators.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// makes the "" currency totally weak.
func cur(A, B Money) string {
	if A.cur == "" {
		return B.cur
	}
	if B.cur == "" {
		return A.cur
	}
	if A.cur != B.cur {
		panic("currency mismatch" + A.cur + "!=" + B.cur)
	}
	return A.cur
}

// AsFloat returns the value as a float64, only for statistics where exactness is not expected.
func (m Money) AsFloat() float64 { return m.value.InexactFloat64() }

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   decimal.Decimal `json:"amount"`
		Currency string          `json:"currency,omitempty"`
	}{m.Round().value, m.cur})
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var j struct {
		Amount   decimal.Decimal `json:"amount"`
		Currency string          `json:"currency"`
	}
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	*m = Money{value: j.Amount, cur: j.Currency}
	return nil
}
