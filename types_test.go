package tradestats

import (
	"encoding/json"
	"math"
	"testing"
)

func TestMoney_Format(t *testing.T) {
	tests := []struct {
		m       Money
		format  string
		str     string
		signed  string
	}{
		{INR(1251746.5), "1,251,746.50", "₹1,251,746.50", "+1,251,746.50"},
		{INR(-27662.92), "-27,662.92", "-₹27,662.92", "-27,662.92"},
		{INR(2.675), "2.68", "₹2.68", "+2.68"},
		{INR(-2.675), "-2.68", "-₹2.68", "-2.68"},
		{INR(0.001), "0.00", "₹0.00", "-"},
		{NO(1234.5), "1,234.50", "1,234.50", "+1,234.50"},
		{M(1234.5, "JPY"), "1,235", "¥1,235", "+1,235"},
	}
	for _, tt := range tests {
		if got := tt.m.Format(); got != tt.format {
			t.Errorf("Format(%v) = %q, want %q", tt.m.Decimal(), got, tt.format)
		}
		if got := tt.m.String(); got != tt.str {
			t.Errorf("String(%v) = %q, want %q", tt.m.Decimal(), got, tt.str)
		}
		if got := tt.m.SignedString(); got != tt.signed {
			t.Errorf("SignedString(%v) = %q, want %q", tt.m.Decimal(), got, tt.signed)
		}
	}
}

func TestMoney_CurrencyRules(t *testing.T) {
	if got := NO(1).Add(INR(2)); got.Currency() != "INR" || !got.Equal(INR(3)) {
		t.Errorf("NO + INR = %v %s, want 3 INR", got.Decimal(), got.Currency())
	}
	defer func() {
		if recover() == nil {
			t.Error("adding INR and USD did not panic")
		}
	}()
	INR(1).Add(M(1, "USD"))
}

func TestMoney_JSON(t *testing.T) {
	b, err := json.Marshal(INR(10.005))
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	if want := `{"amount":10.01,"currency":"INR"}`; string(b) != want {
		t.Errorf("Marshal() = %s, want %s", b, want)
	}
	var m Money
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	if !m.Equal(INR(10.01)) {
		t.Errorf("Unmarshal() = %v %s, want 10.01 INR", m.Decimal(), m.Currency())
	}
}

func TestPercent_String(t *testing.T) {
	tests := []struct {
		p      Percent
		want   string
		signed string
	}{
		{72.916666, "72.92%", "+72.92%"},
		{-40, "-40.00%", "-40.00%"},
		{0.004, "0.00%", "-"},
		{1.005, "1.01%", "+1.01%"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("Percent(%v).String() = %q, want %q", float64(tt.p), got, tt.want)
		}
		if got := tt.p.SignedString(); got != tt.signed {
			t.Errorf("Percent(%v).SignedString() = %q, want %q", float64(tt.p), got, tt.signed)
		}
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		r    Ratio
		want string
		json string
	}{
		{"defined", Defined(1.6643), "1.66", "1.6643"},
		{"half away from zero", Defined(2.675), "2.68", "2.675"},
		{"negative", Defined(-0.125), "-0.13", "-0.125"},
		{"undefined", Undefined, "—", "null"},
		{"NaN", Defined(math.NaN()), "—", "null"},
		{"Inf", Defined(math.Inf(1)), "—", "null"},
		{"zero denominator", Quotient(1, 0), "—", "null"},
		{"quotient", Quotient(1, 4), "0.25", "0.25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			b, err := json.Marshal(tt.r)
			if err != nil {
				t.Fatalf("Marshal() failed: %v", err)
			}
			if string(b) != tt.json {
				t.Errorf("Marshal() = %s, want %s", b, tt.json)
			}
			var back Ratio
			if err := json.Unmarshal(b, &back); err != nil {
				t.Fatalf("Unmarshal() failed: %v", err)
			}
			if back != tt.r {
				t.Errorf("Unmarshal() = %v, want %v", back, tt.r)
			}
		})
	}
}

func TestSignRules(t *testing.T) {
	tests := []struct {
		name string
		rule signRule
		c    cell
		want Sign
	}{
		{"by sign positive", bySign, cell{value: 3, defined: true}, Positive},
		{"by sign negative", bySign, cell{value: -3, defined: true}, Negative},
		{"by sign zero", bySign, cell{value: 0, defined: true}, Neutral},
		{"by sign undefined", bySign, cell{}, Neutral},
		{"above threshold", above(1), cell{value: 1.66, defined: true}, Positive},
		{"at threshold", above(1), cell{value: 1, defined: true}, Positive},
		{"below threshold", above(1), cell{value: 0.5, defined: true}, Negative},
		{"above undefined", above(1), cell{}, Neutral},
		{"unless zero", unlessZero(Negative), cell{value: 2, defined: true}, Negative},
		{"unless zero at zero", unlessZero(Negative), cell{value: 0, defined: true}, Neutral},
		{"always", always(Negative), cell{value: 0, defined: true}, Negative},
		{"win rate below half", winRateSign, cell{value: 40, defined: true}, Negative},
		{"win rate above half", winRateSign, cell{value: 72.92, defined: true}, Positive},
		{"win rate without trades", winRateSign, cell{value: 0, defined: true}, Neutral},
	}
	for _, tt := range tests {
		if got := tt.rule(tt.c); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}
