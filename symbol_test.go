package tradestats

import "testing"

func TestInferDateFromSymbol(t *testing.T) {
	tests := []struct {
		symbol string
		want   string
		ok     bool
	}{
		{"ADANIENT25JUL2400PE", "2024-07-25", true},
		{"NIFTY25JUL24000CE", "2024-07-25", true},
		{"banknifty05sep2452000ce", "2024-09-05", true},
		{"NIFTY31FEB2524000CE", "", false}, // no such day
		{"RELIANCE", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := InferDateFromSymbol(tt.symbol)
		if ok != tt.ok {
			t.Errorf("InferDateFromSymbol(%q) ok = %v, want %v", tt.symbol, ok, tt.ok)
			continue
		}
		if ok && got.String() != tt.want {
			t.Errorf("InferDateFromSymbol(%q) = %s, want %s", tt.symbol, got, tt.want)
		}
	}
}
