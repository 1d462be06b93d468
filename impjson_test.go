package tradestats

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestImportJSON(t *testing.T) {
	input := `{"data":{"positions":[
	{"tradingsymbol":"NIFTY25JUL24000CE","realised":2500.5},
	{"tradingsymbol":"INFY","realised":"-1,200.00","exit":"2025-03-04"}
]}}`
	paths := JSONPaths{
		Trades: "$.data.positions[*]",
		Symbol: "$.tradingsymbol",
		Date:   "$.exit",
		PnL:    "$.realised",
	}
	entries, err := ImportJSON(strings.NewReader(input), paths, "INR")
	if err != nil {
		t.Fatalf("ImportJSON() returned an unexpected error: %v", err)
	}
	var got []string
	for _, e := range entries {
		got = append(got, e.Symbol+" "+e.Date.String()+" "+e.Amount.Decimal().String())
	}
	want := []string{
		"NIFTY25JUL24000CE 2024-07-25 2500.5",
		"INFY 2025-03-04 -1200",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ImportJSON() mismatch (-want +got):\n%s", diff)
	}
}

func TestImportJSON_Default(t *testing.T) {
	input := `{"trades":[{"symbol":"A","date":"2025-01-02","pnl":10}]}`
	entries, err := ImportJSON(strings.NewReader(input), DefaultJSONPaths(), "")
	if err != nil {
		t.Fatalf("ImportJSON() returned an unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].Command != CmdClose || entries[0].Date != day("2025-01-02") {
		t.Errorf("ImportJSON() = %+v", entries)
	}
}

func TestImportJSON_Undated(t *testing.T) {
	input := `{"trades":[{"symbol":"INFY","pnl":10}]}`
	if _, err := ImportJSON(strings.NewReader(input), DefaultJSONPaths(), ""); err == nil {
		t.Error("ImportJSON() of an undated trade returned no error")
	}
}
