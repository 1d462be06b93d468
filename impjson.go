package tradestats

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/tradestats/date"
	"github.com/shopspring/decimal"
)

// JSONPaths locates closed trades in a broker JSON document.
//
// Trades selects the list of trade objects in the document, the other paths
// are evaluated on each trade object.
type JSONPaths struct {
	Trades string `mapstructure:"trades"`
	Symbol string `mapstructure:"symbol"`
	Date   string `mapstructure:"date"`
	PnL    string `mapstructure:"pnl"`
}

// DefaultJSONPaths reads {"trades":[{"symbol":..., "date":..., "pnl":...}]}.
func DefaultJSONPaths() JSONPaths {
	return JSONPaths{Trades: "$.trades[*]", Symbol: "$.symbol", Date: "$.date", PnL: "$.pnl"}
}

// ImportJSON extracts close entries from a broker JSON document. Trades with
// no date use the expiry embedded in their symbol.
func ImportJSON(r io.Reader, paths JSONPaths, currency string) ([]Entry, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var jobj any
	if err := dec.Decode(&jobj); err != nil {
		return nil, fmt.Errorf("cannot decode JSON document: %w", err)
	}

	jval, err := jsonpath.Get(paths.Trades, jobj)
	if err != nil {
		return nil, fmt.Errorf("error evaluating trades path %q: %w", paths.Trades, err)
	}
	jtrades, ok := jval.([]any)
	if !ok {
		jtrades = []any{jval}
	}

	entries := make([]Entry, 0, len(jtrades))
	for i, jtrade := range jtrades {
		symbol, err := jsonString(paths.Symbol, jtrade)
		if err != nil {
			return nil, fmt.Errorf("trade #%d: %w", i+1, err)
		}
		pnl, err := jsonDecimal(paths.PnL, jtrade)
		if err != nil {
			return nil, fmt.Errorf("trade #%d (%s): %w", i+1, symbol, err)
		}
		on, err := jsonDate(paths.Date, symbol, jtrade)
		if err != nil {
			return nil, fmt.Errorf("trade #%d (%s): %w", i+1, symbol, err)
		}
		entries = append(entries, Close(on, symbol, M(pnl, currency)))
	}
	return entries, nil
}

// jsonFirst evaluates path on obj, keeping the first answer of a list.
func jsonFirst(path string, obj any) (any, error) {
	jval, err := jsonpath.Get(path, obj)
	if err != nil {
		return nil, fmt.Errorf("error evaluating %q: %w", path, err)
	}
	// jsonpath returns either a single answer or a list of answers.
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return nil, nil
		}
		jval = jlist[0]
	}
	return jval, nil
}

func jsonString(path string, obj any) (string, error) {
	jval, err := jsonFirst(path, obj)
	if err != nil {
		return "", err
	}
	switch v := jval.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	default:
		return "", fmt.Errorf("%q is not a string: %v", path, jval)
	}
}

func jsonDecimal(path string, obj any) (decimal.Decimal, error) {
	jval, err := jsonFirst(path, obj)
	if err != nil {
		return decimal.Zero, err
	}
	switch v := jval.(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		return parseAmount(v)
	default:
		return decimal.Zero, fmt.Errorf("%q is not a number: %v", path, jval)
	}
}

func jsonDate(path, symbol string, obj any) (date.Date, error) {
	if path != "" {
		// a missing date key is not an error, the symbol may carry the date.
		jval, _ := jsonFirst(path, obj)
		if s, ok := jval.(string); ok && s != "" {
			return date.Parse(s)
		}
	}
	if on, ok := InferDateFromSymbol(symbol); ok {
		return on, nil
	}
	return date.Date{}, fmt.Errorf("no date at %q and no expiry in symbol", path)
}
