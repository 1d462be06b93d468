package tradestats

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"

	"github.com/etnz/tradestats/date"
	"github.com/shopspring/decimal"
)

// this file imports broker P&L statements exported as CSV.
//
// A statement starts with a free form summary (title with the statement
// period, total charges, other credits and debits) followed by a table of
// positions whose header contains at least Symbol, Quantity, Buy Value and
// Sell Value.

const (
	headerSearchRows  = 60 // rows searched for the positions header
	headerFallbackRow = 5  // header row used when none is found
)

var (
	headerKeywords = []string{"Symbol", "Quantity", "Buy Value", "Sell Value"}
	periodPattern  = regexp.MustCompile(`(?i)from\s+(\d{4}-\d{2}-\d{2})\s+to\s+(\d{4}-\d{2}-\d{2})`)
	nonNumeric     = regexp.MustCompile(`[^\d.\-]`)

	// charge labels that are breakdown lines of the total charges.
	chargeBreakdown = []string{"Account", "Exchange", "Clearing", "GST", "Transaction", "Turnover", "Stamp", "IPFT"}
)

// Column names of the positions table.
const (
	colSymbol        = "Symbol"
	colRealizedPnL   = "Realized P&L"
	colOpenQuantity  = "Open Quantity"
	colUnrealizedPnL = "Unrealized P&L"
)

// dateColumns are the names accepted for an explicit trade date column.
var dateColumns = []string{"Date", "Trade Date", "Exit Date", "Close Date"}

// Statement is the content of a broker P&L statement.
type Statement struct {
	Period             date.Range
	TotalCharges       decimal.Decimal
	OtherCreditsDebits decimal.Decimal
	Closed             []Entry // one close entry per row with a non-zero realized P&L
	Open               []Entry // one open entry per row with a non-zero open quantity
}

// Entries returns the statement as ledger entries: the statement period,
// charges and other credits/debits dated at the end of the period, and
// the positions.
func (s *Statement) Entries(currency string) []Entry {
	var entries []Entry
	end := s.Period.To
	if end.IsZero() {
		for _, e := range s.Closed {
			if e.Date.After(end) {
				end = e.Date
			}
		}
	}
	if !s.Period.From.IsZero() && !s.Period.To.IsZero() {
		entries = append(entries, Period(s.Period.From, s.Period.To))
	}
	if !s.TotalCharges.IsZero() {
		entries = append(entries, Charge(end, "total charges", M(s.TotalCharges, currency)))
	}
	if !s.OtherCreditsDebits.IsZero() {
		entries = append(entries, Adjust(end, "other credits and debits", M(s.OtherCreditsDebits, currency)))
	}
	entries = append(entries, s.Closed...)
	entries = append(entries, s.Open...)
	return entries
}

// ImportCSV reads a broker P&L statement in CSV format.
//
// Trade dates come from a date column when there is one, otherwise from the
// expiry embedded in the symbol, otherwise from the statement end date.
// Amounts are in currency.
func ImportCSV(r io.Reader, currency string) (*Statement, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot read CSV statement: %w", err)
	}

	s := &Statement{}
	header := detectHeaderRow(rows)
	if header >= len(rows) {
		return nil, errors.New("statement has no positions table")
	}
	s.Period = statementPeriod(rows[:header])
	s.TotalCharges, s.OtherCreditsDebits = summaryFigures(rows[:header])

	columns := make(map[string]int)
	for i, name := range rows[header] {
		name = strings.Join(strings.Fields(name), " ")
		if _, exists := columns[name]; !exists && name != "" {
			columns[name] = i
		}
	}
	if _, ok := columns[colSymbol]; !ok {
		return nil, fmt.Errorf("positions table on row %d has no %q column", header+1, colSymbol)
	}
	dateCol := -1
	for _, name := range dateColumns {
		if i, ok := columns[name]; ok {
			dateCol = i
			break
		}
	}

	cellAt := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	for n, row := range rows[header+1:] {
		line := header + n + 2
		symbol := cellAt(row, colSymbol)
		if symbol == "" {
			continue
		}
		realized, err := parseAmount(cellAt(row, colRealizedPnL))
		if err != nil {
			return nil, fmt.Errorf("row %d: %s: %w", line, colRealizedPnL, err)
		}
		openQty, err := parseAmount(cellAt(row, colOpenQuantity))
		if err != nil {
			return nil, fmt.Errorf("row %d: %s: %w", line, colOpenQuantity, err)
		}
		unrealized, err := parseAmount(cellAt(row, colUnrealizedPnL))
		if err != nil {
			return nil, fmt.Errorf("row %d: %s: %w", line, colUnrealizedPnL, err)
		}
		if realized.IsZero() && openQty.IsZero() {
			continue
		}

		on, err := tradeDate(row, dateCol, symbol, s.Period.To)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if !realized.IsZero() {
			s.Closed = append(s.Closed, Close(on, symbol, M(realized, currency)))
		}
		if !openQty.IsZero() {
			s.Open = append(s.Open, Open(on, symbol, M(unrealized, currency)))
		}
	}
	return s, nil
}

// detectHeaderRow returns the index of the positions header.
func detectHeaderRow(rows [][]string) int {
	for i := range min(headerSearchRows, len(rows)) {
		values := make([]string, 0, len(rows[i]))
		for _, v := range rows[i] {
			values = append(values, strings.TrimSpace(v))
		}
		found := true
		for _, k := range headerKeywords {
			if !slices.Contains(values, k) {
				found = false
				break
			}
		}
		if found {
			return i
		}
	}
	return headerFallbackRow
}

// statementPeriod looks for a "from YYYY-MM-DD to YYYY-MM-DD" title.
func statementPeriod(rows [][]string) date.Range {
	for _, row := range rows {
		match := periodPattern.FindStringSubmatch(strings.Join(row, " "))
		if match == nil {
			continue
		}
		r, err := date.ParseRange(match[1], match[2])
		if err == nil {
			return r
		}
	}
	return date.Range{}
}

// summaryFigures extracts the total charges and the other credits and
// debits from label/value pairs of the summary section.
func summaryFigures(rows [][]string) (charges, credits decimal.Decimal) {
	for _, row := range rows {
		label, value, ok := labelValue(row)
		if !ok {
			continue
		}
		compact := strings.ToLower(strings.Join(strings.Fields(label), ""))
		switch {
		case strings.Contains(compact, "othercredit"):
			credits = value
		case strings.Contains(label, "Charges") && !containsAny(label, chargeBreakdown):
			charges = value
		}
	}
	return charges, credits
}

// labelValue returns the first non-empty cell of row and the number in the
// next non-empty cell.
func labelValue(row []string) (string, decimal.Decimal, bool) {
	label := ""
	for _, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		if label == "" {
			label = cell
			continue
		}
		v, err := parseAmount(cell)
		return label, v, err == nil
	}
	return "", decimal.Zero, false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// parseAmount parses a number cell, dropping thousands separators and
// currency signs. An empty cell is zero.
func parseAmount(cell string) (decimal.Decimal, error) {
	cleaned := nonNumeric.ReplaceAllString(cell, "")
	if cleaned == "" || cleaned == "-" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", cell, err)
	}
	return v, nil
}

func tradeDate(row []string, dateCol int, symbol string, fallback date.Date) (date.Date, error) {
	if dateCol >= 0 && dateCol < len(row) && strings.TrimSpace(row[dateCol]) != "" {
		on, err := date.Parse(strings.TrimSpace(row[dateCol]))
		if err != nil {
			return date.Date{}, fmt.Errorf("invalid trade date: %w", err)
		}
		return on, nil
	}
	if on, ok := InferDateFromSymbol(symbol); ok {
		return on, nil
	}
	if !fallback.IsZero() {
		return fallback, nil
	}
	return date.Date{}, fmt.Errorf("cannot date %s: no date column, no expiry in symbol and no statement period", symbol)
}
