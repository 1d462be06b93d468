package tradestats

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/etnz/tradestats/date"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// baseCmd holds the fields common to every ledger line.
type baseCmd struct {
	Command CommandType `json:"command"`
	Date    date.Date   `json:"date"`
	Memo    string      `json:"memo,omitempty"`
}

// amountCmd reads an amount spread over two fields.
type amountCmd struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func (a amountCmd) Money() Money { return M(a.Amount, a.Currency) }

// pnlCmd reads the P&L of a position.
type pnlCmd struct {
	Symbol   string          `json:"symbol"`
	PnL      decimal.Decimal `json:"pnl"`
	Currency string          `json:"currency"`
}

func (p pnlCmd) Money() Money { return M(p.PnL, p.Currency) }

// DecodeLedger decodes entries from a stream of JSONL data, validates them,
// and returns a sorted Ledger.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	ledger := NewLedger()
	scanner := bufio.NewScanner(r)

	line := 0
	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue
		}
		e, err := decodeEntry(lineBytes)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := ledger.Append(e); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}
	return ledger, nil
}

func decodeEntry(lineBytes []byte) (Entry, error) {
	var base baseCmd
	if err := json.Unmarshal(lineBytes, &base); err != nil {
		return Entry{}, fmt.Errorf("could not identify command in %q: %w", string(lineBytes), err)
	}
	e := Entry{Command: base.Command, Date: base.Date, Memo: base.Memo}

	switch base.Command {
	case CmdClose, CmdOpen:
		var temp pnlCmd
		if err := json.Unmarshal(lineBytes, &temp); err != nil {
			return Entry{}, err
		}
		e.Symbol, e.Amount = temp.Symbol, temp.Money()
	case CmdCapital, CmdCharge, CmdAdjust, CmdValuation:
		var temp amountCmd
		if err := json.Unmarshal(lineBytes, &temp); err != nil {
			return Entry{}, err
		}
		e.Amount = temp.Money()
	case CmdPeriod:
		var temp struct {
			Until date.Date `json:"until"`
		}
		if err := json.Unmarshal(lineBytes, &temp); err != nil {
			return Entry{}, err
		}
		e.Until = temp.Until
	default:
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownCommand, base.Command)
	}
	return e, nil
}

// MarshalJSON writes the entry in its ledger form with a stable key order.
func (e Entry) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("command", e.Command)
	w.Append("date", e.Date)
	switch e.Command {
	case CmdClose, CmdOpen:
		w.Append("symbol", e.Symbol)
		w.Append("pnl", e.Amount.Decimal())
		w.Optional("currency", e.Amount.Currency())
	case CmdPeriod:
		w.Append("until", e.Until)
	default:
		w.Append("amount", e.Amount.Decimal())
		w.Optional("currency", e.Amount.Currency())
	}
	w.Optional("memo", e.Memo)
	return w.MarshalJSON()
}

// EncodeEntry writes a single entry followed by a newline, in JSONL format.
func EncodeEntry(w io.Writer, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal %s entry: %w", e.Command, err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}
	return nil
}

// EncodeLedger writes the ledger entries in chronological order in JSONL
// format. Entries of the same day keep their relative order.
func EncodeLedger(w io.Writer, ledger *Ledger) error {
	for e := range ledger.Entries() {
		if err := EncodeEntry(w, e); err != nil {
			return err
		}
	}
	return nil
}
