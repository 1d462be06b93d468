package tradestats

import (
	"iter"
	"slices"

	"github.com/etnz/tradestats/date"
)

// CommandType identifies the kind of a ledger entry.
type CommandType string

const (
	CmdClose     CommandType = "close"     // a closed trade, realized P&L
	CmdOpen      CommandType = "open"      // an open position marked to market, unrealized P&L
	CmdCapital   CommandType = "capital"   // capital brought to the account
	CmdCharge    CommandType = "charge"    // brokerage, taxes and fees
	CmdAdjust    CommandType = "adjust"    // other credits and debits
	CmdValuation CommandType = "valuation" // account value reported by the broker
	CmdPeriod    CommandType = "period"    // statement period
)

// Entry is a single ledger line.
//
// Amount is the realized P&L for close, the unrealized P&L for open, and the
// plain amount for the other commands. Period entries use Date and Until.
type Entry struct {
	Command CommandType
	Date    date.Date
	Until   date.Date
	Symbol  string
	Amount  Money
	Memo    string
}

// Close returns the entry of a closed trade.
func Close(on date.Date, symbol string, pnl Money) Entry {
	return Entry{Command: CmdClose, Date: on, Symbol: symbol, Amount: pnl}
}

// Open returns the entry of an open position and its unrealized P&L.
func Open(on date.Date, symbol string, pnl Money) Entry {
	return Entry{Command: CmdOpen, Date: on, Symbol: symbol, Amount: pnl}
}

// Capital returns the entry of capital brought to the account.
func Capital(on date.Date, amount Money) Entry {
	return Entry{Command: CmdCapital, Date: on, Amount: amount}
}

// Charge returns the entry of charges paid.
func Charge(on date.Date, memo string, amount Money) Entry {
	return Entry{Command: CmdCharge, Date: on, Memo: memo, Amount: amount}
}

// Adjust returns the entry of other credits (positive) or debits (negative).
func Adjust(on date.Date, memo string, amount Money) Entry {
	return Entry{Command: CmdAdjust, Date: on, Memo: memo, Amount: amount}
}

// Valuation returns the entry of the account value reported on a given day.
func Valuation(on date.Date, amount Money) Entry {
	return Entry{Command: CmdValuation, Date: on, Amount: amount}
}

// Period returns the entry of a statement period.
func Period(from, to date.Date) Entry {
	return Entry{Command: CmdPeriod, Date: from, Until: to}
}

// Ledger is an immutable-once-loaded list of entries.
//
// In a Ledger entries are always in chronological order.
type Ledger struct {
	entries  []Entry
	currency string
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{entries: make([]Entry, 0)}
}

// Currency returns the ledger currency, set by the first entry with an amount.
func (l *Ledger) Currency() string { return l.currency }

// Len returns the number of entries.
func (l *Ledger) Len() int { return len(l.entries) }

// Append validates and appends entries, keeping the ledger sorted. Either
// all entries are appended or none.
func (l *Ledger) Append(entries ...Entry) error {
	currency := l.currency
	for _, e := range entries {
		if err := e.Validate(currency); err != nil {
			return err
		}
		if currency == "" {
			currency = e.Amount.Currency()
		}
	}
	l.currency = currency
	l.entries = append(l.entries, entries...)
	l.stableSort()
	return nil
}

// stableSort sorts entries by date, entries of the same day keep their order.
func (l *Ledger) stableSort() {
	slices.SortStableFunc(l.entries, func(a, b Entry) int { return a.Date.Compare(b.Date) })
}

// Entries iterates over entries in chronological order.
func (l *Ledger) Entries() iter.Seq[Entry] {
	return slices.Values(l.entries)
}

// Trades returns the closed trades in chronological order.
func (l *Ledger) Trades() []Trade {
	trades := make([]Trade, 0, len(l.entries))
	for _, e := range l.entries {
		if e.Command == CmdClose {
			trades = append(trades, NewTrade(e.Date, e.Symbol, e.Amount))
		}
	}
	return trades
}

// State returns the account figures accumulated from the ledger entries.
func (l *Ledger) State() PortfolioState {
	zero := M(0, l.currency)
	s := PortfolioState{
		StartingCapital:    zero,
		TotalCharges:       zero,
		OtherCreditsDebits: zero,
		UnrealizedPnL:      zero,
		CurrentValue:       zero,
	}
	for _, e := range l.entries {
		switch e.Command {
		case CmdOpen:
			s.UnrealizedPnL = s.UnrealizedPnL.Add(e.Amount)
		case CmdCapital:
			s.StartingCapital = s.StartingCapital.Add(e.Amount)
		case CmdCharge:
			s.TotalCharges = s.TotalCharges.Add(e.Amount)
		case CmdAdjust:
			s.OtherCreditsDebits = s.OtherCreditsDebits.Add(e.Amount)
		case CmdValuation:
			s.CurrentValue = zero.Add(e.Amount)
		case CmdPeriod:
			s.Period = date.NewRange(e.Date, e.Until)
		}
	}
	return s
}

// Dashboard derives the dashboard of the ledger.
func (l *Ledger) Dashboard(opts Options) *Dashboard {
	return DeriveDashboard(l.Trades(), l.State(), opts)
}

// OldestDate returns the date of the first entry, zero for an empty ledger.
func (l *Ledger) OldestDate() date.Date {
	if len(l.entries) == 0 {
		return date.Date{}
	}
	return l.entries[0].Date
}

// NewestDate returns the date of the last entry, zero for an empty ledger.
func (l *Ledger) NewestDate() date.Date {
	if len(l.entries) == 0 {
		return date.Date{}
	}
	return l.entries[len(l.entries)-1].Date
}
