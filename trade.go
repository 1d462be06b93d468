package tradestats

import (
	"errors"
	"slices"

	"github.com/etnz/tradestats/date"
)

var (
	// ErrInvalidTrade is returned for trades rejected at the ledger boundary.
	ErrInvalidTrade = errors.New("invalid trade")
	// ErrInvalidState is returned for account figures rejected at the ledger boundary.
	ErrInvalidState = errors.New("invalid portfolio state")
	// ErrInconsistentValue is returned when the supplied current value does not
	// match starting capital plus net P&L.
	ErrInconsistentValue = errors.New("inconsistent portfolio value")
	// ErrUnknownCommand is returned when decoding a ledger line with an unknown command.
	ErrUnknownCommand = errors.New("unknown command")
)

// Outcome classifies a closed trade by the sign of its realized P&L.
type Outcome int

const (
	Breakeven Outcome = iota
	Win
	Loss
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Loss:
		return "loss"
	default:
		return "breakeven"
	}
}

// Trade is a closed trade. It is immutable once recorded.
type Trade struct {
	Symbol      string
	ClosedAt    date.Date
	RealizedPnL Money
}

// NewTrade returns a Trade closed on 'on' with the given realized P&L.
func NewTrade(on date.Date, symbol string, pnl Money) Trade {
	return Trade{Symbol: symbol, ClosedAt: on, RealizedPnL: pnl}
}

// Outcome returns whether the trade is a win, a loss or breakeven.
func (t Trade) Outcome() Outcome {
	switch t.RealizedPnL.Sign() {
	case 1:
		return Win
	case -1:
		return Loss
	default:
		return Breakeven
	}
}

// chronological returns a sorted copy of trades, trades closed the same day keep their order.
func chronological(trades []Trade) []Trade {
	sorted := slices.Clone(trades)
	slices.SortStableFunc(sorted, func(a, b Trade) int { return a.ClosedAt.Compare(b.ClosedAt) })
	return sorted
}

// PortfolioState holds the account level figures that cannot be derived from
// the trade list alone.
type PortfolioState struct {
	StartingCapital    Money
	TotalCharges       Money
	OtherCreditsDebits Money // may be negative
	UnrealizedPnL      Money
	CurrentValue       Money // optional, zero when not supplied

	// Period is the statement period. When both ends are set it replaces the
	// span between the first and last trade.
	Period date.Range
}

// Currency returns the first currency set on the state figures.
func (s PortfolioState) Currency() string {
	for _, m := range []Money{s.StartingCapital, s.TotalCharges, s.OtherCreditsDebits, s.UnrealizedPnL, s.CurrentValue} {
		if m.Currency() != "" {
			return m.Currency()
		}
	}
	return ""
}

// capitalOnly returns s reduced to its starting capital. The other figures
// and the statement period cover the whole statement and have no date to
// restrict them to a window.
func (s PortfolioState) capitalOnly() PortfolioState {
	zero := M(0, s.Currency())
	return PortfolioState{
		StartingCapital:    zero.Add(s.StartingCapital),
		TotalCharges:       zero,
		OtherCreditsDebits: zero,
		UnrealizedPnL:      zero,
		CurrentValue:       zero,
	}
}

// NetPnL returns realized + unrealized - charges + other credits/debits.
func (s PortfolioState) NetPnL(realized Money) Money {
	return realized.Add(s.UnrealizedPnL).Sub(s.TotalCharges).Add(s.OtherCreditsDebits)
}
