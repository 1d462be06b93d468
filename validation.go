package tradestats

import (
	"errors"
	"fmt"
)

// Validate checks a ledger entry against the ledger currency. An empty
// currency accepts any entry.
func (e Entry) Validate(currency string) error {
	kind := ErrInvalidState
	if e.Command == CmdClose || e.Command == CmdOpen {
		kind = ErrInvalidTrade
	}
	if e.Date.IsZero() {
		return fmt.Errorf("%w: %s entry has no date", kind, e.Command)
	}
	switch e.Command {
	case CmdClose, CmdOpen:
		if e.Symbol == "" {
			return fmt.Errorf("%w: %s entry on %s has no symbol", kind, e.Command, e.Date)
		}
	case CmdCapital, CmdCharge:
		if e.Amount.IsNegative() {
			return fmt.Errorf("%w: %s amount must not be negative, got %s", kind, e.Command, e.Amount)
		}
	case CmdPeriod:
		if e.Until.IsZero() || e.Until.Before(e.Date) {
			return fmt.Errorf("%w: invalid statement period %s to %s", kind, e.Date, e.Until)
		}
	case CmdAdjust, CmdValuation:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, e.Command)
	}
	if c := e.Amount.Currency(); currency != "" && c != "" && c != currency {
		return fmt.Errorf("%w: %s entry on %s is in %s, ledger is in %s", kind, e.Command, e.Date, c, currency)
	}
	return nil
}

// Validate checks trades and account figures before derivation and reports
// every failure. Errors wrap ErrInvalidTrade or ErrInvalidState.
func Validate(trades []Trade, state PortfolioState) error {
	var errs []error
	currency := state.Currency()
	for i, t := range trades {
		if t.ClosedAt.IsZero() {
			errs = append(errs, fmt.Errorf("%w: trade #%d (%s) has no close date", ErrInvalidTrade, i+1, t.Symbol))
		}
		if t.Symbol == "" {
			errs = append(errs, fmt.Errorf("%w: trade #%d on %s has no symbol", ErrInvalidTrade, i+1, t.ClosedAt))
		}
		c := t.RealizedPnL.Currency()
		if currency == "" {
			currency = c
		}
		if c != "" && c != currency {
			errs = append(errs, fmt.Errorf("%w: trade #%d (%s) is in %s, expected %s", ErrInvalidTrade, i+1, t.Symbol, c, currency))
		}
	}
	if state.StartingCapital.IsNegative() {
		errs = append(errs, fmt.Errorf("%w: starting capital must not be negative, got %s", ErrInvalidState, state.StartingCapital))
	}
	if state.TotalCharges.IsNegative() {
		errs = append(errs, fmt.Errorf("%w: total charges must not be negative, got %s", ErrInvalidState, state.TotalCharges))
	}
	for _, m := range []Money{state.StartingCapital, state.TotalCharges, state.OtherCreditsDebits, state.UnrealizedPnL, state.CurrentValue} {
		if c := m.Currency(); c != "" && c != currency {
			errs = append(errs, fmt.Errorf("%w: figure %s is not in %s", ErrInvalidState, m, currency))
		}
	}
	if p := state.Period; !p.From.IsZero() && !p.To.IsZero() && p.To.Before(p.From) {
		errs = append(errs, fmt.Errorf("%w: statement period ends before it starts (%s)", ErrInvalidState, p))
	}
	return errors.Join(errs...)
}

// CheckConsistency compares the supplied current value with starting capital
// plus net P&L, at cent precision. A zero current value is not checked.
func CheckConsistency(state PortfolioState, m Metrics) error {
	if state.CurrentValue.IsZero() {
		return nil
	}
	want := m.PortfolioValue.Round()
	got := state.CurrentValue.Round()
	if !got.Decimal().Equal(want.Decimal()) {
		return fmt.Errorf("%w: current value is %s, starting capital plus net P&L is %s (difference %s)",
			ErrInconsistentValue, got, want, got.Sub(want).SignedString())
	}
	return nil
}
