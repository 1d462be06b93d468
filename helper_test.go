package tradestats

import (
	"math"

	"github.com/etnz/tradestats/date"
)

// INR is a helper for test to create rupee money from const
func INR(v float64) Money { return M(v, "INR") }

// NO is a helper for test to create money from const with no currency set
func NO(v float64) Money { return M(v, "") }

// day is a helper for test to create a date from a string.
func day(s string) date.Date { return date.MustParse(s) }

// pnls creates one trade per value, closed on consecutive days from start.
func pnls(start string, values ...float64) []Trade {
	first := day(start)
	trades := make([]Trade, len(values))
	for i, v := range values {
		trades[i] = NewTrade(first.Add(i), "T", INR(v))
	}
	return trades
}

// withCapital is a helper for test to create a state with only a starting capital.
func withCapital(v float64) PortfolioState {
	return PortfolioState{StartingCapital: INR(v)}
}

// approx reports whether got is within a relative 1e-9 of want.
func approx(got, want float64) bool {
	return math.Abs(got-want) <= 1e-9*math.Max(1, math.Abs(want))
}
