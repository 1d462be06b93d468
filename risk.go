package tradestats

import (
	"math"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

// tradeReturns returns each trade's P&L as a ratio of the starting capital,
// nil when the capital is not positive.
func tradeReturns(trades []Trade, capital Money) stats.Float64Data {
	if !capital.IsPositive() {
		return nil
	}
	returns := make(stats.Float64Data, 0, len(trades))
	for _, t := range trades {
		returns = append(returns, t.RealizedPnL.DivMoney(capital).InexactFloat64())
	}
	return returns
}

// tradesPerYear annualizes a trade count observed over periodDays.
func tradesPerYear(n, periodDays int) float64 {
	if periodDays <= 0 {
		return float64(n)
	}
	return float64(n) * 365 / float64(periodDays)
}

// sharpe returns the annualized Sharpe ratio of per-trade returns.
//
// It uses the sample standard deviation and scales by the square root of the
// number of trades per year. The annual risk-free rate is spread over the trades.
func sharpe(returns stats.Float64Data, periodDays int, riskFree float64) Ratio {
	if len(returns) < 2 {
		return Undefined
	}
	mean, err := stats.Mean(returns)
	if err != nil {
		return Undefined
	}
	sd, err := stats.StandardDeviationSample(returns)
	if err != nil || sd == 0 {
		return Undefined
	}
	tpy := tradesPerYear(len(returns), periodDays)
	return Defined((mean - riskFree/tpy) / sd * math.Sqrt(tpy))
}

// sortino returns the annualized Sortino ratio of per-trade returns.
//
// The downside deviation is the sample standard deviation of the negative
// returns, annualized over the share of losing trades per year.
func sortino(returns stats.Float64Data, periodDays int, riskFree float64) Ratio {
	if len(returns) < 2 {
		return Undefined
	}
	var downside stats.Float64Data
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	if len(downside) < 2 {
		return Undefined
	}
	mean, err := stats.Mean(returns)
	if err != nil {
		return Undefined
	}
	dsd, err := stats.StandardDeviationSample(downside)
	if err != nil {
		return Undefined
	}
	tpy := tradesPerYear(len(returns), periodDays)
	lossFraction := float64(len(downside)) / float64(len(returns))
	annualDownside := dsd * math.Sqrt(tpy*lossFraction)
	if annualDownside == 0 {
		return Undefined
	}
	return Defined((mean*tpy - riskFree) / annualDownside)
}

// cumulative returns the running sum of realized P&L starting at base, one
// value per trade plus the initial base.
func cumulative(trades []Trade, base decimal.Decimal) []decimal.Decimal {
	values := make([]decimal.Decimal, 0, len(trades)+1)
	values = append(values, base)
	running := base
	for _, t := range trades {
		running = running.Add(t.RealizedPnL.Decimal())
		values = append(values, running)
	}
	return values
}

// maxDrawdown returns the largest peak-to-trough decline of values relative
// to the peak, as a negative percent. Values whose running peak is not
// positive are ignored.
func maxDrawdown(values []decimal.Decimal) Percent {
	var peak, worst decimal.Decimal
	for i, v := range values {
		if i == 0 || v.GreaterThan(peak) {
			peak = v
		}
		if !peak.IsPositive() {
			continue
		}
		if dd := peak.Sub(v).Div(peak); dd.GreaterThan(worst) {
			worst = dd
		}
	}
	if worst.IsZero() {
		return 0
	}
	return Percent(worst.Shift(2).Neg().InexactFloat64())
}
