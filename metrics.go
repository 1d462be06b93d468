package tradestats

import (
	"math"

	"github.com/etnz/tradestats/date"
	"github.com/shopspring/decimal"
)

// Options tunes the derivation of a Dashboard.
type Options struct {
	// RiskFreeRate is the annual risk-free rate as a ratio, 0.03 for 3%.
	RiskFreeRate float64
	// DrawdownOnEquity measures drawdown on starting capital plus cumulative
	// P&L instead of cumulative P&L alone.
	DrawdownOnEquity bool
	// CumulativeStep keeps one cumulative point every CumulativeStep trades.
	CumulativeStep int
	// MaxPoints caps the cumulative series, 0 means no cap.
	MaxPoints int
	// Window restricts the trades taken into account. A windowed derivation
	// keeps the starting capital only: unrealized P&L, charges, other
	// credits/debits and the statement period are whole-statement figures,
	// so Net P&L is the realized P&L of the window and the period spans its
	// first and last trades.
	Window date.Range
}

// DefaultRiskFreeRate is the annual risk-free rate used when none is configured.
const DefaultRiskFreeRate = 0.03

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{RiskFreeRate: DefaultRiskFreeRate}
}

// Metrics holds the typed values displayed by the dashboard.
type Metrics struct {
	Currency string `json:"currency"`

	TotalRealizedPnL   Money `json:"totalRealizedPnl"`
	TotalUnrealizedPnL Money `json:"totalUnrealizedPnl"`
	TotalCharges       Money `json:"totalCharges"`
	OtherCreditsDebits Money `json:"otherCreditsDebits"`
	NetPnL             Money `json:"netPnl"`
	PortfolioValue     Money `json:"portfolioValue"`

	TotalTrades     int `json:"totalTrades"`
	WinningTrades   int `json:"winningTrades"`
	LosingTrades    int `json:"losingTrades"`
	BreakevenTrades int `json:"breakevenTrades"`

	WinRate      Percent `json:"winRate"`
	GrossProfit  Money   `json:"grossProfit"`
	GrossLoss    Money   `json:"grossLoss"` // <= 0
	AverageWin   Money   `json:"averageWin"`
	AverageLoss  Money   `json:"averageLoss"` // <= 0
	WinLossRatio Ratio   `json:"winLossRatio"`
	Expectancy   Money   `json:"expectancy"`
	ProfitFactor Ratio   `json:"profitFactor"`

	TotalReturnPct Ratio   `json:"totalReturnPct"`
	SharpeRatio    Ratio   `json:"sharpeRatio"`
	SortinoRatio   Ratio   `json:"sortinoRatio"`
	MaxDrawdownPct Percent `json:"maxDrawdownPct"` // <= 0
	CAGR           Ratio   `json:"cagr"`           // as a ratio, 1.43 for 143%

	PeriodDays           int     `json:"periodDays"`
	AvgTradeDurationDays float64 `json:"avgTradeDurationDays"`
}

// ComputeMetrics derives the dashboard metrics from closed trades and account figures.
//
// It is pure and total over validated input: an empty trade list yields
// zero counts and Undefined ratios.
func ComputeMetrics(trades []Trade, state PortfolioState, opts Options) Metrics {
	return computeMetrics(chronological(windowed(trades, opts.Window)), state, opts)
}

// windowed returns the trades closed within w.
func windowed(trades []Trade, w date.Range) []Trade {
	if w.IsOpen() {
		return trades
	}
	kept := make([]Trade, 0, len(trades))
	for _, t := range trades {
		if w.Contains(t.ClosedAt) {
			kept = append(kept, t)
		}
	}
	return kept
}

// computeMetrics expects trades in chronological order, already windowed.
func computeMetrics(trades []Trade, state PortfolioState, opts Options) Metrics {
	if !opts.Window.IsOpen() {
		state = state.capitalOnly()
	}
	currency := state.Currency()
	for _, t := range trades {
		if currency == "" {
			currency = t.RealizedPnL.Currency()
		}
	}
	zero := M(0, currency)

	m := Metrics{
		Currency:           currency,
		TotalRealizedPnL:   zero,
		TotalUnrealizedPnL: zero.Add(state.UnrealizedPnL),
		TotalCharges:       zero.Add(state.TotalCharges),
		OtherCreditsDebits: zero.Add(state.OtherCreditsDebits),
		GrossProfit:        zero,
		GrossLoss:          zero,
		AverageWin:         zero,
		AverageLoss:        zero,
		Expectancy:         zero,
		TotalTrades:        len(trades),
	}

	for _, t := range trades {
		m.TotalRealizedPnL = m.TotalRealizedPnL.Add(t.RealizedPnL)
		switch t.Outcome() {
		case Win:
			m.WinningTrades++
			m.GrossProfit = m.GrossProfit.Add(t.RealizedPnL)
		case Loss:
			m.LosingTrades++
			m.GrossLoss = m.GrossLoss.Add(t.RealizedPnL)
		}
	}
	m.BreakevenTrades = m.TotalTrades - m.WinningTrades - m.LosingTrades

	m.NetPnL = state.NetPnL(m.TotalRealizedPnL)
	m.PortfolioValue = zero.Add(state.StartingCapital).Add(m.NetPnL)

	// Trade statistics.
	winRate := decimal.Zero
	if m.TotalTrades > 0 {
		winRate = decimal.NewFromInt(int64(m.WinningTrades)).Div(decimal.NewFromInt(int64(m.TotalTrades)))
	}
	m.WinRate = Percent(winRate.Shift(2).InexactFloat64())
	if m.WinningTrades > 0 {
		m.AverageWin = m.GrossProfit.DivInt(m.WinningTrades)
	}
	if m.LosingTrades > 0 {
		m.AverageLoss = m.GrossLoss.DivInt(m.LosingTrades)
	}
	if !m.AverageLoss.IsZero() {
		m.WinLossRatio = Defined(m.AverageWin.DivMoney(m.AverageLoss).Abs().InexactFloat64())
	}
	m.Expectancy = m.AverageWin.MulFloat(winRate).Add(m.AverageLoss.MulFloat(decimal.NewFromInt(1).Sub(winRate)))
	if m.WinningTrades > 0 && m.LosingTrades > 0 {
		m.ProfitFactor = Defined(m.GrossProfit.DivMoney(m.GrossLoss.Abs()).InexactFloat64())
	}

	// Returns.
	capital := state.StartingCapital
	if capital.IsPositive() {
		m.TotalReturnPct = Defined(m.NetPnL.DivMoney(capital).Shift(2).InexactFloat64())
	}

	m.PeriodDays = periodDays(trades, state.Period)
	if m.TotalTrades > 0 {
		m.AvgTradeDurationDays = float64(m.PeriodDays) / float64(m.TotalTrades)
	}

	returns := tradeReturns(trades, capital)
	m.SharpeRatio = sharpe(returns, m.PeriodDays, opts.RiskFreeRate)
	m.SortinoRatio = sortino(returns, m.PeriodDays, opts.RiskFreeRate)

	base := decimal.Zero
	if opts.DrawdownOnEquity {
		base = capital.Decimal()
	}
	m.MaxDrawdownPct = maxDrawdown(cumulative(trades, base))

	m.CAGR = cagr(m.TotalReturnPct, m.TotalTrades, m.PeriodDays)
	return m
}

// periodDays returns the number of days covered by the trades, at least 1
// when there is any trade. A complete statement period takes precedence.
func periodDays(trades []Trade, period date.Range) int {
	if len(trades) == 0 {
		return 0
	}
	days := period.Days()
	if days == 0 {
		days = trades[0].ClosedAt.DaysUntil(trades[len(trades)-1].ClosedAt)
	}
	return max(days, 1)
}

// cagr compounds the total return over a 365 days year.
func cagr(totalReturnPct Ratio, n, periodDays int) Ratio {
	ret, ok := totalReturnPct.Value()
	if !ok || n == 0 || periodDays <= 0 {
		return Undefined
	}
	growth := 1 + ret/100
	if growth <= 0 {
		return Undefined
	}
	return Defined(math.Pow(growth, 365/float64(periodDays)) - 1)
}
