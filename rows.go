package tradestats

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// cell is a formatted value together with the number it was formatted from.
type cell struct {
	text    string
	value   float64
	defined bool
}

func moneyCell(m Money) cell {
	return cell{text: m.Format(), value: m.AsFloat(), defined: true}
}

func countCell(n int) cell {
	return cell{text: strconv.Itoa(n), value: float64(n), defined: true}
}

func percentCell(p Percent) cell {
	return cell{text: p.String(), value: float64(p), defined: true}
}

func ratioCell(r Ratio) cell {
	v, ok := r.Value()
	return cell{text: r.Format(2), value: v, defined: ok}
}

func percentRatioCell(r Ratio) cell {
	v, ok := r.Value()
	text := undefinedText
	if ok {
		text = fixed(v, 2) + "%"
	}
	return cell{text: text, value: v, defined: ok}
}

// growthCell formats a growth ratio as a whole percent: 1.43 is "143%".
func growthCell(r Ratio) cell {
	v, ok := r.Value()
	text := undefinedText
	if ok {
		text = decimal.NewFromFloat(v).Shift(2).Round(0).String() + "%"
	}
	return cell{text: text, value: v, defined: ok}
}

func daysCell(d float64) cell {
	return cell{text: fixed(d, 2), value: d, defined: true}
}

// signRule classifies a cell. Classification is fixed per metric.
type signRule func(c cell) Sign

// always ignores the value.
func always(s Sign) signRule { return func(cell) Sign { return s } }

// unlessZero is s for any non-zero value, Neutral for zero.
func unlessZero(s Sign) signRule {
	return func(c cell) Sign {
		if c.value == 0 {
			return Neutral
		}
		return s
	}
}

// bySign follows the arithmetic sign of the value.
func bySign(c cell) Sign {
	switch {
	case !c.defined || c.value == 0:
		return Neutral
	case c.value > 0:
		return Positive
	default:
		return Negative
	}
}

// above is Positive from threshold up, Negative below it.
func above(threshold float64) signRule {
	return func(c cell) Sign {
		switch {
		case !c.defined:
			return Neutral
		case c.value >= threshold:
			return Positive
		default:
			return Negative
		}
	}
}

type summaryDef struct {
	label string
	value func(*Metrics) cell
	sign  signRule
}

type metricDef struct {
	label       string
	explanation string
	value       func(*Metrics) cell
	sign        signRule
}

// summaryDefs lists the P&L summary table in presentation order.
var summaryDefs = []summaryDef{
	{"Total Realized P&L", func(m *Metrics) cell { return moneyCell(m.TotalRealizedPnL) }, bySign},
	{"Total Unrealized P&L", func(m *Metrics) cell { return moneyCell(m.TotalUnrealizedPnL) }, bySign},
	{"Total Charges", func(m *Metrics) cell { return moneyCell(m.TotalCharges) }, always(Neutral)},
	{"Other Credits/Debits", func(m *Metrics) cell { return moneyCell(m.OtherCreditsDebits) }, bySign},
	{"Net P&L (after charges)", func(m *Metrics) cell { return moneyCell(m.NetPnL) }, bySign},
	{"Portfolio Value", func(m *Metrics) cell { return moneyCell(m.PortfolioValue) }, always(Neutral)},
}

// metricDefs lists the performance metrics table in presentation order.
var metricDefs = []metricDef{
	{"Total Trades", "Number of closed trades, breakeven trades included",
		func(m *Metrics) cell { return countCell(m.TotalTrades) }, always(Neutral)},
	{"Winning Trades", "Trades with positive realized P&L",
		func(m *Metrics) cell { return countCell(m.WinningTrades) }, unlessZero(Positive)},
	{"Losing Trades", "Trades with negative realized P&L",
		func(m *Metrics) cell { return countCell(m.LosingTrades) }, unlessZero(Negative)},
	{"Breakeven Trades", "Trades with zero realized P&L",
		func(m *Metrics) cell { return countCell(m.BreakevenTrades) }, always(Neutral)},
	{"Win Rate %", "Winning trades / total trades",
		func(m *Metrics) cell { return percentCell(m.WinRate) }, winRateSign},
	{"Average Win", "Mean P&L of winning trades",
		func(m *Metrics) cell { return moneyCell(m.AverageWin) }, unlessZero(Positive)},
	{"Average Loss", "Mean P&L of losing trades (negative)",
		func(m *Metrics) cell { return moneyCell(m.AverageLoss) }, unlessZero(Negative)},
	{"Win/Loss Ratio", "Average win / average loss (abs)",
		func(m *Metrics) cell { return ratioCell(m.WinLossRatio) }, above(1)},
	{"Expectancy", "Expected P&L per trade",
		func(m *Metrics) cell { return moneyCell(m.Expectancy) }, bySign},
	{"Profit Factor", "Total profits / total losses",
		func(m *Metrics) cell { return ratioCell(m.ProfitFactor) }, above(1)},
	{"Total Return %", "Net P&L / initial capital",
		func(m *Metrics) cell { return percentRatioCell(m.TotalReturnPct) }, bySign},
	{"Sharpe Ratio", "Risk-adjusted return (all volatility)",
		func(m *Metrics) cell { return ratioCell(m.SharpeRatio) }, bySign},
	{"Sortino Ratio", "Risk-adjusted return (downside volatility only)",
		func(m *Metrics) cell { return ratioCell(m.SortinoRatio) }, bySign},
	{"Max Drawdown %", "Max peak-to-trough decline on cumulative P&L",
		func(m *Metrics) cell { return percentCell(m.MaxDrawdownPct) }, always(Negative)},
	{"CAGR", "Compounded annual growth rate (approx)",
		func(m *Metrics) cell { return growthCell(m.CAGR) }, bySign},
	{"Avg Trade Duration (days)", "Approx. period / total trades",
		func(m *Metrics) cell { return daysCell(m.AvgTradeDurationDays) }, always(Neutral)},
}

// winRateSign is neutral without trades.
func winRateSign(c cell) Sign {
	if c.value == 0 {
		return Neutral
	}
	return above(50)(c)
}

func summaryRows(m *Metrics) []SummaryRow {
	rows := make([]SummaryRow, 0, len(summaryDefs))
	for _, def := range summaryDefs {
		c := def.value(m)
		rows = append(rows, SummaryRow{Metric: def.label, Value: c.text, Sign: def.sign(c)})
	}
	return rows
}

func metricsRows(m *Metrics) []MetricsRow {
	rows := make([]MetricsRow, 0, len(metricDefs))
	for _, def := range metricDefs {
		c := def.value(m)
		rows = append(rows, MetricsRow{
			Metric:      def.label,
			Value:       c.text,
			Explanation: def.explanation,
			Sign:        def.sign(c),
		})
	}
	return rows
}

// SummaryLabels returns the summary row labels in presentation order.
func SummaryLabels() []string {
	labels := make([]string, len(summaryDefs))
	for i, def := range summaryDefs {
		labels[i] = def.label
	}
	return labels
}

// MetricLabels returns the metric row labels in presentation order.
func MetricLabels() []string {
	labels := make([]string, len(metricDefs))
	for i, def := range metricDefs {
		labels[i] = def.label
	}
	return labels
}
