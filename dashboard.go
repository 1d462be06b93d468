package tradestats

import "github.com/shopspring/decimal"

// Sign tells a presentation layer how to style a value.
type Sign string

const (
	Positive Sign = "positive"
	Negative Sign = "negative"
	Neutral  Sign = "neutral"
)

// SummaryRow is a row of the P&L summary table.
type SummaryRow struct {
	Metric string `json:"metric"`
	Value  string `json:"value"`
	Sign   Sign   `json:"type"`
}

// MetricsRow is a row of the performance metrics table.
type MetricsRow struct {
	Metric      string `json:"metric"`
	Value       string `json:"value"`
	Explanation string `json:"explanation"`
	Sign        Sign   `json:"type"`
}

// WinLossPoint is a slice of the win/loss pie chart.
type WinLossPoint struct {
	Label string `json:"name"`
	Count int    `json:"value"`
	Color string `json:"color"`
}

// CumulativePoint is a point of the cumulative P&L chart.
type CumulativePoint struct {
	TradeIndex    int             `json:"trade"`
	CumulativePnL decimal.Decimal `json:"pnl"`
}

// Dashboard is the read model consumed by renderers.
//
// Summary and Metrics rows are in presentation order.
type Dashboard struct {
	Summary    []SummaryRow      `json:"summaryRows"`
	Metrics    []MetricsRow      `json:"metricsRows"`
	WinLoss    []WinLossPoint    `json:"winLossSeries"`
	Cumulative []CumulativePoint `json:"cumulativeSeries"`

	// Values holds the numbers the rows were formatted from.
	Values Metrics `json:"values"`
}

// DeriveDashboard computes the dashboard read model of trades and account figures.
//
// It has no side effect, trades is not modified, and calling it twice on the
// same input yields identical dashboards. Undefined ratios are rendered "—"
// and an empty trade list yields zero counts.
func DeriveDashboard(trades []Trade, state PortfolioState, opts Options) *Dashboard {
	sorted := chronological(windowed(trades, opts.Window))
	m := computeMetrics(sorted, state, opts)
	return &Dashboard{
		Summary:    summaryRows(&m),
		Metrics:    metricsRows(&m),
		WinLoss:    winLossSeries(&m),
		Cumulative: cumulativeSeries(sorted, opts),
		Values:     m,
	}
}

// Win/loss chart colours.
const (
	WinColor       = "#22c55e"
	LossColor      = "#ef4444"
	BreakevenColor = "#94a3b8"
)

func winLossSeries(m *Metrics) []WinLossPoint {
	series := []WinLossPoint{
		{Label: "Wins", Count: m.WinningTrades, Color: WinColor},
		{Label: "Losses", Count: m.LosingTrades, Color: LossColor},
	}
	if m.BreakevenTrades > 0 {
		series = append(series, WinLossPoint{Label: "Breakeven", Count: m.BreakevenTrades, Color: BreakevenColor})
	}
	return series
}

// cumulativeSeries expects trades in chronological order.
func cumulativeSeries(trades []Trade, opts Options) []CumulativePoint {
	values := cumulative(trades, decimal.Zero)
	points := make([]CumulativePoint, 0, len(values))
	last := len(values) - 1
	step := max(opts.CumulativeStep, 1)
	for i, v := range values {
		if i%step != 0 && i != last {
			continue
		}
		points = append(points, CumulativePoint{TradeIndex: i, CumulativePnL: v})
	}
	return sample(points, opts.MaxPoints)
}

// sample evenly picks at most n points, always keeping the first and last ones.
func sample(points []CumulativePoint, n int) []CumulativePoint {
	if n <= 1 || len(points) <= n {
		return points
	}
	sampled := make([]CumulativePoint, n)
	step := float64(len(points)-1) / float64(n-1)
	for i := range n {
		sampled[i] = points[int(float64(i)*step+0.5)]
	}
	return sampled
}
