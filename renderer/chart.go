package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/tradestats"
	"github.com/shopspring/decimal"
)

// KeyMetric is a metric highlighted above the tables.
type KeyMetric struct {
	Title    string
	Value    string
	Subtitle string
	Sign     tradestats.Sign
}

// keyMetrics returns the highlighted metrics, in display order.
func keyMetrics(d *tradestats.Dashboard) []KeyMetric {
	keys := []struct{ title, metric, subtitle string }{
		{"Net P&L (after charges)", "Net P&L (after charges)", "Total profit after all charges"},
		{"Win Rate", "Win Rate %", ""},
		{"Sharpe Ratio", "Sharpe Ratio", ""},
	}
	cards := make([]KeyMetric, 0, len(keys))
	for _, k := range keys {
		card := KeyMetric{Title: k.title, Value: "—", Subtitle: k.subtitle, Sign: tradestats.Neutral}
		for _, r := range d.Summary {
			if r.Metric == k.metric {
				card.Value, card.Sign = r.Value, r.Sign
			}
		}
		for _, r := range d.Metrics {
			if r.Metric == k.metric {
				card.Value, card.Sign = r.Value, r.Sign
				if card.Subtitle == "" {
					card.Subtitle = r.Explanation
				}
			}
		}
		cards = append(cards, card)
	}
	return cards
}

// pieSlice is a slice of the win/loss pie, in percent of the full circle.
type pieSlice struct {
	tradestats.WinLossPoint
	From, To float64
}

// pieSlices returns the slices of the win/loss series, empty when there is no trade.
func pieSlices(series []tradestats.WinLossPoint) []pieSlice {
	total := 0
	for _, p := range series {
		total += p.Count
	}
	if total == 0 {
		return nil
	}
	slices := make([]pieSlice, 0, len(series))
	from := 0.0
	for _, p := range series {
		to := from + 100*float64(p.Count)/float64(total)
		slices = append(slices, pieSlice{WinLossPoint: p, From: from, To: to})
		from = to
	}
	return slices
}

// conicGradient returns a CSS conic-gradient drawing the pie, or the empty
// colour when there is no slice.
func conicGradient(slices []pieSlice, empty string) string {
	if len(slices) == 0 {
		return empty
	}
	stops := make([]string, len(slices))
	for i, s := range slices {
		stops[i] = fmt.Sprintf("%s %.2f%% %.2f%%", s.Color, s.From, s.To)
	}
	return "conic-gradient(" + strings.Join(stops, ", ") + ")"
}

// areaChart is the geometry of the cumulative P&L chart in SVG user units.
type areaChart struct {
	Width, Height float64
	Line          string // polyline points
	Area          string // polygon points, closed on the zero line
	ZeroY         float64
	Min, Max      string
	LastIndex     int
}

const (
	chartWidth   = 600
	chartHeight  = 240
	chartPadding = 8
)

// newAreaChart scales the cumulative series into a chartWidth x chartHeight box.
// The zero line is always visible.
func newAreaChart(series []tradestats.CumulativePoint) areaChart {
	c := areaChart{Width: chartWidth, Height: chartHeight}
	if len(series) == 0 {
		c.ZeroY = chartHeight / 2
		return c
	}
	lo, hi := decimal.Zero, decimal.Zero
	for _, p := range series {
		lo = decimal.Min(lo, p.CumulativePnL)
		hi = decimal.Max(hi, p.CumulativePnL)
	}
	c.Min, c.Max = lo.StringFixed(2), hi.StringFixed(2)
	c.LastIndex = series[len(series)-1].TradeIndex

	minY, maxY := lo.InexactFloat64(), hi.InexactFloat64()
	span := maxY - minY
	if span == 0 {
		span = 1
	}
	lastX := float64(max(c.LastIndex, 1))
	x := func(i int) float64 { return chartPadding + float64(i)/lastX*(chartWidth-2*chartPadding) }
	y := func(v float64) float64 { return chartPadding + (maxY-v)/span*(chartHeight-2*chartPadding) }

	c.ZeroY = y(0)
	points := make([]string, len(series))
	for i, p := range series {
		points[i] = fmt.Sprintf("%.1f,%.1f", x(p.TradeIndex), y(p.CumulativePnL.InexactFloat64()))
	}
	c.Line = strings.Join(points, " ")
	first, last := x(series[0].TradeIndex), x(c.LastIndex)
	c.Area = fmt.Sprintf("%.1f,%.1f %s %.1f,%.1f", first, c.ZeroY, c.Line, last, c.ZeroY)
	return c
}

// sparkline draws values with block characters, at most width of them.
func sparkline(series []tradestats.CumulativePoint, width int) string {
	if len(series) == 0 || width <= 0 {
		return ""
	}
	values := make([]float64, len(series))
	for i, p := range series {
		values[i] = p.CumulativePnL.InexactFloat64()
	}
	if len(values) > width {
		sampled := make([]float64, width)
		step := float64(len(values)-1) / float64(max(width-1, 1))
		for i := range sampled {
			sampled[i] = values[int(float64(i)*step+0.5)]
		}
		values = sampled
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	blocks := []rune("▁▂▃▄▅▆▇█")
	if lo == hi {
		return strings.Repeat(string(blocks[3]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		b.WriteRune(blocks[int((v-lo)/(hi-lo)*float64(len(blocks)-1)+0.5)])
	}
	return b.String()
}
