package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/etnz/tradestats"
)

// Console renders a themed dashboard for a colour terminal.
type Console struct {
	Theme Theme
	Title string
	// Width of the win/loss bar and the sparkline, 0 means 48.
	Width int
}

func (c Console) Render(w io.Writer, d *tradestats.Dashboard) error {
	st := newStyles(c.Theme)
	width := c.Width
	if width <= 0 {
		width = 48
	}
	title := c.Title
	if title == "" {
		title = DefaultTitle
	}

	var sections []string
	sections = append(sections, st.Title.Render(title))

	cards := make([]string, 0, 3)
	for _, k := range keyMetrics(d) {
		cards = append(cards, st.Card.Render(
			st.Heading.Render(strings.ToLower(k.Title))+"\n"+st.value(k.Sign).Render(k.Value),
		))
	}
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, cards...))

	summary := newTable(st, "Metric", "Value")
	for _, r := range d.Summary {
		summary.Row(r.Metric, r.Value)
	}
	summary.StyleFunc(signStyle(st, func(row int) tradestats.Sign { return d.Summary[row].Sign }, 1))
	sections = append(sections, st.Heading.Render("P&L Summary"), summary.String())

	metrics := newTable(st, "Metric", "Value", "Explanation")
	for _, r := range d.Metrics {
		metrics.Row(r.Metric, r.Value, r.Explanation)
	}
	metrics.StyleFunc(signStyle(st, func(row int) tradestats.Sign { return d.Metrics[row].Sign }, 1))
	sections = append(sections, st.Heading.Render("Performance Metrics"), metrics.String())

	sections = append(sections, st.Heading.Render("Win / Loss distribution"), winLossBar(d.WinLoss, width))
	sections = append(sections, st.Heading.Render("Cumulative P&L"), c.cumulative(st, d.Cumulative, width))

	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, sections...))
	return err
}

func newTable(st styles, headers ...string) *table.Table {
	return table.New().
		Border(st.border).
		BorderStyle(st.Border).
		Headers(headers...)
}

// signStyle colours the value column with the row sign and mutes the explanation.
func signStyle(st styles, sign func(row int) tradestats.Sign, valueCol int) table.StyleFunc {
	return func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return st.Header
		case col == valueCol:
			return st.value(sign(row)).Padding(0, 1).Align(lipgloss.Right)
		case col > valueCol:
			return st.Muted
		default:
			return st.Cell
		}
	}
}

func (c Console) cumulative(st styles, series []tradestats.CumulativePoint, width int) string {
	if len(series) < 2 {
		return st.Muted.Render("No closed trade.")
	}
	chart := newAreaChart(series)
	last := series[len(series)-1].CumulativePnL
	sign := tradestats.Neutral
	switch last.Sign() {
	case 1:
		sign = tradestats.Positive
	case -1:
		sign = tradestats.Negative
	}
	line := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Theme.Accent)).Render(sparkline(series, width))
	legend := st.Muted.Render(fmt.Sprintf("min %s  max %s  last", chart.Min, chart.Max)) + " " +
		st.value(sign).Render(last.StringFixed(2))
	return line + "\n" + legend
}

// winLossBar draws the win/loss series as a proportional bar with a legend.
func winLossBar(series []tradestats.WinLossPoint, width int) string {
	slices := pieSlices(series)
	if len(slices) == 0 {
		return "No closed trade."
	}
	var bar, legend strings.Builder
	used := 0
	for i, s := range slices {
		n := int((s.To-s.From)/100*float64(width) + 0.5)
		if i == len(slices)-1 {
			n = width - used
		}
		n = max(n, 0)
		used += n
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color))
		bar.WriteString(style.Render(strings.Repeat("█", n)))
		if i > 0 {
			legend.WriteString("  ")
		}
		legend.WriteString(style.Render("■") + fmt.Sprintf(" %s %d (%.2f%%)", s.Label, s.Count, s.To-s.From))
	}
	return bar.String() + "\n" + legend.String()
}
