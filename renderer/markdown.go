package renderer

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/etnz/tradestats"
	md "github.com/nao1215/markdown"
)

// DefaultTitle is the title of a dashboard when none is given.
const DefaultTitle = "Trading Performance Dashboard"

// signMark marks a value for readers without colours.
func signMark(s tradestats.Sign) string {
	switch s {
	case tradestats.Positive:
		return "▲"
	case tradestats.Negative:
		return "▼"
	default:
		return ""
	}
}

// DashboardMarkdown renders the dashboard as GitHub flavored markdown.
func DashboardMarkdown(d *tradestats.Dashboard, title string) string {
	if title == "" {
		title = DefaultTitle
	}
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(title)

	doc.H2("P&L Summary")
	summary := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignCenter},
		Header:    []string{"Metric", "Value", ""},
	}
	for _, r := range d.Summary {
		summary.Rows = append(summary.Rows, []string{r.Metric, r.Value, signMark(r.Sign)})
	}
	doc.CustomTable(summary, md.TableOptions{AutoWrapText: false})

	doc.H2("Performance Metrics")
	metrics := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignCenter, md.AlignLeft},
		Header:    []string{"Metric", "Value", "", "Explanation"},
	}
	for _, r := range d.Metrics {
		metrics.Rows = append(metrics.Rows, []string{r.Metric, r.Value, signMark(r.Sign), r.Explanation})
	}
	doc.CustomTable(metrics, md.TableOptions{AutoWrapText: false})

	doc.H2("Win / Loss distribution")
	winloss := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"Outcome", "Trades", "Share"},
	}
	for _, s := range pieSlices(d.WinLoss) {
		winloss.Rows = append(winloss.Rows, []string{s.Label, strconv.Itoa(s.Count), fmt.Sprintf("%.2f%%", s.To-s.From)})
	}
	if len(winloss.Rows) == 0 {
		doc.PlainText("No closed trade.")
	} else {
		doc.CustomTable(winloss, md.TableOptions{AutoWrapText: false})
	}

	doc.H2("Cumulative P&L")
	if line := sparkline(d.Cumulative, 60); len(d.Cumulative) > 1 {
		doc.CodeBlocks(md.SyntaxHighlightText, line)
	}
	cumulative := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignRight, md.AlignRight},
		Header:    []string{"Trade", "Cumulative P&L"},
	}
	for _, p := range d.Cumulative {
		cumulative.Rows = append(cumulative.Rows, []string{strconv.Itoa(p.TradeIndex), p.CumulativePnL.StringFixed(2)})
	}
	doc.CustomTable(cumulative, md.TableOptions{AutoWrapText: false})

	return doc.String()
}

// Markdown renders the dashboard as markdown text.
type Markdown struct {
	Title string
}

func (m Markdown) Render(w io.Writer, d *tradestats.Dashboard) error {
	_, err := io.WriteString(w, DashboardMarkdown(d, m.Title))
	return err
}
