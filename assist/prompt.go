// Package assist asks a Gemini model to comment on a trading dashboard.
package assist

import (
	"strconv"
	"strings"

	"github.com/etnz/tradestats"
)

// SystemInstruction frames the commentator's answers.
const SystemInstruction = `You are a trading performance analyst reviewing the dashboard of a retail
derivatives trader. The user message contains the dashboard as markdown: a
P&L summary, performance metrics with their explanation, the win/loss
distribution and the cumulative P&L series.

Comment on what the numbers say: profitability after charges, consistency
(win rate against win/loss ratio and expectancy), risk (drawdown, Sharpe and
Sortino) and the shape of the cumulative P&L. A value shown as "—" is
undefined, never treat it as zero. Quote the figures you rely on exactly as
displayed. Use the lookup_metric tool to check a figure when unsure.
Do not give investment advice. Answer in markdown, in a few short paragraphs.`

// DefaultQuestion is asked when the user has no specific question.
const DefaultQuestion = "Give me an overall assessment of this trading performance and the three most important points to improve."

// Prompt builds the first user message: the report followed by the question.
func Prompt(report, question string) string {
	question = strings.TrimSpace(question)
	if question == "" {
		question = DefaultQuestion
	}
	var b strings.Builder
	b.WriteString("Here is my trading dashboard.\n\n")
	b.WriteString("<dashboard>\n")
	b.WriteString(strings.TrimSpace(report))
	b.WriteString("\n</dashboard>\n\n")
	b.WriteString(question)
	return b.String()
}

// highlights lists the signed rows of d, the ones a reader notices first.
func highlights(d *tradestats.Dashboard) (positive, negative []string) {
	add := func(metric, value string, s tradestats.Sign) {
		switch s {
		case tradestats.Positive:
			positive = append(positive, metric+" "+value)
		case tradestats.Negative:
			negative = append(negative, metric+" "+value)
		}
	}
	for _, r := range d.Summary {
		add(r.Metric, r.Value, r.Sign)
	}
	for _, r := range d.Metrics {
		add(r.Metric, r.Value, r.Sign)
	}
	return positive, negative
}

// Outline is a one paragraph, model free, reading of d. It is printed
// before the commentary and used when no model is configured.
func Outline(d *tradestats.Dashboard) string {
	m := d.Values
	if m.TotalTrades == 0 {
		return "No closed trade to comment on."
	}
	positive, negative := highlights(d)
	var b strings.Builder
	b.WriteString(strings.Join([]string{
		"Closed trades: " + strconv.Itoa(m.TotalTrades) + ".",
		"Net P&L after charges: " + m.NetPnL.String() + ".",
	}, " "))
	if len(positive) > 0 {
		b.WriteString("\nStrengths: " + strings.Join(positive, ", ") + ".")
	}
	if len(negative) > 0 {
		b.WriteString("\nWeaknesses: " + strings.Join(negative, ", ") + ".")
	}
	return b.String()
}
