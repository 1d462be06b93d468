package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/etnz/tradestats"
	"github.com/etnz/tradestats/date"
	"github.com/etnz/tradestats/renderer"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

// publishTask is the front matter template data.
type publishTask struct {
	Period     string     // weekly, monthly, quarterly or yearly
	Identifier string     // e.g. 2025-06
	Range      date.Range // dates of the period
	Trades     int
}

type publishCmd struct {
	outputDir      string
	periods        string
	format         string
	frontMatterTpl string
}

func (*publishCmd) Name() string { return "publish" }

func (*publishCmd) Synopsis() string { return "generates the dashboard of every period with trades" }

func (*publishCmd) Usage() string {
	return `pnl publish [-o <dir>] [-periods <list>] [-f <format>] [-frontmatter <file>]

  Generates the dashboard of every weekly, monthly, quarterly or yearly
  period containing at least one closed trade, and saves them to
  <dir>/<period>/<identifier>.<ext>, e.g. reports/monthly/2025-06.md.

  The front matter template receives .Period, .Identifier, .Range and
  .Trades. It is only applied to markdown dashboards.
`
}

func (c *publishCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.outputDir, "o", "reports", "Root directory for the generated dashboards.")
	f.StringVar(&c.periods, "periods", "monthly,quarterly,yearly", "Comma separated periods to publish.")
	f.StringVar(&c.format, "f", "markdown", "Output format.")
	f.StringVar(&c.frontMatterTpl, "frontmatter", "", "Path to a Go template file for the front matter.")
}

// extension returns the file extension of a format.
func extension(format string) string {
	switch {
	case format == "markdown" || format == "md":
		return ".md"
	case format == "json":
		return ".json"
	case strings.HasPrefix(format, "html-"):
		return ".html"
	default:
		return ".txt"
	}
}

func (c *publishCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var periods []date.Period
	for _, name := range strings.Split(c.periods, ",") {
		p, err := date.ParsePeriod(strings.TrimSpace(name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		periods = append(periods, p)
	}
	if _, err := renderer.New(c.format, ""); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	var frontMatter *template.Template
	if c.frontMatterTpl != "" {
		var err error
		if frontMatter, err = template.ParseFiles(c.frontMatterTpl); err != nil {
			fmt.Fprintf(os.Stderr, "failed to parse front matter template: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	cfg, logger, status := setup()
	if status != subcommands.ExitSuccess {
		return status
	}
	defer logger.Sync()

	src, release, err := openSource(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()
	trades, state, err := src.Snapshot(ctx, date.Range{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(trades) == 0 {
		fmt.Fprintln(stdout, "Ledger has no closed trades, nothing to publish.")
		return subcommands.ExitSuccess
	}
	history := tradeDates(trades)

	written := 0
	for _, p := range periods {
		for window := range history.Split(p) {
			count := 0
			for _, t := range trades {
				if window.Contains(t.ClosedAt) {
					count++
				}
			}
			if count == 0 {
				continue
			}
			task := publishTask{Period: p.String(), Identifier: p.Identifier(window.From), Range: window, Trades: count}
			content, err := c.render(task, trades, state, cfg.Options(), frontMatter)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to render %s dashboard %s: %v\n", task.Period, task.Identifier, err)
				return subcommands.ExitFailure
			}
			path := filepath.Join(c.outputDir, task.Period, task.Identifier+extension(c.format))
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				fmt.Fprintf(os.Stderr, "failed to create output directory: %v\n", err)
				return subcommands.ExitFailure
			}
			if err := os.WriteFile(path, content, 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "failed to write file %s: %v\n", path, err)
				return subcommands.ExitFailure
			}
			logger.Debug("dashboard published", zap.String("path", path), zap.Int("trades", count))
			written++
		}
	}
	fmt.Fprintf(stdout, "Published %d dashboards in %s\n", written, c.outputDir)
	return subcommands.ExitSuccess
}

// render returns the dashboard of one period.
func (c *publishCmd) render(task publishTask, trades []tradestats.Trade, state tradestats.PortfolioState, opts tradestats.Options, frontMatter *template.Template) ([]byte, error) {
	r, err := renderer.New(c.format, fmt.Sprintf("%s %s", renderer.DefaultTitle, task.Identifier))
	if err != nil {
		return nil, err
	}
	opts.Window = task.Range
	d := tradestats.DeriveDashboard(trades, state, opts)

	var buf bytes.Buffer
	if frontMatter != nil && extension(c.format) == ".md" {
		if err := frontMatter.Execute(&buf, task); err != nil {
			return nil, err
		}
		buf.WriteString("\n")
	}
	if err := r.Render(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// tradeDates returns the range from the first to the last trade.
func tradeDates(trades []tradestats.Trade) date.Range {
	r := date.Range{From: trades[0].ClosedAt, To: trades[0].ClosedAt}
	for _, t := range trades[1:] {
		if t.ClosedAt.Before(r.From) {
			r.From = t.ClosedAt
		}
		if t.ClosedAt.After(r.To) {
			r.To = t.ClosedAt
		}
	}
	return r
}
