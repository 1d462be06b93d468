package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/tradestats"
	"github.com/etnz/tradestats/config"
	"github.com/etnz/tradestats/date"
	"github.com/etnz/tradestats/renderer"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

type reportCmd struct {
	format string
	output string
	from   string
	to     string
	title  string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "display the trading performance dashboard" }
func (*reportCmd) Usage() string {
	return `pnl report [-f <format>] [-o <file>] [-from <date>] [-to <date>] [-title <title>]

  Computes the P&L summary, the performance metrics, the win/loss
  distribution and the cumulative P&L of the closed trades in the ledger,
  and renders them.

  Formats: markdown, terminal, slate, card, html-slate, html-card, json.

Usage Examples:
# Colour dashboard in the terminal.
$ pnl report -f slate

# HTML page of June trades.
$ pnl report -f html-card -from 2025-06-01 -to 2025-06-30 -o june.html
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "f", "terminal", "Output format.")
	f.StringVar(&c.output, "o", "", "Output file. Defaults to the standard output.")
	f.StringVar(&c.from, "from", "", "Only include trades closed on or after this date (YYYY-MM-DD).")
	f.StringVar(&c.to, "to", "", "Only include trades closed on or before this date (YYYY-MM-DD).")
	f.StringVar(&c.title, "title", "", "Dashboard title.")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	window, err := date.ParseRange(c.from, c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing dates: %v\n", err)
		return subcommands.ExitUsageError
	}
	r, err := renderer.New(c.format, c.title)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	cfg, logger, status := setup()
	if status != subcommands.ExitSuccess {
		return status
	}
	defer logger.Sync()

	d, err := dashboard(ctx, cfg, logger, window)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	var w io.Writer = stdout
	if c.output != "" {
		file, err := os.Create(c.output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		w = file
	}
	if err := r.Render(w, d); err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering dashboard: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.output != "" {
		logger.Info("dashboard written", zap.String("path", c.output), zap.String("format", c.format))
	}
	return subcommands.ExitSuccess
}

// dashboard derives the dashboard of the trades closed in window.
func dashboard(ctx context.Context, cfg *config.Config, logger *zap.Logger, window date.Range) (*tradestats.Dashboard, error) {
	src, release, err := openSource(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer release()

	trades, state, err := src.Snapshot(ctx, window)
	if err != nil {
		return nil, err
	}
	opts := cfg.Options()
	opts.Window = window
	d := tradestats.DeriveDashboard(trades, state, opts)
	logger.Debug("dashboard derived",
		zap.Int("trades", d.Values.TotalTrades),
		zap.Stringer("window", window),
		zap.String("currency", d.Values.Currency),
	)
	return d, nil
}
