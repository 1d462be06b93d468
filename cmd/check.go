package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/tradestats"
	"github.com/etnz/tradestats/date"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

type checkCmd struct {
	strict bool
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "validate the ledger and the portfolio value" }
func (*checkCmd) Usage() string {
	return `pnl check [-strict]

  Validates every trade and account figure of the ledger, then compares the
  reported portfolio value (valuation command) with the starting capital
  plus the net P&L.

  An inconsistent portfolio value is only a warning unless -strict is set.
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.strict, "strict", false, "Fail when the portfolio value is inconsistent.")
}

func (c *checkCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	if err := tradestats.Validate(trades, state); err != nil {
		fmt.Fprintf(os.Stderr, "Ledger is invalid:\n%v\n", err)
		return subcommands.ExitFailure
	}

	m := tradestats.ComputeMetrics(trades, state, cfg.Options())
	err = tradestats.CheckConsistency(state, m)
	switch {
	case errors.Is(err, tradestats.ErrInconsistentValue) && !c.strict:
		logger.Warn("inconsistent portfolio value", zap.Error(err))
		fmt.Fprintf(stdout, "Warning: %v\n", err)
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Fprintf(stdout, "Ledger is valid: %d trades, net P&L %s, portfolio value %s.\n",
		m.TotalTrades, m.NetPnL, m.PortfolioValue)
	return subcommands.ExitSuccess
}
