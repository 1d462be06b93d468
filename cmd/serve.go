package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/etnz/tradestats/server"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

type serveCmd struct {
	host  string
	port  int
	title string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the dashboard over HTTP" }
func (*serveCmd) Usage() string {
	return `pnl serve [-host <host>] [-port <port>] [-title <title>]

  Serves the dashboard page and its JSON API. Every request reads the
  ledger again, so the dashboard follows the ledger updates.

  GET /                        HTML dashboard (?theme=slate|card)
  GET /api/dashboard           full read model
  GET /api/summary             P&L summary rows
  GET /api/metrics             performance metrics rows
  GET /api/charts/winloss      win/loss series
  GET /api/charts/cumulative   cumulative P&L series
  GET /healthz                 liveness

  All dashboard routes accept from and to dates (YYYY-MM-DD).
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.host, "host", "", "Listen host. Defaults to the configured host.")
	f.IntVar(&c.port, "port", 0, "Listen port. Defaults to the configured port.")
	f.StringVar(&c.title, "title", "", "Dashboard title.")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, logger, status := setup()
	if status != subcommands.ExitSuccess {
		return status
	}
	defer logger.Sync()
	if c.host != "" {
		cfg.Server.Host = c.host
	}
	if c.port != 0 {
		cfg.Server.Port = c.port
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, release, err := openSource(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()

	fmt.Fprintf(stdout, "Dashboard on http://%s\n", cfg.Addr())
	if err := server.New(cfg, src, logger).WithTitle(c.title).Run(ctx); err != nil {
		logger.Error("server failed", zap.Error(err))
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
