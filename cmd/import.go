package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/tradestats"
	"github.com/etnz/tradestats/config"
	"github.com/etnz/tradestats/mongostore"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

type importCmd struct {
	csv      string
	json     string
	currency string
	paths    tradestats.JSONPaths
	mongo    bool
	dryRun   bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import a broker P&L statement into the ledger" }
func (*importCmd) Usage() string {
	return `pnl import (-csv <file> | -json <file> [-trades <path>] [-symbol <path>] [-date <path>] [-pnl <path>]) [-currency <code>] [-mongo] [-n]

  Imports closed trades, open positions, charges and the statement period
  from a broker P&L statement, and appends them to the ledger file, or to
  MongoDB with -mongo.

  CSV statements have a summary section (statement period, total charges,
  other credits and debits) followed by a positions table with at least
  Symbol, Quantity, Buy Value and Sell Value columns.

  JSON documents are read with JSONPath expressions. Trades without a date
  are dated by the expiry embedded in their symbol (e.g. NIFTY25AUG24500CE).

Usage Examples:
$ pnl import -csv pnl-statement.csv
$ pnl import -json fills.json -trades '$.data[*]' -pnl '$.realised' -n
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.csv, "csv", "", "CSV P&L statement to import.")
	f.StringVar(&c.json, "json", "", "JSON document to import.")
	f.StringVar(&c.currency, "currency", "", "Currency of the amounts. Defaults to the configured currency.")
	f.StringVar(&c.paths.Trades, "trades", "", "JSONPath of the list of trades. Defaults to the configured path.")
	f.StringVar(&c.paths.Symbol, "symbol", "", "JSONPath of the symbol in a trade.")
	f.StringVar(&c.paths.Date, "date", "", "JSONPath of the close date in a trade.")
	f.StringVar(&c.paths.PnL, "pnl", "", "JSONPath of the realized P&L in a trade.")
	f.BoolVar(&c.mongo, "mongo", false, "Store into the configured MongoDB instead of the ledger file.")
	f.BoolVar(&c.dryRun, "n", false, "Print the imported entries instead of storing them.")
}

// jsonPaths returns the configured paths overridden by the flags.
func (c *importCmd) jsonPaths(cfg *config.Config) tradestats.JSONPaths {
	paths := cfg.JSONPaths
	for _, p := range []struct {
		dst  *string
		flag string
	}{
		{&paths.Trades, c.paths.Trades},
		{&paths.Symbol, c.paths.Symbol},
		{&paths.Date, c.paths.Date},
		{&paths.PnL, c.paths.PnL},
	} {
		if p.flag != "" {
			*p.dst = p.flag
		}
	}
	return paths
}

// entries reads the entries of the input file.
func (c *importCmd) entries(cfg *config.Config, currency string) ([]tradestats.Entry, error) {
	path := c.csv
	if path == "" {
		path = c.json
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if c.csv != "" {
		s, err := tradestats.ImportCSV(f, currency)
		if err != nil {
			return nil, err
		}
		return s.Entries(currency), nil
	}
	return tradestats.ImportJSON(f, c.jsonPaths(cfg), currency)
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if (c.csv == "") == (c.json == "") {
		fmt.Fprintln(os.Stderr, "Error: exactly one of -csv or -json is required.")
		return subcommands.ExitUsageError
	}
	cfg, logger, status := setup()
	if status != subcommands.ExitSuccess {
		return status
	}
	defer logger.Sync()

	currency := c.currency
	if currency == "" {
		currency = cfg.Currency
	}
	entries, err := c.entries(cfg, currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing statement: %v\n", err)
		return subcommands.ExitFailure
	}
	logger.Debug("statement read", zap.Int("entries", len(entries)), zap.String("currency", currency))

	switch {
	case c.dryRun:
		for _, e := range entries {
			if err := tradestats.EncodeEntry(stdout, e); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return subcommands.ExitFailure
			}
		}
		return subcommands.ExitSuccess

	case c.mongo:
		if cfg.Mongo.URI == "" {
			fmt.Fprintln(os.Stderr, "Error: -mongo requires mongo.uri in the configuration.")
			return subcommands.ExitUsageError
		}
		repo, err := mongostore.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		defer repo.Close(context.Background())
		n, err := repo.Import(ctx, entries)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error storing entries: %v\n", err)
			return subcommands.ExitFailure
		}
		logger.Info("statement imported", zap.Int("trades", n), zap.String("database", cfg.Mongo.Database))
		fmt.Fprintf(stdout, "Imported %d entries (%d trades) into %s.%s\n", len(entries), n, cfg.Mongo.Database, cfg.Mongo.Collection)
		return subcommands.ExitSuccess
	}

	ledger, err := DecodeLedger(cfg.Ledger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := ledger.Append(entries...); err != nil {
		fmt.Fprintf(os.Stderr, "Error: imported entries are invalid: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := EncodeLedger(cfg.Ledger, ledger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	logger.Info("statement imported", zap.Int("entries", len(entries)), zap.String("ledger", cfg.Ledger))
	fmt.Fprintf(stdout, "Imported %d entries into %s\n", len(entries), cfg.Ledger)
	return subcommands.ExitSuccess
}
