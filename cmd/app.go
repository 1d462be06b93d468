// Package cmd implements the pnl command line application.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/etnz/tradestats"
	"github.com/etnz/tradestats/config"
	"github.com/etnz/tradestats/logging"
	"github.com/etnz/tradestats/mongostore"
	"github.com/etnz/tradestats/server"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

// Commands lists the subcommands with their group.
var Commands = []struct {
	Command subcommands.Command
	Group   string
}{
	{&reportCmd{}, "dashboard"},
	{&serveCmd{}, "dashboard"},
	{&assistCmd{}, "dashboard"},
	{&publishCmd{}, "dashboard"},
	{&checkCmd{}, "ledger"},
	{&importCmd{}, "ledger"},
	{&fmtCmd{}, "ledger"},
	{&topicCmd{}, "documentation"},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")
	for _, cmd := range Commands {
		c.Register(cmd.Command, cmd.Group)
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile = flag.String("config", "", "Path to the configuration file (YAML, TOML or JSON). Defaults to ./tradestats.yaml when present.")
	ledgerFile = flag.String("ledger", "", "Path to the ledger file (JSONL format). Overrides the configuration.")
	verbose    = flag.Bool("v", false, "Log debug messages.")
)

// stdout receives the command outputs.
var stdout io.Writer = os.Stdout

// loadConfig loads the configuration, applying the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	if *ledgerFile != "" {
		cfg.Ledger = *ledgerFile
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// newLogger returns the logger configured by cfg, a no-op logger when it
// cannot be built.
func newLogger(cfg *config.Config) *zap.Logger {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot create logger: %v\n", err)
		return zap.NewNop()
	}
	return logger
}

// setup loads the configuration and creates the logger, reporting errors on stderr.
func setup() (*config.Config, *zap.Logger, subcommands.ExitStatus) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return nil, nil, subcommands.ExitFailure
	}
	return cfg, newLogger(cfg), subcommands.ExitSuccess
}

// openSource returns the ledger source of cfg: MongoDB when configured, the
// ledger file otherwise. The returned function releases the source.
func openSource(ctx context.Context, cfg *config.Config, logger *zap.Logger) (server.Source, func(), error) {
	if cfg.Mongo.URI == "" {
		logger.Debug("reading ledger file", zap.String("path", cfg.Ledger))
		return server.LedgerFile(cfg.Ledger), func() {}, nil
	}
	logger.Debug("connecting to mongodb", zap.String("database", cfg.Mongo.Database), zap.String("collection", cfg.Mongo.Collection))
	repo, err := mongostore.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
	if err != nil {
		return nil, nil, err
	}
	return repo, func() {
		if err := repo.Close(context.Background()); err != nil {
			logger.Warn("cannot disconnect from mongodb", zap.Error(err))
		}
	}, nil
}

// DecodeLedger reads the ledger file, a missing file is an empty ledger.
func DecodeLedger(path string) (*tradestats.Ledger, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return tradestats.NewLedger(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open ledger file %q: %w", path, err)
	}
	defer f.Close()
	ledger, err := tradestats.DecodeLedger(f)
	if err != nil {
		return nil, fmt.Errorf("cannot decode ledger file %q: %w", path, err)
	}
	return ledger, nil
}

// EncodeLedger writes the ledger in its canonical form. The file is
// replaced only once fully written.
func EncodeLedger(path string, ledger *tradestats.Ledger) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("error creating ledger file %q: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("error creating ledger file %q: %w", path, err)
	}
	if err := tradestats.EncodeLedger(tmp, ledger); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing ledger file %q: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error writing ledger file %q: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("error replacing ledger file %q: %w", path, err)
	}
	return nil
}
