package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/etnz/tradestats/config"
)

// Environment variables passed to extensions. The config package reads the
// TRADESTATS_ ones as configuration overrides.
const (
	EnvLedgerFile = "TRADESTATS_LEDGER"
	EnvConfigFile = config.EnvConfigFile
	EnvVerbose    = "TRADESTATS_VERBOSE"
)

// ExtensionPrefix prefixes the executables run as pnl subcommands.
const ExtensionPrefix = "pnl-"

// IsCommand reports whether name is a builtin subcommand.
func IsCommand(name string) bool {
	switch name {
	case "help", "flags", "commands":
		return true
	}
	for _, c := range Commands {
		if c.Command.Name() == name {
			return true
		}
	}
	return false
}

// RunExtension attempts to find and execute an external pnl-<subcommand>
// binary. It returns (true, exitCode) if an extension was found and
// executed, and (false, 0) if none was found.
func RunExtension(subcommand string, args []string) (bool, int) {
	path, err := exec.LookPath(ExtensionPrefix + subcommand)
	if err != nil {
		return false, 0
	}

	cmd := exec.Command(path, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()
	if *ledgerFile != "" {
		cmd.Env = append(cmd.Env, EnvLedgerFile+"="+*ledgerFile)
	}
	if *configFile != "" {
		cmd.Env = append(cmd.Env, EnvConfigFile+"="+*configFile)
	}
	cmd.Env = append(cmd.Env, EnvVerbose+"="+strconv.FormatBool(*verbose))

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return true, exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", path, err)
		return true, 1
	}
	return true, 0
}
