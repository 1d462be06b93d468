package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/tradestats/assist"
	"github.com/etnz/tradestats/date"
	"github.com/etnz/tradestats/renderer"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

// assistCmd is the subcommand for the AI commentary.
type assistCmd struct {
	interactive bool
	model       string
	from        string
	to          string
}

func (*assistCmd) Name() string { return "assist" }
func (*assistCmd) Synopsis() string {
	return "comment on the dashboard with a Gemini model"
}
func (*assistCmd) Usage() string {
	return `pnl assist [-i] [-model <name>] [-from <date>] [-to <date>] [question...]

  Sends the dashboard to a Gemini model and prints its commentary. Without
  a question, asks for an overall assessment. With -i, keeps the session
  open for follow-up questions.

  The API key is read from gemini.api_key, TRADESTATS_GEMINI_API_KEY or
  GEMINI_API_KEY. Without a key only a plain outline is printed.
`
}

func (c *assistCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.interactive, "i", false, "Keep the session open for follow-up questions.")
	f.StringVar(&c.model, "model", "", "Gemini model. Defaults to the configured model.")
	f.StringVar(&c.from, "from", "", "Only include trades closed on or after this date (YYYY-MM-DD).")
	f.StringVar(&c.to, "to", "", "Only include trades closed on or before this date (YYYY-MM-DD).")
}

// Execute executes the command.
func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	window, err := date.ParseRange(c.from, c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing dates: %v\n", err)
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
	fmt.Fprintln(stdout, assist.Outline(d))
	fmt.Fprintln(stdout)

	if cfg.Gemini.APIKey == "" {
		fmt.Fprintln(os.Stderr, "No Gemini API key configured, set GEMINI_API_KEY for a commentary.")
		return subcommands.ExitFailure
	}
	model := c.model
	if model == "" {
		model = cfg.Gemini.Model
	}

	client, err := assist.NewClient(ctx, cfg.Gemini.APIKey)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}
	commentator := assist.NewCommentator(model, d, renderer.DashboardMarkdown(d, ""))
	if err := commentator.Start(ctx, client); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	logger.Debug("commentary session started", zap.String("model", model))

	question := strings.Join(f.Args(), " ")
	if !c.interactive {
		answer, err := commentator.Comment(ctx, question)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Commentary failed:", err)
			return subcommands.ExitFailure
		}
		if err := printMarkdown(stdout, answer); err != nil {
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	if question == "" {
		question = assist.DefaultQuestion
	}
	session := assist.NewSession(stdout, os.Stdin, commentator, printMarkdown)
	if err := session.Run(ctx, question); err != nil {
		fmt.Fprintln(os.Stderr, "Session failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
