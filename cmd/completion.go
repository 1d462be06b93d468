package cmd

import (
	"flag"

	"github.com/etnz/tradestats/renderer"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// flagPredictors predicts flag values by flag name, other flags take any value.
var flagPredictors = map[string]complete.Predictor{
	"config":   predict.Files("*.yaml"),
	"ledger":   predict.Files("*.jsonl"),
	"csv":      predict.Files("*.csv"),
	"json":     predict.Files("*.json"),
	"o":        predict.Files("*"),
	"f":        predict.Set(renderer.Names()),
	"currency": predict.Set([]string{"INR", "USD", "EUR"}),
}

// Completion returns the shell completion of the application.
//
// It is installed with COMP_INSTALL=1 pnl, and answers when the shell sets
// COMP_LINE.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: predictFlags(flag.CommandLine),
	}
	for _, name := range []string{"help", "flags", "commands"} {
		root.Sub[name] = &complete.Command{}
	}
	for _, c := range Commands {
		fs := flag.NewFlagSet(c.Command.Name(), flag.ContinueOnError)
		c.Command.SetFlags(fs)
		root.Sub[c.Command.Name()] = &complete.Command{Flags: predictFlags(fs)}
	}
	return root
}

func predictFlags(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		if p, ok := flagPredictors[f.Name]; ok {
			flags[f.Name] = p
			return
		}
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			flags[f.Name] = predict.Nothing
			return
		}
		flags[f.Name] = predict.Something
	})
	return flags
}
