// Package cmd implements the CLI application to track metal holdings.
package cmd

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/etnz/trackmetal"
	"github.com/etnz/trackmetal/parser"
	"github.com/google/subcommands"
)

// Commands are the subcommands the entry point registers.
var Commands = []subcommands.Command{
	&processCmd{},
	&gainsCmd{},
	&holdingsCmd{},
	&lotsCmd{},
	&lotCmd{},
	&topicCmd{},
	&assistCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to
// use global variables.

var matchFlag = flag.String("match", "",
	"Like-kind exchange matching strategy (across, similar); defaults to $TM_MATCH, then across")
var verboseFlag = flag.Bool("v", false, "Verbose logging")

// Setup configures logging from the global flags. The entry point calls it
// once, after flag.Parse.
func Setup() {
	level := slog.LevelWarn
	if *verboseFlag {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// matchStrategy resolves the matching strategy: the -match flag, then the
// TM_MATCH environment variable (the entry point loads .env first), then
// across.
func matchStrategy() (trackmetal.MatchStrategy, error) {
	name := *matchFlag
	if name == "" {
		name = os.Getenv("TM_MATCH")
	}
	if name == "" {
		name = trackmetal.MatchAcrossTransactions.String()
	}
	return trackmetal.ParseMatchStrategy(name)
}

// loadTransactions parses and reconciles the statement files given as
// positional arguments.
func loadTransactions(f *flag.FlagSet) ([]*trackmetal.Transaction, error) {
	if f.NArg() == 0 {
		return nil, fmt.Errorf("no statement files given")
	}
	strategy, err := matchStrategy()
	if err != nil {
		return nil, err
	}
	txs, err := parser.ParseFiles(f.Args())
	if err != nil {
		return nil, err
	}
	return trackmetal.Reconcile(txs, strategy)
}

// processFiles parses the given statement files and runs them through the
// full pipeline with the given strategy.
func processFiles(files []string, strategy trackmetal.MatchStrategy) (*trackmetal.Inventory, error) {
	txs, err := parser.ParseFiles(files)
	if err != nil {
		return nil, err
	}
	inv := trackmetal.NewInventory()
	if err := inv.Process(txs, strategy); err != nil {
		return nil, err
	}
	return inv, nil
}

// loadInventory parses, reconciles and replays the statement files given as
// positional arguments, returning the resulting inventory and the reconciled
// transaction stream.
func loadInventory(f *flag.FlagSet) (*trackmetal.Inventory, []*trackmetal.Transaction, error) {
	txs, err := loadTransactions(f)
	if err != nil {
		return nil, nil, err
	}
	inv := trackmetal.NewInventory()
	if err := inv.Replay(txs); err != nil {
		return nil, nil, err
	}
	return inv, txs, nil
}
