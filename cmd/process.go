package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/trackmetal"
	"github.com/etnz/trackmetal/renderer"
	"github.com/google/subcommands"
)

// processCmd replays the statement files and writes the flat-file exports.
type processCmd struct {
	outDir string
}

func (*processCmd) Name() string     { return "process" }
func (*processCmd) Synopsis() string { return "replay statements and write the tm- export files" }
func (*processCmd) Usage() string {
	return `tm process [-o <dir>] <statement files...>

  Parses the service statement files, reconciles transfers and like-kind
  exchanges, replays the stream through the FIFO lot ledger, and writes
  tm-transactions.txt, tm-lots.txt, tm-holdings.txt and one tm-gains-<year>.txt
  per year with sales.

Usage Examples:
$ tm process GoldMoney-*.txt BullionVault-*.txt

`
}

func (c *processCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.outDir, "o", ".", "Directory to write the export files into")
}

func (c *processCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	inv, txs, err := loadInventory(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := c.export("tm-transactions.txt", func(w *os.File) error {
		return trackmetal.ExportTransactions(w, txs)
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := c.export("tm-lots.txt", func(w *os.File) error {
		return trackmetal.ExportLots(w, inv.LotsReport())
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	holdings, err := inv.HoldingsReport()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := c.export("tm-holdings.txt", func(w *os.File) error {
		return trackmetal.ExportHoldings(w, holdings)
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, year := range inv.Years() {
		report := inv.GainsReport(year)
		if err := c.export(fmt.Sprintf("tm-gains-%d.txt", year), func(w *os.File) error {
			return trackmetal.ExportGains(w, report)
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	printMarkdown(renderer.HoldingsMarkdown(holdings))
	return subcommands.ExitSuccess
}

func (c *processCmd) export(name string, write func(*os.File) error) error {
	path := filepath.Join(c.outDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create export %q: %w", path, err)
	}
	defer f.Close()
	if err := write(f); err != nil {
		return fmt.Errorf("cannot write export %q: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", path)
	return nil
}
