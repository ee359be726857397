package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/trackmetal/renderer"
	"github.com/google/subcommands"
)

type holdingsCmd struct{}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "current holdings per metal and item type" }
func (*holdingsCmd) Usage() string {
	return `tm holdings <statement files...>

  Sums the open lots per metal and item type.
`
}

func (*holdingsCmd) SetFlags(f *flag.FlagSet) {}

func (c *holdingsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	inv, _, err := loadInventory(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	report, err := inv.HoldingsReport()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.HoldingsMarkdown(report))
	return subcommands.ExitSuccess
}
