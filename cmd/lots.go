package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/trackmetal/renderer"
	"github.com/google/subcommands"
)

type lotsCmd struct{}

func (*lotsCmd) Name() string     { return "lots" }
func (*lotsCmd) Synopsis() string { return "open lots with remaining weight and basis" }
func (*lotsCmd) Usage() string {
	return `tm lots <statement files...>

  Lists the open lots, oldest first.
`
}

func (*lotsCmd) SetFlags(f *flag.FlagSet) {}

func (c *lotsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	inv, _, err := loadInventory(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.LotsMarkdown(inv.LotsReport()))
	return subcommands.ExitSuccess
}
