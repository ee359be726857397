package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/trackmetal/renderer"
	"github.com/google/subcommands"
)

// gainsCmd holds the flags for the 'gains' subcommand.
type gainsCmd struct {
	year int
}

func (*gainsCmd) Name() string     { return "gains" }
func (*gainsCmd) Synopsis() string { return "realized capital gains per taxable sale" }
func (*gainsCmd) Usage() string {
	return `tm gains [-year <year>] <statement files...>

  Lists the taxable sales with their FIFO cost basis, proceeds and net gain.
  By default all years are listed; -year restricts to one tax year.

Usage Examples:
$ tm gains -year 2024 GoldMoney-*.txt

`
}

func (c *gainsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "year", 0, "Tax year to report on (0 for all years)")
}

func (c *gainsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	inv, _, err := loadInventory(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.GainsMarkdown(inv.GainsReport(c.year)))
	return subcommands.ExitSuccess
}
