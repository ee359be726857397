package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/trackmetal/renderer"
	"github.com/google/subcommands"
)

// lotCmd shows one lot in full, including its audit history.
type lotCmd struct {
	id string
}

func (*lotCmd) Name() string     { return "lot" }
func (*lotCmd) Synopsis() string { return "show one lot with its full history" }
func (*lotCmd) Usage() string {
	return `tm lot -id <lot id> <statement files...>

  Shows one lot: remaining weight, adjusted basis, and every event that
  touched it (fees, transfers, splits, sales).
`
}

func (c *lotCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Lot id, as shown by 'tm lots'")
}

func (c *lotCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		fmt.Fprintln(os.Stderr, "Error: -id is required")
		return subcommands.ExitUsageError
	}
	inv, _, err := loadInventory(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	lot, ok := inv.Lot(c.id)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: no lot %q\n", c.id)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.LotMarkdown(&lot))
	return subcommands.ExitSuccess
}
