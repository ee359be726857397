package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/trackmetal/agent"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// assistCmd is the subcommand for the AI assistant.
type assistCmd struct{}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "start an interactive session with the AI assistant" }
func (*assistCmd) Usage() string {
	return `tm assist <statement files...> [initial question]

  Starts an interactive session with an AI assistant that has access to your
  holdings, open lots and realized gains. Requires Gemini credentials in the
  environment.
`
}

func (*assistCmd) SetFlags(_ *flag.FlagSet) {}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	// Statement files first, then everything that is not a readable file is
	// the initial prompt.
	var files, words []string
	for _, arg := range f.Args() {
		if _, err := os.Stat(arg); err == nil {
			files = append(files, arg)
		} else {
			words = append(words, arg)
		}
	}
	initialPrompt := strings.Join(words, " ")

	strategy, err := matchStrategy()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	inv, err := processFiles(files, strategy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	accountant := agent.NewTaxAccountant(inv)
	a := agent.New(os.Stdout, os.Stdin, accountant)

	if err := a.Run(ctx, client, initialPrompt); err != nil {
		fmt.Fprintln(os.Stderr, "Agent failed:", err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
