package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/trackmetal/cmd"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	// Gemini credentials for 'tm assist' usually live in a .env file.
	godotenv.Load()

	// Shell completion: complete subcommand names and statement files. This
	// only acts when the shell asks for a completion, and exits.
	subs := map[string]*complete.Command{}
	for _, c := range cmd.Commands {
		subs[c.Name()] = &complete.Command{Args: predict.Files("*")}
	}
	completion := &complete.Command{
		Sub:   subs,
		Flags: map[string]complete.Predictor{"match": predict.Set{"across", "similar"}},
	}
	completion.Complete("tm")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	flag.Parse()
	cmd.Setup()
	os.Exit(int(commander.Execute(context.Background())))
}
