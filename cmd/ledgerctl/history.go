package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
)

type historyCmd struct{}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display shared expenses and settlements" }
func (*historyCmd) Usage() string {
	return `ledgerctl -user <id> history

  Displays every shared expense and settlement, newest first.
`
}

func (*historyCmd) SetFlags(*flag.FlagSet) {}

func (*historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	user, ok := owner()
	if !ok {
		return subcommands.ExitUsageError
	}

	engine, done, err := openEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer done()

	h, err := engine.History(ctx, user)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading history: %v\n", err)
		return subcommands.ExitFailure
	}

	var b strings.Builder
	renderHistory(&b, h, *currency)
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
