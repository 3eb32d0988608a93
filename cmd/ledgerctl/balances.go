package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/budgetbuddy/backend/internal/calculator"
)

type balancesCmd struct {
	all bool
}

func (*balancesCmd) Name() string     { return "balances" }
func (*balancesCmd) Synopsis() string { return "list who owes whom" }
func (*balancesCmd) Usage() string {
	return `ledgerctl -user <id> balances [-all]

  Lists outstanding balances, largest first. With -all, settled
  counterparties are listed too.
`
}

func (c *balancesCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.all, "all", false, "Include settled counterparties")
}

func (c *balancesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	entries, err := engine.Entries(ctx, user)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading balances: %v\n", err)
		return subcommands.ExitFailure
	}
	if !c.all {
		entries = calculator.OutstandingEntries(entries)
	}

	var b strings.Builder
	renderEntries(&b, entries, *currency)
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
