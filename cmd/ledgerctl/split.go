package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/budgetbuddy/backend/internal/ledger"
	"github.com/budgetbuddy/backend/internal/money"
)

type splitCmd struct {
	title  string
	amount string
	payer  string
	with   string
}

func (*splitCmd) Name() string     { return "split" }
func (*splitCmd) Synopsis() string { return "record a shared expense split equally" }
func (*splitCmd) Usage() string {
	return `ledgerctl -user <id> split -title <title> -amount <amount> -with <a,b,...> [-payer <name>]

  Splits the amount equally between the participants and updates the
  balances between you and everyone involved. The amount is in major units
  ("600", "600.50"). Use "you" for yourself; the payer defaults to you.
`
}

func (c *splitCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.title, "title", "", "What the expense was for (required)")
	f.StringVar(&c.amount, "amount", "", "Total amount in major units (required)")
	f.StringVar(&c.payer, "payer", "you", "Who paid")
	f.StringVar(&c.with, "with", "", "Comma separated participants, including the payer if they share (required)")
}

func (c *splitCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	user, ok := owner()
	if !ok {
		return subcommands.ExitUsageError
	}
	if strings.TrimSpace(c.title) == "" || c.amount == "" || c.with == "" {
		fmt.Fprintln(os.Stderr, "Error: -title, -amount and -with are required.")
		return subcommands.ExitUsageError
	}
	total, err := money.Parse(c.amount, *currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing amount %q: %v\n", c.amount, err)
		return subcommands.ExitUsageError
	}

	engine, done, err := openEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer done()

	expense, entries, err := engine.RecordExpense(ctx, user, ledger.ExpenseInput{
		Title:        c.title,
		TotalAmount:  total,
		Payer:        c.payer,
		Participants: splitList(c.with),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error recording expense: %v\n", err)
		return subcommands.ExitFailure
	}

	var b strings.Builder
	renderExpense(&b, *expense, *currency)
	b.WriteString("\n")
	renderEntries(&b, entries, *currency)
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
