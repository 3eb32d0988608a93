package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/budgetbuddy/backend/internal/ledger"
)

type settleCmd struct{}

func (*settleCmd) Name() string     { return "settle" }
func (*settleCmd) Synopsis() string { return "settle the balance with a counterparty" }
func (*settleCmd) Usage() string {
	return `ledgerctl -user <id> settle <counterparty>

  Records that the outstanding balance with the counterparty was paid in
  full and resets it to zero. Settling is not deduplicated: run it once per
  real payment.
`
}

func (*settleCmd) SetFlags(*flag.FlagSet) {}

func (*settleCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	user, ok := owner()
	if !ok {
		return subcommands.ExitUsageError
	}
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: settle takes exactly one counterparty.")
		return subcommands.ExitUsageError
	}

	engine, done, err := openEngine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer done()

	event, err := engine.Settle(ctx, user, f.Arg(0))
	if errors.Is(err, ledger.ErrNothingToSettle) {
		fmt.Fprintf(os.Stderr, "Nothing to settle with %s.\n", f.Arg(0))
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error settling: %v\n", err)
		return subcommands.ExitFailure
	}

	var b strings.Builder
	renderSettlement(&b, *event, *currency)
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
