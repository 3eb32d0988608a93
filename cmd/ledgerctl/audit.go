package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
)

type auditCmd struct{}

func (*auditCmd) Name() string     { return "audit" }
func (*auditCmd) Synopsis() string { return "check balances against their history" }
func (*auditCmd) Usage() string {
	return `ledgerctl -user <id> audit

  Replays every shared expense and settlement and compares the result with
  the stored balances. Exits with status 1 when they disagree.
`
}

func (*auditCmd) SetFlags(*flag.FlagSet) {}

func (*auditCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	found, err := engine.Audit(ctx, user)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error auditing ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	var b strings.Builder
	renderAudit(&b, found, *currency)
	printMarkdown(b.String())
	if len(found) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
