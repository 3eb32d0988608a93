// Command ledgerctl inspects and edits a peer debt ledger from the terminal.
//
// Usage:
//
//	ledgerctl -user <id> balances
//	ledgerctl -user <id> split -title Pizza -amount 600 -with you,priya,rahul
//	ledgerctl simulate ops.jsonl
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"github.com/budgetbuddy/backend/pkg/logging"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	register(commander)

	flag.Parse()
	logging.Setup(*logLevel)
	os.Exit(int(commander.Execute(context.Background())))
}
