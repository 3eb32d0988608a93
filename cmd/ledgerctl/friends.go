package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
)

type friendsCmd struct {
	add string
}

func (*friendsCmd) Name() string     { return "friends" }
func (*friendsCmd) Synopsis() string { return "list or add counterparties" }
func (*friendsCmd) Usage() string {
	return `ledgerctl -user <id> friends [-add <name>]

  Lists everyone the ledger knows about. With -add, records a new friend
  first; adding an existing name is a no-op.
`
}

func (c *friendsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.add, "add", "", "Display name of a friend to add")
}

func (c *friendsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	if c.add != "" {
		if _, err := engine.AddParticipant(ctx, user, c.add); err != nil {
			fmt.Fprintf(os.Stderr, "Error adding %q: %v\n", c.add, err)
			return subcommands.ExitFailure
		}
	}

	participants, err := engine.Participants(ctx, user)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing friends: %v\n", err)
		return subcommands.ExitFailure
	}

	var b strings.Builder
	renderFriends(&b, participants)
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
