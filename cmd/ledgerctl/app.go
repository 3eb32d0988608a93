package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/budgetbuddy/backend/internal/ledger"
	"github.com/budgetbuddy/backend/internal/money"
	"github.com/budgetbuddy/backend/internal/storage"
	"github.com/budgetbuddy/backend/internal/storage/memory"
	"github.com/budgetbuddy/backend/internal/storage/sqlite"
)

// register adds every ledgerctl subcommand to c.
func register(c *subcommands.Commander) {
	c.Register(&splitCmd{}, "ledger")
	c.Register(&settleCmd{}, "ledger")
	c.Register(&friendsCmd{}, "ledger")

	c.Register(&balancesCmd{}, "reports")
	c.Register(&summaryCmd{}, "reports")
	c.Register(&historyCmd{}, "reports")
	c.Register(&auditCmd{}, "reports")

	c.Register(&simulateCmd{}, "tools")
}

// memoryDB selects a throwaway in-memory ledger instead of a SQLite file.
const memoryDB = ":memory:"

// ledgerctl runs one command and exits, so plain package flags are fine.
var (
	dbPath   = flag.String("db", "./data/budgetbuddy.db", "SQLite database file, or "+memoryDB+" for a throwaway ledger")
	userID   = flag.String("user", "", "ID of the user whose ledger is used")
	currency = flag.String("currency", string(money.DefaultCurrency), "ISO 4217 currency for parsing and display")
	logLevel = flag.String("log-level", "warn", "Log level: debug, info, warn, error")
	plain    = flag.Bool("plain", false, "Print raw markdown instead of rendering it")
)

// openEngine opens the configured store and returns an engine over it plus
// a function releasing the store.
func openEngine() (*ledger.Engine, func(), error) {
	if _, err := money.Currency(*currency); err != nil {
		return nil, nil, err
	}

	var (
		store storage.TxLedgerStore
		done  = func() {}
	)
	if *dbPath == memoryDB {
		store = memory.New()
	} else {
		s, err := sqlite.New(*dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open %s: %w", *dbPath, err)
		}
		store = s
		done = func() { s.Close() }
	}
	return ledger.New(store), done, nil
}

// owner returns the -user flag or reports it missing.
func owner() (string, bool) {
	id := strings.TrimSpace(*userID)
	if id == "" {
		fmt.Fprintln(os.Stderr, "Error: the -user flag is required.")
		return "", false
	}
	return id, true
}

// printMarkdown renders md for the terminal. Rendering failures fall back to
// the raw markdown.
func printMarkdown(md string) {
	if *plain {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}

// splitList splits a comma separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
