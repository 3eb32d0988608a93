package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/budgetbuddy/backend/internal/ledger"
	"github.com/budgetbuddy/backend/internal/money"
	"github.com/budgetbuddy/backend/internal/storage/memory"
)

// simUser owns the simulated ledger when -user is not set.
const simUser = "simulator"

type simulateCmd struct {
	keepGoing bool
}

func (*simulateCmd) Name() string     { return "simulate" }
func (*simulateCmd) Synopsis() string { return "replay a JSONL script against a throwaway ledger" }
func (*simulateCmd) Usage() string {
	return `ledgerctl simulate [-k] <script.jsonl | ->

  Runs one operation per line against an in-memory ledger and prints the
  resulting balances, summary and audit. Nothing is written to the database.
  Lines are JSON objects:

    {"op":"split","title":"Pizza","amount":"600","payer":"you","with":["you","priya"]}
    {"op":"settle","counterparty":"priya"}
    {"op":"delta","counterparty":"rahul","amount":"-50"}
    {"op":"friend","counterparty":"Asha Rao"}

  Blank lines and lines starting with # are ignored.
`
}

func (c *simulateCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.keepGoing, "k", false, "Keep going after a rejected operation")
}

func (c *simulateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: simulate takes exactly one script path, or - for stdin.")
		return subcommands.ExitUsageError
	}
	if _, err := money.Currency(*currency); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	var in io.Reader = os.Stdin
	if name := f.Arg(0); name != "-" {
		file, err := os.Open(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script %q: %v\n", name, err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		in = file
	}

	user := strings.TrimSpace(*userID)
	if user == "" {
		user = simUser
	}
	engine := ledger.New(memory.New())

	res, err := simulate(ctx, engine, user, *currency, in, c.keepGoing)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	report, err := simulationReport(ctx, engine, user, *currency, res)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(report)
	return subcommands.ExitSuccess
}

// simOp is one line of a simulation script.
type simOp struct {
	Op           string   `json:"op"`
	Title        string   `json:"title,omitempty"`
	Amount       string   `json:"amount,omitempty"`
	Payer        string   `json:"payer,omitempty"`
	With         []string `json:"with,omitempty"`
	Counterparty string   `json:"counterparty,omitempty"`
}

type simResult struct {
	Applied  int
	Rejected []string
}

var errUnknownOp = errors.New("unknown op")

// rejected reports whether err is the ledger refusing an operation rather
// than the simulation itself breaking.
func rejected(err error) bool {
	return errors.Is(err, ledger.ErrInvalidExpense) ||
		errors.Is(err, ledger.ErrInvalidParticipant) ||
		errors.Is(err, ledger.ErrNothingToSettle) ||
		errors.Is(err, money.ErrInvalidAmount) ||
		errors.Is(err, errUnknownOp)
}

// simulate runs every operation in r against engine. Rejected operations
// stop the run unless keepGoing is set.
func simulate(ctx context.Context, engine *ledger.Engine, user, code string, r io.Reader, keepGoing bool) (simResult, error) {
	var res simResult
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		var op simOp
		if err := json.Unmarshal([]byte(text), &op); err != nil {
			return res, fmt.Errorf("line %d: %w", line, err)
		}

		err := applyOp(ctx, engine, user, code, op)
		switch {
		case err == nil:
			res.Applied++
		case rejected(err) && keepGoing:
			res.Rejected = append(res.Rejected, fmt.Sprintf("line %d: %v", line, err))
		default:
			return res, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("failed to read script: %w", err)
	}
	return res, nil
}

func applyOp(ctx context.Context, engine *ledger.Engine, user, code string, op simOp) error {
	switch op.Op {
	case "split":
		total, err := money.Parse(op.Amount, code)
		if err != nil {
			return err
		}
		payer := op.Payer
		if payer == "" {
			payer = "you"
		}
		_, _, err = engine.RecordExpense(ctx, user, ledger.ExpenseInput{
			Title:        op.Title,
			TotalAmount:  total,
			Payer:        payer,
			Participants: op.With,
		})
		return err
	case "settle":
		_, err := engine.Settle(ctx, user, op.Counterparty)
		return err
	case "delta":
		amount, err := money.Parse(op.Amount, code)
		if err != nil {
			return err
		}
		_, err = engine.ApplyDelta(ctx, user, ledger.Resolve(user, op.Counterparty), amount)
		return err
	case "friend":
		_, err := engine.AddParticipant(ctx, user, op.Counterparty)
		return err
	default:
		return fmt.Errorf("%w %q", errUnknownOp, op.Op)
	}
}

func simulationReport(ctx context.Context, engine *ledger.Engine, user, code string, res simResult) (string, error) {
	entries, err := engine.Entries(ctx, user)
	if err != nil {
		return "", err
	}
	sum, err := engine.Summary(ctx, user)
	if err != nil {
		return "", err
	}
	found, err := engine.Audit(ctx, user)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Simulation\n\n%d operation(s) applied, %d rejected.\n", res.Applied, len(res.Rejected))
	for _, r := range res.Rejected {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	b.WriteString("\n## Balances\n\n")
	renderEntries(&b, entries, code)
	b.WriteString("\n## Summary\n\n")
	renderSummary(&b, sum, code)
	b.WriteString("\n## Audit\n\n")
	renderAudit(&b, found, code)
	return b.String(), nil
}
