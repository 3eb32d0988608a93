package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/budgetbuddy/backend/internal/ledger"
	"github.com/budgetbuddy/backend/internal/storage/memory"
)

const script = `
# dinner out
{"op":"split","title":"Pizza","amount":"600","payer":"you","with":["you","Priya","Rahul"]}
{"op":"split","title":"Cab","amount":"900","payer":"priya","with":["you","priya","rahul"]}
{"op":"settle","counterparty":"rahul"}
{"op":"delta","counterparty":"asha","amount":"-12.50"}
{"op":"friend","counterparty":"Meera K"}
`

func TestSimulate(t *testing.T) {
	ctx := context.Background()
	engine := ledger.New(memory.New())

	res, err := simulate(ctx, engine, "u1", "INR", strings.NewReader(script), false)
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}
	if res.Applied != 5 || len(res.Rejected) != 0 {
		t.Fatalf("Unexpected result: %+v", res)
	}

	want := map[string]int64{"priya": -10000, "rahul": 0, "asha": -1250}
	entries, _ := engine.Entries(ctx, "u1")
	if len(entries) != len(want) {
		t.Fatalf("Expected %d entries, got %+v", len(want), entries)
	}
	for _, e := range entries {
		if e.NetAmount != want[e.Counterparty] {
			t.Errorf("%s = %d, want %d", e.Counterparty, e.NetAmount, want[e.Counterparty])
		}
	}

	friends, _ := engine.Participants(ctx, "u1")
	if len(friends) != 3 {
		t.Errorf("Expected 3 participants, got %+v", friends)
	}
}

func TestSimulate_Rejections(t *testing.T) {
	ctx := context.Background()
	input := strings.Join([]string{
		`{"op":"settle","counterparty":"nobody"}`,
		`{"op":"split","title":"Tea","amount":"0","with":["you","priya"]}`,
		`{"op":"split","title":"Tea","amount":"1.005","with":["you","priya"]}`,
		`{"op":"dance"}`,
		`{"op":"split","title":"Tea","amount":"40","with":["you","priya"]}`,
	}, "\n")

	t.Run("stops at first rejection", func(t *testing.T) {
		engine := ledger.New(memory.New())
		_, err := simulate(ctx, engine, "u1", "INR", strings.NewReader(input), false)
		if !errors.Is(err, ledger.ErrNothingToSettle) {
			t.Fatalf("Expected ErrNothingToSettle, got %v", err)
		}
		if !strings.HasPrefix(err.Error(), "line 1:") {
			t.Errorf("Error should name the line: %v", err)
		}
	})

	t.Run("keep going", func(t *testing.T) {
		engine := ledger.New(memory.New())
		res, err := simulate(ctx, engine, "u1", "INR", strings.NewReader(input), true)
		if err != nil {
			t.Fatalf("simulate failed: %v", err)
		}
		if res.Applied != 1 || len(res.Rejected) != 4 {
			t.Errorf("Unexpected result: %+v", res)
		}
		entry, err := engine.Get(ctx, "u1", "priya")
		if err != nil || entry.NetAmount != 2000 {
			t.Errorf("priya = %+v, %v; want 2000", entry, err)
		}
	})

	t.Run("malformed json always fails", func(t *testing.T) {
		engine := ledger.New(memory.New())
		_, err := simulate(ctx, engine, "u1", "INR", strings.NewReader("{not json"), true)
		if err == nil {
			t.Fatal("Expected an error for malformed input")
		}
	})
}

func TestSimulationReport(t *testing.T) {
	ctx := context.Background()
	engine := ledger.New(memory.New())
	res, err := simulate(ctx, engine, "u1", "INR", strings.NewReader(script), false)
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}

	report, err := simulationReport(ctx, engine, "u1", "INR", res)
	if err != nil {
		t.Fatalf("simulationReport failed: %v", err)
	}

	for _, want := range []string{
		"5 operation(s) applied, 0 rejected.",
		"| priya | you owe | ₹100.00 |",
		"| rahul | settled | ₹0.00 |",
		"| You owe | ₹112.50 |",
		// Raw deltas are not part of the history, so the audit flags them.
		"**1 discrepancy(ies) found.**",
		"| asha | -₹12.50 | ₹0.00 |",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("Report is missing %q:\n%s", want, report)
		}
	}
}
