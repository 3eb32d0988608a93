package calculator

import (
	"testing"

	"github.com/budgetbuddy/backend/internal/models"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		entries []models.LedgerEntry
		want    Summary
	}{
		{
			name: "empty ledger",
			want: Summary{},
		},
		{
			name: "mixed directions",
			entries: []models.LedgerEntry{
				{Counterparty: "priya", NetAmount: 200},
				{Counterparty: "rahul", NetAmount: 150},
				{Counterparty: "sneha", NetAmount: -267},
				{Counterparty: "arjun", NetAmount: 0},
			},
			want: Summary{TotalOwedBySelf: 267, TotalOwedToSelf: 350, Net: 83, Outstanding: 3},
		},
		{
			name: "only debts",
			entries: []models.LedgerEntry{
				{Counterparty: "priya", NetAmount: -50},
				{Counterparty: "rahul", NetAmount: -25},
			},
			want: Summary{TotalOwedBySelf: 75, Net: -75, Outstanding: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.entries)
			if got != tt.want {
				t.Errorf("Summarize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSummarize_MatchesRecomputation(t *testing.T) {
	var entries []models.LedgerEntry
	for i := int64(-20); i <= 20; i++ {
		entries = append(entries, models.LedgerEntry{Counterparty: "p", NetAmount: i * 37})

		var owedBy, owedTo int64
		for _, e := range entries {
			if e.NetAmount < 0 {
				owedBy += -e.NetAmount
			} else {
				owedTo += e.NetAmount
			}
		}

		got := Summarize(entries)
		if got.TotalOwedBySelf != owedBy || got.TotalOwedToSelf != owedTo {
			t.Fatalf("after %d entries: got %+v, want owedBy=%d owedTo=%d", len(entries), got, owedBy, owedTo)
		}
	}
}

func TestOutstandingEntries(t *testing.T) {
	entries := []models.LedgerEntry{
		{Counterparty: "rahul", NetAmount: 150},
		{Counterparty: "arjun", NetAmount: 0},
		{Counterparty: "sneha", NetAmount: -267},
		{Counterparty: "priya", NetAmount: 150},
	}

	got := OutstandingEntries(entries)
	want := []string{"sneha", "priya", "rahul"}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Counterparty != name {
			t.Errorf("entry %d = %s, want %s", i, got[i].Counterparty, name)
		}
	}
}
