package calculator

import (
	"sort"

	"github.com/budgetbuddy/backend/internal/models"
)

// Summary is the "you owe / you are owed" view over a set of ledger entries.
type Summary struct {
	TotalOwedBySelf int64 // sum of |net| over entries where self owes
	TotalOwedToSelf int64 // sum of net over entries where self is owed
	Net             int64 // TotalOwedToSelf - TotalOwedBySelf
	Outstanding     int   // number of non-zero entries
}

// Summarize projects entries into a Summary. It is recomputed on every read;
// nothing caches the totals.
func Summarize(entries []models.LedgerEntry) Summary {
	var s Summary
	for _, e := range entries {
		switch {
		case e.NetAmount < 0:
			s.TotalOwedBySelf += -e.NetAmount
			s.Outstanding++
		case e.NetAmount > 0:
			s.TotalOwedToSelf += e.NetAmount
			s.Outstanding++
		}
	}
	s.Net = s.TotalOwedToSelf - s.TotalOwedBySelf
	return s
}

// OutstandingEntries returns the non-zero entries, largest absolute balance
// first and by counterparty for ties.
func OutstandingEntries(entries []models.LedgerEntry) []models.LedgerEntry {
	out := make([]models.LedgerEntry, 0, len(entries))
	for _, e := range entries {
		if e.Outstanding() {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aj := abs(out[i].NetAmount), abs(out[j].NetAmount)
		if ai != aj {
			return ai > aj
		}
		return out[i].Counterparty < out[j].Counterparty
	})
	return out
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
