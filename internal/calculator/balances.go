package calculator

import (
	"fmt"

	"github.com/budgetbuddy/backend/internal/models"
)

// Replay rebuilds self's balances from history alone.
//
// Algorithm:
// - For each shared expense: apply the deltas Split produces
// - For each settlement: apply the inverse of what the settle cleared
//   (paid cleared a negative balance, received cleared a positive one)
//
// Addition commutes, so the order of the inputs does not matter.
func Replay(expenses []models.SharedExpense, events []models.SettlementEvent) (map[string]int64, error) {
	balances := make(map[string]int64)

	for _, expense := range expenses {
		deltas, err := Split(expense)
		if err != nil {
			return nil, fmt.Errorf("failed to replay expense %s: %w", expense.ID, err)
		}
		for _, d := range deltas {
			if balances[d.Counterparty], err = AddBalance(balances[d.Counterparty], d.SignedAmount); err != nil {
				return nil, fmt.Errorf("failed to replay expense %s: %w", expense.ID, err)
			}
		}
	}

	for _, ev := range events {
		var delta int64
		switch ev.Direction {
		case models.DirectionPaid:
			delta = ev.Amount
		case models.DirectionReceived:
			delta = -ev.Amount
		default:
			return nil, fmt.Errorf("failed to replay settlement %s: unknown direction %q", ev.ID, ev.Direction)
		}
		next, err := AddBalance(balances[ev.Counterparty], delta)
		if err != nil {
			return nil, fmt.Errorf("failed to replay settlement %s: %w", ev.ID, err)
		}
		balances[ev.Counterparty] = next
	}

	return balances, nil
}
