package calculator

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/budgetbuddy/backend/internal/models"
)

// ErrInvalidExpense is returned for a shared expense that cannot be split.
var ErrInvalidExpense = errors.New("invalid expense")

// ValidateExpense checks the shape of a shared expense before splitting.
func ValidateExpense(expense models.SharedExpense) error {
	if expense.TotalAmount <= 0 {
		return fmt.Errorf("%w: total amount must be positive", ErrInvalidExpense)
	}
	if expense.TotalAmount > MaxAmount {
		return fmt.Errorf("%w: total amount above %d: %w", ErrInvalidExpense, MaxAmount, ErrAmountOutOfRange)
	}
	if len(expense.Participants) == 0 {
		return fmt.Errorf("%w: must have at least one participant", ErrInvalidExpense)
	}
	if strings.TrimSpace(expense.Payer) == "" {
		return fmt.Errorf("%w: payer is required", ErrInvalidExpense)
	}

	seen := make(map[string]bool, len(expense.Participants))
	for _, p := range expense.Participants {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: participant must not be blank", ErrInvalidExpense)
		}
		if seen[p] {
			return fmt.Errorf("%w: duplicate participant %q", ErrInvalidExpense, p)
		}
		seen[p] = true
	}
	return nil
}

// Share returns the per-head share of an expense in minor units.
// Integer division: the remainder stays with the payer.
func Share(expense models.SharedExpense) int64 {
	if len(expense.Participants) == 0 {
		return 0
	}
	return expense.TotalAmount / int64(len(expense.Participants))
}

// Split computes the ledger deltas a shared expense produces for self.
//
// When self paid, every other participant owes self one share. When someone
// else paid and self took part, self owes the payer one share. Debts between
// two friends are not tracked, so an expense self did not pay for and did not
// take part in produces no deltas.
func Split(expense models.SharedExpense) ([]models.Delta, error) {
	if err := ValidateExpense(expense); err != nil {
		return nil, err
	}

	share := Share(expense)

	if models.IsSelf(expense.Payer) {
		deltas := make([]models.Delta, 0, len(expense.Participants))
		for _, p := range expense.Participants {
			if models.IsSelf(p) {
				continue
			}
			deltas = append(deltas, models.Delta{Counterparty: p, SignedAmount: share})
		}
		return deltas, nil
	}

	if slices.Contains(expense.Participants, models.SelfID) {
		return []models.Delta{{Counterparty: expense.Payer, SignedAmount: -share}}, nil
	}

	return []models.Delta{}, nil
}
