package calculator

import (
	"errors"
	"fmt"

	"github.com/budgetbuddy/backend/internal/models"
)

var (
	ErrInvalidAmount  = errors.New("amount must be positive")
	ErrTargetDecrease = errors.New("new target must be greater than or equal to current target")
)

// Deposit adds amount to a savings goal without exceeding its target.
// It returns how much was actually added.
func Deposit(goal *models.SavingsGoal, amount int64) (int64, error) {
	if amount <= 0 || amount > MaxAmount {
		return 0, ErrInvalidAmount
	}
	added := min(amount, max(goal.Target-goal.Current, 0))
	goal.Current += added
	return added, nil
}

// Retarget raises the target of a savings goal. Targets never shrink.
func Retarget(goal *models.SavingsGoal, target int64) error {
	if target <= 0 || target > MaxAmount {
		return ErrInvalidAmount
	}
	if target < goal.Target {
		return fmt.Errorf("%w: %d < %d", ErrTargetDecrease, target, goal.Target)
	}
	goal.Target = target
	return nil
}

// Progress returns how far a goal is towards its target, capped at 100.
func Progress(goal models.SavingsGoal) int {
	if goal.Target <= 0 {
		return 0
	}
	return int(min(goal.Current*100/goal.Target, 100))
}
