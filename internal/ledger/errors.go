package ledger

import (
	"errors"

	"github.com/budgetbuddy/backend/internal/calculator"
	"github.com/budgetbuddy/backend/internal/storage"
)

var (
	// ErrInvalidExpense is returned when a shared expense cannot be split.
	ErrInvalidExpense = calculator.ErrInvalidExpense
	// ErrInvalidParticipant is returned for a blank or self participant name
	// where a counterparty is required.
	ErrInvalidParticipant = errors.New("invalid participant")
	// ErrNothingToSettle is returned when settling a clear entry.
	ErrNothingToSettle = errors.New("nothing to settle")
	// ErrAmountOutOfRange is returned when a delta would push a balance past
	// calculator.MaxAmount.
	ErrAmountOutOfRange = calculator.ErrAmountOutOfRange
	// ErrNotFound is returned when a counterparty has no entry.
	ErrNotFound = storage.ErrNotFound
)
