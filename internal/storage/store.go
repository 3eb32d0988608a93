// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/budgetbuddy/backend/internal/models"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique constraint would be violated.
	ErrConflict = errors.New("already exists")
)

// LedgerStore holds one user's ledger: the live entries plus the append-only
// history of shared expenses and settlement events.
//
// Every method is scoped by userID. UpsertEntry keys on (userID,
// counterparty), so a counterparty never has more than one entry.
type LedgerStore interface {
	// GetEntry returns the entry for a counterparty or ErrNotFound.
	GetEntry(ctx context.Context, userID, counterparty string) (*models.LedgerEntry, error)

	// UpsertEntry inserts or replaces the entry for entry.Counterparty.
	UpsertEntry(ctx context.Context, userID string, entry *models.LedgerEntry) error

	// ListEntries returns every entry of the user, in no particular order.
	ListEntries(ctx context.Context, userID string) ([]models.LedgerEntry, error)

	// CreateSharedExpense appends a shared expense. ID and CreatedAt are
	// filled in when empty.
	CreateSharedExpense(ctx context.Context, userID string, expense *models.SharedExpense) error

	// ListSharedExpenses returns the user's shared expenses, newest first.
	ListSharedExpenses(ctx context.Context, userID string) ([]models.SharedExpense, error)

	// CreateSettlementEvent appends a settlement event.
	CreateSettlementEvent(ctx context.Context, userID string, event *models.SettlementEvent) error

	// ListSettlementEvents returns the user's settlement events, newest first.
	ListSettlementEvents(ctx context.Context, userID string) ([]models.SettlementEvent, error)

	// EnsureParticipant records a participant unless it already exists.
	EnsureParticipant(ctx context.Context, userID string, participant *models.Participant) error

	// ListParticipants returns the user's participants ordered by display name.
	ListParticipants(ctx context.Context, userID string) ([]models.Participant, error)
}

// TxLedgerStore is a LedgerStore that can group writes into one transaction.
type TxLedgerStore interface {
	LedgerStore

	// WithTx runs fn against a transactional view of the store. Writes made
	// through the view commit together when fn returns nil and are discarded
	// otherwise.
	WithTx(ctx context.Context, fn func(tx LedgerStore) error) error
}

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// FinanceStore persists personal expenses, savings goals and onboarding.
type FinanceStore interface {
	CreateExpense(ctx context.Context, expense *models.Expense) error
	// ListExpenses returns up to limit expenses, newest first. limit <= 0 means all.
	ListExpenses(ctx context.Context, userID string, limit int) ([]models.Expense, error)
	// ListExpensesSince returns expenses spent at or after since (Unix seconds).
	ListExpensesSince(ctx context.Context, userID string, since int64) ([]models.Expense, error)

	CreateSavingsGoal(ctx context.Context, goal *models.SavingsGoal) error
	GetSavingsGoal(ctx context.Context, userID, goalID string) (*models.SavingsGoal, error)
	ListSavingsGoals(ctx context.Context, userID string) ([]models.SavingsGoal, error)
	// UpdateSavingsGoal loads the goal, lets fn modify it and writes it back
	// in one transaction. fn errors abort the update.
	UpdateSavingsGoal(ctx context.Context, userID, goalID string, fn func(goal *models.SavingsGoal) error) (*models.SavingsGoal, error)
	DeleteSavingsGoal(ctx context.Context, userID, goalID string) error

	SaveOnboarding(ctx context.Context, onboarding *models.Onboarding) error
	GetOnboarding(ctx context.Context, userID string) (*models.Onboarding, error)
}

// Store is everything the application persists.
// This abstraction allows swapping storage backends without changing the
// service layer.
type Store interface {
	TxLedgerStore
	UserStore
	FinanceStore

	// Close releases any resources held by the store.
	Close() error
}
