// Package events is an in-process, synchronous event bus for ledger and
// personal finance changes.
//
// The set of events is closed: every variant is declared in this package and
// handlers switch on the concrete type.
package events

import (
	"context"
	"sync"

	"github.com/budgetbuddy/backend/internal/models"
)

// Event is one of the variants below.
type Event interface {
	// Kind is a stable name for logs and metrics labels.
	Kind() string
	sealed()
}

// ExpenseRecorded is published after a shared expense has been committed.
type ExpenseRecorded struct {
	UserID  string
	Expense models.SharedExpense
	Deltas  []models.Delta
}

// EntryChanged is published for every ledger entry an operation touched.
type EntryChanged struct {
	UserID   string
	Previous int64
	Entry    models.LedgerEntry
}

// Flipped reports whether the balance changed sides.
func (e EntryChanged) Flipped() bool {
	return (e.Previous > 0 && e.Entry.NetAmount < 0) || (e.Previous < 0 && e.Entry.NetAmount > 0)
}

// Settled is published after a settlement event has been committed.
type Settled struct {
	UserID string
	Event  models.SettlementEvent
}

// PersonalExpenseAdded is published after a personal expense is stored.
type PersonalExpenseAdded struct {
	UserID  string
	Expense models.Expense
}

// SavingsUpdated is published when money is added to a goal or it is retargeted.
type SavingsUpdated struct {
	UserID string
	Goal   models.SavingsGoal
	Added  int64
}

func (ExpenseRecorded) Kind() string      { return "expense_recorded" }
func (EntryChanged) Kind() string         { return "entry_changed" }
func (Settled) Kind() string              { return "settled" }
func (PersonalExpenseAdded) Kind() string { return "personal_expense_added" }
func (SavingsUpdated) Kind() string       { return "savings_updated" }

func (ExpenseRecorded) sealed()      {}
func (EntryChanged) sealed()         {}
func (Settled) sealed()              {}
func (PersonalExpenseAdded) sealed() {}
func (SavingsUpdated) sealed()       {}

// Handler receives published events. Handlers run on the publisher's
// goroutine and must not block.
type Handler func(ctx context.Context, e Event)

// Bus fans events out to subscribed handlers.
// A nil *Bus is valid and drops every event.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers h for every subsequent Publish.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish delivers e to every handler in subscription order.
func (b *Bus) Publish(ctx context.Context, e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, e)
	}
}
