// Package ledger implements the settlement engine: the only component that
// changes ledger entries.
//
// Every operation locks the affected (user, counterparty) pairs and writes
// through a single store transaction, so concurrent requests against the
// same counterparty never lose an update.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/budgetbuddy/backend/internal/calculator"
	"github.com/budgetbuddy/backend/internal/events"
	"github.com/budgetbuddy/backend/internal/models"
	"github.com/budgetbuddy/backend/internal/storage"
)

// Engine applies deltas and settlements to per-user ledgers.
type Engine struct {
	store storage.TxLedgerStore
	locks *keyedLocks
	bus   *events.Bus
	now   func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithBus publishes engine events to bus.
func WithBus(bus *events.Bus) Option {
	return func(e *Engine) { e.bus = bus }
}

// New creates an Engine over store.
func New(store storage.TxLedgerStore, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		locks: newKeyedLocks(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExpenseInput is a shared expense as entered, with display names instead of
// participant IDs.
type ExpenseInput struct {
	Title        string
	TotalAmount  int64
	Payer        string
	Participants []string
}

// History is a user's append-only record, newest first.
type History struct {
	Expenses    []models.SharedExpense
	Settlements []models.SettlementEvent
}

// Discrepancy is a counterparty whose live balance differs from the balance
// replayed from history.
type Discrepancy struct {
	Counterparty string
	Live         int64
	Replayed     int64
}

// Resolve maps a display name to a participant ID within userID's ledger.
// "you" in any case and the user's own ID resolve to models.SelfID.
func Resolve(userID, name string) string {
	name = strings.TrimSpace(name)
	if name == userID && name != "" {
		return models.SelfID
	}
	return models.ParticipantID(name)
}

func lockKey(userID, counterparty string) string {
	return userID + "\x00" + counterparty
}

// ApplyDelta adds signedAmount to the entry for counterparty, creating a
// clear entry first when none exists. counterparty is resolved like any
// other name, so "Priya" and "priya" share one entry. A zero delta only
// refreshes the timestamp.
func (e *Engine) ApplyDelta(ctx context.Context, userID, counterparty string, signedAmount int64) (*models.LedgerEntry, error) {
	name := counterparty
	counterparty = Resolve(userID, counterparty)
	if counterparty == "" || models.IsSelf(counterparty) {
		return nil, fmt.Errorf("%w: %q cannot be a counterparty", ErrInvalidParticipant, name)
	}

	unlock := e.locks.Lock(lockKey(userID, counterparty))
	defer unlock()

	var changed events.EntryChanged
	err := e.store.WithTx(ctx, func(tx storage.LedgerStore) error {
		var err error
		changed, err = e.applyDelta(ctx, tx, userID, models.Delta{Counterparty: counterparty, SignedAmount: signedAmount})
		return err
	})
	if err != nil {
		return nil, err
	}

	e.bus.Publish(ctx, changed)
	return &changed.Entry, nil
}

func (e *Engine) applyDelta(ctx context.Context, tx storage.LedgerStore, userID string, delta models.Delta) (events.EntryChanged, error) {
	entry, err := tx.GetEntry(ctx, userID, delta.Counterparty)
	if errors.Is(err, storage.ErrNotFound) {
		entry = &models.LedgerEntry{Counterparty: delta.Counterparty}
	} else if err != nil {
		return events.EntryChanged{}, fmt.Errorf("failed to load entry for %s: %w", delta.Counterparty, err)
	}

	previous := entry.NetAmount
	if entry.NetAmount, err = calculator.AddBalance(previous, delta.SignedAmount); err != nil {
		return events.EntryChanged{}, fmt.Errorf("balance with %s: %w", delta.Counterparty, err)
	}
	entry.LastUpdatedAt = e.now().Unix()

	if err := tx.UpsertEntry(ctx, userID, entry); err != nil {
		return events.EntryChanged{}, err
	}
	return events.EntryChanged{UserID: userID, Previous: previous, Entry: *entry}, nil
}

// RecordExpense validates and splits the expense, stores it, records every
// participant and applies the resulting deltas in one transaction. It returns
// the stored expense and the updated entries of the affected counterparties.
func (e *Engine) RecordExpense(ctx context.Context, userID string, in ExpenseInput) (*models.SharedExpense, []models.LedgerEntry, error) {
	expense := &models.SharedExpense{
		Title:       strings.TrimSpace(in.Title),
		TotalAmount: in.TotalAmount,
		Payer:       Resolve(userID, in.Payer),
		CreatedAt:   e.now().Unix(),
	}
	people := make([]models.Participant, 0, len(in.Participants)+1)
	addPerson := func(name, id string) {
		if models.IsSelf(id) || id == "" {
			return
		}
		for _, p := range people {
			if p.ID == id {
				return
			}
		}
		people = append(people, models.Participant{ID: id, DisplayName: strings.TrimSpace(name), CreatedAt: expense.CreatedAt})
	}
	addPerson(in.Payer, expense.Payer)
	for _, name := range in.Participants {
		id := Resolve(userID, name)
		expense.Participants = append(expense.Participants, id)
		addPerson(name, id)
	}

	deltas, err := calculator.Split(*expense)
	if err != nil {
		return nil, nil, err
	}

	keys := make([]string, 0, len(deltas))
	for _, d := range deltas {
		keys = append(keys, lockKey(userID, d.Counterparty))
	}
	unlock := e.locks.Lock(keys...)
	defer unlock()

	changes := make([]events.EntryChanged, 0, len(deltas))
	err = e.store.WithTx(ctx, func(tx storage.LedgerStore) error {
		for i := range people {
			if err := tx.EnsureParticipant(ctx, userID, &people[i]); err != nil {
				return err
			}
		}
		if err := tx.CreateSharedExpense(ctx, userID, expense); err != nil {
			return err
		}
		for _, d := range deltas {
			changed, err := e.applyDelta(ctx, tx, userID, d)
			if err != nil {
				return err
			}
			changes = append(changes, changed)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to record expense: %w", err)
	}

	slog.Debug("Shared expense recorded", "user_id", userID, "expense_id", expense.ID, "deltas", len(deltas))

	e.bus.Publish(ctx, events.ExpenseRecorded{UserID: userID, Expense: *expense, Deltas: deltas})
	entries := make([]models.LedgerEntry, 0, len(changes))
	for _, c := range changes {
		e.bus.Publish(ctx, c)
		entries = append(entries, c.Entry)
	}
	return expense, entries, nil
}

// Settle zeroes an outstanding entry and records the transfer. Settling a
// clear or unknown counterparty returns ErrNothingToSettle. Settle does not
// deduplicate; callers that may retry must do so themselves.
func (e *Engine) Settle(ctx context.Context, userID, counterparty string) (*models.SettlementEvent, error) {
	counterparty = models.ParticipantID(counterparty)

	unlock := e.locks.Lock(lockKey(userID, counterparty))
	defer unlock()

	var event *models.SettlementEvent
	var changed events.EntryChanged
	err := e.store.WithTx(ctx, func(tx storage.LedgerStore) error {
		entry, err := tx.GetEntry(ctx, userID, counterparty)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w with %s", ErrNothingToSettle, counterparty)
		}
		if err != nil {
			return fmt.Errorf("failed to load entry for %s: %w", counterparty, err)
		}
		if !entry.Outstanding() {
			return fmt.Errorf("%w with %s", ErrNothingToSettle, counterparty)
		}

		now := e.now().Unix()
		event = &models.SettlementEvent{
			Counterparty: counterparty,
			Amount:       abs(entry.NetAmount),
			Direction:    models.DirectionReceived,
			Timestamp:    now,
		}
		if entry.NetAmount < 0 {
			event.Direction = models.DirectionPaid
		}
		if err := tx.CreateSettlementEvent(ctx, userID, event); err != nil {
			return err
		}

		changed = events.EntryChanged{UserID: userID, Previous: entry.NetAmount}
		entry.NetAmount = 0
		entry.LastUpdatedAt = now
		changed.Entry = *entry
		return tx.UpsertEntry(ctx, userID, entry)
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("Settled", "user_id", userID, "counterparty", counterparty, "amount", event.Amount, "direction", event.Direction)

	e.bus.Publish(ctx, events.Settled{UserID: userID, Event: *event})
	e.bus.Publish(ctx, changed)
	return event, nil
}

// Get returns the entry for counterparty or ErrNotFound.
func (e *Engine) Get(ctx context.Context, userID, counterparty string) (*models.LedgerEntry, error) {
	return e.store.GetEntry(ctx, userID, models.ParticipantID(counterparty))
}

// Entries returns every entry of the user ordered by counterparty.
func (e *Engine) Entries(ctx context.Context, userID string) ([]models.LedgerEntry, error) {
	entries, err := e.store.ListEntries(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Counterparty < entries[j].Counterparty })
	return entries, nil
}

// Summary projects the user's totals from the current entries.
func (e *Engine) Summary(ctx context.Context, userID string) (calculator.Summary, error) {
	entries, err := e.store.ListEntries(ctx, userID)
	if err != nil {
		return calculator.Summary{}, err
	}
	return calculator.Summarize(entries), nil
}

// History returns the user's shared expenses and settlement events.
func (e *Engine) History(ctx context.Context, userID string) (*History, error) {
	expenses, err := e.store.ListSharedExpenses(ctx, userID)
	if err != nil {
		return nil, err
	}
	settlements, err := e.store.ListSettlementEvents(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &History{Expenses: expenses, Settlements: settlements}, nil
}

// AddParticipant records a counterparty by display name and returns it.
// Adding an existing name returns the stored participant.
func (e *Engine) AddParticipant(ctx context.Context, userID, name string) (*models.Participant, error) {
	id := Resolve(userID, name)
	if id == "" || models.IsSelf(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidParticipant, name)
	}

	p := &models.Participant{ID: id, DisplayName: strings.TrimSpace(name), CreatedAt: e.now().Unix()}
	if err := e.store.EnsureParticipant(ctx, userID, p); err != nil {
		return nil, err
	}

	participants, err := e.store.ListParticipants(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range participants {
		if participants[i].ID == id {
			return &participants[i], nil
		}
	}
	return p, nil
}

// Participants lists the user's counterparties.
func (e *Engine) Participants(ctx context.Context, userID string) ([]models.Participant, error) {
	return e.store.ListParticipants(ctx, userID)
}

// Audit replays the user's history and reports every counterparty whose
// replayed balance differs from its live entry.
func (e *Engine) Audit(ctx context.Context, userID string) ([]Discrepancy, error) {
	history, err := e.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	replayed, err := calculator.Replay(history.Expenses, history.Settlements)
	if err != nil {
		return nil, err
	}
	entries, err := e.store.ListEntries(ctx, userID)
	if err != nil {
		return nil, err
	}

	live := make(map[string]int64, len(entries))
	for _, entry := range entries {
		live[entry.Counterparty] = entry.NetAmount
	}

	var out []Discrepancy
	for cp, amount := range live {
		if replayed[cp] != amount {
			out = append(out, Discrepancy{Counterparty: cp, Live: amount, Replayed: replayed[cp]})
		}
	}
	for cp, amount := range replayed {
		if _, ok := live[cp]; !ok && amount != 0 {
			out = append(out, Discrepancy{Counterparty: cp, Replayed: amount})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Counterparty < out[j].Counterparty })
	return out, nil
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
