// Package memory provides an in-memory implementation of storage.TxLedgerStore.
// It backs the ledgerctl simulator and engine tests; nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/budgetbuddy/backend/internal/models"
	"github.com/budgetbuddy/backend/internal/storage"
)

var _ storage.TxLedgerStore = (*Store)(nil)

type key struct {
	userID string
	id     string
}

// ledgerData is one consistent snapshot of every user's ledger.
type ledgerData struct {
	entries      map[key]models.LedgerEntry
	participants map[key]models.Participant
	expenses     map[string][]models.SharedExpense
	events       map[string][]models.SettlementEvent
}

func newLedgerData() *ledgerData {
	return &ledgerData{
		entries:      make(map[key]models.LedgerEntry),
		participants: make(map[key]models.Participant),
		expenses:     make(map[string][]models.SharedExpense),
		events:       make(map[string][]models.SettlementEvent),
	}
}

func (d *ledgerData) clone() *ledgerData {
	c := newLedgerData()
	for k, v := range d.entries {
		c.entries[k] = v
	}
	for k, v := range d.participants {
		c.participants[k] = v
	}
	for k, v := range d.expenses {
		c.expenses[k] = slices.Clone(v)
	}
	for k, v := range d.events {
		c.events[k] = slices.Clone(v)
	}
	return c
}

// Store is a mutex-guarded in-memory ledger store.
// Writes are staged on a copy and swapped in on commit, so a failed
// transaction leaves no trace.
type Store struct {
	txMu sync.Mutex // serializes writers
	mu   sync.RWMutex
	data *ledgerData
}

// New creates an empty Store.
func New() *Store {
	return &Store{data: newLedgerData()}
}

// WithTx runs fn against a staged copy and commits it when fn returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(tx storage.LedgerStore) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	staged := s.data.clone()
	s.mu.RUnlock()

	if err := fn(view{d: staged}); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = staged
	s.mu.Unlock()
	return nil
}

func (s *Store) read() view {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view{d: s.data}
}

// A committed snapshot is never mutated after the swap.

func (s *Store) GetEntry(ctx context.Context, userID, counterparty string) (*models.LedgerEntry, error) {
	return s.read().GetEntry(ctx, userID, counterparty)
}

func (s *Store) ListEntries(ctx context.Context, userID string) ([]models.LedgerEntry, error) {
	return s.read().ListEntries(ctx, userID)
}

func (s *Store) ListSharedExpenses(ctx context.Context, userID string) ([]models.SharedExpense, error) {
	return s.read().ListSharedExpenses(ctx, userID)
}

func (s *Store) ListSettlementEvents(ctx context.Context, userID string) ([]models.SettlementEvent, error) {
	return s.read().ListSettlementEvents(ctx, userID)
}

func (s *Store) ListParticipants(ctx context.Context, userID string) ([]models.Participant, error) {
	return s.read().ListParticipants(ctx, userID)
}

func (s *Store) UpsertEntry(ctx context.Context, userID string, entry *models.LedgerEntry) error {
	return s.WithTx(ctx, func(tx storage.LedgerStore) error { return tx.UpsertEntry(ctx, userID, entry) })
}

func (s *Store) CreateSharedExpense(ctx context.Context, userID string, expense *models.SharedExpense) error {
	return s.WithTx(ctx, func(tx storage.LedgerStore) error { return tx.CreateSharedExpense(ctx, userID, expense) })
}

func (s *Store) CreateSettlementEvent(ctx context.Context, userID string, event *models.SettlementEvent) error {
	return s.WithTx(ctx, func(tx storage.LedgerStore) error { return tx.CreateSettlementEvent(ctx, userID, event) })
}

func (s *Store) EnsureParticipant(ctx context.Context, userID string, participant *models.Participant) error {
	return s.WithTx(ctx, func(tx storage.LedgerStore) error { return tx.EnsureParticipant(ctx, userID, participant) })
}

// view implements storage.LedgerStore over one snapshot without locking.
type view struct {
	d *ledgerData
}

func (v view) GetEntry(_ context.Context, userID, counterparty string) (*models.LedgerEntry, error) {
	e, ok := v.d.entries[key{userID, counterparty}]
	if !ok {
		return nil, fmt.Errorf("ledger entry %s: %w", counterparty, storage.ErrNotFound)
	}
	return &e, nil
}

func (v view) UpsertEntry(_ context.Context, userID string, entry *models.LedgerEntry) error {
	if entry.LastUpdatedAt == 0 {
		entry.LastUpdatedAt = time.Now().Unix()
	}
	v.d.entries[key{userID, entry.Counterparty}] = *entry
	return nil
}

func (v view) ListEntries(_ context.Context, userID string) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	for k, e := range v.d.entries {
		if k.userID == userID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (v view) CreateSharedExpense(_ context.Context, userID string, expense *models.SharedExpense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	stored := *expense
	stored.Participants = slices.Clone(expense.Participants)
	v.d.expenses[userID] = append(v.d.expenses[userID], stored)
	return nil
}

func (v view) ListSharedExpenses(_ context.Context, userID string) ([]models.SharedExpense, error) {
	stored := v.d.expenses[userID]
	expenses := make([]models.SharedExpense, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		e := stored[i]
		e.Participants = slices.Clone(e.Participants)
		expenses = append(expenses, e)
	}
	sort.SliceStable(expenses, func(i, j int) bool { return expenses[i].CreatedAt > expenses[j].CreatedAt })
	return expenses, nil
}

func (v view) CreateSettlementEvent(_ context.Context, userID string, event *models.SettlementEvent) error {
	if event.Amount <= 0 {
		return fmt.Errorf("settlement event amount must be positive, got %d", event.Amount)
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}
	v.d.events[userID] = append(v.d.events[userID], *event)
	return nil
}

func (v view) ListSettlementEvents(_ context.Context, userID string) ([]models.SettlementEvent, error) {
	stored := v.d.events[userID]
	events := make([]models.SettlementEvent, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		events = append(events, stored[i])
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Timestamp > events[j].Timestamp })
	return events, nil
}

func (v view) EnsureParticipant(_ context.Context, userID string, participant *models.Participant) error {
	k := key{userID, participant.ID}
	if _, ok := v.d.participants[k]; ok {
		return nil
	}
	if participant.CreatedAt == 0 {
		participant.CreatedAt = time.Now().Unix()
	}
	v.d.participants[k] = *participant
	return nil
}

func (v view) ListParticipants(_ context.Context, userID string) ([]models.Participant, error) {
	var participants []models.Participant
	for k, p := range v.d.participants {
		if k.userID == userID {
			participants = append(participants, p)
		}
	}
	sort.Slice(participants, func(i, j int) bool { return participants[i].DisplayName < participants[j].DisplayName })
	return participants, nil
}
