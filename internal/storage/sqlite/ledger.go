package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/budgetbuddy/backend/internal/models"
	"github.com/budgetbuddy/backend/internal/storage"
)

// ledgerQueries implements storage.LedgerStore on top of a querier, so the
// same code serves plain and transactional access.
type ledgerQueries struct {
	q querier
}

var _ storage.LedgerStore = ledgerQueries{}

// GetEntry retrieves the ledger entry for one counterparty.
func (l ledgerQueries) GetEntry(ctx context.Context, userID, counterparty string) (*models.LedgerEntry, error) {
	entry := &models.LedgerEntry{}
	err := l.q.QueryRowContext(ctx,
		"SELECT counterparty, net_amount, updated_at FROM settlements WHERE user_id = ? AND counterparty = ?",
		userID, counterparty,
	).Scan(&entry.Counterparty, &entry.NetAmount, &entry.LastUpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ledger entry %s: %w", counterparty, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}
	return entry, nil
}

// UpsertEntry writes the entry, replacing any existing row for the counterparty.
func (l ledgerQueries) UpsertEntry(ctx context.Context, userID string, entry *models.LedgerEntry) error {
	if entry.LastUpdatedAt == 0 {
		entry.LastUpdatedAt = time.Now().Unix()
	}
	_, err := l.q.ExecContext(ctx,
		`INSERT INTO settlements (user_id, counterparty, net_amount, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, counterparty) DO UPDATE SET
		     net_amount = excluded.net_amount,
		     updated_at = excluded.updated_at`,
		userID, entry.Counterparty, entry.NetAmount, entry.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert ledger entry: %w", err)
	}
	return nil
}

// ListEntries retrieves all ledger entries of a user.
func (l ledgerQueries) ListEntries(ctx context.Context, userID string) ([]models.LedgerEntry, error) {
	rows, err := l.q.QueryContext(ctx,
		"SELECT counterparty, net_amount, updated_at FROM settlements WHERE user_id = ?",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.Counterparty, &e.NetAmount, &e.LastUpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}
	return entries, nil
}

// CreateSharedExpense persists a new shared expense.
// Participants are stored as an ordered JSON list.
func (l ledgerQueries) CreateSharedExpense(ctx context.Context, userID string, expense *models.SharedExpense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	participants, err := json.Marshal(expense.Participants)
	if err != nil {
		return fmt.Errorf("failed to encode participants: %w", err)
	}

	_, err = l.q.ExecContext(ctx,
		`INSERT INTO group_expenses (id, user_id, title, total_amount, paid_by, participants, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, userID, expense.Title, expense.TotalAmount, expense.Payer, string(participants), expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group expense: %w", err)
	}
	return nil
}

// ListSharedExpenses retrieves a user's shared expenses, newest first.
func (l ledgerQueries) ListSharedExpenses(ctx context.Context, userID string) ([]models.SharedExpense, error) {
	rows, err := l.q.QueryContext(ctx,
		`SELECT id, title, total_amount, paid_by, participants, created_at
		 FROM group_expenses WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list group expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.SharedExpense
	for rows.Next() {
		var e models.SharedExpense
		var participants string
		if err := rows.Scan(&e.ID, &e.Title, &e.TotalAmount, &e.Payer, &participants, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group expense: %w", err)
		}
		if err := json.Unmarshal([]byte(participants), &e.Participants); err != nil {
			return nil, fmt.Errorf("failed to decode participants of %s: %w", e.ID, err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group expenses: %w", err)
	}
	return expenses, nil
}

// CreateSettlementEvent persists a new settlement event.
func (l ledgerQueries) CreateSettlementEvent(ctx context.Context, userID string, event *models.SettlementEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	_, err := l.q.ExecContext(ctx,
		`INSERT INTO settlement_events (id, user_id, counterparty, amount, direction, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		event.ID, userID, event.Counterparty, event.Amount, string(event.Direction), event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement event: %w", err)
	}
	return nil
}

// ListSettlementEvents retrieves a user's settlement events, newest first.
func (l ledgerQueries) ListSettlementEvents(ctx context.Context, userID string) ([]models.SettlementEvent, error) {
	rows, err := l.q.QueryContext(ctx,
		`SELECT id, counterparty, amount, direction, created_at
		 FROM settlement_events WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlement events: %w", err)
	}
	defer rows.Close()

	var events []models.SettlementEvent
	for rows.Next() {
		var ev models.SettlementEvent
		var direction string
		if err := rows.Scan(&ev.ID, &ev.Counterparty, &ev.Amount, &direction, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan settlement event: %w", err)
		}
		ev.Direction = models.Direction(direction)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlement events: %w", err)
	}
	return events, nil
}

// EnsureParticipant inserts the participant unless one with the same ID exists.
func (l ledgerQueries) EnsureParticipant(ctx context.Context, userID string, participant *models.Participant) error {
	if participant.CreatedAt == 0 {
		participant.CreatedAt = time.Now().Unix()
	}
	_, err := l.q.ExecContext(ctx,
		`INSERT INTO participants (user_id, id, display_name, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, id) DO NOTHING`,
		userID, participant.ID, participant.DisplayName, participant.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	return nil
}

// ListParticipants retrieves a user's participants ordered by display name.
func (l ledgerQueries) ListParticipants(ctx context.Context, userID string) ([]models.Participant, error) {
	rows, err := l.q.QueryContext(ctx,
		"SELECT id, display_name, created_at FROM participants WHERE user_id = ? ORDER BY display_name",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return participants, nil
}
