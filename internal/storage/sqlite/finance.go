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

// CreateExpense inserts a personal expense.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	now := time.Now().Unix()
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now
	}
	if expense.SpentAt == 0 {
		expense.SpentAt = expense.CreatedAt
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, user_id, title, amount, category, spent_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.UserID, expense.Title, expense.Amount, expense.Category, expense.SpentAt, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

// ListExpenses retrieves up to limit expenses, newest first.
func (s *SQLiteStore) ListExpenses(ctx context.Context, userID string, limit int) ([]models.Expense, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, amount, category, spent_at, created_at
		 FROM expenses WHERE user_id = ? ORDER BY spent_at DESC, created_at DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return scanExpenses(rows)
}

// ListExpensesSince retrieves expenses spent at or after since.
func (s *SQLiteStore) ListExpensesSince(ctx context.Context, userID string, since int64) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, amount, category, spent_at, created_at
		 FROM expenses WHERE user_id = ? AND spent_at >= ? ORDER BY spent_at DESC`,
		userID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return scanExpenses(rows)
}

func scanExpenses(rows *sql.Rows) ([]models.Expense, error) {
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.Amount, &e.Category, &e.SpentAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

// CreateSavingsGoal inserts a savings goal.
func (s *SQLiteStore) CreateSavingsGoal(ctx context.Context, goal *models.SavingsGoal) error {
	now := time.Now().Unix()
	if goal.ID == "" {
		goal.ID = uuid.New().String()
	}
	if goal.CreatedAt == 0 {
		goal.CreatedAt = now
	}
	goal.UpdatedAt = goal.CreatedAt

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO savings_goals (id, user_id, title, target_amount, current_amount, category, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		goal.ID, goal.UserID, goal.Title, goal.Target, goal.Current, goal.Category, goal.CreatedAt, goal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert savings goal: %w", err)
	}
	return nil
}

const selectSavingsGoal = `
	SELECT id, user_id, title, target_amount, current_amount, category, created_at, updated_at
	FROM savings_goals
`

// GetSavingsGoal retrieves one goal owned by userID.
func (s *SQLiteStore) GetSavingsGoal(ctx context.Context, userID, goalID string) (*models.SavingsGoal, error) {
	return getSavingsGoal(ctx, s.db, userID, goalID)
}

func getSavingsGoal(ctx context.Context, q querier, userID, goalID string) (*models.SavingsGoal, error) {
	g := &models.SavingsGoal{}
	err := q.QueryRowContext(ctx, selectSavingsGoal+"WHERE id = ? AND user_id = ?", goalID, userID).Scan(
		&g.ID, &g.UserID, &g.Title, &g.Target, &g.Current, &g.Category, &g.CreatedAt, &g.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("savings goal %s: %w", goalID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get savings goal: %w", err)
	}
	return g, nil
}

// ListSavingsGoals retrieves a user's goals, oldest first.
func (s *SQLiteStore) ListSavingsGoals(ctx context.Context, userID string) ([]models.SavingsGoal, error) {
	rows, err := s.db.QueryContext(ctx, selectSavingsGoal+"WHERE user_id = ? ORDER BY created_at, rowid", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list savings goals: %w", err)
	}
	defer rows.Close()

	var goals []models.SavingsGoal
	for rows.Next() {
		var g models.SavingsGoal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Title, &g.Target, &g.Current, &g.Category, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan savings goal: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate savings goals: %w", err)
	}
	return goals, nil
}

// UpdateSavingsGoal applies fn to the stored goal inside a transaction.
func (s *SQLiteStore) UpdateSavingsGoal(ctx context.Context, userID, goalID string, fn func(goal *models.SavingsGoal) error) (*models.SavingsGoal, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	goal, err := getSavingsGoal(ctx, tx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if err := fn(goal); err != nil {
		return nil, err
	}
	goal.UpdatedAt = time.Now().Unix()

	_, err = tx.ExecContext(ctx,
		`UPDATE savings_goals SET title = ?, target_amount = ?, current_amount = ?, category = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		goal.Title, goal.Target, goal.Current, goal.Category, goal.UpdatedAt, goal.ID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update savings goal: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return goal, nil
}

// DeleteSavingsGoal removes a goal owned by userID.
func (s *SQLiteStore) DeleteSavingsGoal(ctx context.Context, userID, goalID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM savings_goals WHERE id = ? AND user_id = ?", goalID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete savings goal: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("savings goal %s: %w", goalID, storage.ErrNotFound)
	}
	return nil
}

// SaveOnboarding inserts or replaces a user's onboarding answers.
func (s *SQLiteStore) SaveOnboarding(ctx context.Context, onboarding *models.Onboarding) error {
	if onboarding.CompletedAt == 0 {
		onboarding.CompletedAt = time.Now().Unix()
	}
	if onboarding.Goals == nil {
		onboarding.Goals = []string{}
	}
	goals, err := json.Marshal(onboarding.Goals)
	if err != nil {
		return fmt.Errorf("failed to encode goals: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO user_onboarding (user_id, goals, upi_app, completed_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
		     goals = excluded.goals,
		     upi_app = excluded.upi_app,
		     completed_at = excluded.completed_at`,
		onboarding.UserID, string(goals), onboarding.UPIApp, onboarding.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save onboarding: %w", err)
	}
	return nil
}

// GetOnboarding retrieves a user's onboarding answers.
func (s *SQLiteStore) GetOnboarding(ctx context.Context, userID string) (*models.Onboarding, error) {
	o := &models.Onboarding{UserID: userID}
	var goals string
	err := s.db.QueryRowContext(ctx,
		"SELECT goals, upi_app, completed_at FROM user_onboarding WHERE user_id = ?", userID,
	).Scan(&goals, &o.UPIApp, &o.CompletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("onboarding: %w", storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get onboarding: %w", err)
	}
	if err := json.Unmarshal([]byte(goals), &o.Goals); err != nil {
		return nil, fmt.Errorf("failed to decode goals: %w", err)
	}
	return o, nil
}
