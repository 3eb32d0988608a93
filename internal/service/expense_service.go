package service

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/budgetbuddy/backend/internal/calculator"
	"github.com/budgetbuddy/backend/internal/events"
	"github.com/budgetbuddy/backend/internal/models"
	"github.com/budgetbuddy/backend/internal/money"
	"github.com/budgetbuddy/backend/internal/storage"
)

const recentExpensesLimit = 50

// ExpenseService serves personal expenses and their projections.
type ExpenseService struct {
	store     storage.FinanceStore
	bus       *events.Bus
	currency  string
	allowance int64
	now       func() time.Time
}

// NewExpenseService creates an ExpenseService. allowance is the monthly
// allowance in minor units.
func NewExpenseService(store storage.FinanceStore, bus *events.Bus, currency string, allowance int64) *ExpenseService {
	return &ExpenseService{
		store:     store,
		bus:       bus,
		currency:  currency,
		allowance: allowance,
		now:       time.Now,
	}
}

// Register adds the expense routes to mux behind requireAuth.
func (s *ExpenseService) Register(mux *http.ServeMux, requireAuth Middleware) {
	mux.Handle("GET /api/expenses", requireAuth(withUser(s.list)))
	mux.Handle("POST /api/expenses", requireAuth(withUser(s.create)))
	mux.Handle("GET /api/expenses/categories", requireAuth(withUser(s.categories)))
	mux.Handle("GET /api/expenses/summary", requireAuth(withUser(s.summary)))
}

type expenseRequest struct {
	Title    string          `json:"title"`
	Amount   json.RawMessage `json:"amount"`
	Category string          `json:"category"`
	SpentAt  int64           `json:"spentAt"`
}

type expenseResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Amount    int64  `json:"amount"`
	Display   string `json:"display"`
	Category  string `json:"category"`
	Color     string `json:"color"`
	SpentAt   int64  `json:"spentAt"`
	CreatedAt int64  `json:"createdAt"`
}

type categoryResponse struct {
	Category         string `json:"category"`
	Amount           int64  `json:"amount"`
	Display          string `json:"display"`
	Percentage       int    `json:"percentage"`
	TransactionCount int    `json:"transactionCount"`
	Color            string `json:"color"`
}

type monthlySummaryResponse struct {
	Month          string `json:"month"`
	MonthTotal     int64  `json:"monthTotal"`
	TotalSavings   int64  `json:"totalSavings"`
	Allowance      int64  `json:"allowance"`
	MonthlyBalance int64  `json:"monthlyBalance"`
	BalanceDisplay string `json:"balanceDisplay"`
}

func (s *ExpenseService) expenseJSON(e models.Expense) expenseResponse {
	return expenseResponse{
		ID:        e.ID,
		Title:     e.Title,
		Amount:    e.Amount,
		Display:   money.Format(e.Amount, s.currency),
		Category:  e.Category,
		Color:     calculator.CategoryColor(e.Category),
		SpentAt:   e.SpentAt,
		CreatedAt: e.CreatedAt,
	}
}

func (s *ExpenseService) create(w http.ResponseWriter, r *http.Request, userID string) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	category := calculator.NormalizeCategory(req.Category)
	if req.Title == "" || category == "" {
		writeError(w, r, fmt.Errorf("%w: title and category are required", ErrInvalidRequest))
		return
	}
	amount, err := parseAmount(req.Amount, s.currency)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if amount <= 0 || amount > calculator.MaxAmount {
		writeError(w, r, calculator.ErrInvalidAmount)
		return
	}

	expense := &models.Expense{
		UserID:   userID,
		Title:    req.Title,
		Amount:   amount,
		Category: category,
		SpentAt:  req.SpentAt,
	}
	if err := s.store.CreateExpense(r.Context(), expense); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Expense added", "user_id", userID, "expense_id", expense.ID, "category", category)
	s.bus.Publish(r.Context(), events.PersonalExpenseAdded{UserID: userID, Expense: *expense})

	writeJSON(w, http.StatusCreated, s.expenseJSON(*expense))
}

func (s *ExpenseService) list(w http.ResponseWriter, r *http.Request, userID string) {
	expenses, err := s.store.ListExpenses(r.Context(), userID, recentExpensesLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, s.expenseJSON(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": out})
}

// categories breaks down every expense of the user by category.
func (s *ExpenseService) categories(w http.ResponseWriter, r *http.Request, userID string) {
	expenses, err := s.store.ListExpenses(r.Context(), userID, 0)
	if err != nil {
		writeError(w, r, err)
		return
	}

	totals, total := calculator.CategoryBreakdown(expenses)
	out := make([]categoryResponse, 0, len(totals))
	for _, ct := range totals {
		out = append(out, categoryResponse{
			Category:         ct.Category,
			Amount:           ct.Amount,
			Display:          money.Format(ct.Amount, s.currency),
			Percentage:       ct.Percentage,
			TransactionCount: ct.TransactionCount,
			Color:            ct.Color,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": out, "total": total})
}

// summary reports this month's spending against the allowance.
func (s *ExpenseService) summary(w http.ResponseWriter, r *http.Request, userID string) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	expenses, err := s.store.ListExpensesSince(r.Context(), userID, monthStart.Unix())
	if err != nil {
		writeError(w, r, err)
		return
	}
	goals, err := s.store.ListSavingsGoals(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var monthTotal, savings int64
	for _, e := range expenses {
		monthTotal += e.Amount
	}
	for _, g := range goals {
		savings += g.Current
	}
	balance := s.allowance - monthTotal

	writeJSON(w, http.StatusOK, monthlySummaryResponse{
		Month:          monthStart.Format("2006-01"),
		MonthTotal:     monthTotal,
		TotalSavings:   savings,
		Allowance:      s.allowance,
		MonthlyBalance: balance,
		BalanceDisplay: money.Format(balance, s.currency),
	})
}
