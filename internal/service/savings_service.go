package service

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/budgetbuddy/backend/internal/calculator"
	"github.com/budgetbuddy/backend/internal/events"
	"github.com/budgetbuddy/backend/internal/models"
	"github.com/budgetbuddy/backend/internal/money"
	"github.com/budgetbuddy/backend/internal/storage"
)

// SavingsService serves savings goals.
type SavingsService struct {
	store    storage.FinanceStore
	bus      *events.Bus
	currency string
}

// NewSavingsService creates a SavingsService.
func NewSavingsService(store storage.FinanceStore, bus *events.Bus, currency string) *SavingsService {
	return &SavingsService{store: store, bus: bus, currency: currency}
}

// Register adds the savings routes to mux behind requireAuth.
func (s *SavingsService) Register(mux *http.ServeMux, requireAuth Middleware) {
	mux.Handle("GET /api/savings", requireAuth(withUser(s.list)))
	mux.Handle("POST /api/savings", requireAuth(withUser(s.create)))
	mux.Handle("POST /api/savings/{id}/add-money", requireAuth(withUser(s.addMoney)))
	mux.Handle("PUT /api/savings/{id}", requireAuth(withUser(s.retarget)))
	mux.Handle("DELETE /api/savings/{id}", requireAuth(withUser(s.delete)))
}

type savingsGoalRequest struct {
	Title    string          `json:"title"`
	Target   json.RawMessage `json:"target"`
	Category string          `json:"category"`
}

type amountRequest struct {
	Amount json.RawMessage `json:"amount"`
}

type targetRequest struct {
	Target json.RawMessage `json:"target"`
}

type savingsGoalResponse struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Target         int64  `json:"target"`
	Current        int64  `json:"current"`
	Progress       int    `json:"progress"`
	TargetDisplay  string `json:"targetDisplay"`
	CurrentDisplay string `json:"currentDisplay"`
	Category       string `json:"category"`
	CreatedAt      int64  `json:"createdAt"`
	UpdatedAt      int64  `json:"updatedAt"`
}

func (s *SavingsService) goalJSON(g models.SavingsGoal) savingsGoalResponse {
	return savingsGoalResponse{
		ID:             g.ID,
		Title:          g.Title,
		Target:         g.Target,
		Current:        g.Current,
		Progress:       calculator.Progress(g),
		TargetDisplay:  money.Format(g.Target, s.currency),
		CurrentDisplay: money.Format(g.Current, s.currency),
		Category:       g.Category,
		CreatedAt:      g.CreatedAt,
		UpdatedAt:      g.UpdatedAt,
	}
}

func (s *SavingsService) create(w http.ResponseWriter, r *http.Request, userID string) {
	var req savingsGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, r, fmt.Errorf("%w: title is required", ErrInvalidRequest))
		return
	}
	target, err := parseAmount(req.Target, s.currency)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if target <= 0 || target > calculator.MaxAmount {
		writeError(w, r, calculator.ErrInvalidAmount)
		return
	}

	goal := &models.SavingsGoal{
		UserID:   userID,
		Title:    req.Title,
		Target:   target,
		Category: calculator.NormalizeCategory(req.Category),
	}
	if err := s.store.CreateSavingsGoal(r.Context(), goal); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Savings goal created", "user_id", userID, "goal_id", goal.ID)
	writeJSON(w, http.StatusCreated, s.goalJSON(*goal))
}

func (s *SavingsService) list(w http.ResponseWriter, r *http.Request, userID string) {
	goals, err := s.store.ListSavingsGoals(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]savingsGoalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, s.goalJSON(g))
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": out})
}

// addMoney deposits into a goal, capped at its target.
func (s *SavingsService) addMoney(w http.ResponseWriter, r *http.Request, userID string) {
	var req amountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := parseAmount(req.Amount, s.currency)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var added int64
	goal, err := s.store.UpdateSavingsGoal(r.Context(), userID, r.PathValue("id"), func(g *models.SavingsGoal) error {
		var err error
		added, err = calculator.Deposit(g, amount)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Money added to savings goal", "user_id", userID, "goal_id", goal.ID, "added", added)
	s.bus.Publish(r.Context(), events.SavingsUpdated{UserID: userID, Goal: *goal, Added: added})

	writeJSON(w, http.StatusOK, map[string]any{
		"goal":        s.goalJSON(*goal),
		"amountAdded": added,
	})
}

// retarget raises the target of a goal.
func (s *SavingsService) retarget(w http.ResponseWriter, r *http.Request, userID string) {
	var req targetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	target, err := parseAmount(req.Target, s.currency)
	if err != nil {
		writeError(w, r, err)
		return
	}

	goal, err := s.store.UpdateSavingsGoal(r.Context(), userID, r.PathValue("id"), func(g *models.SavingsGoal) error {
		return calculator.Retarget(g, target)
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.bus.Publish(r.Context(), events.SavingsUpdated{UserID: userID, Goal: *goal})
	writeJSON(w, http.StatusOK, s.goalJSON(*goal))
}

func (s *SavingsService) delete(w http.ResponseWriter, r *http.Request, userID string) {
	if err := s.store.DeleteSavingsGoal(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("Savings goal deleted", "user_id", userID, "goal_id", r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}
