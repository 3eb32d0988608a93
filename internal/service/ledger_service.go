package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/budgetbuddy/backend/internal/cache"
	"github.com/budgetbuddy/backend/internal/calculator"
	"github.com/budgetbuddy/backend/internal/ledger"
	"github.com/budgetbuddy/backend/internal/models"
	"github.com/budgetbuddy/backend/internal/money"
)

const idempotencyHeader = "Idempotency-Key"

var (
	errRequestInProgress    = errors.New("a request with this idempotency key is still in progress")
	errIdempotencyKeyReused = errors.New("idempotency key was used for a different counterparty")
)

// LedgerService serves shared expenses, settlements and friends.
type LedgerService struct {
	engine         *ledger.Engine
	idempotency    cache.Cache
	idempotencyTTL time.Duration
	currency       string
}

// NewLedgerService creates a LedgerService. idempotency may be nil, in which
// case Idempotency-Key headers are ignored.
func NewLedgerService(engine *ledger.Engine, idempotency cache.Cache, ttl time.Duration, currency string) *LedgerService {
	return &LedgerService{
		engine:         engine,
		idempotency:    idempotency,
		idempotencyTTL: ttl,
		currency:       currency,
	}
}

// Register adds the ledger routes to mux behind requireAuth.
func (s *LedgerService) Register(mux *http.ServeMux, requireAuth Middleware) {
	handle := func(pattern string, h authedHandler) {
		mux.Handle(pattern, requireAuth(withUser(h)))
	}
	handle("POST /group-expenses", s.createSharedExpense)
	handle("GET /group-expenses", s.listSharedExpenses)
	handle("GET /settlements", s.listEntries)
	handle("GET /settlements/summary", s.summary)
	handle("GET /settlements/history", s.history)
	handle("GET /settlements/audit", s.audit)
	handle("GET /settlements/{counterparty}", s.getEntry)
	handle("POST /settlements/{counterparty}", s.settle)
	handle("POST /friends", s.addFriend)
	handle("GET /friends", s.listFriends)
}

type sharedExpenseRequest struct {
	Title        string          `json:"title"`
	TotalAmount  json.RawMessage `json:"totalAmount"`
	Payer        string          `json:"payer"`
	Participants []string        `json:"participants"`
}

type sharedExpenseResponse struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	TotalAmount  int64    `json:"totalAmount"`
	Display      string   `json:"display"`
	Payer        string   `json:"payer"`
	Participants []string `json:"participants"`
	Share        int64    `json:"share"`
	CreatedAt    int64    `json:"createdAt"`
}

type entryResponse struct {
	Counterparty  string `json:"counterparty"`
	NetAmount     int64  `json:"netAmount"`
	Display       string `json:"display"`
	Status        string `json:"status"`
	LastUpdatedAt int64  `json:"lastUpdatedAt"`
}

type settlementResponse struct {
	ID           string `json:"id"`
	Counterparty string `json:"counterparty"`
	Amount       int64  `json:"amount"`
	Display      string `json:"display"`
	Direction    string `json:"direction"`
	Timestamp    int64  `json:"timestamp"`
}

type summaryResponse struct {
	TotalOwedBySelf   int64  `json:"totalOwedBySelf"`
	TotalOwedToSelf   int64  `json:"totalOwedToSelf"`
	Net               int64  `json:"net"`
	Outstanding       int    `json:"outstanding"`
	OwedBySelfDisplay string `json:"owedBySelfDisplay"`
	OwedToSelfDisplay string `json:"owedToSelfDisplay"`
	NetDisplay        string `json:"netDisplay"`
}

type friendResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	CreatedAt   int64  `json:"createdAt"`
}

type discrepancyResponse struct {
	Counterparty string `json:"counterparty"`
	Live         int64  `json:"live"`
	Replayed     int64  `json:"replayed"`
}

func (s *LedgerService) expenseJSON(e models.SharedExpense) sharedExpenseResponse {
	return sharedExpenseResponse{
		ID:           e.ID,
		Title:        e.Title,
		TotalAmount:  e.TotalAmount,
		Display:      money.Format(e.TotalAmount, s.currency),
		Payer:        e.Payer,
		Participants: e.Participants,
		Share:        calculator.Share(e),
		CreatedAt:    e.CreatedAt,
	}
}

func (s *LedgerService) entryJSON(e models.LedgerEntry) entryResponse {
	status := "clear"
	switch {
	case e.NetAmount > 0:
		status = "owes_you"
	case e.NetAmount < 0:
		status = "you_owe"
	}
	return entryResponse{
		Counterparty:  e.Counterparty,
		NetAmount:     e.NetAmount,
		Display:       money.Format(e.NetAmount, s.currency),
		Status:        status,
		LastUpdatedAt: e.LastUpdatedAt,
	}
}

func (s *LedgerService) settlementJSON(e models.SettlementEvent) settlementResponse {
	return settlementResponse{
		ID:           e.ID,
		Counterparty: e.Counterparty,
		Amount:       e.Amount,
		Display:      money.Format(e.Amount, s.currency),
		Direction:    string(e.Direction),
		Timestamp:    e.Timestamp,
	}
}

func (s *LedgerService) entriesJSON(entries []models.LedgerEntry) []entryResponse {
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, s.entryJSON(e))
	}
	return out
}

// createSharedExpense splits the expense and applies it to the ledger.
func (s *LedgerService) createSharedExpense(w http.ResponseWriter, r *http.Request, userID string) {
	var req sharedExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Title == "" {
		writeError(w, r, fmt.Errorf("%w: title is required", ErrInvalidRequest))
		return
	}
	total, err := parseAmount(req.TotalAmount, s.currency)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("CreateSharedExpense request received",
		"user_id", userID,
		"total_amount", total,
		"participants_count", len(req.Participants),
	)

	expense, entries, err := s.engine.RecordExpense(r.Context(), userID, ledger.ExpenseInput{
		Title:        req.Title,
		TotalAmount:  total,
		Payer:        req.Payer,
		Participants: req.Participants,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Shared expense created", "user_id", userID, "expense_id", expense.ID, "entries_updated", len(entries))

	writeJSON(w, http.StatusCreated, map[string]any{
		"expense": s.expenseJSON(*expense),
		"entries": s.entriesJSON(entries),
	})
}

func (s *LedgerService) listSharedExpenses(w http.ResponseWriter, r *http.Request, userID string) {
	history, err := s.engine.History(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]sharedExpenseResponse, 0, len(history.Expenses))
	for _, e := range history.Expenses {
		out = append(out, s.expenseJSON(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": out})
}

// listEntries returns outstanding entries, largest first. ?all=true also
// returns clear entries, ordered by counterparty.
func (s *LedgerService) listEntries(w http.ResponseWriter, r *http.Request, userID string) {
	entries, err := s.engine.Entries(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if all, _ := strconv.ParseBool(r.URL.Query().Get("all")); !all {
		entries = calculator.OutstandingEntries(entries)
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": s.entriesJSON(entries)})
}

func (s *LedgerService) summary(w http.ResponseWriter, r *http.Request, userID string) {
	sum, err := s.engine.Summary(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		TotalOwedBySelf:   sum.TotalOwedBySelf,
		TotalOwedToSelf:   sum.TotalOwedToSelf,
		Net:               sum.Net,
		Outstanding:       sum.Outstanding,
		OwedBySelfDisplay: money.Format(sum.TotalOwedBySelf, s.currency),
		OwedToSelfDisplay: money.Format(sum.TotalOwedToSelf, s.currency),
		NetDisplay:        money.Format(sum.Net, s.currency),
	})
}

func (s *LedgerService) history(w http.ResponseWriter, r *http.Request, userID string) {
	history, err := s.engine.History(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	expenses := make([]sharedExpenseResponse, 0, len(history.Expenses))
	for _, e := range history.Expenses {
		expenses = append(expenses, s.expenseJSON(e))
	}
	settlements := make([]settlementResponse, 0, len(history.Settlements))
	for _, e := range history.Settlements {
		settlements = append(settlements, s.settlementJSON(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": expenses, "settlements": settlements})
}

func (s *LedgerService) audit(w http.ResponseWriter, r *http.Request, userID string) {
	found, err := s.engine.Audit(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]discrepancyResponse, 0, len(found))
	for _, d := range found {
		out = append(out, discrepancyResponse{Counterparty: d.Counterparty, Live: d.Live, Replayed: d.Replayed})
	}
	if len(out) > 0 {
		slog.Warn("Ledger audit found discrepancies", "user_id", userID, "count", len(out))
	}
	writeJSON(w, http.StatusOK, map[string]any{"consistent": len(out) == 0, "discrepancies": out})
}

func (s *LedgerService) getEntry(w http.ResponseWriter, r *http.Request, userID string) {
	entry, err := s.engine.Get(r.Context(), userID, r.PathValue("counterparty"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.entryJSON(*entry))
}

// cachedSettle is what the idempotency cache stores per key. Status 0 marks
// a request that is still running.
type cachedSettle struct {
	Status       int             `json:"status"`
	Counterparty string          `json:"counterparty"`
	Body         json.RawMessage `json:"body,omitempty"`
}

// settle zeroes the entry with counterparty. With an Idempotency-Key header
// the first successful response is replayed for repeats of the same key.
func (s *LedgerService) settle(w http.ResponseWriter, r *http.Request, userID string) {
	counterparty := models.ParticipantID(r.PathValue("counterparty"))
	key := r.Header.Get(idempotencyHeader)

	if key == "" || s.idempotency == nil {
		s.doSettle(w, r, userID, counterparty, "")
		return
	}

	ctx := r.Context()
	cacheKey := "settle:" + userID + ":" + key
	pending, _ := json.Marshal(cachedSettle{Counterparty: counterparty})

	claimed, err := s.idempotency.Add(ctx, cacheKey, pending, s.idempotencyTTL)
	if err != nil {
		writeError(w, r, fmt.Errorf("failed to claim idempotency key: %w", err))
		return
	}
	if !claimed {
		s.replay(w, r, cacheKey, counterparty)
		return
	}

	s.doSettle(w, r, userID, counterparty, cacheKey)
}

func (s *LedgerService) replay(w http.ResponseWriter, r *http.Request, cacheKey, counterparty string) {
	raw, err := s.idempotency.Get(r.Context(), cacheKey)
	if errors.Is(err, cache.ErrMiss) {
		// Expired between Add and Get; treat as in flight so the client retries.
		writeError(w, r, errRequestInProgress)
		return
	}
	if err != nil {
		writeError(w, r, fmt.Errorf("failed to read idempotency key: %w", err))
		return
	}

	var cached cachedSettle
	if err := json.Unmarshal(raw, &cached); err != nil {
		writeError(w, r, fmt.Errorf("failed to decode idempotency entry: %w", err))
		return
	}
	if cached.Counterparty != counterparty {
		writeError(w, r, errIdempotencyKeyReused)
		return
	}
	if cached.Status == 0 {
		writeError(w, r, errRequestInProgress)
		return
	}

	slog.Info("Replaying settle response", "counterparty", counterparty)
	w.Header().Set("Idempotency-Replayed", "true")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(cached.Status)
	w.Write(cached.Body)
}

func (s *LedgerService) doSettle(w http.ResponseWriter, r *http.Request, userID, counterparty, cacheKey string) {
	slog.Info("Settle request received", "user_id", userID, "counterparty", counterparty)

	event, err := s.engine.Settle(r.Context(), userID, counterparty)
	if err != nil {
		if cacheKey != "" {
			// Failed settles are not remembered so the client may retry.
			if derr := s.idempotency.Delete(context.WithoutCancel(r.Context()), cacheKey); derr != nil {
				slog.Warn("Failed to release idempotency key", "error", derr)
			}
		}
		writeError(w, r, err)
		return
	}

	slog.Info("Settled", "user_id", userID, "counterparty", counterparty, "amount", event.Amount, "direction", event.Direction)

	body, _ := json.Marshal(s.settlementJSON(*event))
	if cacheKey != "" {
		entry, _ := json.Marshal(cachedSettle{Status: http.StatusOK, Counterparty: counterparty, Body: body})
		if err := s.idempotency.Set(context.WithoutCancel(r.Context()), cacheKey, entry, s.idempotencyTTL); err != nil {
			slog.Warn("Failed to store idempotent response", "error", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

type friendRequest struct {
	Name string `json:"name"`
}

func (s *LedgerService) addFriend(w http.ResponseWriter, r *http.Request, userID string) {
	var req friendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.engine.AddParticipant(r.Context(), userID, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, friendResponse{ID: p.ID, DisplayName: p.DisplayName, CreatedAt: p.CreatedAt})
}

func (s *LedgerService) listFriends(w http.ResponseWriter, r *http.Request, userID string) {
	participants, err := s.engine.Participants(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]friendResponse, 0, len(participants))
	for _, p := range participants {
		out = append(out, friendResponse{ID: p.ID, DisplayName: p.DisplayName, CreatedAt: p.CreatedAt})
	}
	writeJSON(w, http.StatusOK, map[string]any{"friends": out})
}
