// Package service implements the REST handlers. Each service registers its
// routes on a ServeMux and maps domain errors to HTTP status codes.
package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/budgetbuddy/backend/internal/auth"
	"github.com/budgetbuddy/backend/internal/calculator"
	"github.com/budgetbuddy/backend/internal/ledger"
	"github.com/budgetbuddy/backend/internal/middleware"
	"github.com/budgetbuddy/backend/internal/money"
	"github.com/budgetbuddy/backend/internal/storage"
)

const maxBodyBytes = 1 << 20

// ErrInvalidRequest is returned for malformed or incomplete request bodies.
var ErrInvalidRequest = errors.New("invalid request")

// Middleware wraps a handler. RequireAuth-style middlewares are passed to
// every Register method.
type Middleware func(http.Handler) http.Handler

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// authedHandler receives the authenticated user's ID.
type authedHandler func(w http.ResponseWriter, r *http.Request, userID string)

// withUser adapts an authedHandler; it must run behind RequireAuth.
func withUser(h authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.GetUserID(r.Context())
		if userID == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: auth.ErrMissingToken.Error(), Code: "Unauthenticated"})
			return
		}
		h(w, r, userID)
	}
}

// writeJSON marshals data into a response with content-type application/json
func writeJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
	w.Write([]byte("\n"))
}

// errorStatus maps a domain error to a status code and a stable error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ledger.ErrInvalidExpense):
		return http.StatusBadRequest, "InvalidExpense"
	case errors.Is(err, ledger.ErrInvalidParticipant):
		return http.StatusBadRequest, "InvalidParticipant"
	case errors.Is(err, ledger.ErrNothingToSettle):
		return http.StatusConflict, "NothingToSettle"
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, auth.ErrUserNotFound):
		return http.StatusNotFound, "NotFound"
	case errors.Is(err, auth.ErrEmailExists):
		return http.StatusConflict, "EmailExists"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "InvalidCredentials"
	case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrNameRequired):
		return http.StatusBadRequest, "InvalidArgument"
	case errors.Is(err, calculator.ErrInvalidAmount), errors.Is(err, money.ErrInvalidAmount), errors.Is(err, calculator.ErrAmountOutOfRange):
		return http.StatusBadRequest, "InvalidAmount"
	case errors.Is(err, calculator.ErrTargetDecrease):
		return http.StatusBadRequest, "TargetDecrease"
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, "InvalidRequest"
	case errors.Is(err, errRequestInProgress):
		return http.StatusConflict, "RequestInProgress"
	case errors.Is(err, errIdempotencyKeyReused):
		return http.StatusUnprocessableEntity, "IdempotencyKeyReused"
	default:
		return http.StatusInternalServerError, "Internal"
	}
}

// writeError writes the mapped status code and error body. Internal errors
// are logged and their message is not exposed.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: unable to decode json: %v", ErrInvalidRequest, err)
	}
	return nil
}

// parseAmount accepts either a JSON integer in minor units (60050) or a
// JSON string in major units ("600.50").
func parseAmount(raw json.RawMessage, currency string) (int64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, nil
	}
	if strings.HasPrefix(s, `"`) {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, fmt.Errorf("%w: %s", money.ErrInvalidAmount, s)
		}
		return money.Parse(text, currency)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("%w: %s", money.ErrInvalidAmount, s)
	}
	minor, err := n.Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not a whole number of minor units", money.ErrInvalidAmount, s)
	}
	return minor, nil
}

// Health reports liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
