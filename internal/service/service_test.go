package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/budgetbuddy/backend/internal/auth"
	"github.com/budgetbuddy/backend/internal/cache"
	"github.com/budgetbuddy/backend/internal/events"
	"github.com/budgetbuddy/backend/internal/ledger"
	"github.com/budgetbuddy/backend/internal/middleware"
	"github.com/budgetbuddy/backend/internal/models"
	"github.com/budgetbuddy/backend/internal/storage/sqlite"
)

const (
	testUserID    = "user-1"
	testUserEmail = "asha@example.com"
	testSecret    = "0123456789abcdef0123456789abcdef"
)

// testAuth stands in for RequireAuth: it puts the X-Test-User header (or
// testUserID) into the context.
func testAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-Test-User")
		if userID == "" {
			userID = testUserID
		}
		next.ServeHTTP(w, r.WithContext(middleware.WithUser(r.Context(), userID, testUserEmail)))
	})
}

type testServer struct {
	*httptest.Server
	bus   *events.Bus
	store *sqlite.SQLiteStore
}

// setupTestServer creates a test server over a temporary SQLite database.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	// Onboarding rows reference users.
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := models.NewUser(testUserEmail, "Asha", string(hash))
	user.ID = testUserID
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	bus := events.New()
	engine := ledger.New(store, ledger.WithBus(bus))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mux := http.NewServeMux()
	NewLedgerService(engine, cache.NewMemory(), time.Hour, "INR").Register(mux, testAuth)
	NewExpenseService(store, bus, "INR", 1000000).Register(mux, testAuth)
	NewSavingsService(store, bus, "INR").Register(mux, testAuth)
	NewOnboardingService(store).Register(mux, testAuth)
	NewAuthService(auth.NewPasswordAuthenticator(store), auth.NewJWTManager(testSecret, time.Hour), logger).
		Register(mux, middleware.RequireAuth(auth.NewJWTManager(testSecret, time.Hour)))
	mux.HandleFunc("GET /api/health", Health)

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	})

	return &testServer{Server: server, bus: bus, store: store}
}

// do sends a JSON request and decodes the response body into out when non-nil.
func (s *testServer) do(t *testing.T, method, path string, body any, out any, headers ...string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, s.URL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode %s %s response: %v", method, path, err)
		}
	}
	return resp
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s %s: status = %d, want %d", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want)
	}
}

func TestHealth(t *testing.T) {
	srv := setupTestServer(t)
	var body map[string]string
	resp := srv.do(t, http.MethodGet, "/api/health", nil, &body)
	expectStatus(t, resp, http.StatusOK)
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}
