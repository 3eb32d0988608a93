package service

import (
	"net/http"
	"testing"
)

func TestAuthFlow(t *testing.T) {
	srv := setupTestServer(t)

	var registered sessionResponse
	resp := srv.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Priya", "email": "Priya@Example.com", "password": "correct horse",
	}, &registered)
	expectStatus(t, resp, http.StatusCreated)
	if registered.Token == "" || registered.User.Email != "priya@example.com" {
		t.Fatalf("Unexpected session: %+v", registered)
	}

	var loggedIn sessionResponse
	resp = srv.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "priya@example.com", "password": "correct horse",
	}, &loggedIn)
	expectStatus(t, resp, http.StatusOK)
	if loggedIn.User.ID != registered.User.ID {
		t.Errorf("login user = %s, want %s", loggedIn.User.ID, registered.User.ID)
	}

	var me userResponse
	resp = srv.do(t, http.MethodGet, "/api/auth/me", nil, &me, "Authorization", "Bearer "+loggedIn.Token)
	expectStatus(t, resp, http.StatusOK)
	if me.Name != "Priya" {
		t.Errorf("me = %+v", me)
	}

	resp = srv.do(t, http.MethodPost, "/api/auth/logout", nil, nil, "Authorization", "Bearer "+loggedIn.Token)
	expectStatus(t, resp, http.StatusNoContent)
}

func TestAuthErrors(t *testing.T) {
	srv := setupTestServer(t)

	tests := []struct {
		name       string
		path       string
		body       map[string]string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "duplicate email",
			path:       "/api/auth/register",
			body:       map[string]string{"name": "Asha", "email": testUserEmail, "password": "password123"},
			wantStatus: http.StatusConflict,
			wantCode:   "EmailExists",
		},
		{
			name:       "short password",
			path:       "/api/auth/register",
			body:       map[string]string{"name": "Ravi", "email": "ravi@example.com", "password": "short"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "InvalidArgument",
		},
		{
			name:       "bad email",
			path:       "/api/auth/register",
			body:       map[string]string{"name": "Ravi", "email": "not-an-email", "password": "password123"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "InvalidArgument",
		},
		{
			name:       "wrong password",
			path:       "/api/auth/login",
			body:       map[string]string{"email": testUserEmail, "password": "wrong-password"},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "InvalidCredentials",
		},
		{
			name:       "unknown email",
			path:       "/api/auth/login",
			body:       map[string]string{"email": "nobody@example.com", "password": "password123"},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "InvalidCredentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got errorResponse
			resp := srv.do(t, http.MethodPost, tt.path, tt.body, &got)
			expectStatus(t, resp, tt.wantStatus)
			if got.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", got.Code, tt.wantCode)
			}
		})
	}

	t.Run("me without token", func(t *testing.T) {
		var got errorResponse
		resp := srv.do(t, http.MethodGet, "/api/auth/me", nil, &got)
		expectStatus(t, resp, http.StatusUnauthorized)
		if got.Code != "Unauthenticated" {
			t.Errorf("code = %s, want Unauthenticated", got.Code)
		}
	})
}
