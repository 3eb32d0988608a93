package service

import (
	"log/slog"
	"net/http"

	"github.com/budgetbuddy/backend/internal/auth"
	"github.com/budgetbuddy/backend/internal/models"
)

// AuthService serves registration, login and the current user.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		logger:        logger,
	}
}

// Register adds the auth routes to mux. Only /api/auth/me requires a token.
func (s *AuthService) Register(mux *http.ServeMux, requireAuth Middleware) {
	mux.HandleFunc("POST /api/auth/register", s.register)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.Handle("POST /api/auth/logout", requireAuth(withUser(s.logout)))
	mux.Handle("GET /api/auth/me", requireAuth(withUser(s.me)))
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
}

type sessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt int64        `json:"expiresAt"`
	User      userResponse `json:"user"`
}

func userJSON(u *models.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.DisplayName, CreatedAt: u.CreatedAt}
}

func (s *AuthService) session(w http.ResponseWriter, r *http.Request, status int, user *models.User) {
	token, expiresAt, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, sessionResponse{Token: token, ExpiresAt: expiresAt.Unix(), User: userJSON(user)})
}

// register creates a new user account.
func (s *AuthService) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s.logger.Info("Register request", "email", req.Email)

	user, err := s.authenticator.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		s.logger.Warn("Registration failed", "email", req.Email, "error", err)
		writeError(w, r, err)
		return
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "email", user.Email)
	s.session(w, r, http.StatusCreated, user)
}

// login authenticates a user and returns a JWT token.
func (s *AuthService) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, r, auth.ErrInvalidCredentials)
		return
	}

	user, err := s.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		s.logger.Warn("Login failed", "email", req.Email, "error", err)
		writeError(w, r, err)
		return
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID)
	s.session(w, r, http.StatusOK, user)
}

// logout is a no-op: tokens are stateless and discarded client-side.
func (s *AuthService) logout(w http.ResponseWriter, r *http.Request, userID string) {
	s.logger.Info("Logout request", "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}

// me returns the currently authenticated user.
func (s *AuthService) me(w http.ResponseWriter, r *http.Request, userID string) {
	user, err := s.authenticator.User(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userJSON(user))
}
