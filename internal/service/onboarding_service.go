package service

import (
	"net/http"
	"strings"

	"github.com/budgetbuddy/backend/internal/models"
	"github.com/budgetbuddy/backend/internal/storage"
)

// OnboardingService stores the answers given on first launch.
type OnboardingService struct {
	store storage.FinanceStore
}

// NewOnboardingService creates an OnboardingService.
func NewOnboardingService(store storage.FinanceStore) *OnboardingService {
	return &OnboardingService{store: store}
}

// Register adds the onboarding routes to mux behind requireAuth.
func (s *OnboardingService) Register(mux *http.ServeMux, requireAuth Middleware) {
	mux.Handle("GET /api/onboarding", requireAuth(withUser(s.get)))
	mux.Handle("POST /api/onboarding", requireAuth(withUser(s.save)))
}

type onboardingBody struct {
	Goals       []string `json:"goals"`
	UPIApp      string   `json:"upiApp"`
	CompletedAt int64    `json:"completedAt,omitempty"`
}

func (s *OnboardingService) save(w http.ResponseWriter, r *http.Request, userID string) {
	var req onboardingBody
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	goals := make([]string, 0, len(req.Goals))
	for _, g := range req.Goals {
		if g = strings.TrimSpace(g); g != "" {
			goals = append(goals, g)
		}
	}

	o := &models.Onboarding{UserID: userID, Goals: goals, UPIApp: strings.TrimSpace(req.UPIApp)}
	if err := s.store.SaveOnboarding(r.Context(), o); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, onboardingBody{Goals: o.Goals, UPIApp: o.UPIApp, CompletedAt: o.CompletedAt})
}

func (s *OnboardingService) get(w http.ResponseWriter, r *http.Request, userID string) {
	o, err := s.store.GetOnboarding(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, onboardingBody{Goals: o.Goals, UPIApp: o.UPIApp, CompletedAt: o.CompletedAt})
}
