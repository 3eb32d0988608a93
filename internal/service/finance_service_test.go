package service

import (
	"math"
	"net/http"
	"testing"
)

func TestExpenses(t *testing.T) {
	srv := setupTestServer(t)

	inputs := []map[string]any{
		{"title": "Lunch", "amount": 15000, "category": "food"},
		{"title": "Metro", "amount": "40.50", "category": "Transport"},
		{"title": "Snacks", "amount": 5000, "category": "Food"},
	}
	for _, in := range inputs {
		resp := srv.do(t, http.MethodPost, "/api/expenses", in, nil)
		expectStatus(t, resp, http.StatusCreated)
	}

	t.Run("list", func(t *testing.T) {
		var got struct {
			Expenses []expenseResponse `json:"expenses"`
		}
		resp := srv.do(t, http.MethodGet, "/api/expenses", nil, &got)
		expectStatus(t, resp, http.StatusOK)
		if len(got.Expenses) != 3 {
			t.Fatalf("Expected 3 expenses, got %d", len(got.Expenses))
		}
		for _, e := range got.Expenses {
			if e.Title == "Metro" && e.Amount != 4050 {
				t.Errorf("Metro amount = %d, want 4050", e.Amount)
			}
		}
	})

	t.Run("categories", func(t *testing.T) {
		var got struct {
			Categories []categoryResponse `json:"categories"`
			Total      int64              `json:"total"`
		}
		srv.do(t, http.MethodGet, "/api/expenses/categories", nil, &got)
		if got.Total != 24050 {
			t.Errorf("total = %d, want 24050", got.Total)
		}
		if len(got.Categories) != 2 {
			t.Fatalf("Expected 2 categories, got %+v", got.Categories)
		}
		food := got.Categories[0]
		if food.Category != "Food" || food.Amount != 20000 || food.TransactionCount != 2 {
			t.Errorf("Unexpected first category: %+v", food)
		}
	})

	t.Run("summary", func(t *testing.T) {
		var got monthlySummaryResponse
		srv.do(t, http.MethodGet, "/api/expenses/summary", nil, &got)
		if got.MonthTotal != 24050 || got.Allowance != 1000000 || got.MonthlyBalance != 975950 {
			t.Errorf("Unexpected summary: %+v", got)
		}
	})

	t.Run("other users see nothing", func(t *testing.T) {
		var got struct {
			Expenses []expenseResponse `json:"expenses"`
		}
		srv.do(t, http.MethodGet, "/api/expenses", nil, &got, "X-Test-User", "user-2")
		if len(got.Expenses) != 0 {
			t.Errorf("Expected no expenses for user-2, got %d", len(got.Expenses))
		}
	})
}

func TestExpenses_Invalid(t *testing.T) {
	srv := setupTestServer(t)

	tests := []struct {
		name     string
		body     map[string]any
		wantCode string
	}{
		{"missing title", map[string]any{"amount": 100, "category": "Food"}, "InvalidRequest"},
		{"missing category", map[string]any{"title": "Tea", "amount": 100}, "InvalidRequest"},
		{"zero amount", map[string]any{"title": "Tea", "amount": 0, "category": "Food"}, "InvalidAmount"},
		{"bad amount", map[string]any{"title": "Tea", "amount": "ten", "category": "Food"}, "InvalidAmount"},
		{"amount above the bound", map[string]any{"title": "Tea", "amount": int64(math.MaxInt64), "category": "Food"}, "InvalidAmount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got errorResponse
			resp := srv.do(t, http.MethodPost, "/api/expenses", tt.body, &got)
			expectStatus(t, resp, http.StatusBadRequest)
			if got.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", got.Code, tt.wantCode)
			}
		})
	}
}

func TestSavings(t *testing.T) {
	srv := setupTestServer(t)

	var goal savingsGoalResponse
	resp := srv.do(t, http.MethodPost, "/api/savings", map[string]any{
		"title": "Laptop", "target": 100000, "category": "gadgets",
	}, &goal)
	expectStatus(t, resp, http.StatusCreated)
	if goal.Current != 0 || goal.Category != "Gadgets" {
		t.Errorf("Unexpected goal: %+v", goal)
	}
	path := "/api/savings/" + goal.ID

	var added struct {
		Goal        savingsGoalResponse `json:"goal"`
		AmountAdded int64               `json:"amountAdded"`
	}
	srv.do(t, http.MethodPost, path+"/add-money", map[string]any{"amount": 60000}, &added)
	if added.AmountAdded != 60000 || added.Goal.Progress != 60 {
		t.Errorf("Unexpected deposit: %+v", added)
	}

	srv.do(t, http.MethodPost, path+"/add-money", map[string]any{"amount": 60000}, &added)
	if added.AmountAdded != 40000 || added.Goal.Current != 100000 || added.Goal.Progress != 100 {
		t.Errorf("Deposit should be capped at the target: %+v", added)
	}

	var errBody errorResponse
	resp = srv.do(t, http.MethodPut, path, map[string]any{"target": 50000}, &errBody)
	expectStatus(t, resp, http.StatusBadRequest)
	if errBody.Code != "TargetDecrease" {
		t.Errorf("code = %s, want TargetDecrease", errBody.Code)
	}

	var retargeted savingsGoalResponse
	resp = srv.do(t, http.MethodPut, path, map[string]any{"target": "2000"}, &retargeted)
	expectStatus(t, resp, http.StatusOK)
	if retargeted.Target != 200000 || retargeted.Progress != 50 {
		t.Errorf("Unexpected retarget: %+v", retargeted)
	}

	resp = srv.do(t, http.MethodPost, path+"/add-money", map[string]any{"amount": 100}, nil, "X-Test-User", "user-2")
	expectStatus(t, resp, http.StatusNotFound)

	var summary monthlySummaryResponse
	srv.do(t, http.MethodGet, "/api/expenses/summary", nil, &summary)
	if summary.TotalSavings != 100000 {
		t.Errorf("TotalSavings = %d, want 100000", summary.TotalSavings)
	}

	resp = srv.do(t, http.MethodDelete, path, nil, nil)
	expectStatus(t, resp, http.StatusNoContent)
	resp = srv.do(t, http.MethodDelete, path, nil, nil)
	expectStatus(t, resp, http.StatusNotFound)

	var list struct {
		Goals []savingsGoalResponse `json:"goals"`
	}
	srv.do(t, http.MethodGet, "/api/savings", nil, &list)
	if len(list.Goals) != 0 {
		t.Errorf("Expected no goals after delete, got %d", len(list.Goals))
	}
}

func TestOnboarding(t *testing.T) {
	srv := setupTestServer(t)

	resp := srv.do(t, http.MethodGet, "/api/onboarding", nil, nil)
	expectStatus(t, resp, http.StatusNotFound)

	var saved onboardingBody
	resp = srv.do(t, http.MethodPost, "/api/onboarding", map[string]any{
		"goals": []string{"Save for a trip", " ", "Track food spend"}, "upiApp": "GPay",
	}, &saved)
	expectStatus(t, resp, http.StatusOK)
	if len(saved.Goals) != 2 || saved.CompletedAt == 0 {
		t.Errorf("Unexpected onboarding: %+v", saved)
	}

	var got onboardingBody
	resp = srv.do(t, http.MethodGet, "/api/onboarding", nil, &got)
	expectStatus(t, resp, http.StatusOK)
	if got.UPIApp != "GPay" || len(got.Goals) != 2 || got.Goals[0] != "Save for a trip" {
		t.Errorf("Unexpected onboarding: %+v", got)
	}
}
