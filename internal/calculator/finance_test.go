package calculator

import (
	"errors"
	"testing"

	"github.com/budgetbuddy/backend/internal/models"
)

func TestCategoryBreakdown(t *testing.T) {
	expenses := []models.Expense{
		{Title: "Dominos Pizza", Amount: 45000, Category: "canteen"},
		{Title: "Metro Card Recharge", Amount: 20000, Category: "Transport"},
		{Title: "Hostel Mess", Amount: 15000, Category: "Canteen"},
		{Title: "Movie Tickets", Amount: 60000, Category: "Outings"},
		{Title: "Stationery", Amount: 12000, Category: "Stationery"},
	}

	totals, total := CategoryBreakdown(expenses)

	if total != 152000 {
		t.Errorf("total = %d, want 152000", total)
	}
	if len(totals) != 4 {
		t.Fatalf("got %d categories, want 4", len(totals))
	}

	first := totals[0]
	if first.Category != "Canteen" && first.Category != "Outings" {
		t.Errorf("first category = %s, want Canteen or Outings", first.Category)
	}

	byName := make(map[string]CategoryTotal)
	for _, ct := range totals {
		byName[ct.Category] = ct
	}

	canteen := byName["Canteen"]
	if canteen.Amount != 60000 || canteen.TransactionCount != 2 {
		t.Errorf("Canteen = %+v, want amount 60000 over 2 transactions", canteen)
	}
	// 60000 / 152000 = 39.47%
	if canteen.Percentage != 39 {
		t.Errorf("Canteen percentage = %d, want 39", canteen.Percentage)
	}
	if canteen.Color != "#f97316" {
		t.Errorf("Canteen color = %s, want #f97316", canteen.Color)
	}
	if byName["Stationery"].Color != defaultCategoryColor {
		t.Errorf("Stationery color = %s, want default", byName["Stationery"].Color)
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "canteen", want: "Canteen"},
		{in: "  Transport ", want: "Transport"},
		{in: "", want: ""},
		{in: "   ", want: ""},
		{in: "éclairs", want: "Éclairs"},
		{in: "ünterkunft", want: "Ünterkunft"},
		{in: "किराया", want: "किराया"},
		{in: "मेस fees", want: "मेस fees"},
		{in: "9 to 5", want: "9 to 5"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeCategory(tt.in); got != tt.want {
				t.Errorf("NormalizeCategory(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCategoryBreakdown_NonASCII(t *testing.T) {
	totals, _ := CategoryBreakdown([]models.Expense{
		{Amount: 300, Category: "éclairs"},
		{Amount: 200, Category: "Éclairs"},
		{Amount: 100, Category: "किराया"},
	})
	if len(totals) != 2 {
		t.Fatalf("got %+v, want 2 categories", totals)
	}
	if totals[0].Category != "Éclairs" || totals[0].Amount != 500 || totals[0].TransactionCount != 2 {
		t.Errorf("first = %+v, want Éclairs with 500 over 2 transactions", totals[0])
	}
	if totals[1].Category != "किराया" {
		t.Errorf("second category = %q, want किराया", totals[1].Category)
	}
}

func TestCategoryBreakdown_Empty(t *testing.T) {
	totals, total := CategoryBreakdown(nil)
	if len(totals) != 0 || total != 0 {
		t.Errorf("CategoryBreakdown(nil) = %v, %d", totals, total)
	}
}

func TestDeposit(t *testing.T) {
	tests := []struct {
		name        string
		current     int64
		target      int64
		amount      int64
		wantCurrent int64
		wantAdded   int64
		wantErr     error
	}{
		{name: "below target", current: 1000, target: 5000, amount: 2000, wantCurrent: 3000, wantAdded: 2000},
		{name: "capped at target", current: 4500, target: 5000, amount: 2000, wantCurrent: 5000, wantAdded: 500},
		{name: "already full", current: 5000, target: 5000, amount: 100, wantCurrent: 5000, wantAdded: 0},
		{name: "zero amount", current: 0, target: 5000, amount: 0, wantErr: ErrInvalidAmount},
		{name: "negative amount", current: 0, target: 5000, amount: -10, wantErr: ErrInvalidAmount},
		{name: "amount above bound", current: 0, target: 5000, amount: MaxAmount + 1, wantErr: ErrInvalidAmount},
		{name: "huge amount near full goal", current: 4999, target: 5000, amount: MaxAmount, wantCurrent: 5000, wantAdded: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			goal := &models.SavingsGoal{Current: tt.current, Target: tt.target}
			added, err := Deposit(goal, tt.amount)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Deposit() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Deposit() failed: %v", err)
			}
			if goal.Current != tt.wantCurrent {
				t.Errorf("current = %d, want %d", goal.Current, tt.wantCurrent)
			}
			if added != tt.wantAdded {
				t.Errorf("added = %d, want %d", added, tt.wantAdded)
			}
		})
	}
}

func TestRetarget(t *testing.T) {
	goal := &models.SavingsGoal{Current: 100, Target: 5000}

	if err := Retarget(goal, 4000); !errors.Is(err, ErrTargetDecrease) {
		t.Errorf("Retarget(4000) error = %v, want ErrTargetDecrease", err)
	}
	if err := Retarget(goal, 8000); err != nil {
		t.Fatalf("Retarget(8000) failed: %v", err)
	}
	if err := Retarget(goal, MaxAmount+1); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Retarget(MaxAmount+1) error = %v, want ErrInvalidAmount", err)
	}
	if goal.Target != 8000 {
		t.Errorf("target = %d, want 8000", goal.Target)
	}
	if got := Progress(*goal); got != 1 {
		t.Errorf("Progress = %d, want 1", got)
	}
}
