package models

// Expense is a personal expense logged by a user.
type Expense struct {
	ID       string
	UserID   string
	Title    string
	Amount   int64 // minor units
	Category string
	// SpentAt is the Unix timestamp the expense happened at.
	SpentAt   int64
	CreatedAt int64
}

// SavingsGoal is a savings pot. Current never exceeds Target.
type SavingsGoal struct {
	ID        string
	UserID    string
	Title     string
	Target    int64
	Current   int64
	Category  string
	CreatedAt int64
	UpdatedAt int64
}

// Onboarding holds the answers given during onboarding.
type Onboarding struct {
	UserID      string
	Goals       []string
	UPIApp      string
	CompletedAt int64
}
