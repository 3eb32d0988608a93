package auth

import (
	"context"

	"github.com/budgetbuddy/backend/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// The service layer only sees this interface, so the credential scheme can
// change without touching handlers.
type Authenticator interface {
	// Register creates a new user account with the given email and credential.
	// Returns ErrEmailExists when the email is taken.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user.
	// Any mismatch, including an unknown email, yields ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error

	// User returns the account with the given ID.
	User(ctx context.Context, id string) (*models.User, error)
}
