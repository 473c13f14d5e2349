package auth

import (
	"context"

	"github.com/mmynk/homebase/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password, passkeys, OAuth, etc.)
// without changing the service layer code.
type Authenticator interface {
	// Register creates a new user account with the given email, names and credential.
	Register(ctx context.Context, email, firstName, lastName, credential string) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	// Inactive accounts fail with ErrInactiveUser.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// Verify checks credential against an already loaded user.
	Verify(user *models.User, credential string) error

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
