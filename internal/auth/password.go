package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/homebase/internal/models"
	"github.com/mmynk/homebase/internal/storage"
)

// MinPasswordLen is the shortest accepted password.
const MinPasswordLen = 8

// UnusablePassword is stored for accounts created through a social provider.
// It is not a bcrypt hash, so no password ever verifies against it.
const UnusablePassword = "!"

var (
	ErrInvalidCredentials = errors.New("no active account found with the given credentials")
	ErrInactiveUser       = errors.New("user account is disabled")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", MinPasswordLen)
	ErrEmailExists        = errors.New("user with this email already exists")
)

// UserStorage defines the interface for user persistence operations.
// This allows the authenticator to be independent of the storage implementation.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Ensure PasswordAuthenticator implements Authenticator
var _ Authenticator = (*PasswordAuthenticator)(nil)

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage UserStorage
	cost    int
}

// Option configures a PasswordAuthenticator.
type Option func(*PasswordAuthenticator)

// WithBcryptCost overrides bcrypt.DefaultCost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(a *PasswordAuthenticator) { a.cost = cost }
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(storage UserStorage, opts ...Option) *PasswordAuthenticator {
	a := &PasswordAuthenticator{
		storage: storage,
		cost:    bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < MinPasswordLen {
		return ErrWeakPassword
	}
	return nil
}

// HashPassword returns the bcrypt hash of password.
func (a *PasswordAuthenticator) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Register creates a new user account with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, email, firstName, lastName, credential string) (*models.User, error) {
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}

	existing, err := a.storage.GetUserByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, ErrEmailExists
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hashed, err := a.HashPassword(credential)
	if err != nil {
		return nil, err
	}

	user := models.NewUser(email, firstName, lastName, hashed)
	if err := a.storage.CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, storage.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies the email and password, returning the user if valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, credential string) (*models.User, error) {
	user, err := a.storage.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := a.Verify(user, credential); err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	return user, nil
}

// Verify compares credential with the user's stored hash.
func (a *PasswordAuthenticator) Verify(user *models.User, credential string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
