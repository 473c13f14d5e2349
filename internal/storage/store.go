// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/homebase/internal/models"
)

var (
	// ErrNotFound is returned when no row matches, including rows owned by
	// another user.
	ErrNotFound = errors.New("not found")

	// ErrEmailExists is returned when a user with the same email already exists.
	ErrEmailExists = errors.New("email already registered")

	// ErrDuplicateCode is returned when a short code is already taken.
	ErrDuplicateCode = errors.New("short code already exists")
)

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser inserts user and populates its ID.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	// GetUserByEmail looks up a user by normalized email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// SetUserAvatar replaces the stored avatar path; nil clears it.
	SetUserAvatar(ctx context.Context, userID int64, avatar *string) error
	// DeleteUser removes the user and, by cascade, everything they own.
	DeleteUser(ctx context.Context, userID int64) error
}

// TaskStore persists tasks. Every method except CreateTask is scoped to ownerID.
type TaskStore interface {
	CreateTask(ctx context.Context, task *models.Task) error
	ListTasks(ctx context.Context, ownerID int64) ([]models.Task, error)
	// UpdateTask overwrites label and description of the task with task.ID
	// owned by task.CreatedBy and refreshes timestamps on task.
	UpdateTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, ownerID, taskID int64) error
}

// ExpenseStore persists expenses. Every method except CreateExpense is scoped to ownerID.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, expense *models.Expense) error
	ListExpenses(ctx context.Context, ownerID int64) ([]models.Expense, error)
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, ownerID, expenseID int64) error
}

// ShortURLStore persists short URLs. Codes are unique across all users.
type ShortURLStore interface {
	// CreateShortURL returns ErrDuplicateCode if the code is taken.
	CreateShortURL(ctx context.Context, u *models.ShortURL) error
	ListShortURLs(ctx context.Context, ownerID int64) ([]models.ShortURL, error)
	ShortCodeExists(ctx context.Context, code string) (bool, error)
	GetShortURLByCode(ctx context.Context, code string) (*models.ShortURL, error)
	DeleteShortURL(ctx context.Context, ownerID, id int64) error
}

// Store defines every storage operation the services need.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore
	TaskStore
	ExpenseStore
	ShortURLStore

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
