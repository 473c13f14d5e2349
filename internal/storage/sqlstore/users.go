package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/homebase/internal/models"
	"github.com/mmynk/homebase/internal/storage"
)

const userColumns = `id, email, password_hash, first_name, last_name, avatar,
	is_active, is_staff, is_superuser, date_joined`

// CreateUser inserts a new user and sets user.ID.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.DateJoined.IsZero() {
		user.DateJoined = now()
	}

	query := s.rebind(`
		INSERT INTO users (email, password_hash, first_name, last_name, avatar,
			is_active, is_staff, is_superuser, date_joined)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	err := s.db.QueryRowxContext(ctx, query,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Avatar,
		user.IsActive,
		user.IsStaff,
		user.IsSuperuser,
		user.DateJoined,
	).Scan(&user.ID)
	if isUniqueViolation(err) {
		return storage.ErrEmailExists
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by ID.
func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.getUser(ctx, "id", id)
}

// GetUserByEmail retrieves a user by email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email", models.NormalizeEmail(email))
}

func (s *Store) getUser(ctx context.Context, column string, value any) (*models.User, error) {
	query := s.rebind(`SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = ?`)

	var user models.User
	err := s.db.GetContext(ctx, &user, query, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}

	return &user, nil
}

// SetUserAvatar stores the avatar path for a user; nil clears it.
func (s *Store) SetUserAvatar(ctx context.Context, userID int64, avatar *string) error {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE users SET avatar = ? WHERE id = ?`),
		avatar, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	return rowsAffectedOrNotFound(res, "avatar")
}

// DeleteUser removes a user. Tasks, expenses and short URLs go with it through
// ON DELETE CASCADE.
func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM users WHERE id = ?`), userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return rowsAffectedOrNotFound(res, "user")
}
