package models

import (
	"strings"
	"time"
)

// User represents a registered user account.
type User struct {
	// ID is the database-assigned identifier.
	ID int64 `db:"id" json:"id"`

	// Email is the login name. Stored trimmed and lowercased, unique.
	Email string `db:"email" json:"email"`

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string `db:"password_hash" json:"-"`

	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`

	// Avatar is the media-relative path of the current avatar file, if any.
	Avatar *string `db:"avatar" json:"-"`

	// IsActive users may log in; inactive accounts are rejected by auth.
	IsActive    bool `db:"is_active" json:"is_active"`
	IsStaff     bool `db:"is_staff" json:"is_staff"`
	IsSuperuser bool `db:"is_superuser" json:"is_superuser"`

	// DateJoined is when the account was created.
	DateJoined time.Time `db:"date_joined" json:"date_joined"`
}

// NormalizeEmail trims surrounding whitespace and lowercases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUser creates an active user with a normalized email.
func NewUser(email, firstName, lastName, passwordHash string) *User {
	return &User{
		Email:        NormalizeEmail(email),
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		PasswordHash: passwordHash,
		IsActive:     true,
		DateJoined:   time.Now().UTC(),
	}
}

// HasAvatar reports whether the user currently has an avatar file.
func (u *User) HasAvatar() bool {
	return u.Avatar != nil && *u.Avatar != ""
}
