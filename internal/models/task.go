package models

import "time"

// Task limits.
const (
	TaskLabelMaxLen       = 200
	TaskDescriptionMaxLen = 255
)

// Task is a to-do entry owned by a user.
type Task struct {
	ID          int64     `db:"id" json:"id"`
	Label       string    `db:"label" json:"label"`
	Description string    `db:"description" json:"description"`
	CreatedBy   int64     `db:"created_by" json:"created_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
