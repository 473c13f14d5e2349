package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mmynk/homebase/internal/models"
	"github.com/mmynk/homebase/internal/storage"
)

// CreateTask inserts a task, setting its ID and timestamps.
func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	task.CreatedAt = now()
	task.UpdatedAt = task.CreatedAt

	query := s.rebind(`
		INSERT INTO tasks (label, description, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)

	err := s.db.QueryRowxContext(ctx, query,
		task.Label, task.Description, task.CreatedBy, task.CreatedAt, task.UpdatedAt,
	).Scan(&task.ID)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// ListTasks returns every task created by ownerID ordered by ID.
func (s *Store) ListTasks(ctx context.Context, ownerID int64) ([]models.Task, error) {
	query := s.rebind(`
		SELECT id, label, description, created_by, created_at, updated_at
		FROM tasks
		WHERE created_by = ?
		ORDER BY id
	`)

	tasks := []models.Task{}
	if err := s.db.SelectContext(ctx, &tasks, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// UpdateTask overwrites label and description, bumps updated_at and reloads
// created_at into task.
func (s *Store) UpdateTask(ctx context.Context, task *models.Task) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	task.UpdatedAt = now()
	res, err := tx.ExecContext(ctx,
		s.rebind(`UPDATE tasks SET label = ?, description = ?, updated_at = ? WHERE id = ? AND created_by = ?`),
		task.Label, task.Description, task.UpdatedAt, task.ID, task.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if err := rowsAffectedOrNotFound(res, "task"); err != nil {
		return err
	}

	if err := loadCreatedAt(ctx, tx, s.rebind(`SELECT created_at FROM tasks WHERE id = ?`), task.ID, &task.CreatedAt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteTask removes the task with taskID owned by ownerID.
func (s *Store) DeleteTask(ctx context.Context, ownerID, taskID int64) error {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`DELETE FROM tasks WHERE id = ? AND created_by = ?`),
		taskID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return rowsAffectedOrNotFound(res, "task")
}

func loadCreatedAt(ctx context.Context, tx *sqlx.Tx, query string, id int64, dest any) error {
	err := tx.GetContext(ctx, dest, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to reload created_at: %w", err)
	}
	return nil
}
