package sqlstore

import (
	"context"
	"fmt"

	"github.com/mmynk/homebase/internal/models"
)

// CreateExpense inserts an expense, setting its ID and timestamps.
func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) error {
	expense.CreatedAt = now()
	expense.UpdatedAt = expense.CreatedAt

	query := s.rebind(`
		INSERT INTO expenses (label, price, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)

	err := s.db.QueryRowxContext(ctx, query,
		expense.Label, expense.Price, expense.CreatedBy, expense.CreatedAt, expense.UpdatedAt,
	).Scan(&expense.ID)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}

	return nil
}

// ListExpenses returns every expense created by ownerID ordered by ID.
func (s *Store) ListExpenses(ctx context.Context, ownerID int64) ([]models.Expense, error) {
	query := s.rebind(`
		SELECT id, label, price, created_by, created_at, updated_at
		FROM expenses
		WHERE created_by = ?
		ORDER BY id
	`)

	expenses := []models.Expense{}
	if err := s.db.SelectContext(ctx, &expenses, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	return expenses, nil
}

// UpdateExpense overwrites label and price of an expense owned by expense.CreatedBy.
func (s *Store) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	expense.UpdatedAt = now()
	res, err := tx.ExecContext(ctx,
		s.rebind(`UPDATE expenses SET label = ?, price = ?, updated_at = ? WHERE id = ? AND created_by = ?`),
		expense.Label, expense.Price, expense.UpdatedAt, expense.ID, expense.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if err := rowsAffectedOrNotFound(res, "expense"); err != nil {
		return err
	}

	if err := loadCreatedAt(ctx, tx, s.rebind(`SELECT created_at FROM expenses WHERE id = ?`), expense.ID, &expense.CreatedAt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteExpense removes the expense with expenseID owned by ownerID.
func (s *Store) DeleteExpense(ctx context.Context, ownerID, expenseID int64) error {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`DELETE FROM expenses WHERE id = ? AND created_by = ?`),
		expenseID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return rowsAffectedOrNotFound(res, "expense")
}
