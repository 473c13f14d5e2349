package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mmynk/homebase/internal/models"
	"github.com/mmynk/homebase/internal/storage"
	"github.com/mmynk/homebase/internal/validate"
)

const expenseNotFound = "Expense not found"

// ExpenseInput is the writable part of an expense. Price is kept as text so
// that parsing errors can be reported as format errors.
type ExpenseInput struct {
	Label string
	Price string
}

// ExpenseService manages the caller's expenses.
type ExpenseService struct {
	store storage.ExpenseStore
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.ExpenseStore) *ExpenseService {
	return &ExpenseService{store: store}
}

func (in ExpenseInput) validate() (decimal.Decimal, error) {
	if err := validate.Required(
		validate.Field{Name: "label", Value: in.Label},
		validate.Field{Name: "price", Value: in.Price},
	); err != nil {
		return decimal.Decimal{}, err
	}
	if err := validate.Label(in.Label, models.ExpenseLabelMaxLen); err != nil {
		return decimal.Decimal{}, err
	}
	return validate.Price(in.Price)
}

// List returns every expense owned by userID.
func (s *ExpenseService) List(ctx context.Context, userID int64) ([]models.Expense, error) {
	expenses, err := s.store.ListExpenses(ctx, userID)
	if err != nil {
		return nil, storeError("ListExpenses", err, expenseNotFound)
	}
	return expenses, nil
}

// Create validates in and stores a new expense owned by userID.
func (s *ExpenseService) Create(ctx context.Context, userID int64, in ExpenseInput) (*models.Expense, error) {
	price, err := in.validate()
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		Label:     in.Label,
		Price:     price,
		CreatedBy: userID,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, storeError("CreateExpense", err, expenseNotFound)
	}

	slog.Info("Expense created", "expense_id", expense.ID, "user_id", userID)
	return expense, nil
}

// Update overwrites label and price of an expense owned by userID.
func (s *ExpenseService) Update(ctx context.Context, userID, expenseID int64, in ExpenseInput) (*models.Expense, error) {
	price, err := in.validate()
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		ID:        expenseID,
		Label:     in.Label,
		Price:     price,
		CreatedBy: userID,
	}
	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		return nil, storeError("UpdateExpense", err, expenseNotFound)
	}

	slog.Info("Expense updated", "expense_id", expense.ID, "user_id", userID)
	return expense, nil
}

// Delete removes an expense owned by userID.
func (s *ExpenseService) Delete(ctx context.Context, userID, expenseID int64) error {
	if err := s.store.DeleteExpense(ctx, userID, expenseID); err != nil {
		return storeError("DeleteExpense", err, expenseNotFound)
	}

	slog.Info("Expense deleted", "expense_id", expenseID, "user_id", userID)
	return nil
}
