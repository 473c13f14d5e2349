package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense limits. Prices are fixed-point with at most PriceMaxDigits digits,
// PriceDecimalPlaces of them after the decimal point.
const (
	ExpenseLabelMaxLen = 205
	PriceMaxDigits     = 19
	PriceDecimalPlaces = 4
)

// Expense is a labelled price owned by a user.
type Expense struct {
	ID        int64           `db:"id" json:"id"`
	Label     string          `db:"label" json:"label"`
	Price     decimal.Decimal `db:"price" json:"price"`
	CreatedBy int64           `db:"created_by" json:"created_by"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}
