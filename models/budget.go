package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is a recurring monthly cap for one category.
type Budget struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Category  string          `json:"category"`
	Limit     decimal.Decimal `json:"limit"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BudgetWithSpend is a budget joined with the spend of one period.
// Spent is always derived, never stored.
type BudgetWithSpend struct {
	Budget
	Spent       decimal.Decimal `json:"spent"`
	Remaining   decimal.Decimal `json:"remaining"`
	PercentUsed int64           `json:"percent_used"`
	OverBudget  bool            `json:"over_budget"`
}

type CreateBudgetRequest struct {
	Category string          `json:"category" binding:"required"`
	Limit    decimal.Decimal `json:"limit"`
}

type UpdateBudgetRequest struct {
	Limit *decimal.Decimal `json:"limit" binding:"required"`
}
