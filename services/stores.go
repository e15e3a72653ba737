package services

import (
	"context"

	"github.com/LovationAdmin/finance-tracker-api/models"

	"github.com/shopspring/decimal"
)

// TransactionStore persists transactions. Every call is scoped to one user.
type TransactionStore interface {
	// Find returns the user's transactions, newest first. A nil range returns all of them.
	Find(ctx context.Context, userID string, r *models.DateRange) ([]models.Transaction, error)
	Get(ctx context.Context, userID, id string) (*models.Transaction, error)
	Create(ctx context.Context, t *models.Transaction) error
	Update(ctx context.Context, t *models.Transaction) error
	Delete(ctx context.Context, userID, id string) error
	// BulkUpdateCategory moves every transaction matching oldName to newName.
	// Running it twice is harmless.
	BulkUpdateCategory(ctx context.Context, userID, oldName, newName string) (int64, error)
}

// BudgetStore persists budgets. FindAll returns them in insertion order.
type BudgetStore interface {
	FindAll(ctx context.Context, userID string) ([]models.Budget, error)
	Create(ctx context.Context, b *models.Budget) error
	// FindOneOrCreate atomically returns the budget for category, creating it
	// with defaultLimit when none exists. created reports which happened.
	FindOneOrCreate(ctx context.Context, userID, category string, defaultLimit decimal.Decimal) (b *models.Budget, created bool, err error)
	UpdateLimit(ctx context.Context, userID, id string, limit decimal.Decimal) (*models.Budget, error)
	Delete(ctx context.Context, userID, id string) error
}

type CategoryStore interface {
	FindAll(ctx context.Context, userID string) ([]models.Category, error)
	FindByName(ctx context.Context, userID, name string) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	Rename(ctx context.Context, userID, id, newName string) error
	Delete(ctx context.Context, userID, id string) error
}

// CascadingCategoryStore is implemented by stores that can rename a category
// and move its transactions in a single database transaction.
type CascadingCategoryStore interface {
	RenameCascade(ctx context.Context, userID, id, newName string) (moved int64, err error)
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id, name, avatar string) error
	UpdateFinancialProfile(ctx context.Context, id string, p models.FinancialProfile) error
	UpdatePassword(ctx context.Context, id, hash string) error
	SetTOTP(ctx context.Context, id, secret string, enabled bool) error
	Delete(ctx context.Context, id string) error
}

type ChatStore interface {
	Create(ctx context.Context, chat *models.AIChat) error
	Recent(ctx context.Context, userID string, limit int) ([]models.AIChat, error)
}

// ChangeNotifier tells live clients that a user's data changed.
type ChangeNotifier interface {
	NotifyUser(userID, eventType string, period models.Period)
}

type noopNotifier struct{}

func (noopNotifier) NotifyUser(string, string, models.Period) {}
