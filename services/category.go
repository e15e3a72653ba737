package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LovationAdmin/finance-tracker-api/models"
	"github.com/LovationAdmin/finance-tracker-api/utils"

	"github.com/shopspring/decimal"
)

const (
	renameAttempts     = 3
	renameRetryBackoff = 100 * time.Millisecond
)

type CategoryService struct {
	categories   CategoryStore
	transactions TransactionStore
	budgets      BudgetStore
	agg          *AggregationService
	notifier     ChangeNotifier
	loc          *time.Location
	now          func() time.Time
	backoff      time.Duration
}

func NewCategoryService(categories CategoryStore, transactions TransactionStore, budgets BudgetStore, agg *AggregationService, notifier ChangeNotifier, loc *time.Location) *CategoryService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &CategoryService{
		categories:   categories,
		transactions: transactions,
		budgets:      budgets,
		agg:          agg,
		notifier:     notifier,
		loc:          loc,
		now:          time.Now,
		backoff:      renameRetryBackoff,
	}
}

func (s *CategoryService) List(ctx context.Context, userID string) ([]models.Category, error) {
	return s.categories.FindAll(ctx, userID)
}

// ListWithTotals joins the registry with period p's expenses.
func (s *CategoryService) ListWithTotals(ctx context.Context, userID string, p models.Period) ([]models.CategoryTotal, error) {
	return s.agg.ComputeCategoryTotals(ctx, userID, p)
}

func (s *CategoryService) Create(ctx context.Context, userID, name string) (*models.Category, error) {
	name = models.CleanCategoryName(name)
	if name == "" {
		return nil, models.NewValidationError("name", "is required")
	}
	if err := models.ValidateLength("name", name, models.MaxNameLength); err != nil {
		return nil, err
	}

	c := &models.Category{UserID: userID, Name: name}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}

	utils.LogCategoryAction("created", name, userID)
	s.notify(userID)
	return c, nil
}

// Rename renames a category and moves every transaction filed under the old
// name. When the transactions cannot be moved the category keeps its old name
// and the whole operation fails.
func (s *CategoryService) Rename(ctx context.Context, userID, oldName, newName string) (*models.Category, error) {
	oldName = models.CleanCategoryName(oldName)
	newName = models.CleanCategoryName(newName)
	if oldName == "" {
		return nil, models.NewValidationError("old_name", "is required")
	}
	if newName == "" {
		return nil, models.NewValidationError("new_name", "is required")
	}
	if err := models.ValidateLength("new_name", newName, models.MaxNameLength); err != nil {
		return nil, err
	}

	category, err := s.categories.FindByName(ctx, userID, oldName)
	if err != nil {
		return nil, err
	}

	existing, err := s.categories.FindByName(ctx, userID, newName)
	switch {
	case err == nil && existing.ID != category.ID:
		return nil, fmt.Errorf("%w: %q", models.ErrDuplicateName, newName)
	case err != nil && !errors.Is(err, models.ErrNotFound):
		return nil, err
	}

	var moved int64
	if cascading, ok := s.categories.(CascadingCategoryStore); ok {
		moved, err = cascading.RenameCascade(ctx, userID, category.ID, newName)
		if err != nil {
			utils.LogCategoryAction("rename failed", oldName, userID)
			return nil, err
		}
	} else if moved, err = s.renameAndMove(ctx, userID, category, newName); err != nil {
		return nil, err
	}

	if moved > 0 {
		s.ensureBudget(ctx, userID, newName)
	}
	utils.SafeInfo("Category renamed: %q -> %q (%d transactions moved)", category.Name, newName, moved)
	s.notify(userID)
	category.Name = newName
	return category, nil
}

// renameAndMove is the cascade for stores without transactions: the registry
// is renamed first and renamed back when the transactions cannot be moved.
func (s *CategoryService) renameAndMove(ctx context.Context, userID string, category *models.Category, newName string) (int64, error) {
	if err := s.categories.Rename(ctx, userID, category.ID, newName); err != nil {
		utils.LogCategoryAction("rename failed", category.Name, userID)
		return 0, err
	}

	moved, err := s.moveTransactions(ctx, userID, category.Name, newName)
	if err != nil {
		utils.SafeError("Category rename partially applied for user %s: registry renamed %q -> %q but transactions were not moved: %v",
			utils.MaskID(userID), category.Name, newName, err)

		if rbErr := s.categories.Rename(context.WithoutCancel(ctx), userID, category.ID, category.Name); rbErr != nil {
			utils.SafeError("Category rename rollback failed for user %s (%q): %v", utils.MaskID(userID), category.Name, rbErr)
		}
		return 0, fmt.Errorf("rename category: move transactions: %w", err)
	}
	return moved, nil
}

// ensureBudget gives moved expenses a budget under their new name. The rename
// itself already succeeded, so a failure here is only logged.
func (s *CategoryService) ensureBudget(ctx context.Context, userID, name string) {
	if s.budgets == nil {
		return
	}
	txns, err := s.transactions.Find(ctx, userID, nil)
	if err != nil {
		utils.SafeWarn("Budget check after rename to %q failed: %v", name, err)
		return
	}
	for _, t := range txns {
		if !t.IsExpense() || !models.SameCategory(t.Category, name) {
			continue
		}
		_, created, err := s.budgets.FindOneOrCreate(ctx, userID, name, decimal.Zero)
		if err != nil {
			utils.SafeWarn("Budget creation after rename to %q failed: %v", name, err)
		} else if created {
			utils.LogBudgetAction("auto-created", name, userID)
		}
		return
	}
}

// moveTransactions retries the bulk update, which is idempotent.
func (s *CategoryService) moveTransactions(ctx context.Context, userID, oldName, newName string) (int64, error) {
	var lastErr error
	for attempt := 1; attempt <= renameAttempts; attempt++ {
		n, err := s.transactions.BulkUpdateCategory(ctx, userID, oldName, newName)
		if err == nil {
			return n, nil
		}
		lastErr = err
		utils.SafeWarn("Bulk category update attempt %d/%d failed: %v", attempt, renameAttempts, err)

		if attempt == renameAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(s.backoff * time.Duration(attempt)):
		}
	}
	return 0, lastErr
}

func (s *CategoryService) Delete(ctx context.Context, userID, id string) error {
	if err := s.categories.Delete(ctx, userID, id); err != nil {
		return err
	}
	utils.LogCategoryAction("deleted", id, userID)
	s.notify(userID)
	return nil
}

func (s *CategoryService) notify(userID string) {
	s.notifier.NotifyUser(userID, EventCategoriesChanged, models.PeriodOf(s.now(), s.loc))
}
