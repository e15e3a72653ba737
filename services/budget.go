package services

import (
	"context"
	"time"

	"github.com/LovationAdmin/finance-tracker-api/models"
	"github.com/LovationAdmin/finance-tracker-api/utils"

	"github.com/shopspring/decimal"
)

type BudgetService struct {
	budgets  BudgetStore
	agg      *AggregationService
	notifier ChangeNotifier
	now      func() time.Time
	loc      *time.Location
}

func NewBudgetService(budgets BudgetStore, agg *AggregationService, notifier ChangeNotifier, loc *time.Location) *BudgetService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &BudgetService{budgets: budgets, agg: agg, notifier: notifier, now: time.Now, loc: loc}
}

// ListWithSpend returns every budget, in the order they were created, with
// the spend of period p.
func (s *BudgetService) ListWithSpend(ctx context.Context, userID string, p models.Period) ([]models.BudgetWithSpend, error) {
	return s.agg.ComputeBudgetsWithSpend(ctx, userID, p)
}

func (s *BudgetService) Create(ctx context.Context, userID string, req models.CreateBudgetRequest) (*models.Budget, error) {
	category := models.CleanCategoryName(req.Category)
	if category == "" {
		return nil, models.NewValidationError("category", "is required")
	}
	if err := models.ValidateLength("category", category, models.MaxNameLength); err != nil {
		return nil, err
	}
	if err := validateLimit(req.Limit); err != nil {
		return nil, err
	}

	b := &models.Budget{UserID: userID, Category: category, Limit: req.Limit}
	if err := s.budgets.Create(ctx, b); err != nil {
		return nil, err
	}

	utils.LogBudgetAction("created", category, userID)
	s.notify(userID)
	return b, nil
}

func (s *BudgetService) UpdateLimit(ctx context.Context, userID, id string, limit decimal.Decimal) (*models.Budget, error) {
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	b, err := s.budgets.UpdateLimit(ctx, userID, id, limit)
	if err != nil {
		return nil, err
	}

	utils.LogBudgetAction("limit updated", b.Category, userID)
	s.notify(userID)
	return b, nil
}

func (s *BudgetService) Delete(ctx context.Context, userID, id string) error {
	if err := s.budgets.Delete(ctx, userID, id); err != nil {
		return err
	}
	utils.LogBudgetAction("deleted", id, userID)
	s.notify(userID)
	return nil
}

func validateLimit(limit decimal.Decimal) error {
	if limit.IsNegative() {
		return models.NewValidationError("limit", "must not be negative")
	}
	return models.ValidateMoney("limit", limit)
}

// Budgets are not month specific, so the current month is the one to refresh.
func (s *BudgetService) notify(userID string) {
	s.notifier.NotifyUser(userID, EventBudgetsChanged, models.PeriodOf(s.now(), s.loc))
}
