package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/LovationAdmin/finance-tracker-api/models"
	"github.com/LovationAdmin/finance-tracker-api/utils"

	"github.com/shopspring/decimal"
)

// Event types pushed to live clients.
const (
	EventTransactionsChanged = "transactions_changed"
	EventBudgetsChanged      = "budgets_changed"
	EventCategoriesChanged   = "categories_changed"
)

type TransactionService struct {
	transactions TransactionStore
	budgets      BudgetStore
	suggester    CategorySuggester
	notifier     ChangeNotifier
	loc          *time.Location
}

func NewTransactionService(transactions TransactionStore, budgets BudgetStore, suggester CategorySuggester, notifier ChangeNotifier, loc *time.Location) *TransactionService {
	if suggester == nil {
		suggester = NoopSuggester{}
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &TransactionService{
		transactions: transactions,
		budgets:      budgets,
		suggester:    suggester,
		notifier:     notifier,
		loc:          loc,
	}
}

// List returns every transaction of the user, newest first.
func (s *TransactionService) List(ctx context.Context, userID string) ([]models.Transaction, error) {
	return s.transactions.Find(ctx, userID, nil)
}

func (s *TransactionService) ListPeriod(ctx context.Context, userID string, p models.Period) ([]models.Transaction, error) {
	r := p.Range()
	return s.transactions.Find(ctx, userID, &r)
}

// Create validates and stores a transaction. A blank category is inferred
// from merchant and notes; an expense makes sure its category has a budget.
func (s *TransactionService) Create(ctx context.Context, userID string, in models.TransactionInput) (*models.Transaction, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.Category == "" {
		in.Category = s.inferCategory(ctx, in)
	}

	t := &models.Transaction{UserID: userID}
	in.Apply(t)
	if err := s.transactions.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	// The budget follows the insert so a rejected transaction leaves no budget behind.
	if t.IsExpense() {
		if err := s.EnsureBudgetForExpense(ctx, userID, t.Category); err != nil {
			return nil, err
		}
	}

	utils.LogTransactionAction("created", t.ID, userID, t.Amount)
	s.notifier.NotifyUser(userID, EventTransactionsChanged, models.PeriodOf(t.Date, s.loc))
	return t, nil
}

// Update replaces every editable field of an existing transaction.
func (s *TransactionService) Update(ctx context.Context, userID, id string, in models.TransactionInput) (*models.Transaction, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.Category == "" {
		return nil, models.NewValidationError("category", "is required")
	}

	t, err := s.transactions.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	previous := models.PeriodOf(t.Date, s.loc)

	needsBudget := in.Kind == models.KindExpense && !(t.IsExpense() && models.SameCategory(t.Category, in.Category))

	in.Apply(t)
	if err := s.transactions.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	if needsBudget {
		if err := s.EnsureBudgetForExpense(ctx, userID, t.Category); err != nil {
			return nil, err
		}
	}

	utils.LogTransactionAction("updated", t.ID, userID, t.Amount)
	current := models.PeriodOf(t.Date, s.loc)
	s.notifier.NotifyUser(userID, EventTransactionsChanged, current)
	if current != previous {
		s.notifier.NotifyUser(userID, EventTransactionsChanged, previous)
	}
	return t, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	t, err := s.transactions.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.transactions.Delete(ctx, userID, id); err != nil {
		return err
	}

	utils.LogTransactionAction("deleted", id, userID, t.Amount)
	s.notifier.NotifyUser(userID, EventTransactionsChanged, models.PeriodOf(t.Date, s.loc))
	return nil
}

// EnsureBudgetForExpense creates a zero-limit budget the first time an expense
// lands in a category. Calling it again for the same category is a no-op.
func (s *TransactionService) EnsureBudgetForExpense(ctx context.Context, userID, category string) error {
	_, created, err := s.budgets.FindOneOrCreate(ctx, userID, category, decimal.Zero)
	if err != nil {
		return fmt.Errorf("ensure budget for %q: %w", category, err)
	}
	if created {
		utils.LogBudgetAction("auto-created", category, userID)
	}
	return nil
}

func (s *TransactionService) inferCategory(ctx context.Context, in models.TransactionInput) string {
	var parts []string
	if in.Merchant != models.DefaultMerchant {
		parts = append(parts, in.Merchant)
	}
	if in.Notes != "" {
		parts = append(parts, in.Notes)
	}

	suggestion := s.suggester.SuggestCategoryAndTags(ctx, strings.Join(parts, " "))
	if suggestion.Category == nil {
		return models.DefaultCategory
	}
	name := models.CleanCategoryName(*suggestion.Category)
	if name == "" || models.ValidateLength("category", name, models.MaxNameLength) != nil {
		return models.DefaultCategory
	}
	return name
}
