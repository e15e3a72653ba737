package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/LovationAdmin/finance-tracker-api/models"
)

type fixedSuggester struct {
	suggestion models.Suggestion
	got        string
}

func (s *fixedSuggester) SuggestCategoryAndTags(_ context.Context, text string) models.Suggestion {
	s.got = text
	return s.suggestion
}

func expenseInput(category string) models.TransactionInput {
	return models.TransactionInput{
		Kind:          models.KindExpense,
		Amount:        dec("42"),
		Date:          time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		Category:      category,
		PaymentMethod: "Card",
	}
}

func TestCreate_AutoCreatesBudgetOnce(t *testing.T) {
	st := newTestStores()
	notifier := &recordingNotifier{}
	svc := NewTransactionService(st.transactions, st.budgets, nil, notifier, time.UTC)
	ctx := context.Background()

	if _, err := svc.Create(ctx, testUser, expenseInput("Pets")); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, testUser, expenseInput(" pets ")); err != nil {
		t.Fatal(err)
	}

	budgets, err := st.budgets.FindAll(ctx, testUser)
	if err != nil {
		t.Fatal(err)
	}
	if len(budgets) != 1 {
		t.Fatalf("got %d budgets, want 1: %+v", len(budgets), budgets)
	}
	if budgets[0].Category != "Pets" || !budgets[0].Limit.IsZero() {
		t.Errorf("budget = %+v", budgets[0])
	}
	if len(notifier.events) != 2 {
		t.Errorf("events = %v", notifier.events)
	}
}

func TestCreate_IncomeDoesNotCreateBudget(t *testing.T) {
	st := newTestStores()
	svc := NewTransactionService(st.transactions, st.budgets, nil, nil, time.UTC)

	in := expenseInput("Salary")
	in.Kind = models.KindIncome
	if _, err := svc.Create(context.Background(), testUser, in); err != nil {
		t.Fatal(err)
	}

	budgets, _ := st.budgets.FindAll(context.Background(), testUser)
	if len(budgets) != 0 {
		t.Errorf("income should not create budgets: %+v", budgets)
	}
}

func TestCreate_ConcurrentExpensesInNewCategory(t *testing.T) {
	st := newTestStores()
	svc := NewTransactionService(st.transactions, st.budgets, nil, nil, time.UTC)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Create(context.Background(), testUser, expenseInput("Garden")); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("create failed: %v", err)
	}

	budgets, _ := st.budgets.FindAll(context.Background(), testUser)
	if len(budgets) != 1 {
		t.Errorf("got %d budgets, want 1", len(budgets))
	}
}

func TestCreate_InfersBlankCategory(t *testing.T) {
	st := newTestStores()
	food := "Food & Dining"
	suggester := &fixedSuggester{suggestion: models.Suggestion{Category: &food, Tags: []string{}}}
	svc := NewTransactionService(st.transactions, st.budgets, suggester, nil, time.UTC)

	in := expenseInput("")
	in.Merchant = "Swiggy"
	in.Notes = "dinner"
	txn, err := svc.Create(context.Background(), testUser, in)
	if err != nil {
		t.Fatal(err)
	}
	if txn.Category != food {
		t.Errorf("category = %q", txn.Category)
	}
	if suggester.got != "Swiggy dinner" {
		t.Errorf("suggester input = %q", suggester.got)
	}
}

func TestCreate_FallsBackToOther(t *testing.T) {
	st := newTestStores()
	svc := NewTransactionService(st.transactions, st.budgets, NoopSuggester{}, nil, time.UTC)

	txn, err := svc.Create(context.Background(), testUser, expenseInput(""))
	if err != nil {
		t.Fatal(err)
	}
	if txn.Category != models.DefaultCategory {
		t.Errorf("category = %q, want %q", txn.Category, models.DefaultCategory)
	}
	if txn.Merchant != models.DefaultMerchant {
		t.Errorf("merchant = %q", txn.Merchant)
	}
}

func TestCreate_ValidationPersistsNothing(t *testing.T) {
	st := newTestStores()
	svc := NewTransactionService(st.transactions, st.budgets, nil, nil, time.UTC)

	in := expenseInput("Food")
	in.Amount = dec("0")
	_, err := svc.Create(context.Background(), testUser, in)

	var verr *models.ValidationError
	if !errors.As(err, &verr) || verr.Field != "amount" {
		t.Fatalf("err = %v", err)
	}
	txns, _ := st.transactions.Find(context.Background(), testUser, nil)
	budgets, _ := st.budgets.FindAll(context.Background(), testUser)
	if len(txns) != 0 || len(budgets) != 0 {
		t.Error("a rejected transaction must not touch the stores")
	}
}

type failingInsertStore struct {
	TransactionStore
	err error
}

func (s failingInsertStore) Create(context.Context, *models.Transaction) error {
	return s.err
}

func TestCreate_FailedInsertLeavesNoBudget(t *testing.T) {
	st := newTestStores()
	insertErr := errors.New("connection reset")
	svc := NewTransactionService(failingInsertStore{TransactionStore: st.transactions, err: insertErr}, st.budgets, nil, nil, time.UTC)

	if _, err := svc.Create(context.Background(), testUser, expenseInput("Travel")); !errors.Is(err, insertErr) {
		t.Fatalf("err = %v", err)
	}
	budgets, _ := st.budgets.FindAll(context.Background(), testUser)
	if len(budgets) != 0 {
		t.Errorf("failed insert created budgets: %+v", budgets)
	}
}

func TestCreate_RejectsValuesOutsideColumnLimits(t *testing.T) {
	st := newTestStores()
	svc := NewTransactionService(st.transactions, st.budgets, nil, nil, time.UTC)

	tests := []struct {
		name  string
		edit  func(in *models.TransactionInput)
		field string
	}{
		{"sub-cent amount", func(in *models.TransactionInput) { in.Amount = dec("0.004") }, "amount"},
		{"trillion amount", func(in *models.TransactionInput) { in.Amount = dec("1000000000000") }, "amount"},
		{"long category", func(in *models.TransactionInput) { in.Category = strings.Repeat("x", 101) }, "category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := expenseInput("Food")
			tt.edit(&in)
			_, err := svc.Create(context.Background(), testUser, in)
			var verr *models.ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Fatalf("err = %v, want %s ValidationError", err, tt.field)
			}
		})
	}

	budgets, _ := st.budgets.FindAll(context.Background(), testUser)
	if len(budgets) != 0 {
		t.Errorf("rejected input created budgets: %+v", budgets)
	}
}

func TestUpdate_ReplacesFieldsAndEnsuresBudget(t *testing.T) {
	st := newTestStores()
	svc := NewTransactionService(st.transactions, st.budgets, nil, nil, time.UTC)
	ctx := context.Background()

	txn, err := svc.Create(ctx, testUser, expenseInput("Food"))
	if err != nil {
		t.Fatal(err)
	}

	in := expenseInput("Books")
	in.Amount = dec("99.50")
	in.Tags = []string{"novel"}
	updated, err := svc.Update(ctx, testUser, txn.ID, in)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Category != "Books" || !updated.Amount.Equal(dec("99.50")) || len(updated.Tags) != 1 {
		t.Errorf("updated = %+v", updated)
	}

	budgets, _ := st.budgets.FindAll(ctx, testUser)
	if len(budgets) != 2 {
		t.Errorf("budgets = %+v", budgets)
	}
}

func TestUpdateAndDelete_NotOwned(t *testing.T) {
	st := newTestStores()
	svc := NewTransactionService(st.transactions, st.budgets, nil, nil, time.UTC)
	ctx := context.Background()

	txn, err := svc.Create(ctx, testUser, expenseInput("Food"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Update(ctx, "someone-else", txn.ID, expenseInput("Food")); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("update err = %v", err)
	}
	if err := svc.Delete(ctx, "someone-else", txn.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("delete err = %v", err)
	}
	if err := svc.Delete(ctx, testUser, txn.ID); err != nil {
		t.Errorf("owner delete failed: %v", err)
	}
	if err := svc.Delete(ctx, testUser, txn.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}
