package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/LovationAdmin/finance-tracker-api/models"
	"github.com/LovationAdmin/finance-tracker-api/repository"

	"github.com/shopspring/decimal"
)

const testUser = "user-1"

type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	delay   time.Duration
	calls   int
	prompts []string
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.calls++
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()

	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return g.reply, g.err
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) NotifyUser(userID, eventType string, p models.Period) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, eventType)
}

type testStores struct {
	transactions *repository.MemoryTransactionRepository
	budgets      *repository.MemoryBudgetRepository
	categories   *repository.MemoryCategoryRepository
	users        *repository.MemoryUserRepository
	chats        *repository.MemoryChatRepository
}

func newTestStores() *testStores {
	return &testStores{
		transactions: repository.NewMemoryTransactionRepository(),
		budgets:      repository.NewMemoryBudgetRepository(),
		categories:   repository.NewMemoryCategoryRepository(),
		users:        repository.NewMemoryUserRepository(),
		chats:        repository.NewMemoryChatRepository(),
	}
}

func (s *testStores) aggregation(policy IncomePolicy) *AggregationService {
	return NewAggregationService(s.transactions, s.budgets, s.categories, s.users, policy)
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func march2025(t *testing.T) models.Period {
	t.Helper()
	p, err := models.NewPeriod(2025, 3, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func addTxn(t *testing.T, store TransactionStore, kind models.TransactionKind, amount, category string, day int) models.Transaction {
	t.Helper()
	txn := &models.Transaction{
		UserID:        testUser,
		Kind:          kind,
		Amount:        dec(amount),
		Date:          time.Date(2025, 3, day, 12, 0, 0, 0, time.UTC),
		Category:      category,
		Merchant:      models.DefaultMerchant,
		PaymentMethod: "Card",
		Tags:          []string{},
	}
	if err := store.Create(context.Background(), txn); err != nil {
		t.Fatal(err)
	}
	return *txn
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}
