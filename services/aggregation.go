package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/LovationAdmin/finance-tracker-api/models"

	"github.com/shopspring/decimal"
)

// IncomePolicy decides where a month's total income comes from.
type IncomePolicy int

const (
	// IncomeTransactionsFirst sums income transactions and falls back to the
	// profile's monthly income when that sum is zero.
	IncomeTransactionsFirst IncomePolicy = iota
	// IncomeProfileFirst uses the profile's monthly income when it is set.
	IncomeProfileFirst
)

var hundred = decimal.NewFromInt(100)

// AggregationService computes a user's monthly figures. It never writes.
type AggregationService struct {
	transactions TransactionStore
	budgets      BudgetStore
	categories   CategoryStore
	users        UserStore
	policy       IncomePolicy
}

func NewAggregationService(transactions TransactionStore, budgets BudgetStore, categories CategoryStore, users UserStore, policy IncomePolicy) *AggregationService {
	return &AggregationService{
		transactions: transactions,
		budgets:      budgets,
		categories:   categories,
		users:        users,
		policy:       policy,
	}
}

func (s *AggregationService) ComputeMonthlySummary(ctx context.Context, userID string, p models.Period) (*models.MonthlySummary, error) {
	r := p.Range()
	txns, err := s.transactions.Find(ctx, userID, &r)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	profileIncome, err := s.profileIncome(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := Summarize(txns, p, profileIncome, s.policy)
	return &summary, nil
}

func (s *AggregationService) ComputeBudgetsWithSpend(ctx context.Context, userID string, p models.Period) ([]models.BudgetWithSpend, error) {
	budgets, err := s.budgets.FindAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load budgets: %w", err)
	}
	if len(budgets) == 0 {
		return []models.BudgetWithSpend{}, nil
	}

	summary, err := s.ComputeMonthlySummary(ctx, userID, p)
	if err != nil {
		return nil, err
	}
	return BudgetsWithSpend(budgets, summary.SpendingByCategory), nil
}

func (s *AggregationService) ComputeCategoryTotals(ctx context.Context, userID string, p models.Period) ([]models.CategoryTotal, error) {
	registry, err := s.categories.FindAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	summary, err := s.ComputeMonthlySummary(ctx, userID, p)
	if err != nil {
		return nil, err
	}
	return CategoryTotals(registry, summary.SpendingByCategory, summary.Summary.TotalExpense), nil
}

func (s *AggregationService) profileIncome(ctx context.Context, userID string) (decimal.Decimal, error) {
	if s.users == nil {
		return decimal.Zero, nil
	}
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("load profile: %w", err)
	}
	return u.FinancialProfile.MonthlyIncome, nil
}

// ============================================================================
// PURE AGGREGATION
// ============================================================================

type categoryAccumulator struct {
	key   string
	name  string
	value decimal.Decimal
}

// Summarize aggregates txns that fall inside p. The display name of a
// category is the spelling used by its earliest transaction.
func Summarize(txns []models.Transaction, p models.Period, profileIncome decimal.Decimal, policy IncomePolicy) models.MonthlySummary {
	inPeriod := make([]models.Transaction, 0, len(txns))
	for _, t := range txns {
		if p.Contains(t.Date) {
			inPeriod = append(inPeriod, t)
		}
	}
	sort.SliceStable(inPeriod, func(i, j int) bool {
		a, b := inPeriod[i], inPeriod[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	income := decimal.Zero
	expense := decimal.Zero
	byCategory := map[string]*categoryAccumulator{}
	byDay := map[int]decimal.Decimal{}

	for _, t := range inPeriod {
		if t.Kind == models.KindIncome {
			income = income.Add(t.Amount)
			continue
		}
		if t.Kind != models.KindExpense {
			continue
		}
		expense = expense.Add(t.Amount)

		key := models.CategoryKey(t.Category)
		acc, ok := byCategory[key]
		if !ok {
			acc = &categoryAccumulator{key: key, name: models.CleanCategoryName(t.Category)}
			byCategory[key] = acc
		}
		acc.value = acc.value.Add(t.Amount)

		day := p.DayOf(t.Date)
		byDay[day] = byDay[day].Add(t.Amount)
	}

	totalIncome, source := resolveIncome(income, profileIncome, policy)

	return models.MonthlySummary{
		Year:  p.Year,
		Month: int(p.Month),
		Summary: models.SummaryTotals{
			TotalIncome:      totalIncome,
			TotalExpense:     expense,
			RemainingBalance: totalIncome.Sub(expense),
			IncomeSource:     source,
		},
		SpendingByCategory: spendingByCategory(byCategory, expense),
		SpendingOverTime:   spendingOverTime(byDay),
	}
}

func resolveIncome(computed, profile decimal.Decimal, policy IncomePolicy) (decimal.Decimal, models.IncomeSource) {
	switch policy {
	case IncomeProfileFirst:
		if profile.IsPositive() {
			return profile, models.IncomeFromProfile
		}
		if computed.IsPositive() {
			return computed, models.IncomeFromTransactions
		}
	default:
		if computed.IsPositive() {
			return computed, models.IncomeFromTransactions
		}
		if profile.IsPositive() {
			return profile, models.IncomeFromProfile
		}
	}
	return decimal.Zero, models.IncomeNone
}

func spendingByCategory(byCategory map[string]*categoryAccumulator, total decimal.Decimal) []models.CategorySpend {
	accs := make([]*categoryAccumulator, 0, len(byCategory))
	for _, acc := range byCategory {
		accs = append(accs, acc)
	}
	sort.Slice(accs, func(i, j int) bool {
		if c := accs[i].value.Cmp(accs[j].value); c != 0 {
			return c > 0
		}
		return accs[i].key < accs[j].key
	})

	values := make([]decimal.Decimal, len(accs))
	for i, acc := range accs {
		values[i] = acc.value
	}
	percents := SharePercents(values, total)

	out := make([]models.CategorySpend, 0, len(accs))
	for i, acc := range accs {
		out = append(out, models.CategorySpend{
			Name:    acc.name,
			Value:   acc.value,
			Percent: percents[i],
		})
	}
	return out
}

func spendingOverTime(byDay map[int]decimal.Decimal) []models.DailySpend {
	out := make([]models.DailySpend, 0, len(byDay))
	for day, amount := range byDay {
		out = append(out, models.DailySpend{Day: day, Spending: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// Percent is round(100 * part / whole), or 0 when whole is not positive.
func Percent(part, whole decimal.Decimal) int64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Mul(hundred).Div(whole).Round(0).IntPart()
}

// SharePercents splits 100 points across values with the largest remainder
// method: every share is floored, then the leftover points go to the largest
// remainders, earlier entries first on ties. Each result is within one point
// of Percent and, when values sum to whole, the results sum to exactly 100.
func SharePercents(values []decimal.Decimal, whole decimal.Decimal) []int64 {
	out := make([]int64, len(values))
	if !whole.IsPositive() {
		return out
	}

	remainders := make([]decimal.Decimal, len(values))
	var allotted int64
	for i, v := range values {
		exact := v.Mul(hundred).Div(whole)
		floor := exact.Floor()
		out[i] = floor.IntPart()
		remainders[i] = exact.Sub(floor)
		allotted += out[i]
	}

	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]].GreaterThan(remainders[order[b]])
	})

	for _, i := range order {
		if allotted >= 100 {
			break
		}
		if !remainders[i].IsPositive() {
			break
		}
		out[i]++
		allotted++
	}
	return out
}

// BudgetsWithSpend keeps the order of budgets. A zero limit with spend counts
// as 100% used and over budget; a zero limit without spend is 0% used.
func BudgetsWithSpend(budgets []models.Budget, spending []models.CategorySpend) []models.BudgetWithSpend {
	spent := make(map[string]decimal.Decimal, len(spending))
	for _, c := range spending {
		spent[models.CategoryKey(c.Name)] = c.Value
	}

	out := make([]models.BudgetWithSpend, 0, len(budgets))
	for _, b := range budgets {
		s := spent[models.CategoryKey(b.Category)]
		entry := models.BudgetWithSpend{
			Budget:     b,
			Spent:      s,
			Remaining:  b.Limit.Sub(s),
			OverBudget: s.GreaterThan(b.Limit),
		}
		switch {
		case b.Limit.IsPositive():
			entry.PercentUsed = Percent(s, b.Limit)
		case s.IsPositive():
			entry.PercentUsed = 100
		default:
			entry.PercentUsed = 0
		}
		out = append(out, entry)
	}
	return out
}

// CategoryTotals joins the registry with a period's expense sums. Registered
// categories without spend show 0; spend on unregistered names is kept.
func CategoryTotals(registry []models.Category, spending []models.CategorySpend, totalExpense decimal.Decimal) []models.CategoryTotal {
	spent := make(map[string]models.CategorySpend, len(spending))
	for _, c := range spending {
		spent[models.CategoryKey(c.Name)] = c
	}

	out := make([]models.CategoryTotal, 0, len(registry)+len(spending))
	seen := make(map[string]bool, len(registry))
	for _, c := range registry {
		key := models.CategoryKey(c.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, models.CategoryTotal{
			ID:         c.ID,
			Name:       c.Name,
			Total:      spent[key].Value,
			Registered: true,
		})
	}
	for _, c := range spending {
		if seen[models.CategoryKey(c.Name)] {
			continue
		}
		out = append(out, models.CategoryTotal{
			Name:  c.Name,
			Total: c.Value,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return models.CategoryKey(out[i].Name) < models.CategoryKey(out[j].Name)
	})

	totals := make([]decimal.Decimal, len(out))
	for i, c := range out {
		totals[i] = c.Total
	}
	for i, pct := range SharePercents(totals, totalExpense) {
		out[i].Percent = pct
	}
	return out
}
