package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type IncomeSource string

const (
	IncomeFromTransactions IncomeSource = "transactions"
	IncomeFromProfile      IncomeSource = "profile"
	IncomeNone             IncomeSource = "none"
)

const NoTopCategory = "N/A"

// ============================================================================
// CHART PAYLOAD
// ============================================================================

type SummaryTotals struct {
	TotalIncome      decimal.Decimal `json:"totalIncome"`
	TotalExpense     decimal.Decimal `json:"totalExpense"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	IncomeSource     IncomeSource    `json:"incomeSource"`
}

type CategorySpend struct {
	Name    string          `json:"name"`
	Value   decimal.Decimal `json:"value"`
	Percent int64           `json:"percent"`
}

type DailySpend struct {
	Day      int             `json:"day"`
	Spending decimal.Decimal `json:"spending"`
}

// MonthlySummary is the aggregation of one user's transactions over a period.
type MonthlySummary struct {
	Year               int             `json:"year"`
	Month              int             `json:"month"`
	Summary            SummaryTotals   `json:"summary"`
	SpendingByCategory []CategorySpend `json:"spendingByCategory"`
	SpendingOverTime   []DailySpend    `json:"spendingOverTime"`
}

// ============================================================================
// DERIVED METRICS
// ============================================================================

type StatusLevel string

const (
	StatusOnTrack   StatusLevel = "On Track"
	StatusCaution   StatusLevel = "Caution"
	StatusOverspent StatusLevel = "Overspent"
)

type FinancialStatus struct {
	Level   StatusLevel `json:"level"`
	Message string      `json:"message"`
}

type ReportMetrics struct {
	TopCategory        string          `json:"topCategory"`
	HighestSpendingDay *DailySpend     `json:"highestSpendingDay"`
	AverageDailySpend  decimal.Decimal `json:"averageDailySpend"`
	BurnRate           int64           `json:"burnRate"`
	Status             FinancialStatus `json:"financialStatus"`
}

type MonthlyReport struct {
	MonthlySummary
	Metrics ReportMetrics `json:"metrics"`
}

// ReportBundle is everything a document renderer needs for one month.
type ReportBundle struct {
	UserName    string            `json:"userName"`
	PeriodLabel string            `json:"periodLabel"`
	Report      MonthlyReport     `json:"report"`
	Budgets     []BudgetWithSpend `json:"budgets"`
	Categories  []CategoryTotal   `json:"categories"`
	Narrative   string            `json:"narrative"`
	GeneratedAt time.Time         `json:"generatedAt"`
}
