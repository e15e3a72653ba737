package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/LovationAdmin/finance-tracker-api/models"
)

// Narrator writes the short paragraph shown at the top of a report.
type Narrator interface {
	Summarize(ctx context.Context, bundle *models.ReportBundle) (string, error)
}

// FallbackNarrative is used whenever no generated narrative is available.
func FallbackNarrative(periodLabel string) string {
	return fmt.Sprintf("Here is your financial summary for %s. Review your top spending categories to spot savings opportunities.", periodLabel)
}

// StaticNarrator always returns the fallback sentence.
type StaticNarrator struct{}

func (StaticNarrator) Summarize(_ context.Context, bundle *models.ReportBundle) (string, error) {
	return FallbackNarrative(bundle.PeriodLabel), nil
}

// GeminiNarrator asks the model for a short summary of the month's figures.
type GeminiNarrator struct {
	ai TextGenerator
}

func NewGeminiNarrator(ai TextGenerator) *GeminiNarrator {
	return &GeminiNarrator{ai: ai}
}

func (n *GeminiNarrator) Summarize(ctx context.Context, bundle *models.ReportBundle) (string, error) {
	text, err := n.ai.Generate(ctx, narrativePrompt(bundle))
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(text), `"`), nil
}

func narrativePrompt(bundle *models.ReportBundle) string {
	report := bundle.Report
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are a friendly personal finance coach. Write a 2-3 sentence summary of %s's finances for %s.\n\n", bundle.UserName, bundle.PeriodLabel)
	fmt.Fprintf(&sb, "Total income: %s\n", report.Summary.TotalIncome.StringFixed(2))
	fmt.Fprintf(&sb, "Total expenses: %s\n", report.Summary.TotalExpense.StringFixed(2))
	fmt.Fprintf(&sb, "Remaining balance: %s\n", report.Summary.RemainingBalance.StringFixed(2))
	fmt.Fprintf(&sb, "Burn rate: %d%%\n", report.Metrics.BurnRate)
	fmt.Fprintf(&sb, "Status: %s\n", report.Metrics.Status.Level)

	if len(report.SpendingByCategory) > 0 {
		sb.WriteString("Spending by category:\n")
		for i, c := range report.SpendingByCategory {
			if i == 5 {
				break
			}
			fmt.Fprintf(&sb, "- %s: %s (%d%%)\n", c.Name, c.Value.StringFixed(2), c.Percent)
		}
	}

	var over []string
	for _, b := range bundle.Budgets {
		if b.OverBudget {
			over = append(over, b.Category)
		}
	}
	if len(over) > 0 {
		fmt.Fprintf(&sb, "Budgets exceeded: %s\n", strings.Join(over, ", "))
	}

	sb.WriteString("\nRespond with plain text only, no markdown, no lists.")
	return sb.String()
}
