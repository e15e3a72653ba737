package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/LovationAdmin/finance-tracker-api/models"
	"github.com/LovationAdmin/finance-tracker-api/utils"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	onTrackCeiling = 85
	cautionCeiling = 100

	defaultAITimeout     = 10 * time.Second
	defaultRenderTimeout = 20 * time.Second
)

// DocumentRenderer turns a complete bundle into a downloadable document.
type DocumentRenderer interface {
	Render(ctx context.Context, bundle *models.ReportBundle) ([]byte, error)
}

type ReportService struct {
	agg           *AggregationService
	users         UserStore
	narrator      Narrator
	renderer      DocumentRenderer
	aiTimeout     time.Duration
	renderTimeout time.Duration
	now           func() time.Time
}

func NewReportService(agg *AggregationService, users UserStore, narrator Narrator, renderer DocumentRenderer, aiTimeout, renderTimeout time.Duration) *ReportService {
	if narrator == nil {
		narrator = StaticNarrator{}
	}
	if aiTimeout <= 0 {
		aiTimeout = defaultAITimeout
	}
	if renderTimeout <= 0 {
		renderTimeout = defaultRenderTimeout
	}
	return &ReportService{
		agg:           agg,
		users:         users,
		narrator:      narrator,
		renderer:      renderer,
		aiTimeout:     aiTimeout,
		renderTimeout: renderTimeout,
		now:           time.Now,
	}
}

// ============================================================================
// DERIVED METRICS
// ============================================================================

// DeriveMetrics computes the headline figures of a monthly summary.
func DeriveMetrics(s models.MonthlySummary, p models.Period) models.ReportMetrics {
	top := models.NoTopCategory
	if len(s.SpendingByCategory) > 0 {
		top = s.SpendingByCategory[0].Name
	}

	var highest *models.DailySpend
	for i := range s.SpendingOverTime {
		d := s.SpendingOverTime[i]
		if highest == nil || d.Spending.GreaterThan(highest.Spending) {
			highest = &models.DailySpend{Day: d.Day, Spending: d.Spending}
		}
	}

	days := decimal.NewFromInt(int64(p.DaysInMonth()))
	burnRate := BurnRate(s.Summary.TotalExpense, s.Summary.TotalIncome)

	return models.ReportMetrics{
		TopCategory:        top,
		HighestSpendingDay: highest,
		AverageDailySpend:  s.Summary.TotalExpense.Div(days).Round(2),
		BurnRate:           burnRate,
		Status:             ClassifyStatus(burnRate, top),
	}
}

// BurnRate is round(100 * expense / income), or 0 without income. It is not capped.
func BurnRate(expense, income decimal.Decimal) int64 {
	return Percent(expense, income)
}

func ClassifyStatus(burnRate int64, topCategory string) models.FinancialStatus {
	switch {
	case burnRate <= onTrackCeiling:
		return models.FinancialStatus{
			Level:   models.StatusOnTrack,
			Message: "Great job! Your spending is well within your income this month.",
		}
	case burnRate <= cautionCeiling:
		return models.FinancialStatus{
			Level:   models.StatusCaution,
			Message: fmt.Sprintf("You have used most of your income this month. Keep an eye on your %s spending.", topCategory),
		}
	default:
		return models.FinancialStatus{
			Level:   models.StatusOverspent,
			Message: fmt.Sprintf("You spent more than you earned this month. Consider cutting back on %s.", topCategory),
		}
	}
}

// ============================================================================
// REPORTS
// ============================================================================

func (s *ReportService) MonthlyReport(ctx context.Context, userID string, p models.Period) (*models.MonthlyReport, error) {
	summary, err := s.agg.ComputeMonthlySummary(ctx, userID, p)
	if err != nil {
		return nil, err
	}
	return &models.MonthlyReport{
		MonthlySummary: *summary,
		Metrics:        DeriveMetrics(*summary, p),
	}, nil
}

// Bundle assembles everything a renderer needs. Store reads run
// concurrently; the narrative is produced last because it summarizes them.
func (s *ReportService) Bundle(ctx context.Context, userID string, p models.Period) (*models.ReportBundle, error) {
	var (
		summary  *models.MonthlySummary
		budgets  []models.Budget
		registry []models.Category
		user     *models.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		summary, err = s.agg.ComputeMonthlySummary(gctx, userID, p)
		return err
	})
	g.Go(func() (err error) {
		budgets, err = s.agg.budgets.FindAll(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		registry, err = s.agg.categories.FindAll(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		user, err = s.users.GetByID(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("assemble report: %w", err)
	}

	bundle := &models.ReportBundle{
		UserName:    user.DisplayName(),
		PeriodLabel: p.Label(),
		Report: models.MonthlyReport{
			MonthlySummary: *summary,
			Metrics:        DeriveMetrics(*summary, p),
		},
		Budgets:     BudgetsWithSpend(budgets, summary.SpendingByCategory),
		Categories:  CategoryTotals(registry, summary.SpendingByCategory, summary.Summary.TotalExpense),
		GeneratedAt: s.now(),
	}
	bundle.Narrative = s.narrate(ctx, bundle)
	return bundle, nil
}

// narrate never fails: any narrator error yields the static sentence.
func (s *ReportService) narrate(ctx context.Context, bundle *models.ReportBundle) string {
	ctx, cancel := context.WithTimeout(ctx, s.aiTimeout)
	defer cancel()

	text, err := s.narrator.Summarize(ctx, bundle)
	if err != nil || text == "" {
		if err != nil {
			utils.LogAIAction("narrative fallback", "report", err)
		}
		return FallbackNarrative(bundle.PeriodLabel)
	}
	return text
}

// PDF renders the month's report. Renderer failures and timeouts surface as
// ErrUpstreamUnavailable.
func (s *ReportService) PDF(ctx context.Context, userID string, p models.Period) ([]byte, error) {
	if s.renderer == nil {
		return nil, fmt.Errorf("%w: no document renderer configured", models.ErrUpstreamUnavailable)
	}

	bundle, err := s.Bundle(ctx, userID, p)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.renderTimeout)
	defer cancel()

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := s.renderer.Render(ctx, bundle)
		done <- result{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: render timed out", models.ErrUpstreamUnavailable)
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrUpstreamUnavailable, res.err)
		}
		utils.LogReportAction("pdf rendered", bundle.PeriodLabel, userID)
		return res.data, nil
	}
}

func (s *ReportService) CSV(ctx context.Context, userID string, p models.Period) ([]byte, error) {
	summary, err := s.agg.ComputeMonthlySummary(ctx, userID, p)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := WriteCategoryCSV(&buf, summary.SpendingByCategory); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *ReportService) XLSX(ctx context.Context, userID string, p models.Period) ([]byte, error) {
	bundle, err := s.Bundle(ctx, userID, p)
	if err != nil {
		return nil, err
	}
	return BuildWorkbook(bundle)
}

// WriteCategoryCSV writes the Category,Amount breakdown.
func WriteCategoryCSV(w io.Writer, spending []models.CategorySpend) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Category", "Amount"}); err != nil {
		return err
	}
	for _, c := range spending {
		if err := cw.Write([]string{c.Name, c.Value.StringFixed(2)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReportFilename is the download name for a month's export.
func ReportFilename(p models.Period, ext string) string {
	return fmt.Sprintf("financial-report-%d-%02d.%s", p.Year, int(p.Month), ext)
}
