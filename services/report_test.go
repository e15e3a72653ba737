package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/LovationAdmin/finance-tracker-api/models"
)

type stubNarrator struct {
	text  string
	err   error
	delay time.Duration
}

func (n stubNarrator) Summarize(ctx context.Context, _ *models.ReportBundle) (string, error) {
	if n.delay > 0 {
		select {
		case <-time.After(n.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return n.text, n.err
}

type stubRenderer struct {
	data  []byte
	err   error
	delay time.Duration
	got   *models.ReportBundle
}

func (r *stubRenderer) Render(ctx context.Context, bundle *models.ReportBundle) ([]byte, error) {
	r.got = bundle
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return r.data, r.err
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		burnRate int64
		want     models.StatusLevel
	}{
		{0, models.StatusOnTrack},
		{80, models.StatusOnTrack},
		{85, models.StatusOnTrack},
		{86, models.StatusCaution},
		{90, models.StatusCaution},
		{100, models.StatusCaution},
		{101, models.StatusOverspent},
		{120, models.StatusOverspent},
	}
	for _, tt := range tests {
		got := ClassifyStatus(tt.burnRate, "Food")
		if got.Level != tt.want {
			t.Errorf("burnRate %d: level = %q, want %q", tt.burnRate, got.Level, tt.want)
		}
		if got.Message == "" {
			t.Errorf("burnRate %d: empty message", tt.burnRate)
		}
	}

	if msg := ClassifyStatus(120, "Shopping").Message; !strings.Contains(msg, "Shopping") {
		t.Errorf("overspent message should name the top category: %q", msg)
	}
	if msg := ClassifyStatus(95, "Travel").Message; !strings.Contains(msg, "Travel") {
		t.Errorf("caution message should name the top category: %q", msg)
	}
}

func TestBurnRateWithoutIncome(t *testing.T) {
	if got := BurnRate(dec("500"), dec("0")); got != 0 {
		t.Errorf("BurnRate = %d, want 0", got)
	}
	if got := BurnRate(dec("1500"), dec("1000")); got != 150 {
		t.Errorf("BurnRate = %d, want 150 (uncapped)", got)
	}
}

func TestDeriveMetrics_NoExpenses(t *testing.T) {
	p := march2025(t)
	m := DeriveMetrics(Summarize(nil, p, dec("0"), IncomeTransactionsFirst), p)

	if m.TopCategory != models.NoTopCategory {
		t.Errorf("topCategory = %q", m.TopCategory)
	}
	if m.HighestSpendingDay != nil {
		t.Errorf("highestSpendingDay = %+v", m.HighestSpendingDay)
	}
	if m.BurnRate != 0 || m.Status.Level != models.StatusOnTrack {
		t.Errorf("metrics = %+v", m)
	}
}

func newReportFixture(t *testing.T, narrator Narrator, renderer DocumentRenderer, renderTimeout time.Duration) (*ReportService, *testStores) {
	t.Helper()
	st := newTestStores()
	user := &models.User{ID: testUser, Email: "ana@example.com", Name: "Ana"}
	if err := st.users.Create(context.Background(), user); err != nil {
		t.Fatal(err)
	}
	addTxn(t, st.transactions, models.KindIncome, "1000", "Salary", 1)
	addTxn(t, st.transactions, models.KindExpense, "300", "Food", 2)
	addTxn(t, st.transactions, models.KindExpense, "150", "Travel, Abroad", 3)

	svc := NewReportService(st.aggregation(IncomeTransactionsFirst), st.users, narrator, renderer, 50*time.Millisecond, renderTimeout)
	return svc, st
}

func TestBundle_NarrativeFallback(t *testing.T) {
	tests := []struct {
		name     string
		narrator Narrator
		want     string
	}{
		{"static", nil, FallbackNarrative("March 2025")},
		{"error", stubNarrator{err: models.ErrUpstreamUnavailable}, FallbackNarrative("March 2025")},
		{"empty", stubNarrator{}, FallbackNarrative("March 2025")},
		{"timeout", stubNarrator{text: "late", delay: time.Second}, FallbackNarrative("March 2025")},
		{"generated", stubNarrator{text: "You saved 55% this month."}, "You saved 55% this month."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newReportFixture(t, tt.narrator, nil, 0)
			bundle, err := svc.Bundle(context.Background(), testUser, march2025(t))
			if err != nil {
				t.Fatalf("report must not fail because of the narrative: %v", err)
			}
			if bundle.Narrative != tt.want {
				t.Errorf("narrative = %q, want %q", bundle.Narrative, tt.want)
			}
		})
	}
}

func TestBundle_IsConsistent(t *testing.T) {
	svc, st := newReportFixture(t, nil, nil, 0)
	if err := st.budgets.Create(context.Background(), &models.Budget{UserID: testUser, Category: "food", Limit: dec("250")}); err != nil {
		t.Fatal(err)
	}

	bundle, err := svc.Bundle(context.Background(), testUser, march2025(t))
	if err != nil {
		t.Fatal(err)
	}
	if bundle.UserName != "Ana" || bundle.PeriodLabel != "March 2025" {
		t.Errorf("bundle header = %q / %q", bundle.UserName, bundle.PeriodLabel)
	}
	assertDecimal(t, "totalExpense", bundle.Report.Summary.TotalExpense, "450")
	if bundle.Report.Metrics.BurnRate != 45 {
		t.Errorf("burnRate = %d", bundle.Report.Metrics.BurnRate)
	}
	if len(bundle.Budgets) != 1 || !bundle.Budgets[0].OverBudget {
		t.Errorf("budgets = %+v", bundle.Budgets)
	}
	if len(bundle.Categories) != 2 {
		t.Errorf("categories = %+v", bundle.Categories)
	}
}

func TestPDF(t *testing.T) {
	t.Run("renders", func(t *testing.T) {
		r := &stubRenderer{data: []byte("%PDF-1.4")}
		svc, _ := newReportFixture(t, nil, r, time.Second)
		data, err := svc.PDF(context.Background(), testUser, march2025(t))
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "%PDF-1.4" {
			t.Errorf("data = %q", data)
		}
		if r.got == nil || r.got.Narrative == "" {
			t.Error("renderer should receive a complete bundle")
		}
	})

	t.Run("renderer failure", func(t *testing.T) {
		svc, _ := newReportFixture(t, nil, &stubRenderer{err: errors.New("boom")}, time.Second)
		_, err := svc.PDF(context.Background(), testUser, march2025(t))
		if !errors.Is(err, models.ErrUpstreamUnavailable) {
			t.Errorf("err = %v, want ErrUpstreamUnavailable", err)
		}
	})

	t.Run("renderer timeout", func(t *testing.T) {
		svc, _ := newReportFixture(t, nil, &stubRenderer{delay: time.Second}, 20*time.Millisecond)
		_, err := svc.PDF(context.Background(), testUser, march2025(t))
		if !errors.Is(err, models.ErrUpstreamUnavailable) {
			t.Errorf("err = %v, want ErrUpstreamUnavailable", err)
		}
	})

	t.Run("no renderer", func(t *testing.T) {
		svc, _ := newReportFixture(t, nil, nil, time.Second)
		_, err := svc.PDF(context.Background(), testUser, march2025(t))
		if !errors.Is(err, models.ErrUpstreamUnavailable) {
			t.Errorf("err = %v, want ErrUpstreamUnavailable", err)
		}
	})
}

func TestCSV(t *testing.T) {
	svc, _ := newReportFixture(t, nil, nil, 0)
	data, err := svc.CSV(context.Background(), testUser, march2025(t))
	if err != nil {
		t.Fatal(err)
	}

	want := "Category,Amount\nFood,300.00\n\"Travel, Abroad\",150.00\n"
	if string(data) != want {
		t.Errorf("csv =\n%s\nwant\n%s", data, want)
	}
}

func TestXLSX(t *testing.T) {
	svc, _ := newReportFixture(t, nil, nil, 0)
	data, err := svc.XLSX(context.Background(), testUser, march2025(t))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Error("workbook should be a zip archive")
	}
}

func TestReportFilename(t *testing.T) {
	p := march2025(t)
	if got := ReportFilename(p, "pdf"); got != "financial-report-2025-03.pdf" {
		t.Errorf("ReportFilename = %q", got)
	}
}
