package services

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/LovationAdmin/finance-tracker-api/models"

	"github.com/signintech/gopdf"
)

const (
	pdfFont     = "Regular"
	pageWidth   = 595.0
	pageHeight  = 842.0
	pageMargin  = 40.0
	lineHeight  = 18.0
	bottomLimit = pageHeight - 60
)

// GoPDFRenderer lays out a report bundle on A4 pages.
type GoPDFRenderer struct {
	font []byte
}

// NewGoPDFRenderer loads the TTF font used for every page.
func NewGoPDFRenderer(fontPath string) (*GoPDFRenderer, error) {
	if fontPath == "" {
		return nil, fmt.Errorf("report font path is not set")
	}
	font, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read report font: %w", err)
	}
	return &GoPDFRenderer{font: font}, nil
}

type pdfWriter struct {
	pdf *gopdf.GoPdf
	y   float64
}

func (w *pdfWriter) line(size float64, text string) error {
	if w.y+lineHeight > bottomLimit {
		w.pdf.AddPage()
		w.y = pageMargin
	}
	if err := w.pdf.SetFont(pdfFont, "", size); err != nil {
		return err
	}
	w.pdf.SetX(pageMargin)
	w.pdf.SetY(w.y)
	if err := w.pdf.Cell(nil, text); err != nil {
		return err
	}
	w.y += lineHeight + (size-11)/2
	return nil
}

func (w *pdfWriter) paragraph(size float64, text string) error {
	if err := w.pdf.SetFont(pdfFont, "", size); err != nil {
		return err
	}
	lines, err := w.pdf.SplitText(text, pageWidth-2*pageMargin)
	if err != nil {
		return err
	}
	for _, l := range lines {
		if err := w.line(size, l); err != nil {
			return err
		}
	}
	return nil
}

func (r *GoPDFRenderer) Render(ctx context.Context, bundle *models.ReportBundle) ([]byte, error) {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	if err := pdf.AddTTFFontData(pdfFont, r.font); err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	pdf.AddPage()

	// Header band
	pdf.SetFillColor(79, 70, 229)
	pdf.RectFromUpperLeftWithStyle(0, 0, pageWidth, 100, "F")
	pdf.SetTextColor(255, 255, 255)
	w := &pdfWriter{pdf: pdf, y: 30}
	if err := w.line(22, "Financial Report"); err != nil {
		return nil, err
	}
	if err := w.line(13, fmt.Sprintf("%s - %s", bundle.UserName, bundle.PeriodLabel)); err != nil {
		return nil, err
	}

	pdf.SetTextColor(45, 52, 54)
	w.y = 120
	report := bundle.Report

	if err := w.paragraph(11, bundle.Narrative); err != nil {
		return nil, err
	}
	w.y += lineHeight / 2

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := []string{
		fmt.Sprintf("Total income: %s", report.Summary.TotalIncome.StringFixed(2)),
		fmt.Sprintf("Total expenses: %s", report.Summary.TotalExpense.StringFixed(2)),
		fmt.Sprintf("Remaining balance: %s", report.Summary.RemainingBalance.StringFixed(2)),
		fmt.Sprintf("Top category: %s", report.Metrics.TopCategory),
		fmt.Sprintf("Average daily spend: %s", report.Metrics.AverageDailySpend.StringFixed(2)),
		fmt.Sprintf("Burn rate: %d%% (%s)", report.Metrics.BurnRate, report.Metrics.Status.Level),
	}
	if err := w.line(15, "Summary"); err != nil {
		return nil, err
	}
	for _, s := range summary {
		if err := w.line(11, s); err != nil {
			return nil, err
		}
	}
	if err := w.paragraph(11, report.Metrics.Status.Message); err != nil {
		return nil, err
	}
	w.y += lineHeight / 2

	if len(report.SpendingByCategory) > 0 {
		if err := w.line(15, "Spending by category"); err != nil {
			return nil, err
		}
		for _, c := range report.SpendingByCategory {
			if err := w.line(11, fmt.Sprintf("%s: %s (%d%%)", c.Name, c.Value.StringFixed(2), c.Percent)); err != nil {
				return nil, err
			}
		}
		w.y += lineHeight / 2
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(bundle.Budgets) > 0 {
		if err := w.line(15, "Budgets"); err != nil {
			return nil, err
		}
		for _, b := range bundle.Budgets {
			text := fmt.Sprintf("%s: %s of %s (%d%%)", b.Category, b.Spent.StringFixed(2), b.Limit.StringFixed(2), b.PercentUsed)
			if b.OverBudget {
				pdf.SetTextColor(214, 48, 49)
				text += " - over budget"
			}
			if err := w.line(11, text); err != nil {
				return nil, err
			}
			pdf.SetTextColor(45, 52, 54)
		}
	}

	w.y += lineHeight
	if err := w.line(9, fmt.Sprintf("Generated on %s", bundle.GeneratedAt.Format("02 Jan 2006 15:04"))); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
