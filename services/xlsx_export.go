package services

import (
	"fmt"

	"github.com/LovationAdmin/finance-tracker-api/models"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet    = "Summary"
	categoriesSheet = "Categories"
	budgetsSheet    = "Budgets"
)

// BuildWorkbook writes a month's bundle as a three sheet workbook.
func BuildWorkbook(bundle *models.ReportBundle) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{categoriesSheet, budgetsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4F46E5"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E7FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "#4F46E5", Style: 1},
		},
	})
	overStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#D63031"},
	})

	report := bundle.Report

	// Summary
	f.MergeCell(summarySheet, "A1", "B1")
	f.SetCellValue(summarySheet, "A1", fmt.Sprintf("Financial Report - %s", bundle.PeriodLabel))
	f.SetCellStyle(summarySheet, "A1", "B1", titleStyle)
	f.SetRowHeight(summarySheet, 1, 30)

	rows := [][]interface{}{
		{"Name", bundle.UserName},
		{"Total Income", report.Summary.TotalIncome.InexactFloat64()},
		{"Total Expenses", report.Summary.TotalExpense.InexactFloat64()},
		{"Remaining Balance", report.Summary.RemainingBalance.InexactFloat64()},
		{"Income Source", string(report.Summary.IncomeSource)},
		{"Top Category", report.Metrics.TopCategory},
		{"Average Daily Spend", report.Metrics.AverageDailySpend.InexactFloat64()},
		{"Burn Rate (%)", report.Metrics.BurnRate},
		{"Status", string(report.Metrics.Status.Level)},
		{"Summary", bundle.Narrative},
	}
	for i, row := range rows {
		r := i + 3
		f.SetCellValue(summarySheet, fmt.Sprintf("A%d", r), row[0])
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", r), row[1])
		f.SetCellStyle(summarySheet, fmt.Sprintf("A%d", r), fmt.Sprintf("A%d", r), headerStyle)
	}
	f.SetColWidth(summarySheet, "A", "A", 22)
	f.SetColWidth(summarySheet, "B", "B", 60)

	// Categories
	for i, h := range []string{"Category", "Amount", "Percent"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(categoriesSheet, cell, h)
	}
	f.SetCellStyle(categoriesSheet, "A1", "C1", headerStyle)
	for i, c := range report.SpendingByCategory {
		r := i + 2
		f.SetCellValue(categoriesSheet, fmt.Sprintf("A%d", r), c.Name)
		f.SetCellValue(categoriesSheet, fmt.Sprintf("B%d", r), c.Value.InexactFloat64())
		f.SetCellValue(categoriesSheet, fmt.Sprintf("C%d", r), c.Percent)
	}
	f.SetColWidth(categoriesSheet, "A", "A", 28)
	f.SetColWidth(categoriesSheet, "B", "C", 14)

	// Budgets
	for i, h := range []string{"Category", "Limit", "Spent", "Remaining", "Used (%)", "Over Budget"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(budgetsSheet, cell, h)
	}
	f.SetCellStyle(budgetsSheet, "A1", "F1", headerStyle)
	for i, b := range bundle.Budgets {
		r := i + 2
		over := "No"
		if b.OverBudget {
			over = "Yes"
		}
		f.SetCellValue(budgetsSheet, fmt.Sprintf("A%d", r), b.Category)
		f.SetCellValue(budgetsSheet, fmt.Sprintf("B%d", r), b.Limit.InexactFloat64())
		f.SetCellValue(budgetsSheet, fmt.Sprintf("C%d", r), b.Spent.InexactFloat64())
		f.SetCellValue(budgetsSheet, fmt.Sprintf("D%d", r), b.Remaining.InexactFloat64())
		f.SetCellValue(budgetsSheet, fmt.Sprintf("E%d", r), b.PercentUsed)
		f.SetCellValue(budgetsSheet, fmt.Sprintf("F%d", r), over)
		if b.OverBudget {
			f.SetCellStyle(budgetsSheet, fmt.Sprintf("A%d", r), fmt.Sprintf("F%d", r), overStyle)
		}
	}
	f.SetColWidth(budgetsSheet, "A", "A", 28)
	f.SetColWidth(budgetsSheet, "B", "F", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
