package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"microgrid-resilience/internal/resilience/application"
)

// BuildAnalysisPDF renders a minimal PDF report for an analysis.
func BuildAnalysisPDF(result *application.AnalysisResult) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("export: nil result")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Resilience Analysis")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Analysis: %s", result.ID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", result.CreatedAt.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Coverage Target (h): %.2f", result.Scenario.CoverageTargetHours))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Timestep (h): %.2f", result.Scenario.TimestepHours))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Max Outage (h): %.2f", result.Scenario.MaxOutageDurationHours))
	pdf.Ln(5)
	if result.SizingConstraint != nil {
		status := "satisfied"
		if !result.SizingConstraint.Satisfied() {
			status = "violated"
		}
		pdf.Cell(0, 6, fmt.Sprintf("Sizing Constraint: %s (margin %.3f kW)",
			status, result.SizingConstraint.Margin()))
		pdf.Ln(5)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 6, "Outage Length (h)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 6, "Coverage Probability", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, point := range result.Curve {
		pdf.CellFormat(60, 6, fmt.Sprintf("%.2f", point.OutageLengthHours), "1", 0, "R", false, 0, "")
		pdf.CellFormat(60, 6, fmt.Sprintf("%.4f", point.Probability), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(50, 6, "Category", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Energy (kWh)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Share", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, contribution := range result.Contributions.Contributions {
		pdf.CellFormat(50, 6, contribution.Category, "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, fmt.Sprintf("%.3f", contribution.EnergyKWh), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.4f", contribution.Share), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildAnalysisXLSX renders a minimal XLSX workbook for an analysis.
func BuildAnalysisXLSX(result *application.AnalysisResult) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("export: nil result")
	}

	f := excelize.NewFile()
	summarySheet := "summary"
	curveSheet := "coverage_curve"
	contributionsSheet := "contributions"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(curveSheet)
	f.NewSheet(contributionsSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Resilience Analysis")
	_ = f.SetCellValue(summarySheet, "A3", "Analysis")
	_ = f.SetCellValue(summarySheet, "B3", result.ID)
	_ = f.SetCellValue(summarySheet, "A4", "Generated")
	_ = f.SetCellValue(summarySheet, "B4", result.CreatedAt.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A5", "Coverage Target (h)")
	_ = f.SetCellValue(summarySheet, "B5", result.Scenario.CoverageTargetHours)
	_ = f.SetCellValue(summarySheet, "A6", "Timestep (h)")
	_ = f.SetCellValue(summarySheet, "B6", result.Scenario.TimestepHours)
	_ = f.SetCellValue(summarySheet, "A7", "Max Outage (h)")
	_ = f.SetCellValue(summarySheet, "B7", result.Scenario.MaxOutageDurationHours)
	_ = f.SetCellValue(summarySheet, "A8", "Simulated Starts")
	_ = f.SetCellValue(summarySheet, "B8", len(result.RequirementKWh))
	if result.SizingConstraint != nil {
		_ = f.SetCellValue(summarySheet, "A9", "Sizing Constraint Satisfied")
		_ = f.SetCellValue(summarySheet, "B9", result.SizingConstraint.Satisfied())
		_ = f.SetCellValue(summarySheet, "A10", "Sizing Margin (kW)")
		_ = f.SetCellValue(summarySheet, "B10", result.SizingConstraint.Margin())
	}

	_ = f.SetCellValue(curveSheet, "A1", "Outage Length (h)")
	_ = f.SetCellValue(curveSheet, "B1", "Coverage Probability")
	for i, point := range result.Curve {
		row := i + 2
		_ = f.SetCellValue(curveSheet, fmt.Sprintf("A%d", row), point.OutageLengthHours)
		_ = f.SetCellValue(curveSheet, fmt.Sprintf("B%d", row), point.Probability)
	}

	_ = f.SetCellValue(contributionsSheet, "A1", "Category")
	_ = f.SetCellValue(contributionsSheet, "B1", "Energy (kWh)")
	_ = f.SetCellValue(contributionsSheet, "C1", "Share")
	for i, contribution := range result.Contributions.Contributions {
		row := i + 2
		_ = f.SetCellValue(contributionsSheet, fmt.Sprintf("A%d", row), contribution.Category)
		_ = f.SetCellValue(contributionsSheet, fmt.Sprintf("B%d", row), contribution.EnergyKWh)
		_ = f.SetCellValue(contributionsSheet, fmt.Sprintf("C%d", row), contribution.Share)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
