package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"skud-compare-api/internal/models"
)

// BuildPDF renders a comparison as a landscape A4 report: summary block,
// per-employee totals, then the broken-shift table. The dense day matrix
// stays in the workbook export; paper gets the aggregates.
func BuildPDF(result models.CompareResult) (*bytes.Buffer, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "SKUD / Tabell Comparison", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Range %s .. %s",
		result.Summary.DateRange[0], result.Summary.DateRange[1]), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf(
		"Tabell employees: %d   SKUD employees: %d   Matched: %d   Broken punches: %d",
		result.Summary.TotalEmployeesTabell, result.Summary.TotalEmployeesSkud,
		result.Summary.MatchedEmployees, result.Summary.BrokenCount), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	writeTotalsTable(pdf, result.Comparison)
	if len(result.BrokenShifts) > 0 {
		pdf.Ln(6)
		writeBrokenTable(pdf, result.BrokenShifts)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return &buf, nil
}

func writeTotalsTable(pdf *gofpdf.Fpdf, rows []models.ComparisonRow) {
	widths := []float64{30, 60, 50, 30, 30, 30}
	header := []string{"Employee ID", "Name", "Job Title", "Tabell", "SKUD", "Diff"}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range header {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range rows {
		var tabell, skud float64
		for _, cell := range row.Days {
			tabell += cell.Tabell
			skud += cell.Skud
		}
		diff := models.Round1(tabell - skud)
		fill := diff != 0
		pdf.SetFillColor(255, 235, 235)
		values := []string{
			row.EmployeeID, row.Name, row.JobTitle,
			fmt.Sprintf("%.1f", tabell),
			fmt.Sprintf("%.1f", skud),
			fmt.Sprintf("%.1f", diff),
		}
		for i, v := range values {
			pdf.CellFormat(widths[i], 6, v, "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}
}

func writeBrokenTable(pdf *gofpdf.Fpdf, broken []models.BrokenShift) {
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 8, "Broken shifts", "", 1, "L", false, 0, "")

	widths := []float64{30, 60, 35, 45, 35}
	header := []string{"Employee ID", "Name", "Date", "Punch", "Estimated"}
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range header {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, b := range broken {
		values := []string{b.EmployeeID, b.Name, b.AttributedDate, b.PunchTime, b.EstimatedType}
		for i, v := range values {
			pdf.CellFormat(widths[i], 6, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}
