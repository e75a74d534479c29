package report

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"skud-compare-api/internal/models"
)

// comparisonHeader is the column layout of the flat export sheet.
var comparisonHeader = []string{
	"Employee ID", "Name", "Job Title", "Date",
	"Tabell Hours", "SKUD Hours", "Diff", "Broken", "Shift Type",
}

// BuildWorkbook renders a comparison as a downloadable workbook with one
// row per employee per date, plus sheets for broken shifts and the
// summary.
func BuildWorkbook(result models.CompareResult) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Comparison"
	f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheet)

	if err := writeRow(f, sheet, 1, toAny(comparisonHeader)); err != nil {
		return nil, err
	}
	rowNum := 2
	for _, row := range result.Comparison {
		for _, iso := range sortedDates(row.Days) {
			cell := row.Days[iso]
			values := []any{
				row.EmployeeID, row.Name, row.JobTitle, iso,
				cell.Tabell, cell.Skud, cell.Diff, cell.Broken, string(cell.ShiftType),
			}
			if err := writeRow(f, sheet, rowNum, values); err != nil {
				return nil, err
			}
			rowNum++
		}
	}

	if err := writeBrokenSheet(f, result.BrokenShifts); err != nil {
		return nil, err
	}
	if err := writeSummarySheet(f, result.Summary); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

func writeBrokenSheet(f *excelize.File, broken []models.BrokenShift) error {
	const sheet = "Broken Shifts"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %q: %w", sheet, err)
	}
	header := []string{"Employee ID", "Name", "Attributed Date", "Punch Time", "Estimated Type"}
	if err := writeRow(f, sheet, 1, toAny(header)); err != nil {
		return err
	}
	for i, b := range broken {
		values := []any{b.EmployeeID, b.Name, b.AttributedDate, b.PunchTime, b.EstimatedType}
		if err := writeRow(f, sheet, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, s models.Summary) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %q: %w", sheet, err)
	}
	rows := [][]any{
		{"Date range", s.DateRange[0] + " .. " + s.DateRange[1]},
		{"Employees in tabell", s.TotalEmployeesTabell},
		{"Employees in SKUD", s.TotalEmployeesSkud},
		{"Matched employees", s.MatchedEmployees},
		{"Broken shifts", s.BrokenCount},
	}
	for i, row := range rows {
		if err := writeRow(f, sheet, i+1, row); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("cell name (%d,%d): %w", col+1, row, err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	return nil
}

func sortedDates(days map[string]models.DayComparison) []string {
	dates := make([]string, 0, len(days))
	for iso := range days {
		dates = append(dates, iso)
	}
	sort.Strings(dates)
	return dates
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
