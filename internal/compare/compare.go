package compare

import (
	"sort"
	"time"

	"skud-compare-api/internal/models"
	"skud-compare-api/internal/shift"
)

// dayKey identifies one employee on one attributed date.
type dayKey struct {
	employeeID string
	date       string // ISO date
}

// Compare joins the planned tabell hours against the detected shifts into
// a dense day-by-day matrix over [from, to]. Tabell is the authoritative
// roster: employees appearing only in SKUD count in the summary but get no
// row. Both inputs arrive already filtered to the range.
func Compare(shiftsByEmployee map[string][]models.Shift, broken []models.Shift,
	entries []models.TabellEntry, windows shift.Windows, from, to time.Time) models.CompareResult {

	dates := enumerateDates(from, to)

	entriesByEmployee := make(map[string][]models.TabellEntry)
	for _, e := range entries {
		entriesByEmployee[e.EmployeeID] = append(entriesByEmployee[e.EmployeeID], e)
	}

	skudHours := make(map[dayKey]float64)
	skudType := make(map[dayKey]models.ShiftType)
	for emp, shifts := range shiftsByEmployee {
		for _, s := range shifts {
			k := dayKey{emp, isoDate(s.AttributedDate)}
			skudHours[k] += s.Hours
			// Multiple shifts on one date are rare; last one wins.
			skudType[k] = s.Type
		}
	}
	brokenFlag := make(map[dayKey]bool)
	for _, s := range broken {
		brokenFlag[dayKey{s.EmployeeID, isoDate(s.AttributedDate)}] = true
	}

	roster := make([]string, 0, len(entriesByEmployee))
	for emp := range entriesByEmployee {
		roster = append(roster, emp)
	}
	sort.Strings(roster)

	rows := make([]models.ComparisonRow, 0, len(roster))
	matched := 0
	for _, emp := range roster {
		empEntries := entriesByEmployee[emp]
		row := models.ComparisonRow{
			EmployeeID: emp,
			Name:       empEntries[0].Name,
			JobTitle:   empEntries[0].JobTitle,
			Days:       make(map[string]models.DayComparison, len(dates)),
		}
		for _, d := range dates {
			iso := isoDate(d)
			k := dayKey{emp, iso}
			tabellH := tabellHoursFor(empEntries, d)
			skudH := models.Round1(skudHours[k])
			row.Days[iso] = models.DayComparison{
				Tabell:    tabellH,
				Skud:      skudH,
				Diff:      models.Round1(tabellH - skudH),
				Broken:    brokenFlag[k],
				ShiftType: skudType[k],
			}
		}
		// Matched means any paired shift at all; a degenerate pair whose
		// hours round to zero still counts as seen in SKUD.
		if len(shiftsByEmployee[emp]) > 0 {
			matched++
		}
		rows = append(rows, row)
	}

	return models.CompareResult{
		Comparison:   rows,
		BrokenShifts: serializeBroken(broken, entriesByEmployee, windows),
		Summary: models.Summary{
			TotalEmployeesTabell: len(roster),
			TotalEmployeesSkud:   countSkudEmployees(shiftsByEmployee, broken),
			MatchedEmployees:     matched,
			BrokenCount:          len(broken),
			DateRange:            [2]string{isoDate(from), isoDate(to)},
		},
	}
}

// tabellHoursFor reads the planned hours for one date from the entry whose
// month matches. Missing entry, missing day cell and an explicit zero all
// read as zero; the diff column carries the signal either way.
func tabellHoursFor(entries []models.TabellEntry, d time.Time) float64 {
	for _, e := range entries {
		if e.Month == d.Month() {
			return e.DailyHours[d.Day()]
		}
	}
	return 0
}

// serializeBroken renders broken shifts sorted by (employee, date) with
// names joined in from the tabell roster and a punch-hour type guess.
func serializeBroken(broken []models.Shift, entriesByEmployee map[string][]models.TabellEntry,
	windows shift.Windows) []models.BrokenShift {

	out := make([]models.BrokenShift, 0, len(broken))
	for _, s := range broken {
		name := ""
		if entries := entriesByEmployee[s.EmployeeID]; len(entries) > 0 {
			name = entries[0].Name
		}
		out = append(out, models.BrokenShift{
			EmployeeID:     s.EmployeeID,
			Name:           name,
			AttributedDate: isoDate(s.AttributedDate),
			PunchTime:      s.Start.Format(time.DateTime),
			EstimatedType:  windows.EstimateType(s.Start.Hour()),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EmployeeID != out[j].EmployeeID {
			return out[i].EmployeeID < out[j].EmployeeID
		}
		return out[i].AttributedDate < out[j].AttributedDate
	})
	return out
}

// countSkudEmployees sizes the union of employees seen in paired or broken
// shifts.
func countSkudEmployees(shiftsByEmployee map[string][]models.Shift, broken []models.Shift) int {
	seen := make(map[string]bool, len(shiftsByEmployee))
	for emp := range shiftsByEmployee {
		seen[emp] = true
	}
	for _, s := range broken {
		seen[s.EmployeeID] = true
	}
	return len(seen)
}

func enumerateDates(from, to time.Time) []time.Time {
	var dates []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

func isoDate(t time.Time) string {
	return t.Format(time.DateOnly)
}
