package tabell

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"skud-compare-api/internal/models"
)

// employeeIDPrefix is the Cyrillic personnel-number prefix some rows carry.
// It is stripped case-insensitively, from the start of the cell only.
var employeeIDPrefix = regexp.MustCompile(`(?i)^тн`)

// ParseRows turns already-decoded CSV rows into tabell entries for the
// months covered by [from, to]. Rows too short for the schema, rows whose
// month cell is empty, unknown or outside the range, and rows whose
// employee id is empty after prefix stripping are all skipped silently.
// Taking row arrays rather than a stream keeps the transport injectable
// for tests.
func ParseRows(schema Schema, rows [][]string, from, to time.Time) []models.TabellEntry {
	needed := monthsCovered(from, to)
	entries := make([]models.TabellEntry, 0, len(rows))
	for i, row := range rows {
		if i < schema.HeaderRows {
			continue
		}
		if len(row) <= schema.Month {
			continue
		}
		month, ok := models.MonthFromName(row[schema.Month])
		if !ok || !needed[month] {
			continue
		}
		id := strings.TrimSpace(employeeIDPrefix.ReplaceAllString(strings.TrimSpace(row[schema.EmployeeID]), ""))
		if id == "" {
			continue
		}
		daily := make(map[int]float64, schema.DayCount)
		for day := 1; day <= schema.DayCount; day++ {
			col := schema.DayFirst + day - 1
			if col >= len(row) {
				break
			}
			daily[day] = ParseHours(row[col])
		}
		entry := models.TabellEntry{
			EmployeeID: id,
			Name:       strings.TrimSpace(row[schema.Name]),
			JobTitle:   strings.TrimSpace(row[schema.JobTitle]),
			Company:    strings.TrimSpace(row[schema.Company]),
			Month:      month,
			DailyHours: daily,
		}
		if schema.Project < len(row) {
			entry.Project = strings.TrimSpace(row[schema.Project])
		}
		entries = append(entries, entry)
	}
	return entries
}

// ProjectsFromRows collects the distinct non-empty project values, sorted.
func ProjectsFromRows(schema Schema, rows [][]string) []string {
	seen := make(map[string]bool)
	for i, row := range rows {
		if i < schema.HeaderRows || len(row) <= schema.Project {
			continue
		}
		if p := strings.TrimSpace(row[schema.Project]); p != "" {
			seen[p] = true
		}
	}
	projects := make([]string, 0, len(seen))
	for p := range seen {
		projects = append(projects, p)
	}
	sort.Strings(projects)
	return projects
}

// monthsCovered returns the set of month numbers the inclusive range
// touches. Keyed by month number alone: the tabell sheet holds one
// calendar year at a time.
func monthsCovered(from, to time.Time) map[time.Month]bool {
	months := make(map[time.Month]bool)
	first := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, from.Location())
	for cur := first; !cur.After(to); cur = cur.AddDate(0, 1, 0) {
		months[cur.Month()] = true
	}
	return months
}
