package tabell

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tabellRow builds one 37-column data row. days maps day-of-month to the
// raw cell text.
func tabellRow(id, name, title, company string, days map[int]string, month, project string) []string {
	row := make([]string, 37)
	row[0], row[1], row[2], row[3] = id, name, title, company
	for day, cell := range days {
		row[4+day-1] = cell
	}
	row[35] = month
	row[36] = project
	return row
}

func headerRow() []string {
	row := make([]string, 37)
	row[0] = "Employee"
	return row
}

func marchRange() (time.Time, time.Time) {
	return time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)
}

func TestParseRowsBasic(t *testing.T) {
	from, to := marchRange()
	rows := [][]string{
		headerRow(),
		tabellRow("1001", "Ivanov I.I.", "Operator", "Acme", map[int]string{
			10: "8", 11: "11,5", 12: "10(", 13: "DOF", 14: "-",
		}, "March", "North Site"),
	}

	entries := ParseRows(DefaultSchema(), rows, from, to)

	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "1001", e.EmployeeID)
	assert.Equal(t, "Ivanov I.I.", e.Name)
	assert.Equal(t, "Operator", e.JobTitle)
	assert.Equal(t, "Acme", e.Company)
	assert.Equal(t, "North Site", e.Project)
	assert.Equal(t, time.March, e.Month)
	assert.Equal(t, 8.0, e.DailyHours[10])
	assert.Equal(t, 11.5, e.DailyHours[11])
	assert.Equal(t, 10.0, e.DailyHours[12])
	assert.Equal(t, 0.0, e.DailyHours[13])
	assert.Equal(t, 0.0, e.DailyHours[14])
}

func TestParseRowsStripsEmployeePrefix(t *testing.T) {
	from, to := marchRange()
	rows := [][]string{
		headerRow(),
		tabellRow("ТН1001", "A", "", "", nil, "March", ""),
		tabellRow("тн1002", "B", "", "", nil, "March", ""),
		tabellRow("1003", "C", "", "", nil, "March", ""),
	}

	entries := ParseRows(DefaultSchema(), rows, from, to)

	require.Len(t, entries, 3)
	assert.Equal(t, "1001", entries[0].EmployeeID)
	assert.Equal(t, "1002", entries[1].EmployeeID)
	assert.Equal(t, "1003", entries[2].EmployeeID)
}

func TestParseRowsMonthFiltering(t *testing.T) {
	rows := [][]string{
		headerRow(),
		tabellRow("1001", "A", "", "", map[int]string{28: "8"}, "March", ""),
		tabellRow("1001", "A", "", "", map[int]string{2: "8"}, "April", ""),
		tabellRow("1002", "B", "", "", map[int]string{15: "8"}, "May", ""),
	}

	from := time.Date(2025, 3, 25, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC)
	entries := ParseRows(DefaultSchema(), rows, from, to)

	require.Len(t, entries, 2)
	assert.Equal(t, time.March, entries[0].Month)
	assert.Equal(t, time.April, entries[1].Month)
}

func TestParseRowsMonthNameCaseInsensitive(t *testing.T) {
	from, to := marchRange()
	rows := [][]string{
		headerRow(),
		tabellRow("1001", "A", "", "", nil, "march", ""),
		tabellRow("1002", "B", "", "", nil, "MARCH", ""),
	}

	entries := ParseRows(DefaultSchema(), rows, from, to)
	assert.Len(t, entries, 2)
}

func TestParseRowsSkips(t *testing.T) {
	from, to := marchRange()
	rows := [][]string{
		headerRow(),
		tabellRow("1001", "A", "", "", nil, "", ""),       // empty month
		tabellRow("1002", "B", "", "", nil, "Smarch", ""), // unknown month
		tabellRow("", "C", "", "", nil, "March", ""),      // empty employee id
		tabellRow("ТН", "D", "", "", nil, "March", ""),    // id empty after strip
		{"1005", "E", "short row"},                        // too short for schema
		tabellRow("1006", "F", "", "", nil, "March", ""),  // survives
	}

	entries := ParseRows(DefaultSchema(), rows, from, to)

	require.Len(t, entries, 1)
	assert.Equal(t, "1006", entries[0].EmployeeID)
}

func TestParseRowsHeaderDiscarded(t *testing.T) {
	from, to := marchRange()
	// A header row that accidentally looks like data must still be skipped.
	header := tabellRow("1001", "Name", "Title", "Company", nil, "March", "P")
	rows := [][]string{header}

	entries := ParseRows(DefaultSchema(), rows, from, to)
	assert.Empty(t, entries)
}

func TestProjectsFromRows(t *testing.T) {
	rows := [][]string{
		headerRow(),
		tabellRow("1001", "A", "", "", nil, "March", "South Site"),
		tabellRow("1002", "B", "", "", nil, "April", "North Site"),
		tabellRow("1003", "C", "", "", nil, "May", "South Site"),
		tabellRow("1004", "D", "", "", nil, "June", ""),
	}

	projects := ProjectsFromRows(DefaultSchema(), rows)
	assert.Equal(t, []string{"North Site", "South Site"}, projects)
}

func TestMonthsCoveredAcrossYearBoundary(t *testing.T) {
	from := time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	months := monthsCovered(from, to)

	assert.True(t, months[time.December])
	assert.True(t, months[time.January])
	assert.Len(t, months, 2)
}
