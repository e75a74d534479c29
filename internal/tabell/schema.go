package tabell

// Schema fixes the column layout of the tabell CSV export. Positions are
// zero-based; day N of the month lives at DayFirst+N-1. The layout is
// dictated by the upstream sheet, so it belongs here rather than scattered
// through the reader.
type Schema struct {
	EmployeeID int
	Name       int
	JobTitle   int
	Company    int
	DayFirst   int
	DayCount   int
	Month      int
	Project    int
	HeaderRows int
}

// DefaultSchema matches the current sheet: A=employee id, B=name,
// C=job title, D=company, E..AI=days 1..31, AJ=month, AK=project,
// one header row.
func DefaultSchema() Schema {
	return Schema{
		EmployeeID: 0,
		Name:       1,
		JobTitle:   2,
		Company:    3,
		DayFirst:   4,
		DayCount:   31,
		Month:      35,
		Project:    36,
		HeaderRows: 1,
	}
}
