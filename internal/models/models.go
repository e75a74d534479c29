package models

import (
	"math"
	"time"
)

// ShiftType classifies an inferred work interval.
type ShiftType string

const (
	ShiftDay    ShiftType = "day"
	ShiftNight  ShiftType = "night"
	ShiftBroken ShiftType = "broken"
)

// PunchRecord is a single access-control event: one badge read at one
// reader. All timestamps are naive local time; no zone conversion happens
// anywhere in the pipeline.
type PunchRecord struct {
	EmployeeID string
	Date       time.Time     // calendar date at midnight
	Time       time.Duration // wall time elapsed since midnight
	DateTime   time.Time     // Date + Time, for interval arithmetic
}

// NewPunch combines the calendar date and wall time of one access event
// into a consistent record.
func NewPunch(employeeID string, date time.Time, timeOfDay time.Duration) PunchRecord {
	return PunchRecord{
		EmployeeID: employeeID,
		Date:       date,
		Time:       timeOfDay,
		DateTime:   date.Add(timeOfDay),
	}
}

// Shift is one inferred work interval built from a pair of punches.
// AttributedDate is the date the shift is charged against for reporting:
// a night shift starting on day D and ending on D+1 belongs to D.
type Shift struct {
	EmployeeID     string
	Type           ShiftType
	AttributedDate time.Time
	Start          time.Time
	End            *time.Time // nil only when Type is ShiftBroken
	Hours          float64    // one decimal; 0 when broken
}

// TabellEntry is one row of the planned timesheet: one employee in one
// calendar month. An employee may own several entries when the requested
// range spans months.
type TabellEntry struct {
	EmployeeID string
	Name       string
	JobTitle   string
	Company    string
	Project    string
	Month      time.Month
	DailyHours map[int]float64 // day of month 1..31 → planned hours
}

// DayComparison is the per-employee, per-date cell of the comparison
// matrix. Skud carries the summed detected hours rounded to one decimal;
// Diff is tabell minus skud, rounded the same way.
type DayComparison struct {
	Tabell    float64   `json:"tabell"`
	Skud      float64   `json:"skud"`
	Diff      float64   `json:"diff"`
	Broken    bool      `json:"broken"`
	ShiftType ShiftType `json:"shift_type,omitempty"`
}

// ComparisonRow is one employee's row of the matrix, keyed by ISO date.
type ComparisonRow struct {
	EmployeeID string                   `json:"employee_id"`
	Name       string                   `json:"name"`
	JobTitle   string                   `json:"job_title"`
	Days       map[string]DayComparison `json:"days"`
}

// BrokenShift is the serialized form of an unpaired punch.
type BrokenShift struct {
	EmployeeID     string `json:"employee_id"`
	Name           string `json:"name"`
	AttributedDate string `json:"attributed_date"`
	PunchTime      string `json:"punch_time"`
	EstimatedType  string `json:"estimated_type"`
}

// Summary aggregates one comparison run.
type Summary struct {
	TotalEmployeesTabell int       `json:"total_employees_tabell"`
	TotalEmployeesSkud   int       `json:"total_employees_skud"`
	MatchedEmployees     int       `json:"matched_employees"`
	BrokenCount          int       `json:"broken_count"`
	DateRange            [2]string `json:"date_range"`
}

// CompareResult is the full JSON payload of one comparison.
type CompareResult struct {
	Comparison   []ComparisonRow `json:"comparison"`
	BrokenShifts []BrokenShift   `json:"broken_shifts"`
	Summary      Summary         `json:"summary"`
}

// Round1 rounds to one decimal place. Hour values cross component
// boundaries already rounded, so sums stay clean.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// DateOf truncates a timestamp to its calendar date.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
