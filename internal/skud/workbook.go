package skud

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"skud-compare-api/internal/models"
)

// Column labels the punch export must carry.
const (
	colEmployeeID = "Employee ID"
	colDate       = "Date"
	colTime       = "Time"
)

// headerScanRows is how deep into the sheet the header row may sit.
const headerScanRows = 3

var (
	// ErrNoHeaderRow means no row among the first three carries the
	// "Employee ID" label. The workbook is unusable past this point.
	ErrNoHeaderRow = errors.New("skud: header row not found in first 3 rows")

	// ErrMissingColumns means the header row was found but lacks one of
	// the required columns.
	ErrMissingColumns = errors.New("skud: missing required columns")
)

// Reader decodes SKUD punch workbooks.
type Reader struct {
	log *zap.SugaredLogger
}

func NewReader(log *zap.SugaredLogger) *Reader {
	return &Reader{log: log}
}

// Parse streams the active sheet of the workbook at path and returns the
// punches dated within [from−1 day, to+1 day]. The one-day padding keeps
// night shifts straddling the range boundary pairable; the detector
// re-applies the strict range afterwards. Rows that fail to decode are
// dropped. Punches come back unsorted; sorting is the detector's job.
func (r *Reader) Parse(path string, from, to time.Time) ([]models.PunchRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	defer rows.Close()

	lo := from.AddDate(0, 0, -1)
	hi := to.AddDate(0, 0, 1)

	var (
		punches []models.PunchRecord
		columns map[string]int
		rowNum  int
		skipped int
	)
	for rows.Next() {
		rowNum++
		cells, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", rowNum, err)
		}
		if columns == nil {
			if rowNum > headerScanRows {
				return nil, ErrNoHeaderRow
			}
			if !isHeaderRow(cells) {
				continue
			}
			columns = mapColumns(cells)
			if err := requireColumns(columns); err != nil {
				return nil, err
			}
			continue
		}
		p, ok := parsePunchRow(cells, columns)
		if !ok {
			skipped++
			continue
		}
		if p.Date.Before(lo) || p.Date.After(hi) {
			continue
		}
		punches = append(punches, p)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	if columns == nil {
		return nil, ErrNoHeaderRow
	}

	r.log.Infow("skud workbook parsed",
		"sheet", sheet, "punches", len(punches), "skipped", skipped)
	return punches, nil
}

func isHeaderRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) == colEmployeeID {
			return true
		}
	}
	return false
}

func mapColumns(cells []string) map[string]int {
	m := make(map[string]int, len(cells))
	for i, c := range cells {
		if label := strings.TrimSpace(c); label != "" {
			m[label] = i
		}
	}
	return m
}

func requireColumns(columns map[string]int) error {
	var missing []string
	for _, want := range []string{colEmployeeID, colDate, colTime} {
		if _, ok := columns[want]; !ok {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return nil
}

func parsePunchRow(cells []string, columns map[string]int) (models.PunchRecord, bool) {
	id := strings.TrimSpace(cellAt(cells, columns[colEmployeeID]))
	if id == "" {
		return models.PunchRecord{}, false
	}
	date, ok := parseDateCell(cellAt(cells, columns[colDate]))
	if !ok {
		return models.PunchRecord{}, false
	}
	timeOfDay, ok := parseTimeCell(cellAt(cells, columns[colTime]))
	if !ok {
		return models.PunchRecord{}, false
	}
	return models.NewPunch(id, date, timeOfDay), true
}

func cellAt(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}

// parseDateCell accepts the string forms YYYY-MM-DD and
// "YYYY-MM-DD HH:MM:SS", or a raw Excel serial from a native date or
// datetime cell. Native cells surface as serials because rows are read
// with RawCellValue.
func parseDateCell(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.DateTime, v); err == nil {
		return models.DateOf(t), true
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return models.DateOf(t), true
		}
	}
	return time.Time{}, false
}

// parseTimeCell accepts HH:MM:SS or HH:MM strings, or a raw serial whose
// fractional part encodes the wall time. Rounded to whole seconds, the
// resolution the access system records.
func parseTimeCell(v string) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	for _, layout := range []string{time.TimeOnly, "15:04"} {
		if t, err := time.Parse(layout, v); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, true
		}
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil && serial >= 0 {
		frac := serial - math.Floor(serial)
		return time.Duration(math.Round(frac*86400)) * time.Second, true
	}
	return 0, false
}
