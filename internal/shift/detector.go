package shift

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"skud-compare-api/internal/models"
)

// claimState records what happened to one punch during detection. A punch
// is claimed at most once, either as a shift endpoint or as a swallowed
// intermediate, and every claim is terminal.
type claimState uint8

const (
	fresh claimState = iota
	claimedDay
	claimedNight
	claimedBroken
)

// Detector pairs raw punches into attributed shifts with four passes in
// strict priority order: same-date day shifts, overnight night shifts,
// post-midnight night shifts, then broken singletons for whatever is left.
// Day shifts go first because a same-date morning/afternoon pair is
// unambiguous, while the night passes could otherwise steal its punches.
type Detector struct {
	windows Windows
	log     *zap.SugaredLogger
}

func NewDetector(windows Windows, log *zap.SugaredLogger) *Detector {
	return &Detector{windows: windows, log: log}
}

// Windows returns the detection bands in use.
func (d *Detector) Windows() Windows {
	return d.windows
}

// Detect partitions punches by employee, pairs them into shifts, and drops
// shifts attributed outside [from, to]. Non-broken shifts come back grouped
// by employee; broken ones as a flat list. Employees are processed in
// sorted order, so identical input always yields identical output.
func (d *Detector) Detect(punches []models.PunchRecord, from, to time.Time) (map[string][]models.Shift, []models.Shift) {
	byEmployee := make(map[string][]models.PunchRecord)
	for _, p := range punches {
		byEmployee[p.EmployeeID] = append(byEmployee[p.EmployeeID], p)
	}
	ids := make([]string, 0, len(byEmployee))
	for id := range byEmployee {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	shiftsByEmployee := make(map[string][]models.Shift)
	broken := make([]models.Shift, 0)
	for _, id := range ids {
		for _, s := range d.detectForEmployee(id, byEmployee[id]) {
			if s.AttributedDate.Before(from) || s.AttributedDate.After(to) {
				continue
			}
			if s.Type == models.ShiftBroken {
				broken = append(broken, s)
			} else {
				shiftsByEmployee[id] = append(shiftsByEmployee[id], s)
			}
		}
	}

	d.log.Infow("shift detection complete",
		"punches", len(punches),
		"employees", len(shiftsByEmployee),
		"broken", len(broken))
	return shiftsByEmployee, broken
}

func (d *Detector) detectForEmployee(employeeID string, punches []models.PunchRecord) []models.Shift {
	sort.SliceStable(punches, func(i, j int) bool {
		return punches[i].DateTime.Before(punches[j].DateTime)
	})
	states := make([]claimState, len(punches))

	shifts := d.pairDayShifts(employeeID, punches, states)
	shifts = append(shifts, d.pairOvernightShifts(employeeID, punches, states)...)
	shifts = append(shifts, d.pairPostMidnightShifts(employeeID, punches, states)...)
	shifts = append(shifts, d.collectBroken(employeeID, punches, states)...)
	return shifts
}

// pairDayShifts claims same-date pairs: a morning start and the latest
// afternoon end on the same calendar date. Ends after DayEndPreferredMax
// o'clock are fallbacks only, so an evening punch stays free for the
// overnight pass when an earlier afternoon punch can close the day.
// Pairings longer than DayMaxSpan are rejected; such a pair is almost
// always a night-shift end and the next night's start happening to share
// a date, and the night passes claim them.
func (d *Detector) pairDayShifts(employeeID string, punches []models.PunchRecord, states []claimState) []models.Shift {
	w := d.windows
	var shifts []models.Shift
	for i, p := range punches {
		if states[i] != fresh {
			continue
		}
		if h := p.DateTime.Hour(); h < w.DayStartMin || h > w.DayStartMax {
			continue
		}
		best, fallback := -1, -1
		for j := i + 1; j < len(punches); j++ {
			if states[j] != fresh {
				continue
			}
			q := punches[j]
			if !q.Date.Equal(p.Date) {
				break
			}
			h := q.DateTime.Hour()
			if h < w.DayEndMin || h > w.DayEndMax {
				continue
			}
			fallback = j
			if h <= w.DayEndPreferredMax {
				best = j
			}
		}
		if best == -1 {
			best = fallback
		}
		if best == -1 {
			continue
		}
		end := punches[best]
		span := end.DateTime.Sub(p.DateTime).Hours()
		if span > w.DayMaxSpan {
			continue
		}
		endDT := end.DateTime
		shifts = append(shifts, models.Shift{
			EmployeeID:     employeeID,
			Type:           models.ShiftDay,
			AttributedDate: p.Date,
			Start:          p.DateTime,
			End:            &endDT,
			Hours:          models.Round1(span),
		})
		states[i], states[best] = claimedDay, claimedDay
		// Swallow accidental extra punches inside the shift, a lunch badge
		// being the usual case.
		for k := i + 1; k < best; k++ {
			if states[k] == fresh && punches[k].Date.Equal(p.Date) {
				states[k] = claimedDay
			}
		}
	}
	return shifts
}

// pairOvernightShifts claims an evening start with the latest punch on the
// following date at or before NightEndMax o'clock. The shift is attributed
// to the start date.
func (d *Detector) pairOvernightShifts(employeeID string, punches []models.PunchRecord, states []claimState) []models.Shift {
	w := d.windows
	var shifts []models.Shift
	for i, p := range punches {
		if states[i] != fresh {
			continue
		}
		if h := p.DateTime.Hour(); h < w.NightStartMin || h > w.NightStartMax {
			continue
		}
		nextDay := p.Date.AddDate(0, 0, 1)
		best := -1
		for j := i + 1; j < len(punches); j++ {
			if states[j] != fresh {
				continue
			}
			q := punches[j]
			if q.Date.After(nextDay) {
				break
			}
			if q.Date.Equal(nextDay) && q.DateTime.Hour() <= w.NightEndMax {
				best = j
			}
		}
		if best == -1 {
			continue
		}
		end := punches[best]
		endDT := end.DateTime
		shifts = append(shifts, models.Shift{
			EmployeeID:     employeeID,
			Type:           models.ShiftNight,
			AttributedDate: p.Date,
			Start:          p.DateTime,
			End:            &endDT,
			Hours:          models.Round1(end.DateTime.Sub(p.DateTime).Hours()),
		})
		states[i], states[best] = claimedNight, claimedNight
		for k := i + 1; k < best; k++ {
			if states[k] != fresh {
				continue
			}
			if punches[k].Date.Equal(p.Date) || punches[k].Date.Equal(nextDay) {
				states[k] = claimedNight
			}
		}
	}
	return shifts
}

// pairPostMidnightShifts claims a small-hours start with the latest
// same-date morning end. The pair is the tail of a night shift whose start
// punch is missing or out of range, so it is attributed to the previous
// date.
func (d *Detector) pairPostMidnightShifts(employeeID string, punches []models.PunchRecord, states []claimState) []models.Shift {
	w := d.windows
	var shifts []models.Shift
	for i, p := range punches {
		if states[i] != fresh {
			continue
		}
		if h := p.DateTime.Hour(); h < w.LateStartMin || h > w.LateStartMax {
			continue
		}
		best := -1
		for j := i + 1; j < len(punches); j++ {
			if states[j] != fresh {
				continue
			}
			q := punches[j]
			if !q.Date.Equal(p.Date) {
				break
			}
			if h := q.DateTime.Hour(); h >= w.LateEndMin && h <= w.LateEndMax {
				best = j
			}
		}
		if best == -1 {
			continue
		}
		end := punches[best]
		endDT := end.DateTime
		shifts = append(shifts, models.Shift{
			EmployeeID:     employeeID,
			Type:           models.ShiftNight,
			AttributedDate: p.Date.AddDate(0, 0, -1),
			Start:          p.DateTime,
			End:            &endDT,
			Hours:          models.Round1(end.DateTime.Sub(p.DateTime).Hours()),
		})
		states[i], states[best] = claimedNight, claimedNight
		for k := i + 1; k < best; k++ {
			if states[k] == fresh && punches[k].Date.Equal(p.Date) {
				states[k] = claimedNight
			}
		}
	}
	return shifts
}

// collectBroken turns every punch the paired passes left fresh into a
// broken singleton. Post-midnight strays inherit the previous-date
// attribution, matching the post-midnight pass.
func (d *Detector) collectBroken(employeeID string, punches []models.PunchRecord, states []claimState) []models.Shift {
	w := d.windows
	var shifts []models.Shift
	for i, p := range punches {
		if states[i] != fresh {
			continue
		}
		attributed := p.Date
		if h := p.DateTime.Hour(); h >= w.LateStartMin && h <= w.LateStartMax {
			attributed = attributed.AddDate(0, 0, -1)
		}
		shifts = append(shifts, models.Shift{
			EmployeeID:     employeeID,
			Type:           models.ShiftBroken,
			AttributedDate: attributed,
			Start:          p.DateTime,
		})
		states[i] = claimedBroken
	}
	return shifts
}
