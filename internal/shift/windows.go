package shift

// Windows holds the punch-hour bands the detector pairs within. The bands
// overlap on purpose (a 16:00 punch can close a day shift or open a night
// shift); pass priority resolves the overlap. Values are tuned to the
// site's schedule, so they are configuration rather than constants.
type Windows struct {
	DayStartMin int // earliest hour opening a day shift
	DayStartMax int
	DayEndMin   int // same-date band closing a day shift
	DayEndMax   int

	// DayEndPreferredMax splits the day-end band in two. Candidates at or
	// before this hour win; later ones up to DayEndMax are paired only
	// when no preferred candidate exists on the date. An evening punch
	// following an earlier afternoon punch is almost always the next
	// night shift clocking in, not a longer day shift.
	DayEndPreferredMax int

	DayMaxSpan float64 // hours; longer same-date pairings are rejected

	NightStartMin int // evening band opening an overnight shift
	NightStartMax int
	NightEndMax   int // latest next-day hour closing an overnight shift

	LateStartMin int // post-midnight band opening a previous-day shift
	LateStartMax int
	LateEndMin   int // same-date band closing a post-midnight shift
	LateEndMax   int
}

// DefaultWindows returns the site schedule in production use.
func DefaultWindows() Windows {
	return Windows{
		DayStartMin:        4,
		DayStartMax:        10,
		DayEndMin:          14,
		DayEndMax:          20,
		DayEndPreferredMax: 16,
		DayMaxSpan:         12.5,

		NightStartMin: 15,
		NightStartMax: 23,
		NightEndMax:   13,

		LateStartMin: 0,
		LateStartMax: 4,
		LateEndMin:   5,
		LateEndMax:   13,
	}
}

// EstimateType guesses what role a stray punch played from its hour alone.
// The bands overlap; the first match in this order wins.
func (w Windows) EstimateType(hour int) string {
	switch {
	case hour >= w.DayStartMin && hour <= w.DayStartMax:
		return "day_start?"
	case hour >= w.DayEndMin && hour <= w.DayEndMax:
		return "day_end?"
	case hour >= w.NightStartMin && hour <= w.NightStartMax:
		return "night_start?"
	case hour >= w.LateStartMin && hour <= w.LateStartMax:
		return "night_end?"
	default:
		return "unknown"
	}
}
