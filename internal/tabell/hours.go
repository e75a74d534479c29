package tabell

import (
	"strconv"
	"strings"
)

// ParseHours normalizes one tabell hour cell to a float hour count.
// Cells carry either numeric hours, sometimes with a European decimal
// comma or a trailing "(" left over from half-merged cells, or textual
// day codes (DOF, ALP, TER and friends) that mean no worked hours.
// Unknown text maps to zero so the diff column surfaces the discrepancy
// instead of the parse failing.
func ParseHours(cell string) float64 {
	s := strings.TrimSpace(cell)
	if s == "" || s == "-" {
		return 0
	}
	s = strings.TrimRight(s, "(")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
