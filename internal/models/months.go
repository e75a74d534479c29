package models

import (
	"strings"
	"time"
)

// MonthFromName resolves an English month name to its number,
// case-insensitively. The reverse direction is time.Month.String().
func MonthFromName(name string) (time.Month, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, false
	}
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(name, m.String()) {
			return m, true
		}
	}
	return 0, false
}
