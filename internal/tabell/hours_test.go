package tabell

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseHours(t *testing.T) {
	tests := []struct {
		name string
		cell string
		want float64
	}{
		{"plain integer", "8", 8},
		{"padded", "  8  ", 8},
		{"empty", "", 0},
		{"whitespace only", "   ", 0},
		{"dash placeholder", "-", 0},
		{"decimal point", "10.5", 10.5},
		{"decimal comma", "7,5", 7.5},
		{"trailing paren", "10(", 10},
		{"trailing parens", "12,25((", 12.25},
		{"paren only", "(", 0},
		{"day off code", "DOF", 0},
		{"vacation code", "ALP", 0},
		{"territory code", "TER", 0},
		{"mixed junk", "8h", 0},
		{"zero", "0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseHours(tt.cell))
		})
	}
}
