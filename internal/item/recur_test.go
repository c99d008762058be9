package item

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRecurrence(t *testing.T) {
	tests := []struct {
		in      string
		want    Recurrence
		wantErr bool
	}{
		{in: "2d", want: Recurrence{Amount: 2, Unit: UnitDay}},
		{in: "4w", want: Recurrence{Amount: 4, Unit: UnitWeek}},
		{in: "1m", want: Recurrence{Amount: 1, Unit: UnitMonth}},
		{in: "1y", want: Recurrence{Amount: 1, Unit: UnitYear}},
		{in: " 31D ", want: Recurrence{Amount: 31, Unit: UnitDay}},
		{in: "", wantErr: true},
		{in: "w", wantErr: true},
		{in: "4x", wantErr: true},
		{in: "0d", wantErr: true},
		{in: "32d", wantErr: true},
		{in: "-1w", wantErr: true},
		{in: "xw", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseRecurrence(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrValidation, "input %q", tt.in)
			continue
		}
		assert.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestRecurrenceString(t *testing.T) {
	assert.Equal(t, "4w", Recurrence{Amount: 4, Unit: UnitWeek}.String())
	assert.Equal(t, "1m", Recurrence{Amount: 1, Unit: UnitMonth}.String())
}

func TestNewLinkNormalizes(t *testing.T) {
	assert.Equal(t, Link{A: 1, B: 2}, NewLink(2, 1))
	assert.Equal(t, Link{A: 1, B: 2}, NewLink(1, 2))
	assert.Equal(t, int64(2), NewLink(2, 1).Other(1))
	assert.Equal(t, int64(1), NewLink(2, 1).Other(2))
}
