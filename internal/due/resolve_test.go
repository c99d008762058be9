package due

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"jrnl/internal/item"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveKeywords(t *testing.T) {
	// 2024-01-15 is a Monday.
	ref := date(2024, time.January, 15)

	tests := []struct {
		spec string
		want time.Time
	}{
		{"today", date(2024, time.January, 15)},
		{"tomorrow", date(2024, time.January, 16)},
		{"eow", date(2024, time.January, 21)}, // upcoming Sunday
		{"eom", date(2024, time.January, 31)},
		{"eoy", date(2024, time.December, 31)},
		{"2025-12-25", date(2025, time.December, 25)},
		{" TODAY ", date(2024, time.January, 15)},
	}
	for _, tt := range tests {
		got, err := Resolve(tt.spec, ref)
		assert.NoError(t, err, "spec %q", tt.spec)
		assert.Equal(t, tt.want, got, "spec %q", tt.spec)
	}
}

func TestResolveEndOfWeekOnSunday(t *testing.T) {
	// 2024-01-21 is a Sunday; eow stays on the same day.
	sunday := date(2024, time.January, 21)
	got, err := Resolve("eow", sunday)
	assert.NoError(t, err)
	assert.Equal(t, sunday, got)
}

func TestResolveWeekdayStrictlyAfter(t *testing.T) {
	monday := date(2024, time.January, 15)

	got, err := Resolve("monday", monday)
	assert.NoError(t, err)
	assert.Equal(t, date(2024, time.January, 22), got, "same weekday advances a full week")

	got, err = Resolve("friday", monday)
	assert.NoError(t, err)
	assert.Equal(t, date(2024, time.January, 19), got)

	got, err = Resolve("sunday", monday)
	assert.NoError(t, err)
	assert.Equal(t, date(2024, time.January, 21), got)
}

func TestResolveRejectsBadSpecs(t *testing.T) {
	ref := date(2024, time.January, 15)
	for _, spec := range []string{"", "someday", "2024-13-01", "2023-02-29", "2024-04-31", "25-12-2024"} {
		_, err := Resolve(spec, ref)
		assert.ErrorIs(t, err, item.ErrValidation, "spec %q", spec)
	}
}

func TestResolveLeapDay(t *testing.T) {
	got, err := Resolve("2024-02-29", date(2024, time.January, 1))
	assert.NoError(t, err)
	assert.Equal(t, date(2024, time.February, 29), got)
}
