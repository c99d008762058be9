// Package due turns date keywords into calendar dates, computes recurrence
// arithmetic, and buckets tasks for display. All dates are civil dates:
// midnight UTC, no time-of-day component.
package due

import (
	"fmt"
	"strings"
	"time"

	"jrnl/internal/item"
)

const dateLayout = "2006-01-02"

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Resolve parses a due spec against a reference date. Specs are an explicit
// YYYY-MM-DD date, one of the keywords today/tomorrow/eow/eom/eoy, or a
// weekday name meaning the next such weekday strictly after ref.
func Resolve(spec string, ref time.Time) (time.Time, error) {
	ref = Date(ref)
	switch kw := strings.ToLower(strings.TrimSpace(spec)); kw {
	case "today":
		return ref, nil
	case "tomorrow":
		return ref.AddDate(0, 0, 1), nil
	case "eow":
		return endOfWeek(ref), nil
	case "eom":
		return endOfMonth(ref), nil
	case "eoy":
		return time.Date(ref.Year(), time.December, 31, 0, 0, 0, 0, time.UTC), nil
	default:
		if wd, ok := weekdays[kw]; ok {
			return nextWeekday(ref, wd), nil
		}
		d, err := time.ParseInLocation(dateLayout, kw, time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: due spec %q", item.ErrValidation, spec)
		}
		return d, nil
	}
}

// Date truncates t to its civil date in UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func Format(t time.Time) string {
	return t.Format(dateLayout)
}

func Parse(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}

// endOfWeek returns the upcoming Sunday, or ref itself when ref is a Sunday.
func endOfWeek(ref time.Time) time.Time {
	offset := (7 - int(ref.Weekday())) % 7
	return ref.AddDate(0, 0, offset)
}

func endOfMonth(ref time.Time) time.Time {
	// Day zero of the next month normalizes to this month's last day.
	return time.Date(ref.Year(), ref.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}

// nextWeekday never returns ref itself: a spec naming today's weekday means
// a full week ahead.
func nextWeekday(ref time.Time, wd time.Weekday) time.Time {
	delta := (int(wd) - int(ref.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return ref.AddDate(0, 0, delta)
}
