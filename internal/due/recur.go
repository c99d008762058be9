package due

import (
	"time"

	"jrnl/internal/item"
)

// NextOccurrence advances from by one recurrence step. Month and year steps
// clamp the day-of-month when the original day does not exist in the target
// month (Jan 31 + 1 month lands on Feb 28 or 29).
func NextOccurrence(from time.Time, rec item.Recurrence) time.Time {
	from = Date(from)
	switch rec.Unit {
	case item.UnitDay:
		return from.AddDate(0, 0, rec.Amount)
	case item.UnitWeek:
		return from.AddDate(0, 0, 7*rec.Amount)
	case item.UnitMonth:
		return addMonthsClamped(from, rec.Amount)
	case item.UnitYear:
		return addMonthsClamped(from, 12*rec.Amount)
	}
	return from
}

func addMonthsClamped(from time.Time, months int) time.Time {
	y := from.Year()
	m := int(from.Month()) + months
	y += (m - 1) / 12
	m = (m-1)%12 + 1

	day := from.Day()
	if last := daysIn(y, time.Month(m)); day > last {
		day = last
	}
	return time.Date(y, time.Month(m), day, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
