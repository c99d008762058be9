package item

import (
	"fmt"
	"strconv"
	"strings"
)

type Unit string

const (
	UnitDay   Unit = "day"
	UnitWeek  Unit = "week"
	UnitMonth Unit = "month"
	UnitYear  Unit = "year"
)

// Recurrence describes how far forward to schedule the next occurrence
// when a task completes.
type Recurrence struct {
	Amount int
	Unit   Unit
}

// ParseRecurrence reads the compact pattern form: "2d", "4w", "1m", "1y".
// Amounts run 1 through 31.
func ParseRecurrence(s string) (Recurrence, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 2 {
		return Recurrence{}, fmt.Errorf("%w: recur pattern %q, want <number><d|w|m|y>", ErrValidation, s)
	}

	var unit Unit
	switch s[len(s)-1] {
	case 'd':
		unit = UnitDay
	case 'w':
		unit = UnitWeek
	case 'm':
		unit = UnitMonth
	case 'y':
		unit = UnitYear
	default:
		return Recurrence{}, fmt.Errorf("%w: recur unit %q, want d, w, m or y", ErrValidation, s[len(s)-1:])
	}

	amount, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return Recurrence{}, fmt.Errorf("%w: recur amount in %q is not a number", ErrValidation, s)
	}
	if amount < 1 || amount > 31 {
		return Recurrence{}, fmt.Errorf("%w: recur amount %d out of range 1-31", ErrValidation, amount)
	}

	return Recurrence{Amount: amount, Unit: unit}, nil
}

func (r Recurrence) String() string {
	return fmt.Sprintf("%d%s", r.Amount, string(r.Unit[0]))
}
