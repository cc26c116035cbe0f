package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// schedule is the supported subset of a 5-field "minute hour day-of-month month day-of-week"
// expression: literal numbers pin a component, "*/N" in the month field steps N months, and
// every other form leaves the component unconstrained.
type schedule struct {
	minute, hour, dom, month, dow int // -1 when unconstrained
	monthStep                     int
}

func parseSchedule(expr string) (schedule, error) {
	parts := strings.Fields(strings.TrimSpace(expr))
	if len(parts) != 5 {
		return schedule{}, fmt.Errorf("invalid schedule %q: expected 5 fields, got %d", expr, len(parts))
	}

	var s schedule
	var err error
	if s.minute, err = literal(parts[0], 0, 59); err != nil {
		return schedule{}, fmt.Errorf("invalid minute field: %w", err)
	}
	if s.hour, err = literal(parts[1], 0, 23); err != nil {
		return schedule{}, fmt.Errorf("invalid hour field: %w", err)
	}
	if s.dom, err = literal(parts[2], 1, 31); err != nil {
		return schedule{}, fmt.Errorf("invalid day-of-month field: %w", err)
	}
	if step, ok := strings.CutPrefix(parts[3], "*/"); ok {
		n, err := strconv.Atoi(step)
		if err != nil || n < 1 || n > 12 {
			return schedule{}, fmt.Errorf("invalid month step %q", parts[3])
		}
		s.monthStep, s.month = n, -1
	} else if s.month, err = literal(parts[3], 1, 12); err != nil {
		return schedule{}, fmt.Errorf("invalid month field: %w", err)
	}
	if s.dow, err = literal(parts[4], 0, 7); err != nil {
		return schedule{}, fmt.Errorf("invalid day-of-week field: %w", err)
	}
	if s.dow == 7 {
		s.dow = 0
	}
	return s, nil
}

// literal returns -1 for anything that is not a plain number.
func literal(field string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(field)
	if err != nil {
		return -1, nil
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("value %d out of range [%d, %d]", n, lo, hi)
	}
	return n, nil
}

// pin applies the literal fields to t. When the pinned day does not exist in the target month it
// returns the first of that month and false, so the caller steps on instead of letting time.Date
// roll the day into the following month.
func (s schedule) pin(t time.Time) (time.Time, bool) {
	year, month, d := t.Date()
	hour, minute := t.Hour(), t.Minute()
	if s.month >= 0 {
		month = time.Month(s.month)
	}
	if s.hour >= 0 {
		hour = s.hour
	}
	if s.minute >= 0 {
		minute = s.minute
	}
	if s.dom >= 0 {
		if s.dom > daysIn(year, month) {
			return time.Date(year, month, 1, hour, minute, 0, 0, t.Location()), false
		}
		d = s.dom
	}
	t = time.Date(year, month, d, hour, minute, 0, 0, t.Location())
	if s.dow >= 0 {
		for t.Weekday() != time.Weekday(s.dow) {
			t = t.AddDate(0, 0, 1)
		}
	}
	return t, true
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// step advances by N months for "*/N" schedules and by one day otherwise. A pinned month or
// day-of-month widens the daily step to the smallest period that keeps the pin satisfiable.
func (s schedule) step(t time.Time) time.Time {
	switch {
	case s.monthStep > 0:
		return t.AddDate(0, s.monthStep, 0)
	case s.month >= 0:
		return t.AddDate(1, 0, 0)
	case s.dom >= 0:
		return t.AddDate(0, 1, 0)
	case s.dow >= 0:
		return t.AddDate(0, 0, 7)
	default:
		return t.AddDate(0, 0, 1)
	}
}

const maxCronSteps = 100000

// NextCronRun computes the next occurrence of expr after from, advancing until the result is
// strictly after now. It fails only on malformed expressions.
func NextCronRun(expr string, from, now time.Time) (time.Time, error) {
	s, err := parseSchedule(expr)
	if err != nil {
		return time.Time{}, err
	}

	next := from.Truncate(time.Minute)
	if s.monthStep > 0 {
		next = next.AddDate(0, s.monthStep, 0)
	}
	next, ok := s.pin(next)

	floor := now
	if from.After(now) {
		floor = from
	}
	for i := 0; !ok || !next.After(floor); i++ {
		if i == maxCronSteps {
			return time.Time{}, fmt.Errorf("schedule %q never reaches %s", expr, floor.Format(time.RFC3339))
		}
		next, ok = s.pin(s.step(next))
	}
	return next, nil
}
