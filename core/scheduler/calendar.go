package scheduler

import (
	"sort"
	"time"

	"github.com/kilianp07/workplan/core/model"
)

// Calendar decides which dates are working days: Monday to Friday, minus
// the configured holidays.
type Calendar struct {
	holidays map[time.Time]struct{}
}

// NewCalendar builds a calendar from a holiday list. Times are truncated to
// their calendar date.
func NewCalendar(holidays []time.Time) Calendar {
	c := Calendar{holidays: make(map[time.Time]struct{}, len(holidays))}
	for _, h := range holidays {
		c.holidays[model.Day(h)] = struct{}{}
	}
	return c
}

// IsWorkingDay reports whether t falls on a weekday that is not a holiday.
func (c Calendar) IsWorkingDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	_, holiday := c.holidays[model.Day(t)]
	return !holiday
}

// NextWorkingDay returns the first working day on or after t.
func (c Calendar) NextWorkingDay(t time.Time) time.Time {
	d := model.Day(t)
	for !c.IsWorkingDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// Holidays returns the holiday dates in ascending order.
func (c Calendar) Holidays() []time.Time {
	out := make([]time.Time, 0, len(c.holidays))
	for d := range c.holidays {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
