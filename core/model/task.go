package model

import (
	"strings"
	"time"
)

// Task is a validated unit of work ready to be scheduled.
type Task struct {
	Name             string     `json:"name" yaml:"name"`
	TotalHours       int        `json:"total_hours" yaml:"total_hours"`             // effort required to finish the task
	RequestedWorkers int        `json:"requested_workers" yaml:"requested_workers"` // concurrent workers wanted, clamped to the pool
	Priority         int        `json:"priority" yaml:"priority"`                   // lower value wins scarce workers first
	Dependencies     []string   `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	ManualStart      *time.Time `json:"manual_start,omitempty" yaml:"manual_start,omitempty"` // earliest admission date, if any
}

// HasManualStart reports whether the task carries a manual lower bound on its start.
func (t Task) HasManualStart() bool {
	return t.ManualStart != nil && !t.ManualStart.IsZero()
}

// TaskSchedule is the outcome of a simulation for one task.
type TaskSchedule struct {
	Name             string    `json:"name"`
	RequestedWorkers int       `json:"requested_workers"`
	Priority         int       `json:"priority"`
	Start            time.Time `json:"start,omitempty"`
	End              time.Time `json:"end,omitempty"`
	Started          bool      `json:"started"`
	Completed        bool      `json:"completed"`
}

// Scheduled reports whether the task received both a start and an end date.
func (s TaskSchedule) Scheduled() bool {
	return s.Started && s.Completed
}

// DurationDays returns the number of calendar days between Start and End.
func (s TaskSchedule) DurationDays() int {
	if !s.Scheduled() {
		return 0
	}
	return int(Day(s.End).Sub(Day(s.Start)).Hours() / 24)
}

// SplitDependencies parses a comma separated dependency list. Tokens are
// trimmed and empty tokens dropped.
func SplitDependencies(s string) []string {
	var deps []string
	for _, d := range strings.Split(s, ",") {
		if d = strings.TrimSpace(d); d != "" {
			deps = append(deps, d)
		}
	}
	return deps
}
