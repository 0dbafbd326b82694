package planner

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kilianp07/workplan/core/model"
)

// Row is one raw line of the task table. Every field holds the cell text;
// an empty cell means the value is absent.
type Row struct {
	Line             int // 1-based source position, 0 when unknown
	Task             string
	TotalHours       string
	WorkersRequested string
	Priority         string
	Dependencies     string
	ManualStart      string
}

// Rejection explains why a row was left out of the schedulable set.
type Rejection struct {
	Line   int    `json:"line,omitempty"`
	Task   string `json:"task,omitempty"`
	Reason string `json:"reason"`
}

func (r Rejection) String() string {
	if r.Line > 0 {
		return fmt.Sprintf("row %d (%q): %s", r.Line, r.Task, r.Reason)
	}
	return fmt.Sprintf("row %q: %s", r.Task, r.Reason)
}

// Warning reports an optional value that was discarded.
type Warning struct {
	Task  string `json:"task,omitempty"`
	Field string `json:"field"`
	Value string `json:"value"`
	Err   error  `json:"-"`
}

func (w Warning) String() string {
	if w.Task != "" {
		return fmt.Sprintf("invalid %s %q for task %q: %v", w.Field, w.Value, w.Task, w.Err)
	}
	return fmt.Sprintf("invalid %s %q: %v", w.Field, w.Value, w.Err)
}

// RowResult is the tagged outcome of parsing one row: either Task is valid
// or Rejected is set. Warning may accompany a valid task.
type RowResult struct {
	Task     model.Task
	Rejected *Rejection
	Warning  *Warning
}

// OK reports whether the row produced a schedulable task.
func (r RowResult) OK() bool { return r.Rejected == nil }

// ParseRow validates a row against the worker pool size. RequestedWorkers is
// clamped to pool when pool is positive.
func ParseRow(row Row, pool int) RowResult {
	name := strings.TrimSpace(row.Task)
	reject := func(format string, args ...any) RowResult {
		return RowResult{Rejected: &Rejection{Line: row.Line, Task: name, Reason: fmt.Sprintf(format, args...)}}
	}
	if name == "" {
		return reject("task name is empty")
	}
	hours, ok, err := parseCount(row.TotalHours)
	if err != nil {
		return reject("total hours: %v", err)
	}
	if !ok {
		return reject("total hours missing")
	}
	workers, ok, err := parseCount(row.WorkersRequested)
	if err != nil {
		return reject("workers requested: %v", err)
	}
	if !ok {
		return reject("workers requested missing")
	}
	prio, ok, err := parseCount(row.Priority)
	if err != nil {
		return reject("priority: %v", err)
	}
	if !ok {
		return reject("priority missing")
	}
	if workers <= 0 {
		return reject("workers requested must be positive, got %d", workers)
	}
	if hours <= 0 {
		return reject("total hours must be positive, got %d", hours)
	}
	if pool > 0 && workers > pool {
		workers = pool
	}

	res := RowResult{Task: model.Task{
		Name:             name,
		TotalHours:       hours,
		RequestedWorkers: workers,
		Priority:         prio,
		Dependencies:     model.SplitDependencies(row.Dependencies),
	}}
	if raw := strings.TrimSpace(row.ManualStart); raw != "" {
		d, err := model.ParseDate(raw)
		if err != nil {
			res.Warning = &Warning{Task: name, Field: "manual start", Value: raw, Err: err}
		} else {
			res.Task.ManualStart = &d
		}
	}
	return res
}

// parseCount reads an integer cell. Integral floats such as "80.0" are
// accepted since spreadsheets tend to produce them.
func parseCount(s string) (int, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return 0, false, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, false, fmt.Errorf("%q is not an integer", s)
	}
	return int(f), true, nil
}
