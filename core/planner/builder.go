package planner

import (
	"fmt"
	"strings"
	"time"

	"github.com/kilianp07/workplan/core/model"
)

// BuildResult holds the schedulable tasks in input order together with the
// rows that were skipped and the values that were discarded.
type BuildResult struct {
	Tasks    []model.Task
	Rejected []Rejection
	Warnings []Warning
}

// Build validates rows against the worker pool size. A row reusing the name
// of an earlier valid row is rejected so that task names stay unique.
func Build(rows []Row, pool int) BuildResult {
	var res BuildResult
	seen := make(map[string]struct{}, len(rows))
	for i, row := range rows {
		if row.Line == 0 {
			row.Line = i + 1
		}
		r := ParseRow(row, pool)
		if !r.OK() {
			res.Rejected = append(res.Rejected, *r.Rejected)
			continue
		}
		if _, dup := seen[r.Task.Name]; dup {
			res.Rejected = append(res.Rejected, Rejection{Line: row.Line, Task: r.Task.Name, Reason: "duplicate task name"})
			continue
		}
		seen[r.Task.Name] = struct{}{}
		if r.Warning != nil {
			res.Warnings = append(res.Warnings, *r.Warning)
		}
		res.Tasks = append(res.Tasks, r.Task)
	}
	return res
}

// SplitHolidays splits a comma separated holiday list as typed by a user.
func SplitHolidays(s string) []string {
	var out []string
	for _, h := range strings.Split(s, ",") {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}

// ParseHolidays parses YYYY-MM-DD strings. Malformed entries are dropped and
// reported as warnings; the remaining dates are returned in input order.
func ParseHolidays(values []string) ([]time.Time, []Warning) {
	var (
		days     []time.Time
		warnings []Warning
	)
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		d, err := model.ParseDate(v)
		if err != nil {
			warnings = append(warnings, Warning{Field: "holiday", Value: v, Err: err})
			continue
		}
		days = append(days, d)
	}
	return days, warnings
}

// Names returns the task names in order.
func Names(tasks []model.Task) []string {
	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = t.Name
	}
	return names
}

// MissingDependencies lists, per task, dependency names that match no task.
// The engine never admits such tasks; callers use this to explain why.
func MissingDependencies(tasks []model.Task) map[string][]string {
	known := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		known[t.Name] = struct{}{}
	}
	missing := make(map[string][]string)
	for _, t := range tasks {
		for _, d := range t.Dependencies {
			if _, ok := known[d]; !ok {
				missing[t.Name] = append(missing[t.Name], d)
			}
		}
	}
	return missing
}

func (r BuildResult) String() string {
	return fmt.Sprintf("%d tasks, %d rejected, %d warnings", len(r.Tasks), len(r.Rejected), len(r.Warnings))
}
