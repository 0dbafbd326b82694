package scheduler

import (
	"time"

	"github.com/kilianp07/workplan/core/model"
)

// Result is the output of one simulation run.
type Result struct {
	// Schedules has one entry per task, in input order.
	Schedules []model.TaskSchedule `json:"schedules"`
	// Daily is the allocation log, one entry per processed working day.
	Daily []model.DayAllocation `json:"daily"`
	// Unscheduled lists the tasks that never completed, in input order.
	Unscheduled []string `json:"unscheduled"`
	// TaskOrder is the input order of task names; log consumers use it for
	// column ordering.
	TaskOrder []string `json:"task_order"`

	FirstDay       time.Time `json:"first_day"`
	CalendarDays   int       `json:"calendar_days"` // value of the day ceiling counter at termination
	CeilingReached bool      `json:"ceiling_reached"`
}

// Schedule looks up a task by name.
func (r *Result) Schedule(name string) (model.TaskSchedule, bool) {
	for _, s := range r.Schedules {
		if s.Name == name {
			return s, true
		}
	}
	return model.TaskSchedule{}, false
}

// Completed returns the schedules of tasks that have both dates, in input order.
func (r *Result) Completed() []model.TaskSchedule {
	var out []model.TaskSchedule
	for _, s := range r.Schedules {
		if s.Scheduled() {
			out = append(out, s)
		}
	}
	return out
}

// WorkingDays is the number of working days the engine processed.
func (r *Result) WorkingDays() int { return len(r.Daily) }

// Span returns the earliest start and the latest end over completed tasks.
func (r *Result) Span() (time.Time, time.Time, bool) {
	var first, last time.Time
	found := false
	for _, s := range r.Completed() {
		if !found || s.Start.Before(first) {
			first = s.Start
		}
		if !found || s.End.After(last) {
			last = s.End
		}
		found = true
	}
	return first, last, found
}
