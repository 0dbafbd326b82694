// Package report derives the views a planner looks at after a run: the
// schedule table, the daily allocation table, the overcapacity check and
// utilisation statistics.
package report

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/workplan/core/model"
	"github.com/kilianp07/workplan/core/scheduler"
)

// Overload is a day on which more workers were assigned than the pool holds.
type Overload struct {
	Date  time.Time `json:"date"`
	Total int       `json:"total"`
	Pool  int       `json:"pool"`
}

// Overcapacity returns every day whose summed assignments exceed pool.
func Overcapacity(daily []model.DayAllocation, pool int) []Overload {
	var out []Overload
	for _, d := range daily {
		if total := d.Total(); total > pool {
			out = append(out, Overload{Date: d.Date, Total: total, Pool: pool})
		}
	}
	return out
}

// Row is one line of the schedule table.
type Row struct {
	Task            string    `json:"task"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	AssignedWorkers int       `json:"assigned_workers"`
	DurationDays    int       `json:"duration_days"`
}

// ScheduleRows lists completed tasks in input order. AssignedWorkers is the
// requested (clamped) worker count, not a daily figure.
func ScheduleRows(res *scheduler.Result) []Row {
	var rows []Row
	for _, s := range res.Completed() {
		rows = append(rows, Row{
			Task:            s.Name,
			Start:           s.Start,
			End:             s.End,
			AssignedWorkers: s.RequestedWorkers,
			DurationDays:    s.DurationDays(),
		})
	}
	return rows
}

// Summary aggregates a run.
type Summary struct {
	Tasks          int       `json:"tasks"`
	Scheduled      int       `json:"scheduled"`
	Unscheduled    int       `json:"unscheduled"`
	WorkingDays    int       `json:"working_days"`
	CalendarDays   int       `json:"calendar_days"`
	CeilingReached bool      `json:"ceiling_reached"`
	FirstStart     time.Time `json:"first_start,omitempty"`
	LastEnd        time.Time `json:"last_end,omitempty"`
	MakespanDays   int       `json:"makespan_days"`
	WorkerDays     int       `json:"worker_days"`
	PeakWorkers    int       `json:"peak_workers"`
	// MeanUtilization and StdDevUtilization describe the daily share of the
	// pool that was assigned, in [0,1].
	MeanUtilization   float64 `json:"mean_utilization"`
	StdDevUtilization float64 `json:"stddev_utilization"`
	Overloaded        int     `json:"overloaded_days"`
}

// Summarize computes the run summary for a pool of the given size.
func Summarize(res *scheduler.Result, pool int) Summary {
	s := Summary{
		Tasks:          len(res.Schedules),
		Unscheduled:    len(res.Unscheduled),
		WorkingDays:    res.WorkingDays(),
		CalendarDays:   res.CalendarDays,
		CeilingReached: res.CeilingReached,
		Overloaded:     len(Overcapacity(res.Daily, pool)),
	}
	s.Scheduled = s.Tasks - s.Unscheduled
	if first, last, ok := res.Span(); ok {
		s.FirstStart, s.LastEnd = first, last
		s.MakespanDays = int(last.Sub(first).Hours() / 24)
	}

	util := make([]float64, len(res.Daily))
	for i, d := range res.Daily {
		total := d.Total()
		s.WorkerDays += total
		if total > s.PeakWorkers {
			s.PeakWorkers = total
		}
		if pool > 0 {
			util[i] = float64(total) / float64(pool)
		}
	}
	switch len(util) {
	case 0:
	case 1:
		s.MeanUtilization = round3(util[0])
	default:
		mean, std := stat.MeanStdDev(util, nil)
		s.MeanUtilization = round3(mean)
		s.StdDevUtilization = round3(std)
	}
	return s
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
