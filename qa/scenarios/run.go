package scenarios

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kilianp07/workplan/core/metrics"
	"github.com/kilianp07/workplan/core/model"
	"github.com/kilianp07/workplan/core/planner"
	"github.com/kilianp07/workplan/core/report"
	"github.com/kilianp07/workplan/core/scheduler"
	"github.com/kilianp07/workplan/infra/logger"
	"github.com/kilianp07/workplan/infra/metrics"
)

// RunScenario simulates sc, compares the result with its expectations and
// checks the properties every schedule must satisfy.
func RunScenario(t *testing.T, sc *Scenario) *scheduler.Result {
	t.Helper()
	rows, err := sc.Rows()
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	cfg, _, err := sc.Settings.Resolve()
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	build := planner.Build(rows, cfg.Workers)
	if got := len(build.Rejected); got != sc.Expected.Rejected {
		t.Errorf("rejected rows: got %d, want %d (%v)", got, sc.Expected.Rejected, build.Rejected)
	}
	res, err := scheduler.Run(cfg, build.Tasks, logger.NopLogger{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	got := make(map[string]Span)
	for _, s := range res.Completed() {
		if _, ok := sc.Expected.Schedules[s.Name]; ok {
			got[s.Name] = Span{Start: model.FormatDate(s.Start), End: model.FormatDate(s.End)}
		}
	}
	if diff := cmp.Diff(sc.Expected.Schedules, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("schedules (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(sc.Expected.Unscheduled, res.Unscheduled, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("unscheduled (-want +got):\n%s", diff)
	}
	if res.WorkingDays() != sc.Expected.WorkingDays {
		t.Errorf("working days: got %d, want %d", res.WorkingDays(), sc.Expected.WorkingDays)
	}
	if res.CalendarDays != sc.Expected.CalendarDays {
		t.Errorf("calendar days: got %d, want %d", res.CalendarDays, sc.Expected.CalendarDays)
	}
	if res.CeilingReached != sc.Expected.CeilingReached {
		t.Errorf("ceiling reached: got %v, want %v", res.CeilingReached, sc.Expected.CeilingReached)
	}
	checkDaily(t, sc, res)
	checkProperties(t, cfg, build.Tasks, res)
	checkMetrics(t, res, cfg.Workers, len(build.Rejected))
	return res
}

func checkDaily(t *testing.T, sc *Scenario, res *scheduler.Result) {
	t.Helper()
	byDate := make(map[string]model.DayAllocation, len(res.Daily))
	dates := make([]string, 0, len(res.Daily))
	for _, d := range res.Daily {
		byDate[model.FormatDate(d.Date)] = d
		dates = append(dates, model.FormatDate(d.Date))
	}
	if sc.Expected.Dates != nil {
		if diff := cmp.Diff(sc.Expected.Dates, dates); diff != "" {
			t.Errorf("dates (-want +got):\n%s", diff)
		}
	}
	for date, want := range sc.Expected.Daily {
		d, ok := byDate[date]
		if !ok {
			t.Errorf("no allocation on %s", date)
			continue
		}
		for _, name := range res.TaskOrder {
			if d.Workers[name] != want[name] {
				t.Errorf("%s %s: got %d workers, want %d", date, name, d.Workers[name], want[name])
			}
		}
	}
}

// checkProperties asserts the invariants of any schedule: capacity, worker
// caps, dependency ordering, manual starts and the working calendar.
func checkProperties(t *testing.T, cfg scheduler.Config, tasks []model.Task, res *scheduler.Result) {
	t.Helper()
	cal := scheduler.NewCalendar(cfg.Holidays)
	requested := make(map[string]int, len(tasks))
	for _, task := range tasks {
		requested[task.Name] = task.RequestedWorkers
	}
	for _, d := range res.Daily {
		if !cal.IsWorkingDay(d.Date) {
			t.Errorf("%s is not a working day", model.FormatDate(d.Date))
		}
		if d.Total() > cfg.Workers {
			t.Errorf("%s: %d workers exceed pool %d", model.FormatDate(d.Date), d.Total(), cfg.Workers)
		}
		for name, n := range d.Workers {
			if n > requested[name] {
				t.Errorf("%s %s: %d workers exceed request %d", model.FormatDate(d.Date), name, n, requested[name])
			}
		}
	}
	for _, task := range tasks {
		s, _ := res.Schedule(task.Name)
		if !s.Completed {
			continue
		}
		if s.End.Before(s.Start) {
			t.Errorf("%s ends before it starts", task.Name)
		}
		if task.HasManualStart() && s.Start.Before(model.Day(*task.ManualStart)) {
			t.Errorf("%s starts before its manual start", task.Name)
		}
		for _, dep := range task.Dependencies {
			ds, ok := res.Schedule(dep)
			if !ok || !ds.Completed {
				t.Errorf("%s completed but dependency %s did not", task.Name, dep)
				continue
			}
			if s.Start.Before(ds.End) {
				t.Errorf("%s starts %s before dependency %s ends %s", task.Name, model.FormatDate(s.Start), dep, model.FormatDate(ds.End))
			}
		}
	}
}

// checkMetrics records the run in a Prometheus sink and compares the
// exposed series.
func checkMetrics(t *testing.T, res *scheduler.Result, pool, rejected int) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	sum := report.Summarize(res, pool)
	if err := sink.RecordRun(coremetrics.RunEvent{Time: time.Now(), Pool: pool, Rejected: rejected, Summary: sum}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	outcome := "complete"
	if len(res.Unscheduled) > 0 {
		outcome = "incomplete"
	}
	expected := fmt.Sprintf(`
# HELP workplan_last_run_unscheduled_tasks Tasks left unscheduled by the most recent run
# TYPE workplan_last_run_unscheduled_tasks gauge
workplan_last_run_unscheduled_tasks %d
# HELP workplan_rejected_rows_total Input rows rejected before simulation
# TYPE workplan_rejected_rows_total counter
workplan_rejected_rows_total %d
# HELP workplan_runs_total Total number of simulation runs by outcome
# TYPE workplan_runs_total counter
workplan_runs_total{outcome="%s"} 1
`, len(res.Unscheduled), rejected, outcome)
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"workplan_last_run_unscheduled_tasks", "workplan_rejected_rows_total", "workplan_runs_total"); err != nil {
		t.Errorf("metrics: %v", err)
	}
}
