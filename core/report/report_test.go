package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/workplan/core/model"
	"github.com/kilianp07/workplan/core/scheduler"
	"github.com/kilianp07/workplan/infra/logger"
)

func date(s string) time.Time {
	d, _ := model.ParseDate(s)
	return d
}

func singleTaskRun(t *testing.T) *scheduler.Result {
	t.Helper()
	res, err := scheduler.Run(scheduler.Config{Workers: 4, HoursPerWorkerPerDay: 10, StartDate: date("2025-06-02")},
		[]model.Task{
			{Name: "A", TotalHours: 80, RequestedWorkers: 2, Priority: 1},
			{Name: "Z", TotalHours: 10, RequestedWorkers: 1, Priority: 2, Dependencies: []string{"missing"}},
		}, logger.NopLogger{})
	require.NoError(t, err)
	return res
}

func TestOvercapacity(t *testing.T) {
	daily := []model.DayAllocation{
		{Date: date("2025-06-02"), Workers: map[string]int{"a": 2, "b": 2}},
		{Date: date("2025-06-03"), Workers: map[string]int{"a": 3, "b": 2}},
	}
	over := Overcapacity(daily, 4)
	require.Len(t, over, 1)
	assert.Equal(t, Overload{Date: date("2025-06-03"), Total: 5, Pool: 4}, over[0])
	assert.Empty(t, Overcapacity(daily, 5))
}

func TestScheduleRowsOnlyCompleted(t *testing.T) {
	res, err := scheduler.Run(scheduler.Config{Workers: 4, HoursPerWorkerPerDay: 10, StartDate: date("2025-06-02"), MaxDays: 10},
		[]model.Task{
			{Name: "A", TotalHours: 80, RequestedWorkers: 2, Priority: 1},
			{Name: "Z", TotalHours: 10, RequestedWorkers: 1, Priority: 2, Dependencies: []string{"missing"}},
		}, logger.NopLogger{})
	require.NoError(t, err)
	rows := ScheduleRows(res)
	require.Len(t, rows, 1)
	assert.Equal(t, Row{Task: "A", Start: date("2025-06-02"), End: date("2025-06-06"), AssignedWorkers: 2, DurationDays: 4}, rows[0])
}

func TestSummarize(t *testing.T) {
	res, err := scheduler.Run(scheduler.Config{Workers: 4, HoursPerWorkerPerDay: 10, StartDate: date("2025-06-02")},
		[]model.Task{{Name: "A", TotalHours: 80, RequestedWorkers: 2, Priority: 1}}, logger.NopLogger{})
	require.NoError(t, err)
	s := Summarize(res, 4)
	assert.Equal(t, 1, s.Tasks)
	assert.Equal(t, 1, s.Scheduled)
	assert.Equal(t, 5, s.WorkingDays)
	assert.Equal(t, 4, s.MakespanDays)
	assert.Equal(t, 8, s.WorkerDays)
	assert.Equal(t, 2, s.PeakWorkers)
	assert.InDelta(t, 0.4, s.MeanUtilization, 1e-9)
	assert.InDelta(t, 0.224, s.StdDevUtilization, 1e-9)
	assert.Zero(t, s.Overloaded)

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, s))
	assert.Contains(t, buf.String(), "2025-06-02 .. 2025-06-06 (4 days)")
	assert.Contains(t, buf.String(), "40.0%")
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(&scheduler.Result{}, 4)
	assert.Zero(t, s.MeanUtilization)
	assert.True(t, s.FirstStart.IsZero())
}

func TestWriteTables(t *testing.T) {
	res := singleTaskRun(t)

	var buf bytes.Buffer
	require.NoError(t, WriteSchedule(&buf, res))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"A", "2025-06-02", "2025-06-06", "2", "4"}, strings.Fields(lines[1]))

	buf.Reset()
	require.NoError(t, WriteDaily(&buf, res))
	lines = strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{"DATE", "A", "Z", "TOTAL"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"2025-06-02", "2", "0", "2"}, strings.Fields(lines[1]))

	buf.Reset()
	require.NoError(t, WriteChecks(&buf, res, 4))
	assert.Contains(t, buf.String(), "- Z\n")
	assert.Contains(t, buf.String(), "within capacity")
}

func TestWriteChecksOvercapacity(t *testing.T) {
	res := &scheduler.Result{
		TaskOrder: []string{"a"},
		Daily:     []model.DayAllocation{{Date: date("2025-06-02"), Workers: map[string]int{"a": 6}}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteChecks(&buf, res, 4))
	assert.Contains(t, buf.String(), "- 2025-06-02: 6 workers (pool 4)")
}
