package planner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRowValid(t *testing.T) {
	res := ParseRow(Row{
		Task:             " Task 2 ",
		TotalHours:       "50",
		WorkersRequested: "6",
		Priority:         "2",
		Dependencies:     "Task 1, ,Task 0",
		ManualStart:      "2025-06-10",
	}, 4)
	require.True(t, res.OK())
	assert.Nil(t, res.Warning)
	assert.Equal(t, "Task 2", res.Task.Name)
	assert.Equal(t, 50, res.Task.TotalHours)
	assert.Equal(t, 4, res.Task.RequestedWorkers, "clamped to pool")
	assert.Equal(t, 2, res.Task.Priority)
	assert.Equal(t, []string{"Task 1", "Task 0"}, res.Task.Dependencies)
	require.NotNil(t, res.Task.ManualStart)
	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), *res.Task.ManualStart)
}

func TestParseRowRejections(t *testing.T) {
	base := Row{Task: "t", TotalHours: "10", WorkersRequested: "1", Priority: "1"}
	cases := map[string]func(r *Row){
		"blank name":       func(r *Row) { r.Task = "  " },
		"missing hours":    func(r *Row) { r.TotalHours = "" },
		"zero hours":       func(r *Row) { r.TotalHours = "0" },
		"negative hours":   func(r *Row) { r.TotalHours = "-5" },
		"missing workers":  func(r *Row) { r.WorkersRequested = "" },
		"zero workers":     func(r *Row) { r.WorkersRequested = "0" },
		"missing priority": func(r *Row) { r.Priority = "NaN" },
		"bad hours":        func(r *Row) { r.TotalHours = "ten" },
		"fractional hours": func(r *Row) { r.TotalHours = "10.5" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			row := base
			mutate(&row)
			res := ParseRow(row, 4)
			require.False(t, res.OK())
			assert.NotEmpty(t, res.Rejected.Reason)
		})
	}
}

func TestParseRowIntegralFloat(t *testing.T) {
	res := ParseRow(Row{Task: "t", TotalHours: "80.0", WorkersRequested: "2", Priority: "1"}, 4)
	require.True(t, res.OK())
	assert.Equal(t, 80, res.Task.TotalHours)
}

func TestParseRowBadManualStartWarns(t *testing.T) {
	res := ParseRow(Row{Task: "t", TotalHours: "10", WorkersRequested: "1", Priority: "1", ManualStart: "next monday"}, 4)
	require.True(t, res.OK())
	require.NotNil(t, res.Warning)
	assert.Nil(t, res.Task.ManualStart)
	assert.Equal(t, "manual start", res.Warning.Field)
	assert.Contains(t, res.Warning.String(), "next monday")
}

func TestBuild(t *testing.T) {
	rows := []Row{
		{Task: "a", TotalHours: "10", WorkersRequested: "1", Priority: "1"},
		{Task: "", TotalHours: "10", WorkersRequested: "1", Priority: "1"},
		{Task: "b", TotalHours: "10", WorkersRequested: "9", Priority: "2", ManualStart: "bad"},
		{Task: "a", TotalHours: "20", WorkersRequested: "1", Priority: "3"},
	}
	res := Build(rows, 3)
	assert.Equal(t, []string{"a", "b"}, Names(res.Tasks))
	require.Len(t, res.Rejected, 2)
	assert.Equal(t, 2, res.Rejected[0].Line)
	assert.Equal(t, "duplicate task name", res.Rejected[1].Reason)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, 3, res.Tasks[1].RequestedWorkers)
	assert.Equal(t, "2 tasks, 2 rejected, 1 warnings", res.String())
}

func TestParseHolidays(t *testing.T) {
	days, warns := ParseHolidays(SplitHolidays("2025-06-09, junk ,2025-12-25,"))
	require.Len(t, days, 2)
	assert.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), days[0])
	require.Len(t, warns, 1)
	assert.Equal(t, "junk", warns[0].Value)
	assert.Equal(t, "holiday", warns[0].Field)
}

func TestMissingDependencies(t *testing.T) {
	res := Build([]Row{
		{Task: "a", TotalHours: "10", WorkersRequested: "1", Priority: "1"},
		{Task: "b", TotalHours: "10", WorkersRequested: "1", Priority: "1", Dependencies: "a,ghost"},
	}, 2)
	assert.Equal(t, map[string][]string{"b": {"ghost"}}, MissingDependencies(res.Tasks))
}

func TestReadCSV(t *testing.T) {
	data := "Task,Total Hours,Workers Requested,Priority,Dependencies,Manual Start,Notes\n" +
		"Task 1,80,2,1,,,first\n" +
		"Task 2,50,4,2,\"Task 1\",2025-06-04\n"
	rows, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{Line: 2, Task: "Task 1", TotalHours: "80", WorkersRequested: "2", Priority: "1"}, rows[0])
	assert.Equal(t, "Task 1", rows[1].Dependencies)
	assert.Equal(t, "2025-06-04", rows[1].ManualStart)
}

func TestReadCSVErrors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("hours,priority\n1,2\n"))
	assert.ErrorIs(t, err, ErrMissingTaskColumn)

	rows, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDecodeRowsYAMLAndJSON(t *testing.T) {
	y := `
- task: Task 1
  total_hours: 80
  workers_requested: 2
  priority: 1
- task: Task 2
  total_hours: 50
  workers_requested: 4
  priority: 2
  dependencies: [Task 1]
  manual_start: "2025-06-04"
`
	rows, err := DecodeRows(strings.NewReader(y), "yaml")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "80", rows[0].TotalHours)
	assert.Equal(t, "Task 1", rows[1].Dependencies)
	assert.Equal(t, "2025-06-04", rows[1].ManualStart)

	j := `[{"task":"Task 1","total_hours":80,"workers_requested":2,"priority":1,"dependencies":"a, b"}]`
	rows, err = DecodeRows(strings.NewReader(j), "json")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "80", rows[0].TotalHours)
	assert.Equal(t, "a, b", rows[0].Dependencies)

	_, err = DecodeRows(strings.NewReader(""), "toml")
	assert.Error(t, err)
}

func TestLoadRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.csv")
	require.NoError(t, os.WriteFile(path, []byte("task,total_hours,workers_requested,priority\nx,10,1,1\n"), 0o644))
	rows, err := LoadRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	_, err = LoadRows(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
