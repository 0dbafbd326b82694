package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/workplan/app"
	"github.com/kilianp07/workplan/config"
	"github.com/kilianp07/workplan/core/scheduler"
	"github.com/kilianp07/workplan/infra/logger"
)

const chainCSV = `Task,Total Hours,Workers Requested,Priority,Dependencies,Manual Start
A,80,4,1,,
B,20,2,2,A,
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.csv")
	require.NoError(t, os.WriteFile(path, []byte(chainCSV), 0o644))
	cfg := &config.Config{
		Schedule: scheduler.Settings{Workers: 4, HoursPerWorkerPerDay: 10, StartDate: "2025-06-02"},
		Tasks:    config.TasksConfig{Path: path},
	}
	cfg.SetDefaults()
	return cfg
}

func testService() *app.Service {
	return app.New(app.Options{Logger: logger.NopLogger{}, NewID: func() string { return "run-1" }})
}

func TestScheduleOncePrintsTables(t *testing.T) {
	cfg := testConfig(t)
	var buf bytes.Buffer
	require.NoError(t, scheduleOnce(context.Background(), &buf, testService(), cfg, true))
	out := buf.String()
	assert.Contains(t, out, "run run-1")
	assert.Contains(t, out, "2025-06-04")
	assert.Contains(t, out, "All worker assignments are within capacity.")
	assert.Contains(t, out, "DATE")
}

func TestScheduleOnceNoTasks(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.Tasks.Path, []byte("Task,Total Hours,Workers Requested,Priority\nA,0,1,1\n"), 0o644))
	var buf bytes.Buffer
	err := scheduleOnce(context.Background(), &buf, testService(), cfg, false)
	require.ErrorIs(t, err, app.ErrNoTasks)
	assert.Contains(t, buf.String(), "1 rows skipped")
}

func TestScheduleFlagsApply(t *testing.T) {
	cfg := testConfig(t)
	f := scheduleFlags{workers: 2, start: "2025-07-01", formats: []string{"csv"}}
	require.NoError(t, f.apply(cfg))
	assert.Equal(t, 2, cfg.Schedule.Workers)
	assert.Equal(t, "2025-07-01", cfg.Schedule.StartDate)
	assert.Equal(t, []string{"csv"}, cfg.Export.Formats)

	bad := scheduleFlags{formats: []string{"pdf"}}
	assert.Error(t, bad.apply(cfg))
}

func TestNewMuxRoutes(t *testing.T) {
	mux := NewMux(testService(), "")

	req := httptest.NewRequest(http.MethodPost, "/api/schedule", strings.NewReader(`{"settings": {"start_date": "2025-06-02"}, "tasks_csv": "Task,Total Hours,Workers Requested,Priority\nA,10,1,1\n"}`))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestParseWhen(t *testing.T) {
	ts, err := parseWhen("2025-06-02")
	require.NoError(t, err)
	assert.Equal(t, 2, ts.Day())
	ts, err = parseWhen("2025-06-02T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, ts.Hour())
	_, err = parseWhen("yesterday")
	assert.Error(t, err)
}
