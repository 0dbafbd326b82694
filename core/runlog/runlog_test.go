package runlog

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/workplan/core/model"
	"github.com/kilianp07/workplan/core/report"
	"github.com/kilianp07/workplan/core/scheduler"
)

func sampleRecord(t *testing.T, id string, ts time.Time, names ...string) RunRecord {
	t.Helper()
	var tasks []model.Task
	for i, n := range names {
		tasks = append(tasks, model.Task{Name: n, TotalHours: 10, RequestedWorkers: 1, Priority: i + 1})
	}
	settings := scheduler.Settings{Workers: 2, HoursPerWorkerPerDay: 10, StartDate: "2025-06-02"}
	cfg, _, err := settings.Resolve()
	require.NoError(t, err)
	res, err := scheduler.Run(cfg, tasks, nil)
	require.NoError(t, err)
	return RunRecord{
		ID:        id,
		Timestamp: ts,
		Settings:  settings,
		Tasks:     tasks,
		Result:    res,
		Summary:   report.Summarize(res, cfg.Workers),
	}
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()
	jsonl, err := NewJSONLStore(filepath.Join(dir, "runs.jsonl"))
	require.NoError(t, err)
	rot, err := NewRotatingJSONLStore(filepath.Join(dir, "rot", "runs.jsonl"), 1, 2, 1)
	require.NoError(t, err)
	sq, err := NewSQLiteStore("file:" + strings.ReplaceAll(t.Name(), "/", "_") + ".db?mode=memory&cache=shared")
	require.NoError(t, err)
	return map[string]Store{"jsonl": jsonl, "rotating": rot, "sqlite": sq}
}

func TestStores_AppendQuery(t *testing.T) {
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			defer func() { _ = s.Close() }()
			ctx := context.Background()
			require.NoError(t, s.Append(ctx, sampleRecord(t, "r1", base, "A", "B")))
			require.NoError(t, s.Append(ctx, sampleRecord(t, "r2", base.Add(time.Hour), "C")))
			require.NoError(t, s.Append(ctx, sampleRecord(t, "r3", base.Add(2*time.Hour), "A")))

			all, err := s.Query(ctx, RunQuery{})
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, "r1", all[0].ID)
			assert.Equal(t, "r3", all[2].ID)

			byTask, err := s.Query(ctx, RunQuery{Task: "A"})
			require.NoError(t, err)
			require.Len(t, byTask, 2)
			assert.Equal(t, "r1", byTask[0].ID)
			assert.Equal(t, "r3", byTask[1].ID)

			window, err := s.Query(ctx, RunQuery{Start: base.Add(30 * time.Minute), End: base.Add(90 * time.Minute)})
			require.NoError(t, err)
			require.Len(t, window, 1)
			assert.Equal(t, "r2", window[0].ID)

			last, err := s.Query(ctx, RunQuery{Limit: 1})
			require.NoError(t, err)
			require.Len(t, last, 1)
			assert.Equal(t, "r3", last[0].ID)
		})
	}
}

func TestStores_RecordRoundTrip(t *testing.T) {
	rec := sampleRecord(t, "r1", time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC), "A", "B")
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			defer func() { _ = s.Close() }()
			require.NoError(t, s.Append(context.Background(), rec))
			out, err := s.Query(context.Background(), RunQuery{})
			require.NoError(t, err)
			require.Len(t, out, 1)
			got := out[0]
			require.NotNil(t, got.Result)
			assert.Equal(t, rec.Summary.WorkingDays, got.Summary.WorkingDays)
			sched, ok := got.Result.Schedule("B")
			require.True(t, ok)
			want, _ := rec.Result.Schedule("B")
			assert.True(t, want.End.Equal(sched.End))
			assert.Len(t, got.Result.Daily, len(rec.Result.Daily))
		})
	}
}

func TestRunRecord_JSON(t *testing.T) {
	rec := sampleRecord(t, "r1", time.Unix(0, 0).UTC(), "A")
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, k := range []string{"id", "timestamp", "settings", "tasks", "result", "summary"} {
		assert.Contains(t, m, k)
	}
}

func TestRotatingJSONLStore_Rotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runs.jsonl")
	store, err := NewRotatingJSONLStore(path, 1, 5, 1)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	rec := sampleRecord(t, "big", time.Now(), "A", "B", "C", "D", "E", "F")
	rec.Warnings = []string{strings.Repeat("x", 64*1024)}
	for i := 0; i < 20; i++ {
		require.NoError(t, store.Append(context.Background(), rec))
	}
	files, _ := filepath.Glob(filepath.Join(dir, "runs*"))
	assert.Greater(t, len(files), 1, "expected rotated files")

	out, err := store.Query(context.Background(), RunQuery{})
	require.NoError(t, err)
	assert.Len(t, out, 20)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(Config{Disabled: true})
	require.NoError(t, err)
	assert.IsType(t, NopStore{}, s)

	cfg := Config{Path: filepath.Join(dir, "runs.jsonl")}
	cfg.SetDefaults()
	s, err = Open(cfg)
	require.NoError(t, err)
	assert.IsType(t, &JSONLStore{}, s)

	cfg.MaxSizeMB = 5
	s, err = Open(cfg)
	require.NoError(t, err)
	assert.IsType(t, &RotatingJSONLStore{}, s)
	_ = s.Close()

	s, err = Open(Config{Backend: "sqlite", Path: "file:open_test.db?mode=memory&cache=shared"})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	_ = s.Close()

	_, err = Open(Config{Backend: "mongo", Path: "x"})
	assert.True(t, errors.Is(err, ErrUnknownBackend))
}

func TestJSONLStore_QueryReadsCurrentFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")
	s, err := NewJSONLStore(path)
	require.NoError(t, err)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	out, err := s.Query(ctx, RunQuery{})
	require.NoError(t, err)
	assert.Empty(t, out)

	require.NoError(t, s.Append(ctx, sampleRecord(t, "r1", base, "A")))
	require.NoError(t, s.Append(ctx, sampleRecord(t, "r2", base.Add(time.Hour), "B")))
	out, err = s.Query(ctx, RunQuery{Task: "B"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "r2", out[0].ID)

	require.NoError(t, os.Remove(path))
	_, err = s.Query(ctx, RunQuery{})
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
