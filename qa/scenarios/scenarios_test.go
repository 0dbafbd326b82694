package scenarios

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/kilianp07/workplan/core/model"
)

func TestScenario(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no scenarios found")
	}
	for _, f := range files {
		sc, err := Load(f)
		if err != nil {
			t.Fatalf("load %s: %v", f, err)
		}
		t.Run(sc.Name, func(t *testing.T) {
			RunScenario(t, sc)
		})
	}
}

func TestScenarioIsDeterministic(t *testing.T) {
	sc, err := Load(filepath.Join("testdata", "default_dataset.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	first := RunScenario(t, sc)
	for i := 0; i < 3; i++ {
		again := RunScenario(t, sc)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
		}
	}
}

func TestInlineTasksMatchFile(t *testing.T) {
	sc := &Scenario{Tasks: []map[string]any{
		{"task": "Task 1", "total_hours": 80, "workers_requested": 2, "priority": 1},
		{"task": "Task 2", "total_hours": 50, "workers_requested": 4, "priority": 2, "dependencies": []any{"Task 1"}},
	}}
	rows, err := sc.Rows()
	if err != nil {
		t.Fatal(err)
	}
	file := &Scenario{TasksFile: filepath.Join("..", "..", "examples", "tasks.csv")}
	fileRows, err := file.Rows()
	if err != nil {
		t.Fatal(err)
	}
	if len(fileRows) != 10 {
		t.Fatalf("expected 10 rows in the example file, got %d", len(fileRows))
	}
	for i, r := range rows {
		f := fileRows[i]
		if r.Task != f.Task || r.TotalHours != f.TotalHours || r.WorkersRequested != f.WorkersRequested || r.Priority != f.Priority {
			t.Errorf("row %d: inline %+v, file %+v", i, r, f)
		}
		if diff := cmp.Diff(model.SplitDependencies(f.Dependencies), model.SplitDependencies(r.Dependencies), cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("row %d dependencies (-file +inline):\n%s", i, diff)
		}
	}
}

func TestLoadInvalid(t *testing.T) {
	if _, err := Load("no-file.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
	tmp, err := os.CreateTemp(t.TempDir(), "bad*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmp.WriteString("name: [unterminated"); err != nil {
		t.Fatal(err)
	}
	if err := tmp.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(tmp.Name()); err == nil {
		t.Fatal("expected unmarshal error")
	}
}
