// Package scenarios runs YAML golden scenarios through the planner and the
// scheduling engine.
package scenarios

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/workplan/core/planner"
	"github.com/kilianp07/workplan/core/scheduler"
)

// Span is an expected Start/End pair, YYYY-MM-DD.
type Span struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type Expected struct {
	// Schedules lists completed tasks. Tasks not named here are not checked.
	Schedules      map[string]Span `yaml:"schedules"`
	Unscheduled    []string        `yaml:"unscheduled"`
	Rejected       int             `yaml:"rejected"`
	WorkingDays    int             `yaml:"working_days"`
	CalendarDays   int             `yaml:"calendar_days"`
	CeilingReached bool            `yaml:"ceiling_reached"`
	// Daily pins the allocation of selected days; omitted tasks must be 0.
	Daily map[string]map[string]int `yaml:"daily,omitempty"`
	// Dates, when set, is the exact list of simulated days.
	Dates []string `yaml:"dates,omitempty"`
}

type Scenario struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description,omitempty"`
	Settings    scheduler.Settings `yaml:"settings"`
	// Tasks is an inline task list in the task file format; TasksFile
	// points at a task file relative to the scenario instead.
	Tasks     []map[string]any `yaml:"tasks,omitempty"`
	TasksFile string           `yaml:"tasks_file,omitempty"`
	Expected  Expected         `yaml:"expected"`

	dir string
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = filepath.Base(path)
	}
	sc.dir = filepath.Dir(path)
	return &sc, nil
}

// Rows returns the scenario's task rows.
func (sc *Scenario) Rows() ([]planner.Row, error) {
	if sc.TasksFile != "" {
		return planner.LoadRows(filepath.Join(sc.dir, sc.TasksFile))
	}
	data, err := yaml.Marshal(sc.Tasks)
	if err != nil {
		return nil, err
	}
	return planner.DecodeRows(bytes.NewReader(data), "yaml")
}
