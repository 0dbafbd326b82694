package planner

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingTaskColumn is returned when a CSV header has no task name column.
var ErrMissingTaskColumn = errors.New("csv header has no task column")

// LoadRows reads task rows from a CSV, YAML or JSON file picked by extension.
func LoadRows(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return DecodeRows(f, format)
}

// DecodeRows reads task rows from r in the given format.
func DecodeRows(r io.Reader, format string) ([]Row, error) {
	switch strings.ToLower(format) {
	case "csv":
		return ReadCSV(r)
	case "yaml", "yml":
		var recs []fileRow
		if err := yaml.NewDecoder(r).Decode(&recs); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		return toRows(recs), nil
	case "json":
		var recs []fileRow
		if err := json.NewDecoder(r).Decode(&recs); err != nil {
			return nil, err
		}
		return toRows(recs), nil
	default:
		return nil, fmt.Errorf("unsupported task format: %s", format)
	}
}

// column names accepted in CSV headers, after normalisation.
var csvColumns = map[string]string{
	"task":              "task",
	"name":              "task",
	"total_hours":       "total_hours",
	"hours":             "total_hours",
	"workers_requested": "workers_requested",
	"requested_workers": "workers_requested",
	"workers":           "workers_requested",
	"priority":          "priority",
	"dependencies":      "dependencies",
	"depends_on":        "dependencies",
	"manual_start":      "manual_start",
}

// ReadCSV reads a task table with a header row. Headers are matched case
// insensitively and spaces count as underscores, so both "Total Hours" and
// total_hours are recognised. Unknown columns are ignored.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
		if col, ok := csvColumns[key]; ok {
			if _, dup := idx[col]; !dup {
				idx[col] = i
			}
		}
	}
	if _, ok := idx["task"]; !ok {
		return nil, ErrMissingTaskColumn
	}
	cell := func(rec []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var rows []Row
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		rows = append(rows, Row{
			Line:             line,
			Task:             cell(rec, "task"),
			TotalHours:       cell(rec, "total_hours"),
			WorkersRequested: cell(rec, "workers_requested"),
			Priority:         cell(rec, "priority"),
			Dependencies:     cell(rec, "dependencies"),
			ManualStart:      cell(rec, "manual_start"),
		})
	}
	return rows, nil
}

// fileRow is the YAML/JSON shape of a task. Numbers stay untyped so that a
// bad value becomes a rejection instead of a decode failure.
type fileRow struct {
	Task             string `json:"task" yaml:"task"`
	TotalHours       any    `json:"total_hours" yaml:"total_hours"`
	WorkersRequested any    `json:"workers_requested" yaml:"workers_requested"`
	Priority         any    `json:"priority" yaml:"priority"`
	Dependencies     any    `json:"dependencies" yaml:"dependencies"`
	ManualStart      string `json:"manual_start" yaml:"manual_start"`
}

func toRows(recs []fileRow) []Row {
	rows := make([]Row, len(recs))
	for i, r := range recs {
		rows[i] = Row{
			Line:             i + 1,
			Task:             r.Task,
			TotalHours:       scalar(r.TotalHours),
			WorkersRequested: scalar(r.WorkersRequested),
			Priority:         scalar(r.Priority),
			Dependencies:     depList(r.Dependencies),
			ManualStart:      r.ManualStart,
		}
	}
	return rows
}

func scalar(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// depList accepts either a comma separated string or a list of names.
func depList(v any) string {
	switch x := v.(type) {
	case []any:
		parts := make([]string, 0, len(x))
		for _, p := range x {
			parts = append(parts, scalar(p))
		}
		return strings.Join(parts, ",")
	default:
		return scalar(v)
	}
}
