// Package export writes a simulation result to files: CSV tables, a JSON
// document, an Excel workbook and an HTML page of charts.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kilianp07/workplan/core/model"
	"github.com/kilianp07/workplan/core/report"
	"github.com/kilianp07/workplan/core/scheduler"
)

// Supported output formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
	FormatHTML = "html"
)

// Formats lists every supported format.
var Formats = []string{FormatCSV, FormatJSON, FormatXLSX, FormatHTML}

var scheduleHeader = []string{"Task", "Start", "End", "Assigned Workers", "Duration (days)"}

// ScheduleRecords renders the schedule table as string records, header first.
func ScheduleRecords(rows []report.Row) [][]string {
	out := [][]string{scheduleHeader}
	for _, r := range rows {
		out = append(out, []string{
			r.Task,
			model.FormatDate(r.Start),
			model.FormatDate(r.End),
			strconv.Itoa(r.AssignedWorkers),
			strconv.Itoa(r.DurationDays),
		})
	}
	return out
}

// TotalColumn heads the per-day worker total in the daily table.
const TotalColumn = "Total Workers"

// DailyRecords renders the allocation log with one column per task in
// input order and a trailing total, header first.
func DailyRecords(res *scheduler.Result) [][]string {
	header := append([]string{"Date"}, res.TaskOrder...)
	header = append(header, TotalColumn)
	out := [][]string{header}
	for _, d := range res.Daily {
		rec := []string{model.FormatDate(d.Date)}
		for _, name := range res.TaskOrder {
			rec = append(rec, strconv.Itoa(d.Workers[name]))
		}
		rec = append(rec, strconv.Itoa(d.Total()))
		out = append(out, rec)
	}
	return out
}

// WriteScheduleCSV writes the schedule table to w in CSV format.
func WriteScheduleCSV(w io.Writer, rows []report.Row) error {
	return writeCSV(w, ScheduleRecords(rows))
}

// WriteDailyCSV writes the daily allocation table to w in CSV format.
func WriteDailyCSV(w io.Writer, res *scheduler.Result) error {
	return writeCSV(w, DailyRecords(res))
}

func writeCSV(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	return cw.Error()
}

// DailyRow is one day of the exported allocation log.
type DailyRow struct {
	Date    string         `json:"date"`
	Workers map[string]int `json:"workers"`
	Total   int            `json:"total"`
}

// ScheduleEntry is one completed task of the exported schedule.
type ScheduleEntry struct {
	Task            string `json:"task"`
	Start           string `json:"start"`
	End             string `json:"end"`
	AssignedWorkers int    `json:"assigned_workers"`
	DurationDays    int    `json:"duration_days"`
}

// Document is the JSON representation of a run.
type Document struct {
	Schedule     []ScheduleEntry   `json:"schedule"`
	Daily        []DailyRow        `json:"daily"`
	Unscheduled  []string          `json:"unscheduled"`
	Overcapacity []report.Overload `json:"overcapacity"`
	Summary      report.Summary    `json:"summary"`
}

// NewDocument assembles the exported view of res for a pool of the given size.
func NewDocument(res *scheduler.Result, pool int) Document {
	doc := Document{
		Schedule:     []ScheduleEntry{},
		Daily:        make([]DailyRow, 0, len(res.Daily)),
		Unscheduled:  append([]string{}, res.Unscheduled...),
		Overcapacity: report.Overcapacity(res.Daily, pool),
		Summary:      report.Summarize(res, pool),
	}
	for _, r := range report.ScheduleRows(res) {
		doc.Schedule = append(doc.Schedule, ScheduleEntry{
			Task:            r.Task,
			Start:           model.FormatDate(r.Start),
			End:             model.FormatDate(r.End),
			AssignedWorkers: r.AssignedWorkers,
			DurationDays:    r.DurationDays,
		})
	}
	for _, d := range res.Daily {
		doc.Daily = append(doc.Daily, DailyRow{Date: model.FormatDate(d.Date), Workers: d.Copy().Workers, Total: d.Total()})
	}
	return doc
}

// WriteJSON writes the run document to w in indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// ParseFormats normalises a list of format names, dropping duplicates.
func ParseFormats(names []string) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" || seen[n] {
			continue
		}
		switch n {
		case FormatCSV, FormatJSON, FormatXLSX, FormatHTML:
		default:
			return nil, fmt.Errorf("unsupported export format %q", n)
		}
		seen[n] = true
		out = append(out, n)
	}
	return out, nil
}

// WriteFiles writes res to dir in every requested format and returns the
// created paths. CSV produces two files, one per table.
func WriteFiles(dir, base string, formats []string, res *scheduler.Result, pool int) ([]string, error) {
	formats, err := ParseFormats(formats)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var paths []string
	write := func(name string, fn func(io.Writer) error) error {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := fn(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		paths = append(paths, path)
		return nil
	}
	for _, format := range formats {
		switch format {
		case FormatCSV:
			err = write(base+"_schedule.csv", func(w io.Writer) error { return WriteScheduleCSV(w, report.ScheduleRows(res)) })
			if err == nil {
				err = write(base+"_daily.csv", func(w io.Writer) error { return WriteDailyCSV(w, res) })
			}
		case FormatJSON:
			err = write(base+".json", func(w io.Writer) error { return WriteJSON(w, NewDocument(res, pool)) })
		case FormatXLSX:
			err = write(base+".xlsx", func(w io.Writer) error { return WriteXLSX(w, res) })
		case FormatHTML:
			err = write(base+".html", func(w io.Writer) error { return WriteHTML(w, res, "Work plan") })
		}
		if err != nil {
			return paths, err
		}
	}
	return paths, nil
}
